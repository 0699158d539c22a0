package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trello-dayone/internal/trello"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Preview a board's lists and card counts",
	Long: `Inspect fetches the configured board and prints each list with its card
and attachment counts, without converting or writing anything. Use it to
decide which lists to pass to migrate --list.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().String("board", "", "board ID to inspect")
	inspectCmd.Flags().Bool("include-archived", false, "include archived cards")
	inspectCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	client, err := trello.NewClient(cfg.Trello)
	if err != nil {
		return err
	}

	board, err := client.GetBoard(ctx, cfg.Trello.BoardID)
	if err != nil {
		return fmt.Errorf("fetching board %s: %w", cfg.Trello.BoardID, err)
	}
	fmt.Fprintf(out, "Board: %q (%s)\n\n", board.Name, board.URL)

	lists, cards, err := client.GetAllCards(ctx, cfg.Trello.BoardID, cfg.Filter.IncludeArchived)
	if err != nil {
		return fmt.Errorf("fetching cards: %w", err)
	}

	cardCount := make(map[string]int, len(lists))
	attCount := make(map[string]int, len(lists))
	for _, card := range cards {
		cardCount[card.ListID]++
		attCount[card.ListID] += len(card.Attachments)
	}

	for _, list := range lists {
		fmt.Fprintf(out, "%-30s %4d cards, %4d attachments\n",
			list.Name, cardCount[list.ID], attCount[list.ID])
	}
	fmt.Fprintf(out, "\ntotal: %d lists, %d cards\n", len(lists), len(cards))
	return nil
}
