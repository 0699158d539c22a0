package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trello-dayone/internal/attachments"
	"github.com/pdiddy/trello-dayone/internal/dayone"
	"github.com/pdiddy/trello-dayone/internal/secrets"
	"github.com/pdiddy/trello-dayone/internal/transform"
	"github.com/pdiddy/trello-dayone/internal/trello"
	"github.com/pdiddy/trello-dayone/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "trello-dayone/0.1"
	defaultOutputDir = "output"
	defaultCacheDir  = ".cache"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate a board's cards into a Day One import zip",
	Long: `Migrate fetches every card on the configured board, downloads the card
attachments, converts cards into journal entries, and writes a Day One
import zip (a JSON manifest plus a photos/ folder).

With --dry-run the full pipeline runs but nothing is written; a summary
of entry and attachment counts is printed instead.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().String("board", "", "board ID to migrate")
	migrateCmd.Flags().String("journal", "", "target journal name (default \"Journal\")")
	migrateCmd.Flags().String("output-dir", "", "directory for the generated zip (default \"output\")")
	migrateCmd.Flags().Bool("dry-run", false, "compute and report without writing the zip")
	migrateCmd.Flags().Bool("include-archived", false, "include archived cards")
	migrateCmd.Flags().Bool("attachment-links", false, "append markdown attachment links to entry bodies")
	migrateCmd.Flags().StringSlice("list", nil, "migrate only cards from these lists (repeatable)")
	migrateCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	migrateCmd.Flags().Bool("no-cache", false, "bypass the attachment download cache")
	migrateCmd.Flags().String("report", "", "write a YAML run report to this path")

	rootCmd.AddCommand(migrateCmd)
}

// buildConfig resolves the migration configuration from flags, the
// config file, and loaded secrets. Flags win over config file values.
func buildConfig(cmd *cobra.Command) (types.MigrationConfig, error) {
	cfg := types.MigrationConfig{
		Trello: types.TrelloConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("trello.timeout"),
				UserAgent: defaultUserAgent,
			},
			BoardID:  viper.GetString("trello.board_id"),
			APIKey:   secretDefault(secrets.KeyAPIKey, viper.GetString("trello.api_key")),
			APIToken: secretDefault(secrets.KeyAPIToken, viper.GetString("trello.api_token")),
		},
		Filter: types.FilterConfig{
			IncludeArchived: viper.GetBool("options.include_archived"),
			AttachmentLinks: viper.GetBool("options.attachment_links"),
			ListFilter:      viper.GetStringSlice("options.list_filter"),
		},
		Archive: types.ArchiveConfig{
			JournalName: viper.GetString("dayone.journal_name"),
			OutputDir:   viper.GetString("dayone.output_dir"),
			CacheDir:    viper.GetString("dayone.cache_dir"),
		},
	}

	if board, _ := cmd.Flags().GetString("board"); board != "" {
		cfg.Trello.BoardID = board
	}
	if journal, _ := cmd.Flags().GetString("journal"); journal != "" {
		cfg.Archive.JournalName = journal
	}
	if outDir, _ := cmd.Flags().GetString("output-dir"); outDir != "" {
		cfg.Archive.OutputDir = outDir
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout != 0 {
		cfg.Trello.Timeout = timeout
	}
	if cmd.Flags().Changed("include-archived") {
		cfg.Filter.IncludeArchived, _ = cmd.Flags().GetBool("include-archived")
	}
	if cmd.Flags().Changed("attachment-links") {
		cfg.Filter.AttachmentLinks, _ = cmd.Flags().GetBool("attachment-links")
	}
	if lists, _ := cmd.Flags().GetStringSlice("list"); len(lists) > 0 {
		cfg.Filter.ListFilter = lists
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Archive.DisableCache = true
	}

	if cfg.Trello.Timeout == 0 {
		cfg.Trello.Timeout = defaultTimeout
	}
	if cfg.Archive.JournalName == "" {
		cfg.Archive.JournalName = dayone.DefaultJournal
	}
	if cfg.Archive.OutputDir == "" {
		cfg.Archive.OutputDir = defaultOutputDir
	}
	if cfg.Archive.CacheDir == "" {
		cfg.Archive.CacheDir = defaultCacheDir
	}

	if cfg.Trello.BoardID == "" {
		return cfg, fmt.Errorf("no board ID: set trello.board_id in the config file or pass --board")
	}
	return cfg, nil
}

// runReport is the YAML document written by --report.
type runReport struct {
	Board       string         `yaml:"board"`
	Journal     string         `yaml:"journal"`
	DryRun      bool           `yaml:"dry_run"`
	Cards       int            `yaml:"cards"`
	Entries     int            `yaml:"entries"`
	Skipped     int            `yaml:"skipped"`
	Rejected    int            `yaml:"rejected"`
	Summary     dayone.Summary `yaml:"archive"`
	Warnings    []string       `yaml:"warnings,omitempty"`
	GeneratedAt time.Time      `yaml:"generated_at"`
}

func runMigrate(cmd *cobra.Command, args []string) error {
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
	fmt.Fprintf(out, "Board: %q\n", board.Name)

	lists, cards, err := client.GetAllCards(ctx, cfg.Trello.BoardID, cfg.Filter.IncludeArchived)
	if err != nil {
		return fmt.Errorf("fetching cards: %w", err)
	}
	fmt.Fprintf(out, "Found %d lists, %d cards\n\n", len(lists), len(cards))

	var cache *attachments.Cache
	if !cfg.Archive.DisableCache {
		cache, err = attachments.OpenCache(cfg.Archive.CacheDir)
		if err != nil {
			fmt.Fprintf(out, "warning: attachment cache unavailable: %v\n", err)
		} else {
			defer cache.Close()
		}
	}
	fetched := attachments.FetchAll(ctx, client, cards, cache, out)

	transformed := transform.Cards(cards, cfg.Filter, out)

	archive := dayone.Plan(transformed.Entries, fetched.Bytes, cfg.Archive.JournalName)
	summary := archive.Summary()

	warnings := make([]string, 0, len(fetched.Warnings)+len(transformed.Warnings)+len(summary.Warnings))
	warnings = append(warnings, transformed.Warnings...)
	warnings = append(warnings, fetched.Warnings...)
	warnings = append(warnings, summary.Warnings...)

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		fmt.Fprintf(out, "\n--- DRY RUN ---\n")
		fmt.Fprintf(out, "Would write %d entries, %d attachment files (%d bytes) to %s\n",
			summary.Entries, summary.Attachments, summary.TotalBytes,
			filepath.Join(cfg.Archive.OutputDir, archive.ZipName()))
		if summary.Missing > 0 {
			fmt.Fprintf(out, "Missing attachments: %d\n", summary.Missing)
		}
		if entries := archive.Manifest().Entries; len(entries) > 0 {
			sample, err := json.MarshalIndent(entries[0], "", "  ")
			if err == nil {
				fmt.Fprintf(out, "\nSample entry:\n%s\n", sample)
			}
		}
	} else {
		zipPath := filepath.Join(cfg.Archive.OutputDir, archive.ZipName())
		if err := archive.WriteZip(zipPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nDay One import zip written to %s (%d entries, %d attachments)\n",
			zipPath, summary.Entries, summary.Attachments)
	}

	for _, w := range warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		report := runReport{
			Board:       board.Name,
			Journal:     cfg.Archive.JournalName,
			DryRun:      dryRun,
			Cards:       len(cards),
			Entries:     transformed.Converted,
			Skipped:     transformed.Skipped,
			Rejected:    transformed.Failed,
			Summary:     summary,
			Warnings:    warnings,
			GeneratedAt: time.Now().UTC(),
		}
		data, err := yaml.Marshal(&report)
		if err != nil {
			return fmt.Errorf("marshaling run report: %w", err)
		}
		if err := os.WriteFile(reportPath, data, 0o644); err != nil {
			return fmt.Errorf("writing run report: %w", err)
		}
		fmt.Fprintf(out, "Run report written to %s\n", reportPath)
	}

	return nil
}
