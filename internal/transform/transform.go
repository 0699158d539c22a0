// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transform converts raw board cards into normalized journal
// entries, applying the filtering and field-mapping rules of the
// migration.
package transform

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/trello-dayone/pkg/types"
)

// Result holds the outcome of a batch transform run.
type Result struct {
	Entries []types.Entry

	Converted int
	Skipped   int
	Failed    int

	// Warnings describes each card rejected for a data-integrity
	// problem. Rejections never abort the run.
	Warnings []string
}

// Total returns the number of cards processed.
func (r Result) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// Card converts a single card into an entry. The skipped return value
// reports that the card was filtered out by policy; an error reports a
// data-integrity problem (the caller logs it and continues).
//
// Skip policy, first match wins: archived cards are skipped unless
// IncludeArchived is set; when ListFilter is non-empty, cards from
// other lists are skipped (matching is case-insensitive).
func Card(card types.Card, cfg types.FilterConfig) (*types.Entry, bool, error) {
	if card.Closed && !cfg.IncludeArchived {
		return nil, true, nil
	}
	if len(cfg.ListFilter) > 0 && !listAllowed(card.ListName, cfg.ListFilter) {
		return nil, true, nil
	}

	if card.Due == nil && card.DateLastActivity == nil {
		return nil, false, fmt.Errorf("card %s (%q) has neither due date nor last-activity timestamp", card.ID, card.Name)
	}

	createdAt := card.DateLastActivity
	if card.Due != nil {
		createdAt = card.Due
	}
	modifiedAt := card.DateLastActivity
	if modifiedAt == nil {
		modifiedAt = createdAt
	}

	entry := &types.Entry{
		UUID:        types.EntryUUID(card.ID),
		Title:       card.Name,
		Body:        buildBody(card, cfg.AttachmentLinks),
		CreatedAt:   createdAt.UTC(),
		ModifiedAt:  modifiedAt.UTC(),
		Tags:        collectTags(card),
		Attachments: card.Attachments,
	}
	return entry, false, nil
}

// Cards converts a batch of cards, printing per-card status for skips
// and failures to w and returning the surviving entries in input order.
func Cards(cards []types.Card, cfg types.FilterConfig, w io.Writer) Result {
	var result Result
	for _, card := range cards {
		entry, skipped, err := Card(card, cfg)
		if err != nil {
			fmt.Fprintf(w, "skipping card %s: %v\n", card.ID, err)
			result.Warnings = append(result.Warnings, err.Error())
			result.Failed++
			continue
		}
		if skipped {
			result.Skipped++
			continue
		}
		result.Entries = append(result.Entries, *entry)
		result.Converted++
	}
	fmt.Fprintf(w, "\ntransformed %d of %d cards (%d filtered, %d rejected)\n",
		result.Converted, result.Total(), result.Skipped, result.Failed)
	return result
}

// buildBody renders the entry body: the card description, optionally
// followed by one markdown link line per attachment.
func buildBody(card types.Card, attachmentLinks bool) string {
	var parts []string

	if desc := strings.TrimSpace(card.Desc); desc != "" {
		parts = append(parts, desc)
	}

	if attachmentLinks && len(card.Attachments) > 0 {
		lines := make([]string, 0, len(card.Attachments))
		for _, att := range card.Attachments {
			name := att.Name
			if name == "" {
				name = att.URL
			}
			lines = append(lines, fmt.Sprintf("- [%s](%s)", name, att.URL))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	return strings.Join(parts, "\n\n")
}

// collectTags gathers label names in source order followed by the list
// name, removing exact-string duplicates.
func collectTags(card types.Card) []string {
	tags := make([]string, 0, len(card.Labels)+1)
	seen := make(map[string]bool, len(card.Labels)+1)

	add := func(tag string) {
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, label := range card.Labels {
		add(label)
	}
	add(card.ListName)
	return tags
}

func listAllowed(listName string, filter []string) bool {
	for _, name := range filter {
		if strings.EqualFold(name, listName) {
			return true
		}
	}
	return false
}
