// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "trello-dayone/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// TrelloConfig holds settings for the board client.
type TrelloConfig struct {
	HTTPConfig `yaml:",inline"`

	// BoardID identifies the board to migrate.
	BoardID string `json:"board_id" yaml:"board_id"`

	// APIKey is the Trello API key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// APIToken is the Trello API token.
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty"`
}

// FilterConfig holds the card filtering and mapping options applied by
// the transformer.
type FilterConfig struct {
	// IncludeArchived includes archived cards in the migration.
	IncludeArchived bool `json:"include_archived" yaml:"include_archived"`

	// AttachmentLinks appends a markdown link per attachment to each
	// entry body.
	AttachmentLinks bool `json:"attachment_links" yaml:"attachment_links"`

	// ListFilter restricts migration to cards from the named lists.
	// Empty means all lists. Matching is case-insensitive.
	ListFilter []string `json:"list_filter,omitempty" yaml:"list_filter,omitempty"`
}

// ArchiveConfig holds settings for the archive builder and the
// attachment download cache.
type ArchiveConfig struct {
	// JournalName is the target journal name; it also names the zip
	// (e.g. "Journal" produces Journal.zip).
	JournalName string `json:"journal_name" yaml:"journal_name"`

	// OutputDir is the directory the archive is written into.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// CacheDir is the directory for the attachment download cache
	// database.
	CacheDir string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`

	// DisableCache bypasses the download cache entirely.
	DisableCache bool `json:"disable_cache,omitempty" yaml:"disable_cache,omitempty"`
}

// MigrationConfig groups all stage configurations for one migration run.
type MigrationConfig struct {
	Trello  TrelloConfig  `json:"trello" yaml:"trello"`
	Filter  FilterConfig  `json:"filter" yaml:"filter"`
	Archive ArchiveConfig `json:"archive" yaml:"archive"`
}
