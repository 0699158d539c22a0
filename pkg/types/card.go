// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Attachment is a reference to a file attached to a card. Bytes is the
// size reported by the board API, not the downloaded size.
type Attachment struct {
	// ID is the board API's attachment identifier.
	ID string `json:"id" yaml:"id"`

	// Name is the display filename of the attachment.
	Name string `json:"name" yaml:"name"`

	// URL is the download URL for the attachment bytes.
	URL string `json:"url" yaml:"url"`

	// Bytes is the attachment size in bytes as reported by the API.
	Bytes int64 `json:"bytes" yaml:"bytes"`
}

// Card is a raw board card as fetched from the Trello API, with the
// owning list stamped on during the board walk. Cards are ephemeral:
// fetched once, consumed once by the transformer.
type Card struct {
	// ID is the card identifier.
	ID string `json:"id" yaml:"id"`

	// Name is the card title.
	Name string `json:"name" yaml:"name"`

	// Desc is the card description in markdown.
	Desc string `json:"desc" yaml:"desc"`

	// Due is the card due date, nil when unset.
	Due *time.Time `json:"due" yaml:"due"`

	// DateLastActivity is the card's last-activity timestamp, nil only
	// for malformed records.
	DateLastActivity *time.Time `json:"date_last_activity" yaml:"date_last_activity"`

	// Closed reports whether the card is archived.
	Closed bool `json:"closed" yaml:"closed"`

	// ListID is the identifier of the list the card belongs to.
	ListID string `json:"list_id" yaml:"list_id"`

	// ListName is the display name of the list the card belongs to.
	ListName string `json:"list_name" yaml:"list_name"`

	// Labels holds the card's label names in source order.
	Labels []string `json:"labels" yaml:"labels"`

	// Attachments holds the card's attachment references in source order.
	Attachments []Attachment `json:"attachments" yaml:"attachments"`
}
