// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is a normalized journal entry produced from one card. Entries
// are constructed once by the transformer and are immutable afterwards.
type Entry struct {
	// UUID is a deterministic entry identifier derived from the card ID,
	// formatted as 32 upper-case hex characters (Day One style).
	UUID string `json:"uuid" yaml:"uuid"`

	// Title is the card name, verbatim.
	Title string `json:"title" yaml:"title"`

	// Body is the entry markdown body.
	Body string `json:"body" yaml:"body"`

	// CreatedAt is the card due date when present, otherwise the
	// last-activity timestamp. Always populated, always UTC.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// ModifiedAt is the card's last-activity timestamp. Always
	// populated, always UTC.
	ModifiedAt time.Time `json:"modified_at" yaml:"modified_at"`

	// Tags holds label names in source order followed by the list name,
	// with exact-string duplicates removed.
	Tags []string `json:"tags" yaml:"tags"`

	// Attachments carries the card's attachment references through
	// unchanged, order preserved.
	Attachments []Attachment `json:"attachments" yaml:"attachments"`
}

// EntryUUID derives the deterministic entry identifier for a card ID.
// The same card always yields the same identifier, so re-running a
// migration produces identical output.
func EntryUUID(cardID string) string {
	return DayOneID("card:" + cardID)
}

// AttachmentID derives the deterministic media identifier for an
// attachment reference. Identifiers are unique across a run because
// the board API's attachment IDs are unique.
func AttachmentID(attachmentID string) string {
	return DayOneID("attachment:" + attachmentID)
}

// DayOneID maps an arbitrary key to a Day One style identifier:
// a name-based UUID rendered as 32 upper-case hex characters.
func DayOneID(key string) string {
	u := uuid.NewMD5(uuid.NameSpaceURL, []byte("trello-dayone:"+key))
	return strings.ToUpper(strings.ReplaceAll(u.String(), "-", ""))
}
