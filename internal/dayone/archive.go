// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dayone serializes journal entries into a Day One import
// archive: a zip holding a JSON manifest at the root and a photos/
// folder of attachment files.
//
// The builder is deterministic: identifiers derive from source IDs,
// file order is fixed, and zip header times come from the entries'
// own timestamps, so identical input yields a byte-identical archive.
package dayone

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/trello-dayone/pkg/types"
)

const (
	manifestVersion = "1.0"
	mediaDir        = "photos"

	// DefaultJournal names the manifest and zip when no journal name is
	// configured.
	DefaultJournal = "Journal"
)

// archiveEpoch is the zip header time used when an archive has no
// entries to take a timestamp from.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Manifest is the import envelope written to the archive root.
type Manifest struct {
	Metadata Metadata        `json:"metadata"`
	Entries  []ManifestEntry `json:"entries"`
}

// Metadata identifies the manifest format version.
type Metadata struct {
	Version string `json:"version"`
}

// ManifestEntry is one journal entry as serialized into the manifest.
// Attachments lists media identifiers; each identifier names a file in
// the photos/ folder.
type ManifestEntry struct {
	UUID        string   `json:"uuid"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	CreatedAt   string   `json:"createdAt"`
	ModifiedAt  string   `json:"modifiedAt"`
	Tags        []string `json:"tags"`
	Attachments []string `json:"attachments"`
}

// mediaFile is one resolved attachment, ready to be stored under
// photos/<identifier>.<ext>.
type mediaFile struct {
	identifier string
	ext        string
	data       []byte
	modified   time.Time
}

// Archive is a fully materialized import archive. It is built in memory
// first so a dry run can report statistics without touching disk.
type Archive struct {
	journal  string
	manifest Manifest
	media    []mediaFile
	missing  int
	warnings []string
}

// Summary reports archive statistics for dry runs and post-write
// reporting.
type Summary struct {
	Entries     int      `json:"entries" yaml:"entries"`
	Attachments int      `json:"attachments" yaml:"attachments"`
	Missing     int      `json:"missing" yaml:"missing"`
	TotalBytes  int64    `json:"total_bytes" yaml:"total_bytes"`
	Warnings    []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Plan resolves entries and their downloaded bytes into an Archive.
// Attachments whose bytes are absent from attachmentBytes produce a
// warning and are omitted from their entry's identifier list; the entry
// itself is kept. Plan performs no I/O.
func Plan(entries []types.Entry, attachmentBytes map[string][]byte, journalName string) *Archive {
	if journalName == "" {
		journalName = DefaultJournal
	}

	a := &Archive{
		journal: journalName,
		manifest: Manifest{
			Metadata: Metadata{Version: manifestVersion},
			Entries:  make([]ManifestEntry, 0, len(entries)),
		},
	}

	stored := make(map[string]bool)

	for _, entry := range entries {
		me := ManifestEntry{
			UUID:        entry.UUID,
			Title:       entry.Title,
			Body:        entry.Body,
			CreatedAt:   entry.CreatedAt.UTC().Format(time.RFC3339),
			ModifiedAt:  entry.ModifiedAt.UTC().Format(time.RFC3339),
			Tags:        entry.Tags,
			Attachments: make([]string, 0, len(entry.Attachments)),
		}
		if me.Tags == nil {
			me.Tags = []string{}
		}

		for _, att := range entry.Attachments {
			data, ok := attachmentBytes[att.ID]
			if !ok {
				a.missing++
				a.warnings = append(a.warnings,
					fmt.Sprintf("attachment %q (%s) has no downloaded bytes; omitted from entry %q", att.Name, att.ID, entry.Title))
				continue
			}

			id := types.AttachmentID(att.ID)
			me.Attachments = append(me.Attachments, id)

			// The same source attachment referenced twice is stored once.
			if !stored[id] {
				stored[id] = true
				a.media = append(a.media, mediaFile{
					identifier: id,
					ext:        mediaExt(att),
					data:       data,
					modified:   entry.ModifiedAt.UTC(),
				})
			}
		}

		a.manifest.Entries = append(a.manifest.Entries, me)
	}

	return a
}

// Manifest returns the materialized manifest.
func (a *Archive) Manifest() Manifest {
	return a.manifest
}

// Warnings returns the warnings accumulated while planning.
func (a *Archive) Warnings() []string {
	return a.warnings
}

// Summary computes the dry-run report for the archive.
func (a *Archive) Summary() Summary {
	var total int64
	for _, m := range a.media {
		total += int64(len(m.data))
	}
	return Summary{
		Entries:     len(a.manifest.Entries),
		Attachments: len(a.media),
		Missing:     a.missing,
		TotalBytes:  total,
		Warnings:    a.warnings,
	}
}

// ZipName returns the archive filename for the journal (e.g. "Journal.zip").
func (a *Archive) ZipName() string {
	return a.journal + ".zip"
}

// WriteZip serializes the archive to path. The zip is written to a
// temporary file in the destination directory and renamed on success,
// so a failed run leaves no partial archive behind.
func (a *Archive) WriteZip(zipPath string) error {
	dir := filepath.Dir(zipPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".dayone-*.zip")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writeErr := a.writeTo(tmpFile)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing archive: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, zipPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (a *Archive) writeTo(f *os.File) error {
	zw := zip.NewWriter(f)

	manifestTime := archiveEpoch
	for _, e := range a.manifest.Entries {
		if t, err := time.Parse(time.RFC3339, e.ModifiedAt); err == nil && t.After(manifestTime) {
			manifestTime = t
		}
	}

	data, err := json.MarshalIndent(a.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     a.journal + ".json",
		Method:   zip.Deflate,
		Modified: manifestTime,
	})
	if err != nil {
		return fmt.Errorf("creating manifest entry: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	for _, m := range a.media {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     mediaDir + "/" + m.identifier + "." + m.ext,
			Method:   zip.Deflate,
			Modified: m.modified,
		})
		if err != nil {
			return fmt.Errorf("creating media entry %s: %w", m.identifier, err)
		}
		if _, err := w.Write(m.data); err != nil {
			return fmt.Errorf("writing media %s: %w", m.identifier, err)
		}
	}

	return zw.Close()
}

// mediaExt picks the stored file extension: the attachment name's
// extension, falling back to the URL path, defaulting to "bin".
// Extensions are lowercased and "jpg" is normalized to "jpeg" per the
// Day One convention.
func mediaExt(att types.Attachment) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(att.Name)), ".")
	if ext == "" {
		if u, err := url.Parse(att.URL); err == nil {
			ext = strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
		}
	}
	switch ext {
	case "":
		return "bin"
	case "jpg":
		return "jpeg"
	default:
		return ext
	}
}
