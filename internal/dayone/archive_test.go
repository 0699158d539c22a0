// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dayone

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trello-dayone/pkg/types"
)

func testEntry(t *testing.T, cardID, title string, atts ...types.Attachment) types.Entry {
	t.Helper()
	at, err := time.Parse(time.RFC3339, "2024-05-01T10:00:00Z")
	require.NoError(t, err)
	return types.Entry{
		UUID:        types.EntryUUID(cardID),
		Title:       title,
		Body:        "body of " + title,
		CreatedAt:   at,
		ModifiedAt:  at,
		Tags:        []string{"fun", "Travel"},
		Attachments: atts,
	}
}

func TestPlan_Counts(t *testing.T) {
	att1 := types.Attachment{ID: "a1", Name: "photo.jpg", URL: "https://files.example/photo.jpg"}
	att2 := types.Attachment{ID: "a2", Name: "scan.png", URL: "https://files.example/scan.png"}

	entries := []types.Entry{
		testEntry(t, "c1", "First", att1),
		testEntry(t, "c2", "Second", att2),
		testEntry(t, "c3", "Third"),
	}
	data := map[string][]byte{
		"a1": []byte("jpeg-bytes"),
		"a2": []byte("png-bytes!"),
	}

	a := Plan(entries, data, "Journal")
	summary := a.Summary()

	assert.Equal(t, 3, summary.Entries)
	assert.Equal(t, 2, summary.Attachments)
	assert.Equal(t, 0, summary.Missing)
	assert.Equal(t, int64(20), summary.TotalBytes)
	assert.Empty(t, summary.Warnings)

	m := a.Manifest()
	require.Len(t, m.Entries, 3)
	assert.Len(t, m.Entries[0].Attachments, 1)
	assert.Len(t, m.Entries[2].Attachments, 0)
}

func TestPlan_MissingAttachmentBytes(t *testing.T) {
	att1 := types.Attachment{ID: "a1", Name: "photo.jpg", URL: "https://files.example/photo.jpg"}
	att2 := types.Attachment{ID: "a2", Name: "lost.png", URL: "https://files.example/lost.png"}

	entries := []types.Entry{testEntry(t, "c1", "Trip", att1, att2)}
	a := Plan(entries, map[string][]byte{"a1": []byte("jpeg-bytes")}, "Journal")
	summary := a.Summary()

	// Counts reconcile: refs written == files stored; the lost one shows
	// up only as a warning.
	require.Len(t, a.Manifest().Entries, 1)
	assert.Len(t, a.Manifest().Entries[0].Attachments, 1)
	assert.Equal(t, 1, summary.Attachments)
	assert.Equal(t, 1, summary.Missing)
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, summary.Warnings[0], "lost.png")
	assert.Contains(t, summary.Warnings[0], "Trip")
}

func TestPlan_SharedAttachmentStoredOnce(t *testing.T) {
	att := types.Attachment{ID: "a1", Name: "shared.gif", URL: "https://files.example/shared.gif"}
	entries := []types.Entry{
		testEntry(t, "c1", "First", att),
		testEntry(t, "c2", "Second", att),
	}

	a := Plan(entries, map[string][]byte{"a1": []byte("gif")}, "Journal")

	assert.Equal(t, 1, a.Summary().Attachments)
	m := a.Manifest()
	require.Len(t, m.Entries[0].Attachments, 1)
	require.Len(t, m.Entries[1].Attachments, 1)
	assert.Equal(t, m.Entries[0].Attachments[0], m.Entries[1].Attachments[0])
}

func TestPlan_IdentifiersAreDeterministicAndUnique(t *testing.T) {
	atts := []types.Attachment{
		{ID: "a1", Name: "same-name.jpg", URL: "https://files.example/1/same-name.jpg"},
		{ID: "a2", Name: "same-name.jpg", URL: "https://files.example/2/same-name.jpg"},
	}
	entries := []types.Entry{testEntry(t, "c1", "Trip", atts...)}
	data := map[string][]byte{"a1": []byte("one"), "a2": []byte("two")}

	first := Plan(entries, data, "Journal").Manifest()
	second := Plan(entries, data, "Journal").Manifest()

	require.Len(t, first.Entries[0].Attachments, 2)
	assert.Equal(t, first.Entries[0].Attachments, second.Entries[0].Attachments,
		"identifiers must be stable across runs")
	assert.NotEqual(t, first.Entries[0].Attachments[0], first.Entries[0].Attachments[1],
		"attachments sharing a filename must not collide")
}

func readZip(t *testing.T, path string) map[string][]byte {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	files := make(map[string][]byte)
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		files[f.Name] = data
	}
	return files
}

func TestWriteZip_RoundTrip(t *testing.T) {
	att := types.Attachment{ID: "a1", Name: "photo.JPG", URL: "https://files.example/photo.JPG"}
	entries := []types.Entry{
		testEntry(t, "c1", "Trip", att),
		testEntry(t, "c2", "Plain"),
	}
	a := Plan(entries, map[string][]byte{"a1": []byte("jpeg-bytes")}, "Journal")

	zipPath := filepath.Join(t.TempDir(), "out", a.ZipName())
	require.NoError(t, a.WriteZip(zipPath))

	files := readZip(t, zipPath)
	require.Contains(t, files, "Journal.json")

	var m Manifest
	require.NoError(t, json.Unmarshal(files["Journal.json"], &m))
	assert.Equal(t, "1.0", m.Metadata.Version)
	require.Len(t, m.Entries, 2)
	assert.Equal(t, "Trip", m.Entries[0].Title)
	assert.Equal(t, "2024-05-01T10:00:00Z", m.Entries[0].CreatedAt)
	assert.Equal(t, []string{"fun", "Travel"}, m.Entries[0].Tags)

	// Every referenced identifier has a matching media file, extension
	// lowered and jpg normalized to jpeg.
	require.Len(t, m.Entries[0].Attachments, 1)
	id := m.Entries[0].Attachments[0]
	assert.Contains(t, files, "photos/"+id+".jpeg")
	assert.Equal(t, []byte("jpeg-bytes"), files["photos/"+id+".jpeg"])
	assert.Len(t, files, 2)
}

func TestWriteZip_Deterministic(t *testing.T) {
	att := types.Attachment{ID: "a1", Name: "photo.jpg", URL: "https://files.example/photo.jpg"}
	entries := []types.Entry{testEntry(t, "c1", "Trip", att)}
	data := map[string][]byte{"a1": []byte("jpeg-bytes")}

	dir := t.TempDir()
	first := filepath.Join(dir, "first.zip")
	second := filepath.Join(dir, "second.zip")

	require.NoError(t, Plan(entries, data, "Journal").WriteZip(first))
	require.NoError(t, Plan(entries, data, "Journal").WriteZip(second))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b), "two builds of identical input must be byte-identical")
}

func TestWriteZip_LeavesNoTempFiles(t *testing.T) {
	a := Plan([]types.Entry{testEntry(t, "c1", "Trip")}, nil, "Journal")
	dir := t.TempDir()
	require.NoError(t, a.WriteZip(filepath.Join(dir, "Journal.zip")))

	dirEntries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, dirEntries, 1)
	assert.Equal(t, "Journal.zip", dirEntries[0].Name())
}

func TestDryRun_WritesNothing(t *testing.T) {
	dir := t.TempDir()
	a := Plan([]types.Entry{testEntry(t, "c1", "Trip")}, nil, "Journal")

	summary := a.Summary()
	assert.Equal(t, 1, summary.Entries)

	// Planning and summarizing must not touch the output location.
	dirEntries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, dirEntries)
}

func TestPlan_EmptyJournalNameDefaults(t *testing.T) {
	a := Plan(nil, nil, "")
	assert.Equal(t, "Journal.zip", a.ZipName())
}

func TestMediaExt(t *testing.T) {
	tests := []struct {
		name string
		att  types.Attachment
		want string
	}{
		{"lowercase kept", types.Attachment{Name: "scan.png"}, "png"},
		{"uppercase lowered", types.Attachment{Name: "PHOTO.PNG"}, "png"},
		{"jpg normalized", types.Attachment{Name: "photo.jpg"}, "jpeg"},
		{"jpeg kept", types.Attachment{Name: "photo.jpeg"}, "jpeg"},
		{"falls back to URL", types.Attachment{Name: "no extension", URL: "https://x.example/f/img.gif"}, "gif"},
		{"unknown defaults to bin", types.Attachment{Name: "README", URL: "https://x.example/raw"}, "bin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mediaExt(tt.att))
		})
	}
}

func TestManifestJSON_FieldNames(t *testing.T) {
	a := Plan([]types.Entry{testEntry(t, "c1", "Trip")}, nil, "Journal")
	data, err := json.Marshal(a.Manifest())
	require.NoError(t, err)

	for _, key := range []string{`"metadata"`, `"entries"`, `"title"`, `"body"`, `"createdAt"`, `"modifiedAt"`, `"tags"`, `"attachments"`, `"uuid"`} {
		assert.True(t, strings.Contains(string(data), key), "manifest JSON missing %s", key)
	}
}
