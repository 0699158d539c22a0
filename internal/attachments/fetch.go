// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package attachments

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/trello-dayone/pkg/types"
)

// Downloader fetches attachment bytes by URL. The trello.Client
// satisfies this.
type Downloader interface {
	DownloadAttachment(ctx context.Context, url string) ([]byte, error)
}

// FetchResult holds the outcome of an attachment download pass.
type FetchResult struct {
	// Bytes maps attachment ID to downloaded content. Attachments that
	// failed to download are absent.
	Bytes map[string][]byte

	Downloaded int
	Cached     int
	Failed     int

	// Warnings describes each failed download; failures never abort
	// the run.
	Warnings []string
}

// Total returns the number of attachments processed.
func (r FetchResult) Total() int {
	return r.Downloaded + r.Cached + r.Failed
}

// FetchAll downloads every attachment referenced by cards, printing
// per-item status to w. cache may be nil to download directly. Cache
// read or write errors degrade to a plain download with a warning.
func FetchAll(ctx context.Context, dl Downloader, cards []types.Card, cache *Cache, w io.Writer) FetchResult {
	result := FetchResult{Bytes: make(map[string][]byte)}

	for _, card := range cards {
		for _, att := range card.Attachments {
			if _, ok := result.Bytes[att.ID]; ok {
				continue
			}

			if cache != nil {
				data, hit, err := cache.Get(ctx, att.ID)
				if err != nil {
					result.Warnings = append(result.Warnings,
						fmt.Sprintf("cache read for %s: %v", att.Name, err))
				} else if hit {
					result.Bytes[att.ID] = data
					result.Cached++
					fmt.Fprintf(w, "cached:     %s\n", att.Name)
					continue
				}
			}

			data, err := dl.DownloadAttachment(ctx, att.URL)
			if err != nil {
				warning := fmt.Sprintf("download failed for %q (card %s): %v", att.Name, card.ID, err)
				result.Warnings = append(result.Warnings, warning)
				result.Failed++
				fmt.Fprintf(w, "failed:     %s (%v)\n", att.Name, err)
				continue
			}

			result.Bytes[att.ID] = data
			result.Downloaded++
			fmt.Fprintf(w, "downloaded: %s (%d bytes)\n", att.Name, len(data))

			if cache != nil {
				if err := cache.Put(ctx, att.ID, att.Name, data); err != nil {
					result.Warnings = append(result.Warnings,
						fmt.Sprintf("cache write for %s: %v", att.Name, err))
				}
			}
		}
	}

	if result.Total() > 0 {
		fmt.Fprintf(w, "\nattachments: %d downloaded, %d cached, %d failed\n",
			result.Downloaded, result.Cached, result.Failed)
	}
	return result
}
