// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trello fetches board, list, and card records from the Trello
// REST API. It produces typed records only; filtering and field mapping
// belong to the transform package.
package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/trello-dayone/internal/httputil"
	"github.com/pdiddy/trello-dayone/pkg/types"
)

const defaultBaseURL = "https://api.trello.com/1"

// cardFields and attachmentFields limit the card payload to what the
// transformer consumes.
const (
	cardFields       = "name,desc,due,dateLastActivity,labels,closed"
	attachmentFields = "id,name,url,bytes"
)

// Board holds board-level metadata.
type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
	URL  string `json:"url"`
}

// List is a named grouping of cards on a board.
type List struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
}

// Client is an authenticated Trello API client. Credentials are sent as
// query parameters, which is what Trello expects for both API calls and
// attachment downloads on private boards.
type Client struct {
	http      *http.Client
	baseURL   string
	key       string
	token     string
	userAgent string
}

// NewClient builds a Client from a resolved configuration value.
func NewClient(cfg types.TrelloConfig) (*Client, error) {
	if cfg.APIKey == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("trello api key and token are required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   defaultBaseURL,
		key:       cfg.APIKey,
		token:     cfg.APIToken,
		userAgent: cfg.UserAgent,
	}, nil
}

// get performs an authenticated GET against path and decodes the JSON
// response into v. Rate-limit responses are retried with backoff.
func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", c.key)
	query.Set("token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return fmt.Errorf("trello API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("trello API returned HTTP %d for %s: %s", resp.StatusCode, path, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing trello response for %s: %w", path, err)
	}
	return nil
}

// GetBoard fetches board metadata.
func (c *Client) GetBoard(ctx context.Context, boardID string) (*Board, error) {
	var b Board
	q := url.Values{"fields": {"name,desc,url"}}
	if err := c.get(ctx, "/boards/"+boardID, q, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetLists fetches all lists on a board. When includeArchived is false
// only open lists are returned.
func (c *Client) GetLists(ctx context.Context, boardID string, includeArchived bool) ([]List, error) {
	var lists []List
	q := url.Values{"filter": {listFilter(includeArchived)}}
	if err := c.get(ctx, "/boards/"+boardID+"/lists", q, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// cardRecord is the wire shape of a Trello card with attachments.
type cardRecord struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Desc             string     `json:"desc"`
	Due              *time.Time `json:"due"`
	DateLastActivity *time.Time `json:"dateLastActivity"`
	Closed           bool       `json:"closed"`
	Labels           []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"labels"`
	Attachments []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		URL   string `json:"url"`
		Bytes int64  `json:"bytes"`
	} `json:"attachments"`
}

// GetCards fetches all cards in a list, including their labels and
// attachment references.
func (c *Client) GetCards(ctx context.Context, listID string, includeArchived bool) ([]types.Card, error) {
	var records []cardRecord
	q := url.Values{
		"filter":            {listFilter(includeArchived)},
		"fields":            {cardFields},
		"attachments":       {"true"},
		"attachment_fields": {attachmentFields},
	}
	if err := c.get(ctx, "/lists/"+listID+"/cards", q, &records); err != nil {
		return nil, err
	}

	cards := make([]types.Card, 0, len(records))
	for _, r := range records {
		card := types.Card{
			ID:               r.ID,
			Name:             r.Name,
			Desc:             r.Desc,
			Due:              r.Due,
			DateLastActivity: r.DateLastActivity,
			Closed:           r.Closed,
		}
		for _, l := range r.Labels {
			if l.Name != "" {
				card.Labels = append(card.Labels, l.Name)
			}
		}
		for _, a := range r.Attachments {
			card.Attachments = append(card.Attachments, types.Attachment{
				ID:    a.ID,
				Name:  a.Name,
				URL:   a.URL,
				Bytes: a.Bytes,
			})
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// GetAllCards fetches every card across every list on a board, stamping
// each card with the list it came from. Card order within a list is the
// API's order; lists are walked in board order.
func (c *Client) GetAllCards(ctx context.Context, boardID string, includeArchived bool) ([]List, []types.Card, error) {
	lists, err := c.GetLists(ctx, boardID, includeArchived)
	if err != nil {
		return nil, nil, err
	}

	var all []types.Card
	for _, list := range lists {
		cards, err := c.GetCards(ctx, list.ID, includeArchived)
		if err != nil {
			return nil, nil, fmt.Errorf("fetching cards for list %q: %w", list.Name, err)
		}
		for _, card := range cards {
			card.ListID = list.ID
			card.ListName = list.Name
			all = append(all, card)
		}
	}
	return lists, all, nil
}

// DownloadAttachment fetches an attachment's bytes. Attachment URLs on
// private boards require the same query-parameter credentials as API
// calls.
func (c *Client) DownloadAttachment(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing attachment URL: %w", err)
	}
	q := u.Query()
	q.Set("key", c.key)
	q.Set("token", c.token)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, fmt.Errorf("attachment download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading attachment body: %w", err)
	}
	return data, nil
}

func listFilter(includeArchived bool) string {
	if includeArchived {
		return "all"
	}
	return "open"
}
