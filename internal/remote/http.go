package remote

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// requestTimeout bounds single-shot REST calls. The subscription stream
// is exempt: it lives until stopped.
const requestTimeout = 15 * time.Second

// Client talks to the hosted backend over its REST and streaming
// endpoints. Rows are addressed PostgREST-style with filter query
// parameters; upserts merge on the id key.
type Client struct {
	baseURL string
	key     string
	httpc   *http.Client
}

// NewClient creates a client for the given base URL and access key.
func NewClient(baseURL, key string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		httpc:   &http.Client{Timeout: requestTimeout},
	}
}

func (c *Client) itemsURL(query string) string {
	u := c.baseURL + "/rest/v1/items"
	if query != "" {
		u += "?" + query
	}

	return u
}

func (c *Client) listsURL(query string) string {
	u := c.baseURL + "/rest/v1/lists"
	if query != "" {
		u += "?" + query
	}

	return u
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("remote request: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))

		return fmt.Errorf("remote status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}

	decodeErr := json.NewDecoder(resp.Body).Decode(out)
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}

	return nil
}

// SelectItems fetches all item rows for a list.
func (c *Client) SelectItems(ctx context.Context, listID string) ([]ItemRow, error) {
	query := "list_id=eq." + url.QueryEscape(listID)

	req, err := c.newRequest(ctx, http.MethodGet, c.itemsURL(query), nil)
	if err != nil {
		return nil, err
	}

	var rows []ItemRow

	err = c.do(req, &rows)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}

	return rows, nil
}

// UpsertItems writes rows keyed by id, merging duplicates.
func (c *Client) UpsertItems(ctx context.Context, rows []ItemRow) error {
	if len(rows) == 0 {
		return nil
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.itemsURL(""), bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Prefer", "resolution=merge-duplicates")

	err = c.do(req, nil)
	if err != nil {
		return fmt.Errorf("upsert items: %w", err)
	}

	return nil
}

// DeleteItems removes rows by id using an in-filter.
func (c *Client) DeleteItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := "id=in.(" + url.QueryEscape(strings.Join(ids, ",")) + ")"

	req, err := c.newRequest(ctx, http.MethodDelete, c.itemsURL(query), nil)
	if err != nil {
		return err
	}

	err = c.do(req, nil)
	if err != nil {
		return fmt.Errorf("delete items: %w", err)
	}

	return nil
}

// SelectListByCode resolves a share code with a case-insensitive filter.
func (c *Client) SelectListByCode(ctx context.Context, code string) (ListRow, error) {
	query := "share_code=ilike." + url.QueryEscape(code)

	req, err := c.newRequest(ctx, http.MethodGet, c.listsURL(query), nil)
	if err != nil {
		return ListRow{}, err
	}

	var rows []ListRow

	err = c.do(req, &rows)
	if err != nil {
		return ListRow{}, fmt.Errorf("select list: %w", err)
	}

	if len(rows) == 0 {
		return ListRow{}, ErrNotFound
	}

	return rows[0], nil
}

// UpsertList registers or updates a list row.
func (c *Client) UpsertList(ctx context.Context, row ListRow) error {
	payload, err := json.Marshal([]ListRow{row})
	if err != nil {
		return fmt.Errorf("encode list: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.listsURL(""), bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Prefer", "resolution=merge-duplicates")

	err = c.do(req, nil)
	if err != nil {
		return fmt.Errorf("upsert list: %w", err)
	}

	return nil
}

// DeleteList removes a list row by id.
func (c *Client) DeleteList(ctx context.Context, id string) error {
	query := "id=eq." + url.QueryEscape(id)

	req, err := c.newRequest(ctx, http.MethodDelete, c.listsURL(query), nil)
	if err != nil {
		return err
	}

	err = c.do(req, nil)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	return nil
}

// SubscribeItems opens the change-notification stream: a long-lived GET
// delivering one JSON event per line. Events forward in arrival order.
func (c *Client) SubscribeItems(ctx context.Context) (<-chan Event, func(), error) {
	streamCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, c.baseURL+"/realtime/v1/items", nil)
	if err != nil {
		cancel()

		return nil, nil, fmt.Errorf("build stream request: %w", err)
	}

	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/x-ndjson")

	// No client timeout on the stream; lifetime is the context's.
	streamClient := &http.Client{}

	resp, err := streamClient.Do(req)
	if err != nil {
		cancel()

		return nil, nil, fmt.Errorf("open stream: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		cancel()

		return nil, nil, fmt.Errorf("stream status %d", resp.StatusCode)
	}

	events := make(chan Event)

	go func() {
		defer close(events)
		defer func() { _ = resp.Body.Close() }()

		scanner := bufio.NewScanner(resp.Body)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var event Event

			if json.Unmarshal(line, &event) != nil {
				continue // skip malformed lines, keep the stream alive
			}

			select {
			case events <- event:
			case <-streamCtx.Done():
				return
			}
		}
	}()

	var once sync.Once

	stop := func() {
		once.Do(cancel)
	}

	return events, stop, nil
}
