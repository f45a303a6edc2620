// Package sheets is the HTTP adapter to the Google Apps Script web app that
// fronts the backing spreadsheet. The endpoint is the system's only
// datastore; it offers no transactions, no locks and no named columns, so
// every caller speaks in raw row arrays and 1-indexed row positions (the
// header counts as row 1).
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StoreError is a rejection reported by the backend itself (success:false).
// Its message is surfaced to the user verbatim.
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string { return e.Message }

// Client talks to one Apps Script deployment. Requests carry no retry,
// backoff or client-side timeout; callers cancel via context.
type Client struct {
	scriptURL string
	http      *http.Client
}

// NewClient returns a Client for the given script URL. A nil httpClient
// falls back to a plain client with no timeout.
func NewClient(scriptURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{scriptURL: scriptURL, http: httpClient}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    [][]interface{} `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// Fetch returns every row of the named sheet, header row included as
// rows[0]. Cells are normalized to strings. A cache-busting timestamp is
// appended because the script endpoint sits behind an aggressive CDN.
func (c *Client) Fetch(ctx context.Context, sheet string) ([][]string, error) {
	q := url.Values{}
	q.Set("sheet", sheet)
	q.Set("action", "fetch")
	q.Set("t", strconv.FormatInt(time.Now().UnixMilli(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.scriptURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(env.Data))
	for i, raw := range env.Data {
		row := make([]string, len(raw))
		for j, cell := range raw {
			row[j] = cellString(cell)
		}
		rows[i] = row
	}
	return rows, nil
}

// Insert appends a single row to the sheet.
func (c *Client) Insert(ctx context.Context, sheet string, row []string) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return c.post(ctx, url.Values{
		"sheetName": {sheet},
		"action":    {"insert"},
		"rowData":   {string(data)},
	})
}

// BatchInsert appends all rows in one request. The backend reports success
// or failure for the batch as a whole; on failure nothing can be assumed
// committed and the caller must re-fetch to learn the true state.
func (c *Client) BatchInsert(ctx context.Context, sheet string, rows [][]string) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.post(ctx, url.Values{
		"sheetName": {sheet},
		"action":    {"batchInsert"},
		"rowsData":  {string(data)},
	})
}

// UpdateRow overwrites the full row at the given 1-indexed position. The
// position is only valid against the snapshot it was derived from; a stale
// index corrupts an unrelated row.
func (c *Client) UpdateRow(ctx context.Context, sheet string, rowIndex int, row []string) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return c.post(ctx, url.Values{
		"sheetName": {sheet},
		"action":    {"update"},
		"rowIndex":  {strconv.Itoa(rowIndex)},
		"rowData":   {string(data)},
	})
}

// UpdateCell writes a single cell (1-indexed row and column) without
// touching the rest of the row. The backend exposes this as its
// "markDeleted" action; payment settlement uses it for the marker column.
func (c *Client) UpdateCell(ctx context.Context, sheet string, rowIndex, columnIndex int, value string) error {
	return c.post(ctx, url.Values{
		"sheetName":   {sheet},
		"action":      {"markDeleted"},
		"rowIndex":    {strconv.Itoa(rowIndex)},
		"columnIndex": {strconv.Itoa(columnIndex)},
		"value":       {value},
	})
}

// DeleteRow removes the row at the given 1-indexed position. Every row
// below it shifts up, so callers must re-fetch before issuing any further
// positional write.
func (c *Client) DeleteRow(ctx context.Context, sheet string, rowIndex int) error {
	return c.post(ctx, url.Values{
		"sheetName": {sheet},
		"action":    {"delete"},
		"rowIndex":  {strconv.Itoa(rowIndex)},
	})
}

func (c *Client) post(ctx context.Context, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scriptURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) (*envelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheets: unexpected status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("sheets: decode response: %w", err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = "sheet backend rejected the request"
		}
		return nil, &StoreError{Message: msg}
	}
	return &env, nil
}

// cellString flattens the mixed types Apps Script emits (strings, JSON
// numbers, booleans, nulls) into the string form the rest of the service
// works with.
func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
