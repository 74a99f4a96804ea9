package smartsheet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a read-only client for the spreadsheet service. The import tool
// only fetches sheet metadata with a row sample to debug column mapping; the
// actual row transfer happens backend-side.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	if token == "" {
		return nil, fmt.Errorf("API token is required")
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type Column struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

type Cell struct {
	Value        interface{} `json:"value"`
	DisplayValue string      `json:"displayValue"`
}

func (c Cell) String() string {
	if c.DisplayValue != "" {
		return c.DisplayValue
	}
	if c.Value != nil {
		return fmt.Sprintf("%v", c.Value)
	}
	return "<empty>"
}

type Row struct {
	Cells []Cell `json:"cells"`
}

type Sheet struct {
	Name          string   `json:"name"`
	TotalRowCount int64    `json:"totalRowCount"`
	Columns       []Column `json:"columns"`
	Rows          []Row    `json:"rows"`
}

// SampleRow returns the first row, or nil when the sheet is empty.
func (s *Sheet) SampleRow() *Row {
	if len(s.Rows) == 0 {
		return nil
	}
	return &s.Rows[0]
}

// GetSheet fetches one sheet's metadata and row sample.
func (c *Client) GetSheet(ctx context.Context, sheetID string) (*Sheet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sheets/"+sheetID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheet request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sheet %s: status %d: %s", sheetID, resp.StatusCode, body)
	}

	var sheet Sheet
	if err := json.NewDecoder(resp.Body).Decode(&sheet); err != nil {
		return nil, fmt.Errorf("failed to decode sheet %s: %w", sheetID, err)
	}

	return &sheet, nil
}
