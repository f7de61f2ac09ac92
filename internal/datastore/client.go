package datastore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"
)

// datasetteMaxRows is the default row limit of the Datasette insert API.
const datasetteMaxRows = 100

// DatasetteClient implements the Store interface for publishing the catalog
// to a remote Datasette instance.
type DatasetteClient struct {
	baseURL  string
	apiToken string
	client   *http.Client

	// Replace upserts rows by primary key instead of failing on conflicts.
	Replace bool
}

// NewDatasetteClient creates a new DatasetteClient instance
func NewDatasetteClient(baseURL, apiToken string) *DatasetteClient {
	return &DatasetteClient{
		baseURL:  baseURL,
		apiToken: apiToken,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Connect verifies that the base URL is usable
func (c *DatasetteClient) Connect() error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base URL %q: scheme must be http or https", c.baseURL)
	}
	return nil
}

// CreateTable is a no-op for remote Datasette as tables are created via the insert API
func (c *DatasetteClient) CreateTable(schema string) error {
	return nil
}

// BatchInsert sends records to the Datasette insert API in chunks the server accepts
func (c *DatasetteClient) BatchInsert(database string, table string, records []map[string]any) error {
	for start := 0; start < len(records); start += datasetteMaxRows {
		end := min(start+datasetteMaxRows, len(records))
		if err := c.insertChunk(database, table, records[start:end]); err != nil {
			return fmt.Errorf("rows %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

func (c *DatasetteClient) insertChunk(database, table string, records []map[string]any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = path.Join(u.Path, database, table, "-", "insert")

	payload := map[string]any{
		"rows": records,
	}
	if c.Replace {
		payload["replace"] = true
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, u.String(), bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("request failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("API error: %v", errResp)
	}

	return nil
}

// Close is a no-op for the HTTP client
func (c *DatasetteClient) Close() error {
	return nil
}

// BookRows flattens stored books into insert-ready rows keyed by column name.
func BookRows(books []StoredBook) []map[string]any {
	rows := make([]map[string]any, 0, len(books))
	for _, b := range books {
		row := map[string]any{
			"id":       b.ID,
			"location": b.Record.Location,
			"in_lib":   b.InLib,
		}
		for _, f := range textFields {
			row[bookColumns[f]] = b.Record.Get(f)
		}
		rows = append(rows, row)
	}
	return rows
}
