// Package supabase uploads sensor records to a Supabase project via its
// PostgREST endpoint. Credentials come from the environment, matching the
// deployment convention for the field collectors.
package supabase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/flowmeter"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/httputil"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/tempframe"
)

const (
	// EnvURL and EnvKey name the environment variables carrying the
	// Supabase project URL and service key.
	EnvURL = "SUPABASE_URL"
	EnvKey = "SUPABASE_KEY"

	flowTable        = "flow_data"
	temperatureTable = "temperature_data"
)

// ErrMissingCredentials indicates the Supabase URL or key is unset.
var ErrMissingCredentials = errors.New("missing Supabase credentials")

// Client inserts records into Supabase tables. It implements both the
// flowmeter and tempframe sink interfaces.
type Client struct {
	baseURL string
	apiKey  string
	http    httputil.HTTPClient
}

// NewClient creates a Supabase client for the given project URL and key.
// A nil HTTP client selects the standard library default.
func NewClient(baseURL, apiKey string, hc httputil.HTTPClient) (*Client, error) {
	if baseURL == "" || apiKey == "" {
		return nil, ErrMissingCredentials
	}
	if hc == nil {
		hc = httputil.NewStandardClient(nil)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    hc,
	}, nil
}

// FromEnv creates a client from the SUPABASE_URL and SUPABASE_KEY
// environment variables.
func FromEnv(hc httputil.HTTPClient) (*Client, error) {
	return NewClient(os.Getenv(EnvURL), os.Getenv(EnvKey), hc)
}

// RecordFlow inserts a flowmeter record into the flow_data table.
func (c *Client) RecordFlow(r flowmeter.Record) error {
	return c.insert(flowTable, map[string]any{
		"timestamp": r.CapturedAt.Format(time.RFC3339Nano),
		"flow":      r.Flow,
		"velocity":  r.Velocity,
	})
}

// RecordTemperature inserts a probe record into the temperature_data table.
func (c *Client) RecordTemperature(r tempframe.Record) error {
	return c.insert(temperatureTable, map[string]any{
		"timestamp": r.CapturedAt.Format(time.RFC3339Nano),
		"t1":        r.T1,
		"t2":        r.T2,
	})
}

// insert POSTs a single row to the table's REST endpoint. Any non-2xx
// response is an error; the caller logs it and moves on.
func (c *Client) insert(table string, row map[string]any) error {
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode %s row: %w", table, err)
	}

	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s insert request: %w", table, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("insert into %s failed: %s: %s", table, resp.Status, strings.TrimSpace(string(detail)))
	}
	return nil
}
