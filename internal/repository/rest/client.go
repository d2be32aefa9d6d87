// Package rest reads and writes the hosted backend's tables through its
// PostgREST endpoint.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/utafrali/ScentGo/pkg/database"
	"github.com/utafrali/ScentGo/pkg/httpclient"
)

const upstream = "hosted-backend"

// Config holds the hosted backend coordinates.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client issues table requests against /rest/v1.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	apiKey  string
}

// NewClient creates a REST client sending requests through hc.
func NewClient(cfg Config, hc *httpclient.CircuitBreakerClient) *Client {
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("apikey", c.apiKey)
	h.Set("Authorization", "Bearer "+c.apiKey)
	h.Set("Accept", "application/json")
	return h
}

func (c *Client) tableURL(table string, q url.Values) string {
	u := c.baseURL + "/rest/v1/" + table
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// get selects rows from table into dst. single asks for exactly one row;
// zero rows then come back as a not-found error.
func (c *Client) get(ctx context.Context, table string, q url.Values, single bool, dst any) (err error) {
	target := c.tableURL(table, q)
	ctx, end := database.TraceQuery(ctx, "postgrest", "GET "+table, target)
	defer func() { end(err) }()

	h := c.header()
	if single {
		h.Set("Accept", "application/vnd.pgrst.object+json")
	}
	resp, err := c.http.Get(ctx, target, h)
	if err != nil {
		return fmt.Errorf("get %s: %w", table, err)
	}
	return decode(resp, table, dst)
}

// Ping checks the backend answers a minimal catalog read.
func (c *Client) Ping(ctx context.Context) error {
	var rows []struct {
		ID string `json:"id"`
	}
	return c.get(ctx, "perfumes", url.Values{"select": {"id"}, "limit": {"1"}}, false, &rows)
}

// insert posts one row to table.
func (c *Client) insert(ctx context.Context, table string, row any) (err error) {
	target := c.tableURL(table, nil)
	ctx, end := database.TraceQuery(ctx, "postgrest", "POST "+table, target)
	defer func() { end(err) }()

	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode %s row: %w", table, err)
	}

	h := c.header()
	h.Set("Content-Type", "application/json")
	h.Set("Prefer", "return=minimal")
	resp, err := c.http.Post(ctx, target, h, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return decode(resp, table, nil)
}

func decode(resp *http.Response, table string, dst any) error {
	if !httpclient.IsSuccess(resp.StatusCode) {
		return fmt.Errorf("%s: %w", table, httpclient.ParseResponseError(resp, upstream))
	}
	defer func() { _ = resp.Body.Close() }()

	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", table, err)
	}
	return nil
}

var filterEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// inFilter renders a PostgREST in.(...) filter with quoted values. Backslash
// and double quote are escaped inside the quotes.
func inFilter(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + filterEscaper.Replace(v) + `"`
	}
	return "in.(" + strings.Join(quoted, ",") + ")"
}
