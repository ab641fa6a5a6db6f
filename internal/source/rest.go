package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	restPrefix         = "/rest/v1/"
	defaultRESTTimeout = 10 * time.Second
	maxBodySize        = 8 << 20 // 8 MB
)

// RESTClient queries a PostgREST (Supabase) endpoint.
type RESTClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

// NewRESTClient creates a client for baseURL. A zero timeout uses the
// default of 10s.
func NewRESTClient(baseURL, apiKey string, timeout time.Duration) *RESTClient {
	if timeout <= 0 {
		timeout = defaultRESTTimeout
	}
	return &RESTClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		timeout: timeout,
		http:    &http.Client{},
	}
}

// Close is a no-op; it satisfies Backend.
func (c *RESTClient) Close() error { return nil }

// Query runs q as a GET request.
func (c *RESTClient) Query(ctx context.Context, q Query) ([]Row, error) {
	if err := q.Validate(); err != nil {
		return nil, Fail(q.Table, err)
	}
	if q.MatchesNothing() {
		return nil, nil
	}

	body, err := c.do(ctx, http.MethodGet, string(q.Table), EncodeQuery(q), nil)
	if err != nil {
		return nil, Fail(q.Table, err)
	}
	rows, err := SplitArray(body)
	if err != nil {
		return nil, Fail(q.Table, err)
	}
	return rows, nil
}

// Insert creates a row and returns its stored representation.
func (c *RESTClient) Insert(ctx context.Context, t Table, values map[string]any) (Row, error) {
	if Columns(t) == nil {
		return nil, Fail(t, fmt.Errorf("%w: %q", ErrUnknownTable, t))
	}
	body, err := c.do(ctx, http.MethodPost, string(t), nil, values)
	if err != nil {
		return nil, Fail(t, err)
	}
	return firstRow(t, body)
}

// Update patches the row with primary key id.
func (c *RESTClient) Update(ctx context.Context, t Table, id int64, values map[string]any) (Row, error) {
	if Columns(t) == nil {
		return nil, Fail(t, fmt.Errorf("%w: %q", ErrUnknownTable, t))
	}
	body, err := c.do(ctx, http.MethodPatch, string(t), idFilter(t, id), values)
	if err != nil {
		return nil, Fail(t, err)
	}
	return firstRow(t, body)
}

// Delete removes the row with primary key id.
func (c *RESTClient) Delete(ctx context.Context, t Table, id int64) error {
	if Columns(t) == nil {
		return Fail(t, fmt.Errorf("%w: %q", ErrUnknownTable, t))
	}
	body, err := c.do(ctx, http.MethodDelete, string(t), idFilter(t, id), nil)
	if err != nil {
		return Fail(t, err)
	}
	rows, err := SplitArray(body)
	if err != nil {
		return Fail(t, err)
	}
	if len(rows) == 0 {
		return Fail(t, ErrNotFound)
	}
	return nil
}

// EncodeQuery renders q as PostgREST query parameters.
func EncodeQuery(q Query) url.Values {
	v := url.Values{}
	if len(q.Columns) > 0 {
		v.Set("select", strings.Join(q.Columns, ","))
	} else {
		v.Set("select", "*")
	}
	for _, f := range q.Filters {
		switch f.Op {
		case OpIn:
			parts := make([]string, len(f.Values))
			for i, x := range f.Values {
				parts[i] = FormatValue(x)
			}
			v.Add(f.Column, "in.("+strings.Join(parts, ",")+")")
		default:
			v.Add(f.Column, string(f.Op)+"."+FormatValue(f.Values[0]))
		}
	}
	if len(q.Orders) > 0 {
		parts := make([]string, len(q.Orders))
		for i, o := range q.Orders {
			dir := "desc"
			if o.Ascending {
				dir = "asc"
			}
			parts[i] = o.Column + "." + dir
		}
		v.Set("order", strings.Join(parts, ","))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func idFilter(t Table, id int64) url.Values {
	return url.Values{PrimaryKey(t): {"eq." + strconv.FormatInt(id, 10)}}
}

func firstRow(t Table, body []byte) (Row, error) {
	rows, err := SplitArray(body)
	if err != nil {
		return nil, Fail(t, err)
	}
	if len(rows) == 0 {
		return nil, Fail(t, ErrNotFound)
	}
	return rows[0], nil
}

// do performs an authenticated request and returns the response body.
func (c *RESTClient) do(ctx context.Context, method, table string, params url.Values, payload map[string]any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + restPrefix + table
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding payload: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrMalformedBody, maxBodySize)
	}
	return body, nil
}
