// Package httpstore is a docstore.Store client for hearth-syncd.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/rs/zerolog"
)

var _ docstore.Store = (*Client)(nil)

// Client talks to a syncserver over HTTP.
type Client struct {
	base string
	hc   *http.Client
	log  zerolog.Logger
}

// New returns a client for the server at baseURL. A nil hc uses a client
// without timeout, which watch streams require.
func New(baseURL string, hc *http.Client, log zerolog.Logger) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   hc,
		log:  log.With().Str("component", "httpstore").Logger(),
	}
}

type addResponse struct {
	ID string `json:"id"`
}

type listResponse struct {
	Data []docstore.Doc `json:"data"`
}

type batchRequest struct {
	Ops []docstore.Op `json:"ops"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) Add(ctx context.Context, path string, fields docstore.Fields) (string, error) {
	if err := fields.Validate(); err != nil {
		return "", err
	}
	var out addResponse
	if err := c.do(ctx, http.MethodPost, "/v1/docs/"+escapePath(path), nil, fields, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) Set(ctx context.Context, path, id string, fields docstore.Fields) error {
	if err := fields.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, docURL(path, id), nil, fields, nil)
}

func (c *Client) Merge(ctx context.Context, path, id string, fields docstore.Fields) error {
	if err := fields.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, docURL(path, id), nil, fields, nil)
}

func (c *Client) Delete(ctx context.Context, path, id string) error {
	return c.do(ctx, http.MethodDelete, docURL(path, id), nil, nil, nil)
}

func (c *Client) Get(ctx context.Context, path, id string) (docstore.Doc, error) {
	var doc docstore.Doc
	err := c.do(ctx, http.MethodGet, docURL(path, id), nil, nil, &doc)
	return doc, err
}

func (c *Client) Query(ctx context.Context, path string, filters ...docstore.Filter) ([]docstore.Doc, error) {
	q := url.Values{}
	for _, f := range filters {
		q.Set(f.Field, fmt.Sprint(f.Value))
	}
	var out listResponse
	if err := c.do(ctx, http.MethodGet, "/v1/query/"+escapePath(path), q, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) Batch(ctx context.Context, ops []docstore.Op) error {
	if len(ops) > docstore.MaxBatchWrites {
		return fmt.Errorf("%w: %d operations", docstore.ErrBatchTooLarge, len(ops))
	}
	for _, op := range ops {
		if op.Kind == docstore.OpDelete {
			continue
		}
		if err := op.Fields.Validate(); err != nil {
			return err
		}
	}
	return c.do(ctx, http.MethodPost, "/v1/batch", nil, batchRequest{Ops: ops}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rd = bytes.NewReader(raw)
	}
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("request")

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var body errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	msg := body.Error
	if msg == "" {
		msg = resp.Status
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, docstore.ErrNotFound)
	case http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%s: %w", msg, docstore.ErrBatchTooLarge)
	case http.StatusBadRequest:
		return fmt.Errorf("%s: %w", msg, ErrBadRequest)
	default:
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)
	}
}

// ErrBadRequest is returned when the server rejects a request as malformed.
var ErrBadRequest = errors.New("bad request")

func docURL(path, id string) string {
	return "/v1/docs/" + escapePath(path) + "/" + url.PathEscape(id)
}

func escapePath(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
