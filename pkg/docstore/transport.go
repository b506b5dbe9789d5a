package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"panchayat-docstore/pkg/value"

	"go.uber.org/zap"
)

type writeBody struct {
	Path string `json:"path"`
	Data any    `json:"data,omitempty"`
}

// GetDocs lists the documents matching ref. An empty result is a snapshot with no docs.
func (c *Client) GetDocs(ctx context.Context, ref CollectionRef) (*QuerySnapshot, error) {
	q := url.Values{}
	q.Set("path", ref.Path())
	if len(ref.filters) > 0 {
		b, err := json.Marshal(ref.filters)
		if err != nil {
			return nil, fmt.Errorf("docstore: encode filters: %w", err)
		}
		q.Set("filters", string(b))
	}
	if len(ref.sorts) > 0 {
		b, err := json.Marshal(ref.sorts)
		if err != nil {
			return nil, fmt.Errorf("docstore: encode sorts: %w", err)
		}
		q.Set("sorts", string(b))
	}
	if n, ok := ref.Limit(); ok {
		q.Set("limit", strconv.Itoa(n))
	}

	var raws []*value.Object
	if _, err := c.do(ctx, http.MethodGet, "/", q, nil, &raws); err != nil {
		return nil, err
	}
	return newQuerySnapshot(raws, ref.Path()), nil
}

// GetDoc reads one document. A missing document is not an error: the snapshot
// reports Exists() == false.
func (c *Client) GetDoc(ctx context.Context, ref DocumentRef) (*DocumentSnapshot, error) {
	q := url.Values{}
	q.Set("path", ref.Path())

	var raw *value.Object
	status, err := c.do(ctx, http.MethodGet, "/doc", q, nil, &raw)
	if status == http.StatusNotFound {
		return missingSnapshot(ref), nil
	}
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return missingSnapshot(ref), nil
	}
	return newDocumentSnapshot(raw, "", ref), nil
}

// SetDoc replaces the document at ref with data, creating it if needed.
func (c *Client) SetDoc(ctx context.Context, ref DocumentRef, data any) error {
	_, err := c.do(ctx, http.MethodPut, "/", nil, writeBody{Path: ref.Path(), Data: data}, nil)
	return err
}

// UpdateDoc sets the given fields on an existing document.
func (c *Client) UpdateDoc(ctx context.Context, ref DocumentRef, data any) error {
	_, err := c.do(ctx, http.MethodPatch, "/", nil, writeBody{Path: ref.Path(), Data: data}, nil)
	return err
}

// AddDoc creates a document with a server-generated id and returns its reference.
func (c *Client) AddDoc(ctx context.Context, ref CollectionRef, data any) (DocumentRef, error) {
	var raw *value.Object
	if _, err := c.do(ctx, http.MethodPost, "/", nil, writeBody{Path: ref.Path(), Data: data}, &raw); err != nil {
		return DocumentRef{}, err
	}
	id := documentID(raw)
	if id == "" {
		return DocumentRef{}, fmt.Errorf("docstore: create in %q returned no id", ref.Path())
	}
	return ref.Doc(id), nil
}

// DeleteDoc removes the document at ref. Deleting a missing document succeeds.
func (c *Client) DeleteDoc(ctx context.Context, ref DocumentRef) error {
	_, err := c.do(ctx, http.MethodDelete, "/", nil, writeBody{Path: ref.Path()}, nil)
	return err
}

// do sends one request and decodes a 2xx JSON body into out. It returns the
// HTTP status when a response arrived.
func (c *Client) do(ctx context.Context, method, route string, query url.Values, body any, out any) (int, error) {
	target := c.baseURL + route
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("docstore: encode body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, fmt.Errorf("docstore: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("docstore: %s %s: %w", method, route, err)
	}
	defer resp.Body.Close()

	c.log.Debug("docstore request",
		zap.String("method", method),
		zap.String("route", route),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("docstore: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Method: method, URL: route}
		// best effort: the body may not be JSON
		_ = json.Unmarshal(payload, apiErr)
		return resp.StatusCode, apiErr
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return resp.StatusCode, fmt.Errorf("docstore: decode %s %s response: %w", method, route, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Token()
	if err != nil {
		c.log.Warn("read token failed; sending request unauthenticated", zap.Error(err))
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
