package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Page is the backend's paginated-collection envelope. Page numbering is
// 1-based.
type Page[T any] struct {
	Items         []T `json:"items"`
	Page          int `json:"page"`
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
}

// result is the backend's single-resource envelope.
type result[T any] struct {
	Result T `json:"result"`
}

// List fetches a collection. Some backend endpoints still return a bare JSON
// array instead of the paginated envelope; those are adapted into a single
// full page rather than rejected. TODO: drop the bare-array branch once every
// endpoint is migrated to the envelope.
func List[T any](ctx context.Context, c *Client, path string, query url.Values) (Page[T], error) {
	raw, err := c.request(ctx, http.MethodGet, path, nil, query)
	if err != nil {
		return Page[T]{}, err
	}
	return decodePage[T](raw)
}

// Get fetches a single resource.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	raw, err := c.request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeResult[T](raw)
}

// Post creates a resource and returns the server's authoritative copy.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	raw, err := c.request(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeResult[T](raw)
}

// Put replaces mutable fields of a resource.
func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	raw, err := c.request(ctx, http.MethodPut, path, body, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeResult[T](raw)
}

// Delete removes a resource. The backend returns no body on success.
func Delete(ctx context.Context, c *Client, path string) error {
	_, err := c.request(ctx, http.MethodDelete, path, nil, nil)
	return err
}

func decodePage[T any](raw []byte) (Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page[T]{}, &Error{Kind: KindServer, Message: "malformed collection response: " + err.Error(), cause: err}
		}
		return Page[T]{
			Items:         items,
			Page:          1,
			Size:          len(items),
			TotalElements: len(items),
			TotalPages:    1,
		}, nil
	}
	var page Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return Page[T]{}, &Error{Kind: KindServer, Message: "malformed collection response: " + err.Error(), cause: err}
	}
	return page, nil
}

func decodeResult[T any](raw []byte) (T, error) {
	var env result[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		var zero T
		return zero, &Error{Kind: KindServer, Message: "malformed resource response: " + err.Error(), cause: err}
	}
	return env.Result, nil
}
