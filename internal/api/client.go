package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Validator is implemented by outbound payloads that carry their own schema
// rules. A payload that fails validation never reaches the network.
type Validator interface {
	Validate() error
}

// Client executes one network call per operation against the farm backend.
// It knows nothing about caching; retries, if any, belong to the underlying
// http.Client transport.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *log.Logger
}

type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *log.Logger
}

func NewClient(opts ClientOptions) *Client {
	httpc := opts.HTTPClient
	if httpc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpc:   httpc,
		log:     logger,
	}
}

// errBody is the backend's error envelope.
type errBody struct {
	Error string `json:"error"`
}

// request performs one HTTP exchange and returns the raw body for 2xx
// responses, or a typed *Error otherwise.
func (c *Client) request(ctx context.Context, method, path string, body any, query url.Values) ([]byte, error) {
	if v, ok := body.(Validator); ok && v != nil {
		if err := v.Validate(); err != nil {
			return nil, &Error{Kind: KindValidation, Message: err.Error(), cause: err}
		}
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindValidation, Message: "encode request: " + err.Error(), cause: err}
		}
		reader = bytes.NewReader(buf)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: err.Error(), cause: err}
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: err.Error(), cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "read response: " + err.Error(), cause: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	msg := fmt.Sprintf("%s %s failed", method, path)
	var eb errBody
	if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
		msg = eb.Error
	}
	c.log.Printf("api: %s %s -> %d: %s", method, path, resp.StatusCode, msg)
	return nil, &Error{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Message: msg}
}
