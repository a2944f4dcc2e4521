package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloudguide/config"
	"cloudguide/model"
)

// SourceHeader names the response header carrying the fallback source label
const SourceHeader = "X-Source"

// maxReplyBytes bounds how much of a reply body is read
const maxReplyBytes = 4 << 20

type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a client for the API rooted at baseURL. A timeout of zero
// leaves deadlines to the caller's context.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = config.DefaultAPIBase
	}

	if err := config.ValidateAPIBase(baseURL); err != nil {
		return nil, err
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	parsedURL.RawQuery = ""
	parsedURL.Fragment = ""

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(parsedURL.String(), "/"),
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ask sends one query to /api/ask and returns the raw body together with the
// X-Source header. Non-2xx statuses come back as *StatusError.
func (c *Client) Ask(ctx context.Context, query string) (model.BackendReply, error) {
	params := url.Values{}
	params.Set("text", query)

	body, header, err := c.get(ctx, "/api/ask", params)
	if err != nil {
		return model.BackendReply{}, err
	}

	return model.BackendReply{
		Body:         string(body),
		SourceHeader: header.Get(SourceHeader),
	}, nil
}

// Ping checks /healthz.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.get(ctx, "/healthz", nil)
	return err
}

// Ingest asks the backend to queue a document for indexing. A leading ~/ in
// path is expanded locally before sending. The backend's acknowledgement text
// is returned.
func (c *Client) Ingest(ctx context.Context, docID, path string) (string, error) {
	docID = strings.TrimSpace(docID)
	path = strings.TrimSpace(path)
	if docID == "" {
		return "", fmt.Errorf("document id cannot be empty")
	}
	if path == "" {
		return "", fmt.Errorf("document path cannot be empty")
	}

	params := url.Values{}
	params.Set("docId", docID)
	params.Set("path", config.ExpandPath(path))

	body, _, err := c.get(ctx, "/api/ingest", params)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, http.Header, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		config.DebugLog.Debugf("[Backend] GET %s failed after %v: %v", path, time.Since(start), err)
		return nil, nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	config.DebugLog.Debugf("[Backend] GET %s -> %d (%d bytes, %v)", path, resp.StatusCode, len(body), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, newStatusError(resp.StatusCode, resp.Status, endpoint, body)
	}

	return body, resp.Header, nil
}
