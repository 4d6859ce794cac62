package openhab

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Content types used on the openHAB REST API.
const (
	ContentTypePlainUTF8 = "text/plain;charset=UTF-8"
)

const defaultTimeout = 30 * time.Second

// HTTPError is returned by Get/Post when the server answers with a non-2xx
// status. Network-level failures are returned as plain wrapped errors instead.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d", e.Status)
}

// Connection performs REST calls against one openHAB server.
type Connection struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

// NewConnection builds a connection for the given base URL. Credentials are
// optional; when set they are sent as HTTP basic auth.
func NewConnection(baseURL, username, password string, timeout time.Duration) *Connection {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Connection{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		client:   &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the server root this connection talks to.
func (c *Connection) BaseURL() string { return c.baseURL }

// Response is the body of a successful (2xx) REST call.
type Response struct {
	status      int
	contentType string
	body        []byte
}

func (r *Response) StatusCode() int     { return r.status }
func (r *Response) ContentType() string { return r.contentType }
func (r *Response) Bytes() []byte       { return r.body }
func (r *Response) Text() string        { return string(r.body) }

// Get performs GET {base}/{path}.
func (c *Connection) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, "", "")
}

// Post performs POST {base}/{path} with the given body and content type.
func (c *Connection) Post(ctx context.Context, path, body, contentType string) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body, contentType)
}

func (c *Connection) do(ctx context.Context, method, path, body, contentType string) (*Response, error) {
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode}
	}
	return &Response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}, nil
}
