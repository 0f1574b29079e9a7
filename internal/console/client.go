package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/apiconsole/internal/infrastructure/logging"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// Client issues console requests. It holds no connection state; every call
// takes the ConnectionConfig to use.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	http    *http.Client
	logger  *logging.Logger
	maxBody int64
}

// NewClient creates a Client. A zero timeout leaves requests bounded only by
// the caller's context.
func NewClient(timeout time.Duration, logger *logging.Logger) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: timeout}, logger)
}

// NewClientWithHTTP creates a Client over an existing *http.Client.
func NewClientWithHTTP(hc *http.Client, logger *logging.Logger) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{http: hc, logger: logger.With("component", "console"), maxBody: maxBodyBytes}
}

// send performs one request with the config's headers. Transport failures are
// returned as *NetworkError; any status is returned as a response.
func (c *Client) send(ctx context.Context, cfg ConnectionConfig, method, target string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: target, Err: err}
	}
	for k, v := range cfg.Headers() {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "url", target, "error", err)
		return nil, &NetworkError{Method: method, URL: target, Err: err}
	}
	c.logger.Debug("request completed",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// Check performs the GET used to test or open a connection. It reports whether
// the response declares a JSON content type.
func (c *Client) Check(ctx context.Context, cfg ConnectionConfig) (isJSON bool, err error) {
	resp, err := c.send(ctx, cfg, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return false, err
	}
	defer drain(resp)

	if !ok(resp.StatusCode) {
		return false, statusError(http.MethodGet, resp, "")
	}
	return isJSONContentType(resp.Header.Get(HeaderContentType)), nil
}

func ok(status int) bool {
	return status >= 200 && status < 300
}

func isJSONContentType(ct string) bool {
	return strings.Contains(ct, contentTypeJSON)
}

// statusText strips the numeric code from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	text = strings.TrimSpace(text)
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func statusError(method string, resp *http.Response, detail string) *HTTPStatusError {
	return &HTTPStatusError{
		Method:     method,
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Detail:     detail,
	}
}

// readBody reads the whole body. A body over the client's limit is not
// truncated; it fails with ErrResponseTooLarge.
func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, c.maxBody)
	}
	return body, nil
}

// drain discards the rest of the body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
}
