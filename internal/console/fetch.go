package console

import (
	"bytes"
	"context"
	"errors"
	"net/http"
)

// FetchResult is a normalised response. Raw is the parsed body as received.
type FetchResult struct {
	Rows []*Object
	Raw  any
}

// Columns returns the display columns, taken from the first row.
func (r *FetchResult) Columns() []string {
	if r == nil {
		return nil
	}
	return Columns(r.Rows)
}

// FetchAndNormalize GETs cfg.URL and normalises the JSON body into rows.
//
// A body mislabelled with a non-JSON content type is still parsed unless it
// looks like an HTML page.
//
// Parameters:
//   - ctx: Context for cancellation
//   - cfg: Endpoint URL and optional API key
//
// Returns:
//   - *FetchResult: Normalised rows and the decoded body
//   - error: *NetworkError, *HTTPStatusError for any non-2xx status,
//     ErrResponseTooLarge, or *NotJSONError
func (c *Client) FetchAndNormalize(ctx context.Context, cfg ConnectionConfig) (*FetchResult, error) {
	resp, err := c.send(ctx, cfg, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if !ok(resp.StatusCode) {
		return nil, statusError(http.MethodGet, resp, "")
	}

	body, err := c.readBody(resp)
	if errors.Is(err, ErrResponseTooLarge) {
		return nil, err
	}
	if err != nil {
		return nil, &NetworkError{Method: http.MethodGet, URL: cfg.URL, Err: err}
	}

	if !isJSONContentType(resp.Header.Get(HeaderContentType)) && looksLikeHTML(body) {
		return nil, &NotJSONError{Reason: ReasonHTMLPage}
	}

	data, err := ParseJSON(body)
	if err != nil {
		return nil, &NotJSONError{Reason: ReasonUnparseable, Preview: excerpt(string(body))}
	}

	return &FetchResult{Rows: Normalize(data), Raw: data}, nil
}

func looksLikeHTML(body []byte) bool {
	return bytes.Contains(body, []byte("<!DOCTYPE")) || bytes.Contains(body, []byte("<html"))
}
