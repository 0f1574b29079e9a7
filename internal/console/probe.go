package console

import (
	"context"
	"net/http"
)

// Methods is the fixed probe order.
var Methods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
}

// MethodProbeResult records whether the endpoint accepted one verb.
type MethodProbeResult struct {
	Method    string `json:"method" yaml:"method"`
	Supported bool   `json:"supported" yaml:"supported"`
}

// Unprobed returns one unsupported result per verb, the state before any probe.
func Unprobed() []MethodProbeResult {
	results := make([]MethodProbeResult, len(Methods))
	for i, m := range Methods {
		results[i] = MethodProbeResult{Method: m}
	}
	return results
}

// Probe sends one bodiless request per verb in Methods order and marks a verb
// supported when the status is 2xx. Transport errors count as unsupported.
//
// POST, PUT, DELETE and PATCH are sent to the live endpoint and may change
// server state.
func (c *Client) Probe(ctx context.Context, cfg ConnectionConfig) []MethodProbeResult {
	results := make([]MethodProbeResult, 0, len(Methods))
	for _, method := range Methods {
		supported := false
		resp, err := c.send(ctx, cfg, method, cfg.URL, nil)
		if err == nil {
			supported = ok(resp.StatusCode)
			drain(resp)
		}
		results = append(results, MethodProbeResult{Method: method, Supported: supported})
	}

	c.logger.Debug("probe completed", "url", cfg.URL, "results", results)
	return results
}
