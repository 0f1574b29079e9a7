package console

import (
	"net/url"
	"strings"
)

// Header names sent with every request.
const (
	HeaderContentType   = "Content-Type"
	HeaderAPIKey        = "X-API-Key"
	HeaderAuthorization = "Authorization"

	contentTypeJSON = "application/json"
)

// ConnectionConfig identifies the endpoint and credentials for a session.
type ConnectionConfig struct {
	URL    string `json:"url" yaml:"url"`
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Token  string `json:"token,omitempty" yaml:"token,omitempty"`
}

// Headers returns the request headers for this config.
//
// Content-Type is always application/json. X-API-Key and
// Authorization: Bearer are added only when the key or token is non-empty.
func (c ConnectionConfig) Headers() map[string]string {
	headers := map[string]string{
		HeaderContentType: contentTypeJSON,
	}
	if c.APIKey != "" {
		headers[HeaderAPIKey] = c.APIKey
	}
	if c.Token != "" {
		headers[HeaderAuthorization] = "Bearer " + c.Token
	}
	return headers
}

// Validate checks that URL is present and absolute.
func (c ConnectionConfig) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return &ValidationError{Field: "url", Message: MsgURLRequired}
	}
	if !validURL(c.URL) {
		return &ValidationError{Field: "url", Message: MsgURLInvalid}
	}
	return nil
}

func validURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
