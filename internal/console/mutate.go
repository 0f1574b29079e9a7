package console

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Field types.
const (
	FieldTypeText   = "text"
	FieldTypeNumber = "number"
)

// Field is one key/value pair entered for a create or update.
type Field struct {
	Key   string
	Value string
	Type  string
}

// ParseField parses "key=value" with an optional ":text" or ":number" suffix.
func ParseField(s string) (Field, error) {
	key, value, found := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return Field{}, &ValidationError{Field: s, Message: fmt.Sprintf("invalid field %q, want key=value[:type]", s)}
	}

	f := Field{Key: key, Value: value, Type: FieldTypeText}
	for _, typ := range []string{FieldTypeNumber, FieldTypeText} {
		if v, ok := strings.CutSuffix(value, ":"+typ); ok {
			f.Value, f.Type = v, typ
			break
		}
	}
	return f, nil
}

func (f Field) coerce() (any, error) {
	if f.Type != FieldTypeNumber {
		return f.Value, nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, &ValidationError{Field: f.Key, Message: fmt.Sprintf("Field %s must be a number", f.Key)}
	}
	return n, nil
}

// BuildPayload builds a create body from fields with a non-empty key and
// value. Number fields are coerced. It fails when no field qualifies.
func BuildPayload(fields []Field) (*Object, error) {
	payload := NewObject()
	for _, f := range fields {
		if f.Key == "" || f.Value == "" {
			continue
		}
		v, err := f.coerce()
		if err != nil {
			return nil, err
		}
		payload.Set(f.Key, v)
	}
	if payload.Len() == 0 {
		return nil, &ValidationError{Message: MsgFieldsRequired}
	}
	return payload, nil
}

// MergeRow overlays edits on a copy of row. An empty value clears the field
// to "".
func MergeRow(row *Object, edits []Field) (*Object, error) {
	merged := NewObject()
	if row != nil {
		merged = row.Clone()
	}
	for _, f := range edits {
		if f.Key == "" {
			continue
		}
		if f.Value == "" {
			merged.Set(f.Key, "")
			continue
		}
		v, err := f.coerce()
		if err != nil {
			return nil, err
		}
		merged.Set(f.Key, v)
	}
	return merged, nil
}

// RowURL is the resource URL of a row: <base>/<id>, or <base>/<index> when
// the row has no truthy id.
func RowURL(base string, index int, row *Object) string {
	key := strconv.Itoa(index)
	if row != nil {
		if id, found := row.Get("id"); found && truthy(id) {
			key = url.PathEscape(FormatCell(id))
		}
	}
	return base + "/" + key
}

// Create POSTs the payload built from fields to cfg.URL.
func (c *Client) Create(ctx context.Context, cfg ConnectionConfig, fields []Field) error {
	payload, err := BuildPayload(fields)
	if err != nil {
		return err
	}
	return c.mutate(ctx, cfg, http.MethodPost, cfg.URL, payload)
}

// Update PUTs row merged with edits to the row's URL.
func (c *Client) Update(ctx context.Context, cfg ConnectionConfig, index int, row *Object, edits []Field) error {
	merged, err := MergeRow(row, edits)
	if err != nil {
		return err
	}
	return c.mutate(ctx, cfg, http.MethodPut, RowURL(cfg.URL, index, row), merged)
}

// Delete sends DELETE to the row's URL.
func (c *Client) Delete(ctx context.Context, cfg ConnectionConfig, index int, row *Object) error {
	return c.mutate(ctx, cfg, http.MethodDelete, RowURL(cfg.URL, index, row), nil)
}

func (c *Client) mutate(ctx context.Context, cfg ConnectionConfig, method, target string, body any) error {
	resp, err := c.send(ctx, cfg, method, target, body)
	if err != nil {
		return err
	}
	defer drain(resp)

	if !ok(resp.StatusCode) {
		return statusError(method, resp, c.errorDetail(resp))
	}
	return nil
}

// errorDetail extracts a short description from an error response: the
// compact JSON body, or the first characters of a text body.
func (c *Client) errorDetail(resp *http.Response) string {
	body, err := c.readBody(resp)
	if err != nil || len(body) == 0 {
		return ""
	}
	if isJSONContentType(resp.Header.Get(HeaderContentType)) {
		v, err := ParseJSON(body)
		if err != nil {
			return ""
		}
		compact, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(compact)
	}
	return excerpt(string(body))
}
