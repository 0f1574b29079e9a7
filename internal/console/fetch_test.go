package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func serve(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchAndNormalize_ArrayOfObjects(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/json", `[{"id":1,"name":"a"}]`)

	result, err := NewClient(0, nil).FetchAndNormalize(context.Background(), ConnectionConfig{URL: srv.URL + "/items"})
	if err != nil {
		t.Fatalf("FetchAndNormalize() error = %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(result.Rows))
	}
	if got := result.Columns(); !reflect.DeepEqual(got, []string{"id", "name"}) {
		t.Errorf("Columns() = %v, want [id name]", got)
	}
	if id, _ := result.Rows[0].Get("id"); id != json.Number("1") {
		t.Errorf("id = %v", id)
	}
	if name, _ := result.Rows[0].Get("name"); name != "a" {
		t.Errorf("name = %v", name)
	}
	if _, ok := result.Raw.([]any); !ok {
		t.Errorf("Raw = %T, want []any", result.Raw)
	}
}

func TestFetchAndNormalize_Shapes(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantRows    int
	}{
		{name: "array", contentType: "application/json", body: `[1,2,3,4]`, wantRows: 4},
		{name: "object", contentType: "application/json; charset=utf-8", body: `{"a":1}`, wantRows: 1},
		{name: "primitive", contentType: "application/json", body: `true`, wantRows: 1},
		{name: "mislabelled json", contentType: "text/plain", body: `[{"a":1},{"a":2}]`, wantRows: 2},
		{name: "no content type", body: `{"a":1}`, wantRows: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, tt.contentType, tt.body)
			result, err := NewClient(0, nil).FetchAndNormalize(context.Background(), ConnectionConfig{URL: srv.URL})
			if err != nil {
				t.Fatalf("FetchAndNormalize() error = %v", err)
			}
			if len(result.Rows) != tt.wantRows {
				t.Errorf("rows = %d, want %d", len(result.Rows), tt.wantRows)
			}
		})
	}
}

func TestFetchAndNormalize_Errors(t *testing.T) {
	longText := strings.Repeat("x", 150)

	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		check       func(t *testing.T, err error)
	}{
		{name: "not found", status: http.StatusNotFound, contentType: "application/json", body: `[{"id":1}]`,
			check: wantStatus(404, "Not Found")},
		{name: "server error with html", status: http.StatusInternalServerError, contentType: "text/html", body: `<html>oops</html>`,
			check: wantStatus(500, "Internal Server Error")},
		{name: "doctype page", status: http.StatusOK, contentType: "text/html", body: `<!DOCTYPE html><p>login</p>`,
			check: wantNotJSON(ReasonHTMLPage, "")},
		{name: "html tag without content type", status: http.StatusOK, body: `  <html lang="en"></html>`,
			check: wantNotJSON(ReasonHTMLPage, "")},
		{name: "plain text", status: http.StatusOK, contentType: "text/plain", body: longText,
			check: wantNotJSON(ReasonUnparseable, strings.Repeat("x", 100))},
		{name: "broken json", status: http.StatusOK, contentType: "application/json", body: `{"a":`,
			check: wantNotJSON(ReasonUnparseable, `{"a":`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.contentType, tt.body)
			result, err := NewClient(0, nil).FetchAndNormalize(context.Background(), ConnectionConfig{URL: srv.URL})
			if err == nil {
				t.Fatalf("FetchAndNormalize() = %+v, want error", result)
			}
			tt.check(t, err)
		})
	}
}

func wantStatus(status int, text string) func(t *testing.T, err error) {
	return func(t *testing.T, err error) {
		t.Helper()
		var st *HTTPStatusError
		if !errors.As(err, &st) {
			t.Fatalf("error = %v, want *HTTPStatusError", err)
		}
		if st.Status != status || st.StatusText != text {
			t.Errorf("status = %d %q, want %d %q", st.Status, st.StatusText, status, text)
		}
		if want := fmt.Sprintf("HTTP %d: %s", status, text); err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	}
}

func wantNotJSON(reason, preview string) func(t *testing.T, err error) {
	return func(t *testing.T, err error) {
		t.Helper()
		var nj *NotJSONError
		if !errors.As(err, &nj) {
			t.Fatalf("error = %v, want *NotJSONError", err)
		}
		if nj.Reason != reason {
			t.Errorf("Reason = %q, want %q", nj.Reason, reason)
		}
		if nj.Preview != preview {
			t.Errorf("Preview = %q, want %q", nj.Preview, preview)
		}
	}
}

func TestFetchAndNormalize_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(0, nil).FetchAndNormalize(context.Background(), ConnectionConfig{URL: url})
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("error = %v, want *NetworkError", err)
	}
	if ne.Method != http.MethodGet {
		t.Errorf("Method = %q", ne.Method)
	}
}

func TestNotJSONError_Message(t *testing.T) {
	html := (&NotJSONError{Reason: ReasonHTMLPage}).Error()
	if !strings.HasPrefix(html, "API returned HTML instead of JSON") {
		t.Errorf("html message = %q", html)
	}
	text := (&NotJSONError{Reason: ReasonUnparseable, Preview: "abc"}).Error()
	if text != "API returned non-JSON content: abc..." {
		t.Errorf("unparseable message = %q", text)
	}
}

func TestFetchAndNormalize_ResponseTooLarge(t *testing.T) {
	body := `[` + strings.Repeat(`{"id":1,"name":"xxxxxxxx"},`, 20) + `{"id":2}]`

	tests := []struct {
		name    string
		limit   int64
		wantErr bool
	}{
		{name: "over limit", limit: int64(len(body)) - 1, wantErr: true},
		{name: "exactly at limit", limit: int64(len(body))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, "application/json", body)
			client := NewClient(0, nil)
			client.maxBody = tt.limit

			result, err := client.FetchAndNormalize(context.Background(), ConnectionConfig{URL: srv.URL})
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("FetchAndNormalize() error = %v", err)
				}
				if len(result.Rows) != 21 {
					t.Errorf("rows = %d, want 21", len(result.Rows))
				}
				return
			}

			if !errors.Is(err, ErrResponseTooLarge) {
				t.Fatalf("error = %v, want ErrResponseTooLarge", err)
			}
			var nj *NotJSONError
			if errors.As(err, &nj) {
				t.Errorf("oversized valid JSON reported as not JSON: %v", err)
			}
		})
	}
}

func TestNewClient_DefaultBodyLimit(t *testing.T) {
	if got := NewClient(0, nil).maxBody; got != maxBodyBytes {
		t.Errorf("maxBody = %d, want %d", got, maxBodyBytes)
	}
}
