package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/apiconsole/internal/api"
	"github.com/nerrad567/apiconsole/internal/auth"
	"github.com/nerrad567/apiconsole/internal/console"
	"github.com/nerrad567/apiconsole/internal/dth22"
	"github.com/nerrad567/apiconsole/internal/infrastructure/config"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    outputFormat
		wantErr bool
	}{
		{"", outputTable, false},
		{"table", outputTable, false},
		{"JSON", outputJSON, false},
		{"yaml", outputYAML, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		got, err := parseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func testRows(t *testing.T) []*console.Object {
	t.Helper()
	v, err := console.ParseJSON([]byte(`[{"id":7,"name":"lamp","tags":["a","b"]},{"id":8,"name":""}]`))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	return console.Normalize(v)
}

func TestPrintRows(t *testing.T) {
	rows := testRows(t)

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := printRows(&buf, outputTable, rows); err != nil {
			t.Fatalf("printRows() error = %v", err)
		}
		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		if len(lines) != 3 {
			t.Fatalf("lines = %q", lines)
		}
		if got := strings.Join(strings.Fields(lines[0]), " "); got != "# Id Name Tags" {
			t.Errorf("header = %q", got)
		}
		if !strings.Contains(lines[1], `["a","b"]`) {
			t.Errorf("nested cell not rendered as JSON: %q", lines[1])
		}
		if got := strings.Join(strings.Fields(lines[2]), " "); got != "1 8" {
			t.Errorf("second row = %q", got)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := printRows(&buf, outputJSON, rows); err != nil {
			t.Fatalf("printRows() error = %v", err)
		}
		var decoded []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
		}
		if len(decoded) != 2 || decoded[0]["name"] != "lamp" {
			t.Errorf("decoded = %v", decoded)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := printRows(&buf, outputYAML, rows); err != nil {
			t.Fatalf("printRows() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"- id: 7\n  name: lamp\n", "- a\n", "- id: 8\n  name: \"\"\n"} {
			if !strings.Contains(out, want) {
				t.Errorf("yaml output missing %q:\n%s", want, out)
			}
		}
		if strings.Index(out, "name") < strings.Index(out, "id") {
			t.Errorf("yaml output lost key order:\n%s", out)
		}
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := printRows(&buf, outputTable, nil); err != nil {
			t.Fatalf("printRows() error = %v", err)
		}
		if buf.String() != noDataMessage+"\n" {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestPrintMethods_Table(t *testing.T) {
	var buf bytes.Buffer
	err := printMethods(&buf, outputTable, []console.MethodProbeResult{
		{Method: "GET", Supported: true},
		{Method: "POST"},
	})
	if err != nil {
		t.Fatalf("printMethods() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "GET") || !strings.Contains(out, "yes") || !strings.Contains(out, "no") {
		t.Errorf("output = %q", out)
	}
}

func TestParseFields(t *testing.T) {
	fields, err := parseFields([]string{"name=lamp", "watts=60:number"})
	if err != nil {
		t.Fatalf("parseFields() error = %v", err)
	}
	if len(fields) != 2 || fields[1].Key != "watts" || fields[1].Value != "60" || fields[1].Type != console.FieldTypeNumber {
		t.Errorf("fields = %+v", fields)
	}

	if _, err := parseFields([]string{"novalue"}); err == nil {
		t.Error("parseFields(novalue) should fail")
	}
}

func TestTokenCmd(t *testing.T) {
	out, _, err := run(t, "", "token", "--scope", "write", "--subject", "ops", "--ttl", "5m")
	if err != nil {
		t.Fatalf("token error = %v", err)
	}

	claims, err := auth.ParseToken(strings.TrimSpace(out), testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "ops" || claims.Scope != auth.ScopeWrite {
		t.Errorf("claims = %+v", claims)
	}
	if ttl := time.Until(claims.ExpiresAt.Time); ttl > 5*time.Minute || ttl < 4*time.Minute {
		t.Errorf("expires in %v, want about 5m", ttl)
	}
}

func TestTokenCmd_RejectsUnknownScope(t *testing.T) {
	_, _, err := run(t, "", "token", "--scope", "admin")
	if err == nil || !strings.Contains(err.Error(), "unknown scope") {
		t.Errorf("error = %v", err)
	}
}

func TestDefaultWatchURL(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"wildcard host", func(c *config.Config) { c.API.Host = "0.0.0.0"; c.API.Port = 8080 }, "ws://localhost:8080/api/v1/ws"},
		{"tls", func(c *config.Config) {
			c.API.Host = "sensors.local"
			c.API.Port = 8443
			c.API.TLS.Enabled = true
		}, "wss://sensors.local:8443/api/v1/ws"},
		{"custom path", func(c *config.Config) {
			c.API.Host = "127.0.0.1"
			c.API.Port = 9000
			c.WebSocket.Path = "/events"
		}, "ws://127.0.0.1:9000/events"},
		{"ipv6", func(c *config.Config) { c.API.Host = "::1"; c.API.Port = 8080 }, "ws://[::1]:8080/api/v1/ws"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Default()
			if err != nil {
				t.Fatalf("Default() error = %v", err)
			}
			tt.mutate(cfg)
			if got := defaultWatchURL(cfg); got != tt.want {
				t.Errorf("defaultWatchURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func testEvent() dth22.Event {
	ts := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	return dth22.Event{
		Type:   dth22.EventCreated,
		Source: dth22.SourceMQTT,
		Reading: dth22.Reading{
			ID: 3, UnitName: "kamar-1", Suhu: 27.5, Kelembapan: 61,
			CreatedAt: ts, UpdatedAt: ts,
		},
	}
}

func eventMessage(t *testing.T, ev dth22.Event) watchMessage {
	t.Helper()
	payload, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return watchMessage{Type: api.WSTypeEvent, EventType: string(ev.Type), Payload: payload}
}

func TestPrintWatchMessage(t *testing.T) {
	msg := eventMessage(t, testEvent())

	var out, errOut bytes.Buffer
	if err := printWatchMessage(msg, outputTable, &out, &errOut); err != nil {
		t.Fatalf("printWatchMessage() error = %v", err)
	}
	want := "2026-10-19T08:00:00Z  dth22.created  id=3  unit=kamar-1  suhu=27.5  kelembapan=61  source=mqtt\n"
	if out.String() != want {
		t.Errorf("table line = %q, want %q", out.String(), want)
	}

	out.Reset()
	if err := printWatchMessage(msg, outputJSON, &out, &errOut); err != nil {
		t.Fatalf("printWatchMessage(json) error = %v", err)
	}
	var ev dth22.Event
	if err := json.Unmarshal(out.Bytes(), &ev); err != nil || ev.Reading.ID != 3 {
		t.Errorf("json line = %q (err %v)", out.String(), err)
	}

	errMsg := watchMessage{Type: api.WSTypeError, Payload: json.RawMessage(`{"message":"unknown channel"}`)}
	if err := printWatchMessage(errMsg, outputTable, &out, &errOut); err == nil || err.Error() != "unknown channel" {
		t.Errorf("error message err = %v", err)
	}

	out.Reset()
	pong := watchMessage{Type: api.WSTypePong}
	if err := printWatchMessage(pong, outputTable, &out, &errOut); err != nil || out.Len() != 0 {
		t.Errorf("pong should be ignored, got %q (err %v)", out.String(), err)
	}
}

func TestWatch_StreamsUntilServerCloses(t *testing.T) {
	ev := testEvent()
	subscribed := make(chan []string, 1)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(console.HeaderAPIKey) != "k1" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var sub struct {
			Type    string                 `json:"type"`
			Payload api.WSSubscribePayload `json:"payload"`
		}
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		subscribed <- sub.Payload.Channels

		//nolint:errcheck // test server writes are best effort
		conn.WriteJSON(api.WSMessage{Type: api.WSTypeResponse, Payload: map[string]any{"subscribed": sub.Payload.Channels}})
		//nolint:errcheck // test server writes are best effort
		conn.WriteJSON(api.WSMessage{Type: api.WSTypeEvent, EventType: string(ev.Type), Payload: ev})
		//nolint:errcheck // test server writes are best effort
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		// Wait for the client's close reply.
		conn.ReadMessage() //nolint:errcheck // error ends the handler either way
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	headers := console.ConnectionConfig{URL: url, APIKey: "k1"}.Headers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out, errOut bytes.Buffer
	err := watch(ctx, url, headers, []string{string(dth22.EventCreated)}, outputTable, &out, &errOut)
	if err != nil {
		t.Fatalf("watch() error = %v", err)
	}

	if got := <-subscribed; len(got) != 1 || got[0] != "dth22.created" {
		t.Errorf("subscribed channels = %v", got)
	}
	if !strings.Contains(out.String(), "id=3  unit=kamar-1") {
		t.Errorf("stdout = %q", out.String())
	}
	if !strings.Contains(errOut.String(), "info: ") {
		t.Errorf("stderr = %q, want subscription response", errOut.String())
	}
}

func TestWatch_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	var out, errOut bytes.Buffer
	err := watch(context.Background(), url, nil, nil, outputTable, &out, &errOut)
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("watch() error = %v, want 401", err)
	}
}

func TestShell(t *testing.T) {
	items, url := newItemsAPI(t)

	script := strings.Join([]string{
		"help",
		"url " + url,
		"key secret-key-1234",
		"config",
		"connect",
		`create name="space heater" watts=900:number`,
		`create note="unterminated`,
		"delete 9",
		"bogus",
		"quit",
		"fetch",
	}, "\n")

	out, errOut, err := run(t, script, "shell")
	if err != nil {
		t.Fatalf("shell error = %v", err)
	}

	for _, want := range []string{"Commands:", "url: " + url, "api key: ****1234", "connected: false", "space heater"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	for _, want := range []string{"Successfully connected", "Data posted successfully!", "Row 9 does not exist", `unknown command "bogus"`, "unterminated quote"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q:\n%s", want, errOut)
		}
	}

	posted := false
	for _, r := range items.log() {
		if r == `POST /items {"name":"space heater","watts":900}` {
			posted = true
		}
	}
	if !posted {
		t.Errorf("quoted value not sent as one field: %q", items.log())
	}

	gets := 0
	for _, r := range items.log() {
		if strings.HasPrefix(r, "GET ") {
			gets++
		}
	}
	// connect checks then fetches, create refetches; nothing runs after quit.
	if gets != 3 {
		t.Errorf("GET count = %d, want 3 (%q)", gets, items.log())
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":             "(none)",
		"abc":          "****",
		"abcdefgh":     "****efgh",
		"rahasia-ключ": "****ключ",
		"€€€€€":        "****€€€€",
	}
	for in, want := range tests {
		if got := mask(in); got != want {
			t.Errorf("mask(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{line: "", want: nil},
		{line: "  fetch  ", want: []string{"fetch"}},
		{line: "create name=lamp watts=60:number", want: []string{"create", "name=lamp", "watts=60:number"}},
		{line: `create name="desk lamp"`, want: []string{"create", "name=desk lamp"}},
		{line: `create note='it "works"'`, want: []string{"create", `note=it "works"`}},
		{line: `create note="say \"hi\""`, want: []string{"create", `note=say "hi"`}},
		{line: `update 0 name=""`, want: []string{"update", "0", "name="}},
		{line: `create name="open`, wantErr: true},
	}

	for _, tt := range tests {
		got, err := splitArgs(tt.line)
		if (err != nil) != tt.wantErr {
			t.Errorf("splitArgs(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitArgs(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}
