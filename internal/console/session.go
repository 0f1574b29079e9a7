package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Level classifies a notice.
type Level string

// Notice levels.
const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a user-facing message produced by a session operation.
type Notice struct {
	Level   Level
	Message string
}

// Notifier receives notices.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Session holds the state of one console connection: config, connected flag,
// probe results and current rows.
//
// Only one operation runs at a time. An operation started while another is
// in flight returns ErrBusy without touching state. Failures are reported to
// the Notifier and returned; state is left safe (rows emptied on a failed
// fetch, connection flag untouched).
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Session struct {
	client   *Client
	notifier Notifier

	busy atomic.Bool

	mu        sync.RWMutex
	cfg       ConnectionConfig
	connected bool
	methods   []MethodProbeResult
	result    *FetchResult
}

// NewSession creates a disconnected session. A nil notifier discards notices.
func NewSession(client *Client, notifier Notifier) *Session {
	if notifier == nil {
		notifier = NotifierFunc(func(Notice) {})
	}
	return &Session{
		client:   client,
		notifier: notifier,
		methods:  Unprobed(),
		result:   &FetchResult{Rows: []*Object{}},
	}
}

// SetConfig replaces the connection config. The connected flag is kept.
func (s *Session) SetConfig(cfg ConnectionConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// Config returns the current connection config.
func (s *Session) Config() ConnectionConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Connected reports whether Connect has succeeded since the last Disconnect.
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Busy reports whether an operation is running.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Methods returns the latest probe results, one per verb in Methods order.
func (s *Session) Methods() []MethodProbeResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MethodProbeResult, len(s.methods))
	copy(out, s.methods)
	return out
}

// Supported reports whether the last probe marked method as supported.
func (s *Session) Supported(method string) bool {
	for _, m := range s.Methods() {
		if m.Method == method {
			return m.Supported
		}
	}
	return false
}

// Rows returns the current table rows.
func (s *Session) Rows() []*Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Object, len(s.result.Rows))
	copy(out, s.result.Rows)
	return out
}

// Raw returns the last parsed response body, or nil.
func (s *Session) Raw() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result.Raw
}

// Columns returns the display columns of the current rows.
func (s *Session) Columns() []string {
	return Columns(s.Rows())
}

func (s *Session) acquire() bool {
	return s.busy.CompareAndSwap(false, true)
}

func (s *Session) release() {
	s.busy.Store(false)
}

func (s *Session) notify(level Level, format string, args ...any) {
	s.notifier.Notify(Notice{Level: level, Message: fmt.Sprintf(format, args...)})
}

// validate reports a missing or malformed URL. invalidMsg overrides the
// message for a malformed URL.
func (s *Session) validate(cfg ConnectionConfig, invalidMsg string) error {
	err := cfg.Validate()
	var ve *ValidationError
	if errors.As(err, &ve) {
		msg := ve.Message
		if ve.Message == MsgURLInvalid && invalidMsg != "" {
			msg = invalidMsg
		}
		s.notify(LevelError, "%s", msg)
	}
	return err
}

// TestConnection checks that the URL answers a GET, then probes every verb.
// It does not mark the session connected.
func (s *Session) TestConnection(ctx context.Context) error {
	if !s.acquire() {
		return ErrBusy
	}
	defer s.release()

	cfg := s.Config()
	if err := s.validate(cfg, MsgURLInvalid+" (e.g., https://api.example.com/data)"); err != nil {
		return err
	}

	isJSON, err := s.client.Check(ctx, cfg)
	if err != nil {
		s.connectionFailed(err, "Unable to reach the API")
		return err
	}
	if isJSON {
		s.notify(LevelSuccess, "Connection test successful! JSON API detected.")
	} else {
		s.notify(LevelWarning, "Connection successful, but API may not return JSON data.")
	}

	s.setMethods(s.client.Probe(ctx, cfg))
	return nil
}

// Connect checks the URL with a GET, marks the session connected and loads
// the rows. A failed load is returned but leaves the session connected.
func (s *Session) Connect(ctx context.Context) error {
	if !s.acquire() {
		return ErrBusy
	}
	defer s.release()

	cfg := s.Config()
	if err := s.validate(cfg, ""); err != nil {
		return err
	}

	if _, err := s.client.Check(ctx, cfg); err != nil {
		s.connectionFailed(err, "Unable to connect to API")
		return err
	}

	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	s.notify(LevelSuccess, "Successfully connected to API!")

	return s.fetch(ctx, cfg)
}

// Refresh reloads the rows and re-probes the verbs.
func (s *Session) Refresh(ctx context.Context) error {
	if !s.acquire() {
		return ErrBusy
	}
	defer s.release()

	if !s.Connected() {
		s.notify(LevelError, "Not connected to API")
		return ErrNotConnected
	}

	cfg := s.Config()
	fetchErr := s.fetch(ctx, cfg)
	s.setMethods(s.client.Probe(ctx, cfg))
	if fetchErr != nil {
		return fetchErr
	}
	s.notify(LevelSuccess, "Connection refreshed!")
	return nil
}

// Disconnect clears all connection state. The config is kept.
func (s *Session) Disconnect() error {
	if !s.acquire() {
		return ErrBusy
	}
	defer s.release()

	s.mu.Lock()
	s.connected = false
	s.result = &FetchResult{Rows: []*Object{}}
	s.methods = Unprobed()
	s.mu.Unlock()

	s.notify(LevelSuccess, "Disconnected from API!")
	return nil
}

// Fetch reloads the rows without probing.
func (s *Session) Fetch(ctx context.Context) error {
	if !s.acquire() {
		return ErrBusy
	}
	defer s.release()
	return s.fetch(ctx, s.Config())
}

// Create POSTs a new record built from fields and reloads the rows.
func (s *Session) Create(ctx context.Context, fields []Field) error {
	if !s.acquire() {
		return ErrBusy
	}
	defer s.release()

	cfg := s.Config()
	if err := s.client.Create(ctx, cfg, fields); err != nil {
		s.mutationFailed("POST", err)
		return err
	}
	s.notify(LevelSuccess, "Data posted successfully!")
	return s.fetch(ctx, cfg)
}

// Update PUTs the row at index merged with edits and reloads the rows.
func (s *Session) Update(ctx context.Context, index int, edits []Field) error {
	if !s.acquire() {
		return ErrBusy
	}
	defer s.release()

	row, err := s.row(index)
	if err != nil {
		return err
	}

	cfg := s.Config()
	if err := s.client.Update(ctx, cfg, index, row, edits); err != nil {
		s.mutationFailed("PUT", err)
		return err
	}
	s.notify(LevelSuccess, "Data updated successfully!")
	return s.fetch(ctx, cfg)
}

// Delete removes the row at index on the server and reloads the rows.
func (s *Session) Delete(ctx context.Context, index int) error {
	if !s.acquire() {
		return ErrBusy
	}
	defer s.release()

	row, err := s.row(index)
	if err != nil {
		return err
	}

	cfg := s.Config()
	if err := s.client.Delete(ctx, cfg, index, row); err != nil {
		s.mutationFailed("DELETE", err)
		return err
	}
	s.notify(LevelSuccess, "Data deleted successfully!")
	return s.fetch(ctx, cfg)
}

func (s *Session) row(index int) (*Object, error) {
	rows := s.Rows()
	if index < 0 || index >= len(rows) {
		err := &ValidationError{Field: "index", Message: fmt.Sprintf("Row %d does not exist", index)}
		s.notify(LevelError, "%s", err.Message)
		return nil, err
	}
	return rows[index], nil
}

// fetch loads rows. On failure the table is emptied and the error notified.
func (s *Session) fetch(ctx context.Context, cfg ConnectionConfig) error {
	result, err := s.client.FetchAndNormalize(ctx, cfg)
	if err != nil {
		s.mu.Lock()
		s.result = &FetchResult{Rows: []*Object{}}
		s.mu.Unlock()
		s.notify(LevelError, "%s", fetchMessage(err))
		return err
	}

	s.mu.Lock()
	s.result = result
	s.mu.Unlock()
	return nil
}

func (s *Session) setMethods(methods []MethodProbeResult) {
	s.mu.Lock()
	s.methods = methods
	s.mu.Unlock()
}

func (s *Session) connectionFailed(err error, unreachable string) {
	var st *HTTPStatusError
	if errors.As(err, &st) {
		s.notify(LevelError, "Connection failed: %d %s", st.Status, st.StatusText)
		return
	}
	s.notify(LevelError, "Connection failed: %s", unreachable)
}

func (s *Session) mutationFailed(method string, err error) {
	var (
		st *HTTPStatusError
		ve *ValidationError
	)
	switch {
	case errors.As(err, &ve):
		s.notify(LevelError, "%s", ve.Message)
	case errors.As(err, &st):
		msg := fmt.Sprintf("%s failed: %d %s", method, st.Status, st.StatusText)
		if st.Detail != "" {
			msg += " - " + st.Detail
		}
		s.notify(LevelError, "%s", msg)
	default:
		s.notify(LevelError, "%s request failed: Network error", method)
	}
}

func fetchMessage(err error) string {
	var st *HTTPStatusError
	if errors.As(err, &st) {
		return st.Error()
	}
	var nj *NotJSONError
	if errors.As(err, &nj) {
		return nj.Error()
	}
	return "Failed to fetch data: " + err.Error()
}
