package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/apiconsole/internal/auth"
	"github.com/nerrad567/apiconsole/internal/dth22"
	"github.com/nerrad567/apiconsole/internal/infrastructure/config"
	"github.com/nerrad567/apiconsole/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker is a dependency whose reachability is reported by /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ConnectionReporter is an optional dependency with a connection flag.
type ConnectionReporter interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Readings *dth22.Service
	DB       HealthChecker      // optional
	MQTT     ConnectionReporter // optional
	InfluxDB ConnectionReporter // optional
	Version  string
}

// Server is the HTTP API server.
//
// It is created with New and served with Run.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	secCfg    config.SecurityConfig
	logger    *logging.Logger
	readings  *dth22.Service
	db        HealthChecker
	mqtt      ConnectionReporter
	influx    ConnectionReporter
	auth      *auth.Authenticator
	hub       *Hub
	version   string
	startTime time.Time

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a new API server with the given dependencies.
//
// The WebSocket hub is subscribed to reading events immediately, so events
// emitted before Run are still broadcast to any connected clients.
//
// Parameters:
//   - deps: Configuration, logger, reading service and optional health checkers
//
// Returns:
//   - *Server: Ready to Listen and Run
//   - error: If a required dependency is missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Readings == nil {
		return nil, fmt.Errorf("readings service is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		secCfg:    deps.Security,
		logger:    deps.Logger.With("component", "api"),
		readings:  deps.Readings,
		db:        deps.DB,
		mqtt:      deps.MQTT,
		influx:    deps.InfluxDB,
		version:   deps.Version,
		startTime: time.Now(),
		auth:      auth.NewAuthenticator(deps.Security.JWT.Secret, deps.Security.APIKeys.Keys),
	}
	s.hub = NewHub(s.wsCfg, s.logger)
	s.readings.OnEvent(s.broadcastReading)

	return s, nil
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Listen binds the configured address. Run calls it when no listener is bound.
func (s *Server) Listen() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr(), nil
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port)))
	if err != nil {
		return nil, fmt.Errorf("listening on %s:%d: %w", s.cfg.Host, s.cfg.Port, err)
	}
	s.listener = ln
	return ln.Addr(), nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
//
// Parameters:
//   - ctx: Cancelled to begin shutdown
//
// Returns:
//   - error: A listen or serve failure; nil after a clean shutdown
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	ln := s.listener
	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", ln.Addr().String(),
				"cert", s.cfg.TLS.CertFile,
			)
			err = srv.ServeTLS(ln, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", ln.Addr().String())
			err = srv.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Server) shutdown() error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// broadcastReading relays reading events to WebSocket subscribers.
func (s *Server) broadcastReading(_ context.Context, ev dth22.Event) {
	s.hub.Broadcast(string(ev.Type), ev)
}
