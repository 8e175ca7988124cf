package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-osc/internal/audit"
	"github.com/nerrad567/gray-logic-osc/internal/diagnostics"
	"github.com/nerrad567/gray-logic-osc/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-osc/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-osc/internal/osc"
	"github.com/nerrad567/gray-logic-osc/internal/switcher"
	"github.com/nerrad567/gray-logic-osc/internal/transport"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Router is the part of *osc.Router the API needs.
type Router interface {
	Dispatch(msg osc.Message) osc.Result
	Routes() []osc.RouteInfo
	Stats() osc.Stats
	Policy() osc.Policy
}

// SwitcherView exposes bridge counters and cached switcher state.
// *switcher.Bridge satisfies it.
type SwitcherView interface {
	Stats() switcher.Stats
	State() *switcher.State
}

// ReceiverView exposes UDP receiver counters.
type ReceiverView interface {
	Stats() transport.ReceiverStats
}

// RecorderView exposes diagnostics recorder counters.
type RecorderView interface {
	Stats() diagnostics.Stats
}

// HealthChecker is implemented by infrastructure components that can report
// their own health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Router   Router

	// Optional components.
	Switcher SwitcherView
	Receiver ReceiverView
	Recorder RecorderView
	Drops    diagnostics.Repository
	Audit    audit.Repository
	Checks   map[string]HealthChecker

	// ExternalHub, if set, is used instead of a server-owned hub. The
	// diagnostics recorder needs the hub before the server starts.
	ExternalHub *Hub
	Version     string
}

// Server is the HTTP API server.
//
// It is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	secCfg    config.SecurityConfig
	logger    *logging.Logger
	router    Router
	switcher  SwitcherView
	receiver  ReceiverView
	recorder  RecorderView
	drops     diagnostics.Repository
	audit     audit.Repository
	checks    map[string]HealthChecker
	version   string
	startTime time.Time

	hub         *Hub
	externalHub bool
	tickets     *ticketStore

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	cancel   context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, router)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if deps.Router == nil {
		return nil, errors.New("osc router is required")
	}
	if deps.Security.JWT.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		secCfg:    deps.Security,
		logger:    deps.Logger,
		router:    deps.Router,
		switcher:  deps.Switcher,
		receiver:  deps.Receiver,
		recorder:  deps.Recorder,
		drops:     deps.Drops,
		audit:     deps.Audit,
		checks:    deps.Checks,
		version:   deps.Version,
		startTime: time.Now(),
		tickets:   newTicketStore(),
	}
	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
		s.externalHub = true
	} else {
		s.hub = NewHub(deps.WS, deps.Logger)
	}
	return s, nil
}

// Hub returns the WebSocket hub, for wiring it as a diagnostics sink.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start binds the listener and serves HTTP in a background goroutine.
//
// Parameters:
//   - ctx: Parent context for the hub and ticket cleanup goroutines
//
// Returns:
//   - error: If the listener cannot be bound (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srvCtx, cancel := context.WithCancel(ctx)
	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}
	go s.cleanTicketsLoop(srvCtx)

	srv := &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	s.mu.Lock()
	s.server = srv
	s.listener = ln
	s.cancel = cancel
	s.mu.Unlock()

	s.logger.Info("API server listening", "address", ln.Addr().String())
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	s.mu.Lock()
	srv, cancel := s.server, s.cancel
	s.server, s.cancel = nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if cancel != nil {
		cancel()
	}

	ctx, done := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer done()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return errors.New("api server not started")
	}
	return nil
}
