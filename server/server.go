package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/voxnote/logger"
	"github.com/kbukum/voxnote/observability"
	"github.com/kbukum/voxnote/server/endpoint"
	"github.com/kbukum/voxnote/server/middleware"
)

const (
	PathTranscriptions = "/v1/transcriptions"
	PathSaved          = "/v1/saved"
	PathHealth         = "/healthz"
	PathVersion        = "/version"
)

// Server serves the voxnote API. Routes live on a Gin engine; the
// net/http middleware chain wraps the engine, and h2c wraps the chain so
// one port speaks HTTP/1.1 and cleartext HTTP/2.
type Server struct {
	cfg    Config
	log    *logger.Logger
	engine *gin.Engine
	http   *http.Server

	mu    sync.Mutex
	bound string
}

// New builds a Server from cfg with defaults already applied. Gin runs in
// debug mode only when zerolog is at debug level or below.
func New(cfg Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent("server")

	mode := gin.ReleaseMode
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	wrapped := middleware.Chain(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.CORS(&cfg.CORS),
		middleware.RateLimit(cfg.RateLimit),
		middleware.BodySizeLimit(cfg.MaxBodySize),
	)(engine)

	idle := seconds(cfg.IdleTimeout)
	return &Server{
		cfg:    cfg,
		log:    log,
		engine: engine,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           h2c.NewHandler(wrapped, &http2.Server{MaxConcurrentStreams: 250, IdleTimeout: idle}),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       seconds(cfg.ReadTimeout),
			WriteTimeout:      seconds(cfg.WriteTimeout),
			IdleTimeout:       idle,
		},
	}
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// Handler is the complete handler stack, for httptest.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// RegisterDefaultEndpoints mounts the health and version endpoints.
func (s *Server) RegisterDefaultEndpoints(service string, checkers ...observability.HealthChecker) {
	s.engine.GET(PathHealth, endpoint.Health(service, checkers...))
	s.engine.GET(PathVersion, endpoint.Version())
}

// RegisterHandlers mounts the transcription and saved-note routes.
func (s *Server) RegisterHandlers(h *Handlers) {
	h.Register(s.engine)
}

// Start binds the listener and serves in the background. When it returns
// nil the port accepts connections.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.http.Addr, err)
	}
	s.mu.Lock()
	s.bound = ln.Addr().String()
	s.mu.Unlock()

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("serve failed", logger.ErrorFields("serve", err))
		}
	}()
	s.log.Info("listening", logger.Fields("addr", s.Addr()))
	return nil
}

// Stop drains in-flight requests for at most the configured shutdown
// timeout.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, seconds(s.cfg.ShutdownTimeout))
	defer cancel()

	s.log.Info("shutting down")
	if err := s.http.Shutdown(ctx); err != nil {
		s.log.Error("shutdown failed", logger.ErrorFields("shutdown", err))
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// Addr is the bound address once Start succeeded, otherwise the configured
// one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound != "" {
		return s.bound
	}
	return s.http.Addr
}
