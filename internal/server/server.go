// Package server exposes rendering and generation over HTTP.
//
// Routes:
//
//	GET  /health              liveness and configured providers
//	GET  /metrics             Prometheus metrics
//	GET  /api/providers       providers with their models
//	POST /api/render          JSON document to PDF (or HTML), synchronous
//	POST /api/generate        start a generation job
//	GET  /api/status/:id      job progress
//	GET  /api/download/:id    finished PDF
//
// Routes under /api require the X-API-KEY header when an API key is set.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/artifact"
	"github.com/alnah/go-docgen/internal/jobs"
	"github.com/alnah/go-docgen/internal/logger"
	"github.com/alnah/go-docgen/internal/provider"
)

// HTTP server timeouts.
const (
	readTimeout       = 30 * time.Second
	readHeaderTimeout = 15 * time.Second
	writeTimeout      = 2 * time.Minute
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 4 << 20

// Providers lists and resolves content providers.
type Providers interface {
	Get(name string) (provider.ContentProvider, error)
	Names() []string
	Available() []provider.Info
}

// Defaults fill fields a request leaves empty.
type Defaults struct {
	Provider    string
	Temperature float64
	MaxTokens   int
	Chunks      int
	Author      string
	Page        *docgen.PageSettings
}

// Config wires a Server. Renderer, Jobs, Artifacts and Providers are
// required.
type Config struct {
	Addr          string
	APIKey        string // empty = no authentication
	Renderer      jobs.Renderer
	Jobs          jobs.Store
	Artifacts     artifact.Store
	Providers     Providers
	Logger        *logger.Logger
	Defaults      Defaults
	JobTimeout    time.Duration
	Retention     time.Duration // artifacts older than this are swept
	SweepSchedule string        // cron spec; empty disables sweeping
}

// Server is the HTTP API.
type Server struct {
	cfg     Config
	log     *logger.Logger
	engine  *gin.Engine
	metrics *metrics
	runner  *jobs.Runner
	cron    *cron.Cron
}

// New builds the router and job runner. It does not listen.
func New(cfg Config) (*Server, error) {
	switch {
	case cfg.Renderer == nil:
		return nil, errors.New("server: renderer is required")
	case cfg.Jobs == nil:
		return nil, errors.New("server: job store is required")
	case cfg.Artifacts == nil:
		return nil, errors.New("server: artifact store is required")
	case cfg.Providers == nil:
		return nil, errors.New("server: providers are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Defaults.Provider == "" {
		cfg.Defaults.Provider = provider.NameGemini
	}

	s := &Server{
		cfg:     cfg,
		log:     cfg.Logger.With("component", "server"),
		metrics: newMetrics(),
	}
	s.runner = jobs.NewRunner(jobs.RunnerConfig{
		Store:     cfg.Jobs,
		Providers: cfg.Providers,
		Renderer:  cfg.Renderer,
		Artifacts: cfg.Artifacts,
		Logger:    cfg.Logger,
		Timeout:   cfg.JobTimeout,
		OnFinish:  s.metrics.jobFinished,
	})

	if cfg.SweepSchedule != "" {
		s.cron = cron.New()
		if _, err := s.cron.AddFunc(cfg.SweepSchedule, func() { s.Sweep(context.Background()) }); err != nil {
			return nil, fmt.Errorf("server: invalid sweep schedule %q: %w", cfg.SweepSchedule, err)
		}
	}

	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log), s.metrics.middleware(), bodyLimit(MaxBodyBytes))

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(s.metrics.handler()))

	api := r.Group("/api", apiKeyAuth(s.cfg.APIKey))
	api.GET("/providers", s.handleProviders)
	api.POST("/render", s.handleRender)
	api.POST("/generate", s.handleGenerate)
	api.GET("/status/:id", s.handleStatus)
	api.GET("/download/:id", s.handleDownload)
	return r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully: in-flight requests finish, the sweep scheduler stops and
// running jobs are cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	if s.cron != nil {
		s.cron.Start()
	}
	s.log.Info("server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		s.log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("shutdown: %w", err)
	}
	s.Close()
	return serveErr
}

// Close stops the sweep scheduler and the job runner.
func (s *Server) Close() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.runner.Close()
}

// sweeper is implemented by job stores that need explicit eviction.
type sweeper interface {
	Sweep() int
}

// Sweep removes artifacts older than the retention window and expired
// in-memory jobs.
func (s *Server) Sweep(ctx context.Context) {
	if s.cfg.Retention > 0 {
		n, err := s.cfg.Artifacts.Sweep(ctx, time.Now().Add(-s.cfg.Retention))
		s.metrics.swept.Add(float64(n))
		if err != nil {
			s.metrics.sweepErrs.Inc()
			s.log.Warn("artifact sweep failed", "error", err, "removed", n)
		} else if n > 0 {
			s.log.Info("artifacts swept", "removed", n)
		}
	}
	if sw, ok := s.cfg.Jobs.(sweeper); ok {
		if n := sw.Sweep(); n > 0 {
			s.log.Debug("expired jobs evicted", "removed", n)
		}
	}
}
