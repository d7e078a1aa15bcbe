// Package server exposes the solve pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/rsolver/pkg/buildinfo"
	rerrors "github.com/matzehuels/rsolver/pkg/errors"
	"github.com/matzehuels/rsolver/pkg/httputil"
	"github.com/matzehuels/rsolver/pkg/netlist"
	"github.com/matzehuels/rsolver/pkg/network/reduce"
	"github.com/matzehuels/rsolver/pkg/observability"
	"github.com/matzehuels/rsolver/pkg/pipeline"
	"github.com/matzehuels/rsolver/pkg/render"
)

// Defaults for [Config].
const (
	DefaultAddr         = ":8080"
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 4 << 20
)

// Config configures the API server.
type Config struct {
	Addr         string
	Timeout      time.Duration // Per-request solve deadline
	MaxBodyBytes int64
	Metrics      http.Handler // Served on /metrics when non-nil
	Logger       *log.Logger
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
}

// Server handles API requests with a shared pipeline runner.
type Server struct {
	runner *pipeline.Runner
	cfg    Config
}

// New creates a server. The runner's cache is shared by all requests.
func New(runner *pipeline.Runner, cfg Config) *Server {
	cfg.setDefaults()
	return &Server{runner: runner, cfg: cfg}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/solve", s.solve)
		r.Post("/render", s.render)
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.cfg.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// observe reports every request to the registered HTTP hooks, labelled
// with the matched route pattern rather than the raw path.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.cfg.Logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"request_id", httputil.RequestIDFrom(r.Context()))
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

// SolveResponse is the body of a successful POST /v1/solve.
type SolveResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name,omitempty"`
	Terminals []int            `json:"terminals"`
	Pairs     []pipeline.Pair  `json:"pairs"`
	Stats     reduce.Stats     `json:"stats"`
	Solved    *netlist.Netlist `json:"solved,omitempty"`
	Verified  bool             `json:"verified,omitempty"`
	Cached    bool             `json:"cached"`
}

func (s *Server) solve(w http.ResponseWriter, r *http.Request) {
	nl, opts, ok := s.decode(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	res, err := s.runner.Solve(ctx, nl, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := SolveResponse{
		ID:       httputil.RequestIDFrom(r.Context()),
		Name:     res.Name,
		Pairs:    res.Pairs,
		Stats:    res.Stats,
		Verified: res.Verified,
		Cached:   res.Cached,
	}
	for _, t := range res.Terminals {
		resp.Terminals = append(resp.Terminals, int(t))
	}
	if q := r.URL.Query(); q.Get("network") == "true" {
		resp.Solved = res.Solved
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	nl, opts, ok := s.decode(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	data, err := s.runner.Render(ctx, nl, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", opts.Format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decode reads the netlist body and the query options. It writes the error
// response itself and reports false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*netlist.Netlist, pipeline.Options, bool) {
	opts, err := parseOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return nil, opts, false
	}
	format, err := bodyFormat(r.Header.Get("Content-Type"))
	if err != nil {
		s.fail(w, r, err)
		return nil, opts, false
	}

	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	nl, err := s.runner.Decode(r.Context(), body, format, "")
	if err != nil {
		s.fail(w, r, err)
		return nil, opts, false
	}
	if err := rerrors.ValidateName(nl.Name); err != nil {
		s.fail(w, r, err)
		return nil, opts, false
	}
	return nl, opts, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	err = pipeline.Classify(err)
	status := httputil.StatusFor(rerrors.GetCode(err))
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", httputil.RequestIDFrom(r.Context()))
	} else {
		s.cfg.Logger.Debug("request rejected", "path", r.URL.Path, "err", err)
	}
	httputil.WriteError(w, r, err)
}

// bodyFormat maps a Content-Type to a netlist format. A missing type means
// JSON.
func bodyFormat(contentType string) (netlist.Format, error) {
	if contentType == "" {
		return netlist.FormatJSON, nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", rerrors.Wrap(rerrors.ErrCodeInvalidFormat, err, "bad Content-Type")
	}
	switch mediaType {
	case "application/json":
		return netlist.FormatJSON, nil
	case "application/toml":
		return netlist.FormatTOML, nil
	case "application/yaml", "application/x-yaml", "text/yaml":
		return netlist.FormatYAML, nil
	}
	return "", rerrors.New(rerrors.ErrCodeInvalidFormat, "unsupported Content-Type %q", mediaType)
}

// parseOptions reads solver and render options from the query string:
// random, seed, max_iter, verify, format and solved.
func parseOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	var opts pipeline.Options
	var err error

	parseBool := func(name string, dst *bool) {
		if v := q.Get(name); v != "" && err == nil {
			if *dst, err = strconv.ParseBool(v); err != nil {
				err = rerrors.Wrap(rerrors.ErrCodeInvalidInput, err, "query parameter %s", name)
			}
		}
	}
	parseBool("random", &opts.Random)
	parseBool("verify", &opts.Verify)
	parseBool("solved", &opts.Solved)
	parseBool("refresh", &opts.Refresh)
	if err != nil {
		return opts, err
	}

	if v := q.Get("seed"); v != "" {
		if opts.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return opts, rerrors.Wrap(rerrors.ErrCodeInvalidInput, err, "query parameter seed")
		}
	}
	if v := q.Get("max_iter"); v != "" {
		if opts.MaxIterations, err = strconv.Atoi(v); err != nil {
			return opts, rerrors.Wrap(rerrors.ErrCodeInvalidInput, err, "query parameter max_iter")
		}
	}
	if v := q.Get("format"); v != "" {
		f, err := render.ParseFormat(v)
		if err != nil {
			return opts, rerrors.Wrap(rerrors.ErrCodeInvalidFormat, err, "query parameter format")
		}
		opts.Format = f
	}
	return opts, nil
}
