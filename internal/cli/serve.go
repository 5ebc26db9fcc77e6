package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/topostim/topostim/pkg/blockgraph"
	"github.com/topostim/topostim/pkg/compile"
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/observability"
	"github.com/topostim/topostim/pkg/render"
)

// maxManifestBytes bounds request bodies so a bad client cannot exhaust
// memory with an oversized manifest.
const maxManifestBytes = 1 << 20

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the compilation HTTP server",
		Long: `Run the compilation HTTP server.

Endpoints:
  POST /api/v1/compile   compile a TOML manifest body to a stim circuit
  POST /api/v1/graph     render a TOML manifest body as an SVG diagram
  GET  /healthz          liveness probe

Compile accepts k, noise, radius, convention, and refresh query parameters.
The response is the circuit in stim text format; the X-Graph-Hash and
X-Circuit-Cache headers carry the manifest hash and cache status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe starts the HTTP server and blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           c.newRouter(runner),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// newRouter builds the chi router with middleware and API routes.
func (c *CLI) newRouter(runner *compile.Runner) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(c.hooksMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/compile", c.handleCompile(runner))
		r.Post("/graph", c.handleGraph())
	})

	return r
}

// requestIDMiddleware tags every request with a UUID, echoed back to the
// client and threaded through the request context for log correlation.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(req.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// hooksMiddleware reports request lifecycle events to the server hooks and
// logs completions.
func (c *CLI) hooksMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hooks := observability.Server()
		hooks.OnRequest(req.Context(), req.Method, req.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, req)
		elapsed := time.Since(start)

		hooks.OnResponse(req.Context(), req.Method, req.URL.Path, ww.Status(), elapsed)
		c.Logger.Debug("request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", ww.Status(),
			"duration", elapsed.Round(time.Millisecond),
			"id", middleware.GetReqID(req.Context()))
	})
}

// handleCompile compiles a TOML manifest body into a stim circuit.
func (c *CLI) handleCompile(runner *compile.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		g, ok := c.readManifest(w, req)
		if !ok {
			return
		}

		opts, err := compileOptionsFromQuery(req)
		if err != nil {
			writeError(w, err)
			return
		}
		opts.Logger = c.Logger

		result, err := runner.Compile(req.Context(), g, opts)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Compile-Id", result.ID)
		w.Header().Set("X-Graph-Hash", result.GraphHash)
		if result.CacheInfo.CircuitHit {
			w.Header().Set("X-Circuit-Cache", "hit")
		} else {
			w.Header().Set("X-Circuit-Cache", "miss")
		}
		io.WriteString(w, result.Text)
	}
}

// handleGraph renders a TOML manifest body as an SVG diagram.
func (c *CLI) handleGraph() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		g, ok := c.readManifest(w, req)
		if !ok {
			return
		}

		dot := render.ToDOT(g, render.Options{
			Detailed: req.URL.Query().Get("detailed") == "true",
		})
		svg, err := render.RenderSVG(dot)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(svg)
	}
}

// readManifest decodes the TOML manifest in the request body. On failure it
// writes the error response and returns ok=false.
func (c *CLI) readManifest(w http.ResponseWriter, req *http.Request) (*blockgraph.BlockGraph, bool) {
	body, err := io.ReadAll(io.LimitReader(req.Body, maxManifestBytes))
	if err != nil {
		writeError(w, errors.Wrap(err, errors.ErrCodeInvalidInput, "cannot read request body"))
		return nil, false
	}
	g, err := blockgraph.ParseManifest(body)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return g, true
}

// compileOptionsFromQuery parses compile options from query parameters.
// Absent parameters keep their defaults.
func compileOptionsFromQuery(req *http.Request) (compile.Options, error) {
	opts := compile.Options{}
	q := req.URL.Query()

	if s := q.Get("k"); s != "" {
		k, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid k %q", s)
		}
		opts.K = k
	}
	if s := q.Get("noise"); s != "" {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid noise %q", s)
		}
		opts.NoiseStrength = p
	}
	if s := q.Get("radius"); s != "" {
		radius, err := strconv.Atoi(s)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid radius %q", s)
		}
		opts.Radius = radius
	}
	if s := q.Get("convention"); s != "" {
		opts.Convention = s
	}
	opts.Refresh = q.Get("refresh") == "true"

	return opts, nil
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps an error code to an HTTP status and writes the JSON
// envelope.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidManifest, errors.ErrCodeInvalidShape:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeAnnotationNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeUnsupported, errors.ErrCodeUnsupportedMerge:
		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error(), Code: string(code)})
}
