package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/njchilds90/gonewton"
	"github.com/njchilds90/gonewton/compiler"
	"github.com/njchilds90/gonewton/internal/archive"
	"github.com/njchilds90/gonewton/internal/metrics"
	"github.com/njchilds90/gonewton/plot"
	"github.com/njchilds90/gonewton/symbolic"
)

const defaultMaxBodyBytes = 1 << 20

// Options wires the server's collaborators. A nil Store becomes an
// in-memory archive with a one hour TTL; a nil Metrics disables /metrics.
type Options struct {
	Store         archive.Store
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	MaxBodyBytes  int64
	MaxIterations int
	Samples       int
	PlotWidth     int
	PlotHeight    int
}

type Server struct {
	opts      Options
	store     archive.Store
	metrics   *metrics.Metrics
	log       *slog.Logger
	validator *validator
}

// NewHandler builds the HTTP API.
func NewHandler(opts Options) (http.Handler, error) {
	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	if opts.Store == nil {
		opts.Store = archive.NewMemory(time.Hour)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	s := &Server{
		opts:      opts,
		store:     opts.Store,
		metrics:   opts.Metrics,
		log:       opts.Logger,
		validator: v,
	}

	r := chi.NewRouter()
	r.Use(s.recoverer, s.instrument, enableCORS)

	r.Post("/v1/solve", s.Solve)
	r.Get("/v1/runs", s.ListRuns)
	r.Get("/v1/runs/{id}", s.GetRun)
	r.Get("/v1/runs/{id}/plot.png", s.GetRunPlot)
	r.Post("/v1/compile", s.Compile)

	r.Post("/tool", s.Tool)
	r.Get("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, gonewton.MCPToolSpec())
	})
	r.Get("/health", s.GetHealth)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(openapiSpec)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r, nil
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic in handler", "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, code)
		}
		s.log.Debug("request", "method", r.Method, "route", route, "code", code, "elapsed", time.Since(start))
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Expose-Headers", "X-Run-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()}, s.log)
}

// decodeBody validates r against the documented path and decodes its body
// into a loose map; numbers keep their literal text.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, path string) (map[string]interface{}, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	defer r.Body.Close()

	if err := s.validator.validate(r, path); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		s.log.Warn("request rejected by schema", "path", path, "error", err)
		return nil, false
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return nil, false
	}
	if dec.More() {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid JSON: trailing data"))
		return nil, false
	}
	return m, true
}

// Solve handles POST /v1/solve. Every terminal result is archived; request
// errors answer 422 with the same body shape as a finished run.
func (s *Server) Solve(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decodeBody(w, r, "/v1/solve")
	if !ok {
		return
	}
	req, err := gonewton.DecodeRequest(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	resp := gonewton.Calculate(req,
		gonewton.WithLogger(s.log),
		gonewton.WithDefaults(s.opts.MaxIterations, s.opts.Samples))
	if s.metrics != nil {
		s.metrics.ObserveRun(resp, time.Since(start))
	}

	run := archive.NewRun(req, resp)
	if err := s.store.Save(r.Context(), run); err != nil {
		s.log.Warn("Solve: archive failed", "error", err)
	} else {
		w.Header().Set("X-Run-ID", run.ID)
	}

	code := http.StatusOK
	if resp.Result.Status.IsRequestError() {
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, resp, s.log)
}

func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		s.log.Error("ListRuns failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"runs": ids}, s.log)
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*archive.Run, bool) {
	run, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, archive.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		s.log.Error("load run failed", "error", err)
		return nil, false
	}
	return run, true
}

func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	if run, ok := s.loadRun(w, r); ok {
		writeJSON(w, http.StatusOK, run, s.log)
	}
}

// GetRunPlot renders the archived plot data of a run.
func (s *Server) GetRunPlot(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	if run.Response == nil || run.Response.Plot == nil {
		s.writeError(w, http.StatusNotFound, errors.New("run has no plot data"))
		return
	}

	opts := plot.RenderOptions{Width: s.opts.PlotWidth, Height: s.opts.PlotHeight}
	for name, dst := range map[string]*int{"width": &opts.Width, "height": &opts.Height} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 200 || v > 4000 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("%s must be an integer in [200, 4000]", name))
			return
		}
		*dst = v
	}
	if run.Response.Function != "" {
		opts.Title = "f(x) = " + run.Response.Function
	}

	var buf bytes.Buffer
	if err := plot.Render(&buf, run.Response.Plot, opts); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		s.log.Error("GetRunPlot: render failed", "error", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = buf.WriteTo(w)
}

type compileResponse struct {
	Function        string                 `json:"function"`
	Derivative      string                 `json:"derivative"`
	LaTeX           string                 `json:"latex"`
	DerivativeLaTeX string                 `json:"derivativeLatex"`
	Tree            map[string]interface{} `json:"tree"`
}

// Compile handles POST /v1/compile.
func (s *Server) Compile(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decodeBody(w, r, "/v1/compile")
	if !ok {
		return
	}
	src, _ := body["expression"].(string)
	c, err := compiler.Compile(src)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, compileResponse{
		Function:        c.F.String(),
		Derivative:      c.FPrime.String(),
		LaTeX:           c.F.LaTeX(),
		DerivativeLaTeX: c.FPrime.LaTeX(),
		Tree:            symbolic.Tree(c.F.Expr()),
	}, s.log)
}

// Tool handles POST /tool.
func (s *Server) Tool(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var req gonewton.ToolRequest
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if dec.More() {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid JSON: trailing data"))
		return
	}
	resp := gonewton.HandleToolCall(req,
		gonewton.WithLogger(s.log),
		gonewton.WithDefaults(s.opts.MaxIterations, s.opts.Samples))
	writeJSON(w, http.StatusOK, resp, s.log)
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}, s.log)
}
