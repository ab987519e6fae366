// Package gonewton finds roots of single-variable functions with the
// Newton-Raphson method. The entered expression is differentiated exactly,
// every iteration is recorded, and the visited points are returned ready
// for plotting.
//
// Design goals:
//   - One self-contained call per request: no state survives between runs
//   - Every outcome is a value (solver.Result), never a panic
//   - Adapter friendly: numbers may arrive as JSON numbers or as text
package gonewton

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"github.com/njchilds90/gonewton/compiler"
	"github.com/njchilds90/gonewton/plot"
	"github.com/njchilds90/gonewton/solver"
)

// Version of the module, reported by the CLI and the MCP server.
const Version = "0.1.0"

// Upper bounds on the work a single request may ask for. The iteration cap
// is the only timeout a run has, and samples are allocated up front.
const (
	MaxIterationsLimit = 10000
	MaxSamples         = 10000
	MaxDiffOrder       = 5
)

// MsgParse is the ParseError message; %v is the compiler diagnostic.
const MsgParse = "Could not parse function: %v\nTry using standard syntax like 3*x or cos(x)."

// Request is one calculation. InitialGuess and StopPercent are kept as text
// so that malformed input can be reported as an InputError.
type Request struct {
	Expression    string `json:"expression" mapstructure:"expression"`
	InitialGuess  string `json:"initialGuess" mapstructure:"initialGuess"`
	StopPercent   string `json:"stopPercent" mapstructure:"stopPercent"`
	MaxIterations int    `json:"maxIterations,omitempty" mapstructure:"maxIterations"`
	Samples       int    `json:"samples,omitempty" mapstructure:"samples"`
}

type Response struct {
	Function   string          `json:"function,omitempty"`
	Derivative string          `json:"derivative,omitempty"`
	Trace      []solver.Record `json:"trace"`
	Result     solver.Result   `json:"result"`
	Plot       *plot.Data      `json:"plot,omitempty"`
}

// DecodeRequest builds a Request from loosely typed input such as decoded
// JSON or MCP arguments. Numbers are accepted for the text fields and
// numeric strings for the integer fields. Unknown keys are rejected.
func DecodeRequest(m map[string]interface{}) (Request, error) {
	var req Request
	if err := decodeParams(m, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

func decodeParams(m map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(m)
}

type Option func(*settings)

type settings struct {
	logger        *slog.Logger
	maxIterations int
	samples       int
}

// WithLogger sets the logger used for per-iteration debug lines and run
// summaries. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaults sets the iteration cap and curve sample count used when the
// request leaves them at zero. Values above MaxIterationsLimit or MaxSamples
// are ignored.
func WithDefaults(maxIterations, samples int) Option {
	return func(s *settings) {
		if maxIterations > 0 && maxIterations <= MaxIterationsLimit {
			s.maxIterations = maxIterations
		}
		if samples > 0 && samples <= MaxSamples {
			s.samples = samples
		}
	}
}

// Calculate validates req, compiles the expression, runs the iteration and
// prepares plot data. Plot failures are logged and leave Plot nil; they
// never change the Result.
func Calculate(req Request, opts ...Option) *Response {
	s := &settings{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxIterations: solver.DefaultMaxIterations,
		samples:       plot.DefaultSamples,
	}
	for _, opt := range opts {
		opt(s)
	}
	log := s.logger.With("expression", req.Expression)
	resp := &Response{Trace: []solver.Record{}}

	x0, stop, err := parseNumbers(req)
	if err != nil {
		resp.Result = solver.Failure(solver.InputError, solver.MsgInput, err)
		log.Info("calculation rejected", "status", resp.Result.Status, "error", err)
		return resp
	}

	compiled, err := compiler.Compile(req.Expression)
	if err != nil {
		resp.Result = solver.Failure(solver.ParseError, fmt.Sprintf(MsgParse, err), err)
		log.Info("calculation rejected", "status", resp.Result.Status, "error", err)
		return resp
	}
	resp.Function = compiled.F.String()
	resp.Derivative = compiled.FPrime.String()

	maxIter := req.MaxIterations
	if maxIter == 0 {
		maxIter = s.maxIterations
	}
	run := solver.Solve(compiled.F, compiled.FPrime, x0, solver.Options{
		StopPercent:   stop,
		MaxIterations: maxIter,
		OnIteration: func(r solver.Record) {
			log.Debug("iteration",
				"iteration", r.Iteration,
				"x", r.X,
				"fx", r.FX,
				"fprime", r.FPrimeX,
				"error_percent", r.ErrorPercent)
		},
	})
	resp.Trace = run.Trace
	resp.Result = run.Result

	if len(run.Points) > 0 {
		samples := req.Samples
		if samples == 0 {
			samples = s.samples
		}
		d, err := plot.Prepare(compiled.F, run.Points, samples)
		if err != nil {
			log.Warn("plot preparation failed", "error", err)
		} else {
			resp.Plot = d
		}
	}

	log.Info("calculation finished",
		"status", resp.Result.Status,
		"iterations", len(resp.Trace),
		"derivative", resp.Derivative)
	return resp
}

func parseNumbers(req Request) (x0, stop float64, err error) {
	if x0, err = solver.ParseNumber(req.InitialGuess); err != nil {
		return 0, 0, fmt.Errorf("initial guess: %w", err)
	}
	if stop, err = solver.ParseNumber(req.StopPercent); err != nil {
		return 0, 0, fmt.Errorf("stop percent: %w", err)
	}
	if req.MaxIterations < 0 || req.MaxIterations > MaxIterationsLimit {
		return 0, 0, fmt.Errorf("%w: maxIterations must be between 0 and %d, got %d", solver.ErrInvalidNumber, MaxIterationsLimit, req.MaxIterations)
	}
	if req.Samples < 0 || req.Samples == 1 || req.Samples > MaxSamples {
		return 0, 0, fmt.Errorf("%w: samples must be 0 or between 2 and %d, got %d", solver.ErrInvalidNumber, MaxSamples, req.Samples)
	}
	return x0, stop, nil
}
