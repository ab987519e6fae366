// Package solver runs the Newton-Raphson iteration over compiled functions.
package solver

import (
	"fmt"
	"math"
	"strconv"
)

// DefaultMaxIterations bounds a run when Options.MaxIterations is not set.
const DefaultMaxIterations = 50

// Result messages.
const (
	MsgConverged      = "Root found: %.6f at Iteration %d"
	MsgDerivativeZero = "Derivative is zero. Division by zero occurred."
	MsgNotConverged   = "Did not converge within %d iterations."
	MsgEvaluation     = "An error occurred: %v"
	MsgInput          = "Please check your numbers. Ensure Guess and Percentage are valid numbers."
)

// Evaluator is a real function of one variable.
type Evaluator interface {
	Eval(x float64) (float64, error)
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(x float64) (float64, error)

func (f EvaluatorFunc) Eval(x float64) (float64, error) { return f(x) }

// Record is one row of the trace.
type Record struct {
	Iteration    int     `json:"iteration"`
	X            float64 `json:"x"`
	FX           float64 `json:"fx"`
	FPrimeX      float64 `json:"fprimeX"`
	ErrorPercent float64 `json:"errorPercent"`
}

// Cells formats the record for display: six decimals for values, four
// decimals and a percent sign for the error.
func (r Record) Cells() []string {
	return []string{
		strconv.Itoa(r.Iteration),
		fmt.Sprintf("%.6f", r.X),
		fmt.Sprintf("%.6f", r.FX),
		fmt.Sprintf("%.6f", r.FPrimeX),
		fmt.Sprintf("%.4f%%", r.ErrorPercent),
	}
}

// Headers names the columns of Cells.
var Headers = []string{"Iteration", "x", "f(x)", "f'(x)", "Error %"}

type Options struct {
	// StopPercent is the relative error, in percent, below which the run
	// converges. Non-positive values are accepted and run to the cap.
	StopPercent float64

	// MaxIterations defaults to DefaultMaxIterations when zero or negative.
	MaxIterations int

	// OnIteration, if set, observes every record right after it is appended.
	OnIteration func(Record)
}

// Run holds everything a run produced, including partial data for failed
// runs.
type Run struct {
	Trace  []Record
	Result Result
	Points []float64
}

// Solve iterates x_{n+1} = x_n - f(x_n)/f'(x_n) starting from x0.
func Solve(f, fprime Evaluator, x0 float64, opts Options) *Run {
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	run := &Run{Trace: []Record{}, Points: []float64{}}
	x := x0
	for i := 1; i <= maxIter; i++ {
		fx, err := f.Eval(x)
		if err != nil {
			run.Result = evaluationFailure(&EvalError{Function: "f", Point: x, Iteration: i, Err: err})
			return run
		}
		dfx, err := fprime.Eval(x)
		if err != nil {
			run.Result = evaluationFailure(&EvalError{Function: "f'", Point: x, Iteration: i, Err: err})
			return run
		}
		run.Points = append(run.Points, x)

		if dfx == 0 {
			run.Result = Result{Status: DerivativeZero, Iteration: i, Message: MsgDerivativeZero}
			return run
		}

		next := x - fx/dfx
		errPct := RelativeError(next, x)
		if !isFinite(next) || !isFinite(errPct) {
			run.Result = evaluationFailure(&EvalError{Function: "x - f/f'", Point: x, Iteration: i, Err: ErrNonFinite})
			return run
		}

		rec := Record{Iteration: i, X: x, FX: fx, FPrimeX: dfx, ErrorPercent: errPct}
		run.Trace = append(run.Trace, rec)
		if opts.OnIteration != nil {
			opts.OnIteration(rec)
		}

		if errPct < opts.StopPercent {
			run.Points = append(run.Points, next)
			run.Result = Result{
				Status:    Converged,
				Root:      next,
				Iteration: i,
				Message:   fmt.Sprintf(MsgConverged, next, i),
			}
			return run
		}
		x = next
	}

	run.Result = Result{
		Status:        NotConverged,
		MaxIterations: maxIter,
		Message:       fmt.Sprintf(MsgNotConverged, maxIter),
	}
	return run
}

// RelativeError is |next-cur|/|next|*100, falling back to the absolute
// difference times 100 when next is exactly zero.
func RelativeError(next, cur float64) float64 {
	if next == 0 {
		return math.Abs(next-cur) * 100
	}
	return math.Abs(next-cur) / math.Abs(next) * 100
}

func evaluationFailure(err *EvalError) Result {
	return Result{
		Status:    EvaluationError,
		Iteration: err.Iteration,
		Message:   fmt.Sprintf(MsgEvaluation, err),
		Err:       err,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
