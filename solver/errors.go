package solver

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidNumber = errors.New("solver: invalid number")
	ErrNonFinite     = errors.New("solver: iterate is not a finite number")
)

// EvalError records where the loop failed to evaluate f or f'.
type EvalError struct {
	Function  string
	Point     float64
	Iteration int
	Err       error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluating %s at x=%g (iteration %d): %v", e.Function, e.Point, e.Iteration, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// ParseNumber reads a guess or tolerance entered as text. Surrounding
// whitespace is ignored; NaN and infinities are rejected.
func ParseNumber(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidNumber, s)
	}
	return v, nil
}
