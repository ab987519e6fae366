package solver

import (
	"encoding/json"
	"fmt"
)

// Status is the kind of terminal result a run ends with.
type Status int

const (
	Converged Status = iota + 1
	DerivativeZero
	NotConverged
	ParseError
	InputError
	EvaluationError
)

var statusNames = map[Status]string{
	Converged:       "Converged",
	DerivativeZero:  "DerivativeZero",
	NotConverged:    "NotConverged",
	ParseError:      "ParseError",
	InputError:      "InputError",
	EvaluationError: "EvaluationError",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// IsRequestError reports whether the run was rejected before iterating.
func (s Status) IsRequestError() bool {
	return s == ParseError || s == InputError
}

func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("solver: unknown status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	for status, name := range statusNames {
		if name == string(b) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("solver: unknown status %q", string(b))
}

// Result is the single terminal outcome of a run. Which fields are
// meaningful depends on Status: Root and Iteration for Converged, Iteration
// for DerivativeZero and EvaluationError, MaxIterations for NotConverged.
type Result struct {
	Status        Status
	Root          float64
	Iteration     int
	MaxIterations int
	Message       string

	// Err is the underlying failure for EvaluationError, ParseError and
	// InputError results. It is not serialized.
	Err error
}

// Failure builds a result for a run that did not produce a root.
func Failure(status Status, message string, err error) Result {
	return Result{Status: status, Message: message, Err: err}
}

type wireResult struct {
	Kind          Status   `json:"kind"`
	Root          *float64 `json:"root,omitempty"`
	Iteration     *int     `json:"iteration,omitempty"`
	MaxIterations *int     `json:"maxIterations,omitempty"`
	Message       string   `json:"message,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	w := wireResult{Kind: r.Status, Message: r.Message}
	switch r.Status {
	case Converged:
		root, it := r.Root, r.Iteration
		w.Root, w.Iteration = &root, &it
	case DerivativeZero, EvaluationError:
		if r.Iteration > 0 {
			it := r.Iteration
			w.Iteration = &it
		}
	case NotConverged:
		limit := r.MaxIterations
		w.MaxIterations = &limit
	}
	return json.Marshal(w)
}

func (r *Result) UnmarshalJSON(b []byte) error {
	var w wireResult
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = Result{Status: w.Kind, Message: w.Message}
	if w.Root != nil {
		r.Root = *w.Root
	}
	if w.Iteration != nil {
		r.Iteration = *w.Iteration
	}
	if w.MaxIterations != nil {
		r.MaxIterations = *w.MaxIterations
	}
	return nil
}
