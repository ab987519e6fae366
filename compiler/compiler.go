// Package compiler turns user-entered function text into a symbolic
// expression, its exact first derivative, and numeric evaluators for both.
//
// Accepted syntax is conventional infix notation with a few conveniences:
// "^" for powers, implicit multiplication ("3x", "2(x+1)", "(x+1)(x-1)"),
// implicit function application ("cos x", "2 sin x", "sin^2 x") and the
// constants e, E and pi.
package compiler

import (
	"fmt"
	"strings"

	"github.com/njchilds90/gonewton/symbolic"
)

// Compiled is the result of compiling one expression.
type Compiled struct {
	Source     string
	Normalized string
	F          *Function
	FPrime     *Function
}

// Parse reads src into a simplified expression with the free symbol e
// replaced by Euler's number. Other free variables are kept, so callers that
// only need the tree (simplification, LaTeX, symbol listing) can use it.
func Parse(src string) (symbolic.Expr, error) {
	e, _, err := parse(src)
	return e, err
}

func parse(src string) (symbolic.Expr, map[string]int, error) {
	normalized := Normalize(src)
	if strings.TrimSpace(normalized) == "" {
		return nil, nil, &Error{Input: normalized, Pos: 0, Msg: "empty expression", Err: ErrSyntax}
	}
	toks, err := lex(normalized)
	if err != nil {
		return nil, nil, err
	}
	p := newParser(normalized, toks)
	e, err := p.parse()
	if err != nil {
		return nil, nil, err
	}
	return symbolic.Sub(e, "e", symbolic.E), p.idents, nil
}

// Compile parses src, checks that x is its only free variable, and
// differentiates it once with respect to x.
func Compile(src string) (*Compiled, error) {
	e, idents, err := parse(src)
	if err != nil {
		return nil, err
	}
	normalized := Normalize(src)
	for _, name := range symbolic.SortedFreeSymbols(e) {
		if name == Variable {
			continue
		}
		pos, ok := idents[name]
		if !ok {
			pos = -1
		}
		return nil, &Error{
			Input: normalized,
			Pos:   pos,
			Msg:   fmt.Sprintf("unexpected variable %q, only %s is allowed", name, Variable),
			Err:   ErrFreeVariable,
		}
	}

	f, err := NewFunction(e)
	if err != nil {
		return nil, err
	}
	fprime, err := NewFunction(symbolic.Diff(e, Variable))
	if err != nil {
		return nil, err
	}
	return &Compiled{Source: src, Normalized: normalized, F: f, FPrime: fprime}, nil
}

// Function is a compiled function of x.
type Function struct {
	expr symbolic.Expr
	fn   symbolic.Numeric
}

// NewFunction compiles e, which must not reference any variable but x.
func NewFunction(e symbolic.Expr) (*Function, error) {
	fn, err := symbolic.Compile(e, Variable)
	if err != nil {
		return nil, &Error{Input: e.String(), Pos: -1, Msg: err.Error(), Err: ErrFreeVariable}
	}
	return &Function{expr: e, fn: fn}, nil
}

func (f *Function) Eval(x float64) (float64, error) {
	return f.fn(x)
}

// EvalAll evaluates f at every point of xs. A constant function yields a
// slice of the same length as xs.
func (f *Function) EvalAll(xs []float64) ([]float64, error) {
	out := make([]float64, len(xs))
	for i, x := range xs {
		y, err := f.fn(x)
		if err != nil {
			return nil, fmt.Errorf("at x=%g: %w", x, err)
		}
		out[i] = y
	}
	return out, nil
}

func (f *Function) Expr() symbolic.Expr { return f.expr }
func (f *Function) String() string      { return f.expr.String() }
func (f *Function) LaTeX() string       { return f.expr.LaTeX() }

// IsConstant reports whether f does not depend on x.
func (f *Function) IsConstant() bool {
	return !symbolic.DependsOn(f.expr, Variable)
}
