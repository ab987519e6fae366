package symbolic

import (
	"errors"
	"fmt"
	"math"
)

// Evaluation errors.
var (
	ErrUnknownFunction = errors.New("symbolic: unknown function")
	ErrUnboundSymbol   = errors.New("symbolic: unbound symbol")
	ErrDomain          = errors.New("symbolic: argument outside function domain")
	ErrDivisionByZero  = errors.New("symbolic: division by zero")
	ErrOverflow        = errors.New("symbolic: result is not a finite number")
)

// EvalError wraps an evaluation failure with the operation and argument
// that produced it.
type EvalError struct {
	Op  string
	Arg float64
	Err error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s(%g): %v", e.Op, e.Arg, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// Functions maps every supported function name to its float64 rendition.
var Functions = map[string]func(float64) float64{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"exp":   math.Exp,
	"ln":    math.Log,
	"abs":   math.Abs,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"sign":  sign,
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Numeric is a compiled single-variable function.
type Numeric func(x float64) (float64, error)

// Compile turns e into a closure of the single free variable varName.
// Any other free symbol is rejected up front with ErrUnboundSymbol.
func Compile(e Expr, varName string) (Numeric, error) {
	for _, name := range SortedFreeSymbols(e) {
		if name != varName {
			return nil, fmt.Errorf("%w: %s", ErrUnboundSymbol, name)
		}
	}
	return Numeric(compileNode(e, varName)), nil
}

// Eval evaluates e with the given bindings. Every free symbol must be bound.
func Eval(e Expr, env map[string]float64) (float64, error) {
	bound := e
	for _, name := range SortedFreeSymbols(e) {
		val, ok := env[name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnboundSymbol, name)
		}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, &EvalError{Op: name, Arg: val, Err: ErrOverflow}
		}
		bound = Sub(bound, name, NFloat(val))
	}
	return compileNode(bound, "")(0)
}

type node func(x float64) (float64, error)

func compileNode(e Expr, varName string) node {
	switch v := e.(type) {
	case *Num:
		c := v.Float64()
		return func(float64) (float64, error) { return c, nil }
	case *Const:
		c := v.value
		return func(float64) (float64, error) { return c, nil }
	case *Sym:
		if v.name != varName {
			name := v.name
			return func(float64) (float64, error) {
				return 0, fmt.Errorf("%w: %s", ErrUnboundSymbol, name)
			}
		}
		return func(x float64) (float64, error) { return x, nil }
	case *Add:
		terms := compileAll(v.terms, varName)
		return func(x float64) (float64, error) {
			sum := 0.0
			for _, t := range terms {
				tv, err := t(x)
				if err != nil {
					return 0, err
				}
				sum += tv
			}
			return finite("add", x, sum)
		}
	case *Mul:
		factors := compileAll(v.factors, varName)
		return func(x float64) (float64, error) {
			prod := 1.0
			for _, f := range factors {
				fv, err := f(x)
				if err != nil {
					return 0, err
				}
				prod *= fv
			}
			return finite("mul", x, prod)
		}
	case *Pow:
		return compilePow(v, varName)
	case *Func:
		return compileFunc(v, varName)
	}
	return func(float64) (float64, error) {
		return 0, fmt.Errorf("symbolic: cannot evaluate %T", e)
	}
}

func compileAll(es []Expr, varName string) []node {
	out := make([]node, len(es))
	for i, e := range es {
		out[i] = compileNode(e, varName)
	}
	return out
}

func compilePow(p *Pow, varName string) node {
	base := compileNode(p.base, varName)
	exp := compileNode(p.exp, varName)
	return func(x float64) (float64, error) {
		b, err := base(x)
		if err != nil {
			return 0, err
		}
		e, err := exp(x)
		if err != nil {
			return 0, err
		}
		if b == 0 && e < 0 {
			return 0, &EvalError{Op: "pow", Arg: b, Err: ErrDivisionByZero}
		}
		if b < 0 && e != math.Trunc(e) {
			return 0, &EvalError{Op: "pow", Arg: b, Err: ErrDomain}
		}
		return finite("pow", b, math.Pow(b, e))
	}
}

func compileFunc(f *Func, varName string) node {
	arg := compileNode(f.arg, varName)
	fn, ok := Functions[f.name]
	name := f.name
	if !ok {
		return func(float64) (float64, error) {
			return 0, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
		}
	}
	check := domainCheck(name)
	return func(x float64) (float64, error) {
		a, err := arg(x)
		if err != nil {
			return 0, err
		}
		if check != nil {
			if err := check(a); err != nil {
				return 0, &EvalError{Op: name, Arg: a, Err: err}
			}
		}
		return finite(name, a, fn(a))
	}
}

func domainCheck(name string) func(float64) error {
	switch name {
	case "ln":
		return func(a float64) error {
			if a <= 0 {
				return ErrDomain
			}
			return nil
		}
	case "asin", "acos":
		return func(a float64) error {
			if a < -1 || a > 1 {
				return ErrDomain
			}
			return nil
		}
	}
	return nil
}

func finite(op string, arg, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &EvalError{Op: op, Arg: arg, Err: ErrOverflow}
	}
	return v, nil
}
