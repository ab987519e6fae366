package compiler

import (
	"sort"

	"github.com/njchilds90/gonewton/symbolic"
)

// Variable is the only free variable an expression may reference.
const Variable = "x"

var functions = map[string]func(symbolic.Expr) symbolic.Expr{
	"sin":   symbolic.SinOf,
	"cos":   symbolic.CosOf,
	"tan":   symbolic.TanOf,
	"sec":   func(u symbolic.Expr) symbolic.Expr { return symbolic.PowOf(symbolic.CosOf(u), symbolic.N(-1)) },
	"csc":   func(u symbolic.Expr) symbolic.Expr { return symbolic.PowOf(symbolic.SinOf(u), symbolic.N(-1)) },
	"cot":   func(u symbolic.Expr) symbolic.Expr { return symbolic.PowOf(symbolic.TanOf(u), symbolic.N(-1)) },
	"asin":  symbolic.AsinOf,
	"acos":  symbolic.AcosOf,
	"atan":  symbolic.AtanOf,
	"sinh":  symbolic.SinhOf,
	"cosh":  symbolic.CoshOf,
	"tanh":  symbolic.TanhOf,
	"exp":   symbolic.ExpOf,
	"log":   symbolic.LnOf,
	"ln":    symbolic.LnOf,
	"sqrt":  symbolic.SqrtOf,
	"abs":   symbolic.AbsOf,
	"floor": symbolic.FloorOf,
	"ceil":  symbolic.CeilOf,
	"sign":  symbolic.SignOf,
}

var constants = map[string]bool{"pi": true, "e": true, "E": true}

var maxNameLen = func() int {
	n := 0
	for name := range functions {
		n = max(n, len(name))
	}
	return n
}()

func isFunction(name string) bool {
	_, ok := functions[name]
	return ok
}

func isKnownName(name string) bool {
	return isFunction(name) || constants[name] || name == Variable
}

// FunctionNames lists the accepted function names in lexical order.
func FunctionNames() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
