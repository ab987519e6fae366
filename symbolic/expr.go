// Package symbolic is the expression kernel behind gonewton.
//
// Design goals:
//   - Expressions are a closed set of node kinds (Num, Sym, Const, Add, Mul,
//     Pow, Func) matched exhaustively with type switches
//   - Exact rational arithmetic for literals (math/big.Rat)
//   - Deterministic simplification and stable output that the compiler can
//     parse back
//   - Exact symbolic differentiation and numeric compilation to closures
package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is a node of an expression tree. The set of implementations is closed:
// only the node types declared in this package satisfy it.
type Expr interface {
	String() string
	LaTeX() string
	exprType() string
}

// ============================================================
// Num: exact rational number
// ============================================================

// Num is a rational literal. Values that came out of floating point folding
// are marked inexact and printed in decimal form.
type Num struct {
	val     *big.Rat
	inexact bool
}

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat returns an inexact literal. It panics on NaN or ±Inf; use foldFloat
// when the value may not be finite.
func NFloat(f float64) *Num {
	r := new(big.Rat).SetFloat64(f)
	if r == nil {
		panic("symbolic: non-finite literal")
	}
	return &Num{val: r, inexact: true}
}

// ParseNum reads a decimal literal such as "3", "0.25" or "2e3" exactly.
func ParseNum(s string) (*Num, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("symbolic: invalid number %q", s)
	}
	return &Num{val: r}, nil
}

func foldFloat(f float64) (*Num, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return NFloat(f), true
}

func (n *Num) exprType() string { return "num" }
func (n *Num) Float64() float64 { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool     { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool      { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool   { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool  { return n.val.IsInt() }
func (n *Num) IsNegative() bool { return n.val.Sign() < 0 }
func (n *Num) IsPositive() bool { return n.val.Sign() > 0 }
func (n *Num) Inexact() bool    { return n.inexact }
func (n *Num) Rat() *big.Rat    { return new(big.Rat).Set(n.val) }

func (n *Num) String() string {
	if n.inexact {
		return strconv.FormatFloat(n.Float64(), 'g', -1, 64)
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.inexact || n.val.IsInt() {
		return n.String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func numAdd(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Add(a.val, b.val), inexact: a.inexact || b.inexact}
}
func numMul(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Mul(a.val, b.val), inexact: a.inexact || b.inexact}
}
func numNeg(a *Num) *Num { return &Num{val: new(big.Rat).Neg(a.val), inexact: a.inexact} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val), inexact: a.inexact}
}
func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) String() string   { return s.name }
func (s *Sym) LaTeX() string    { return s.name }
func (s *Sym) exprType() string { return "sym" }
func (s *Sym) Name() string     { return s.name }

// ============================================================
// Const: named mathematical constant
// ============================================================

// Const is a named irrational constant kept symbolic until evaluation.
type Const struct {
	name  string
	value float64
}

var (
	// E is Euler's number.
	E = &Const{name: "e", value: math.E}
	// Pi is the ratio of a circle's circumference to its diameter.
	Pi = &Const{name: "pi", value: math.Pi}
)

func (c *Const) String() string   { return c.name }
func (c *Const) exprType() string { return "const" }
func (c *Const) Name() string     { return c.name }
func (c *Const) Value() float64   { return c.value }
func (c *Const) LaTeX() string {
	if c == Pi {
		return "\\pi"
	}
	return c.name
}

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func (a *Add) exprType() string { return "add" }
func (a *Add) Terms() []Expr    { return a.terms }

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		neg, abs := splitSign(t)
		switch {
		case i == 0 && neg:
			sb.WriteString("-" + abs.String())
		case i == 0:
			sb.WriteString(t.String())
		case neg:
			sb.WriteString(" - " + abs.String())
		default:
			sb.WriteString(" + " + t.String())
		}
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		neg, abs := splitSign(t)
		switch {
		case i == 0 && neg:
			sb.WriteString("-" + abs.LaTeX())
		case i == 0:
			sb.WriteString(t.LaTeX())
		case neg:
			sb.WriteString(" - " + abs.LaTeX())
		default:
			sb.WriteString(" + " + t.LaTeX())
		}
	}
	return sb.String()
}

// splitSign reports whether t prints with a leading minus and returns its
// absolute counterpart.
func splitSign(t Expr) (bool, Expr) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return true, numNeg(v)
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			rest := append([]Expr{numNeg(c)}, v.factors[1:]...)
			return true, MulOf(rest...)
		}
	}
	return false, t
}

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) Factors() []Expr  { return m.factors }

// fraction splits the factors into numerator and denominator parts, the
// latter holding factors raised to a negative literal power.
func (m *Mul) fraction() (num, den []Expr) {
	for _, f := range m.factors {
		if p, ok := f.(*Pow); ok {
			if e, ok := p.exp.(*Num); ok && e.IsNegative() {
				den = append(den, PowOf(p.base, numNeg(e)))
				continue
			}
		}
		num = append(num, f)
	}
	return num, den
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	num, den := m.fraction()
	numStr := joinFactors(num)
	if len(den) == 0 {
		return numStr
	}
	denStr := joinFactors(den)
	if len(den) > 1 {
		denStr = "(" + denStr + ")"
	} else if _, isAdd := den[0].(*Add); !isAdd && needsParens(den[0]) {
		// joinFactors already wrapped a sum
		denStr = "(" + denStr + ")"
	}
	return numStr + "/" + denStr
}

func joinFactors(fs []Expr) string {
	if len(fs) == 0 {
		return "1"
	}
	parts := make([]string, 0, len(fs))
	for i, f := range fs {
		if n, ok := f.(*Num); ok && i == 0 && n.IsNegOne() && len(fs) > 1 {
			parts = append(parts, "-"+wrapFactor(fs[1]))
			parts = append(parts, wrapAll(fs[2:])...)
			return strings.Join(parts, "*")
		}
		parts = append(parts, wrapFactor(f))
	}
	return strings.Join(parts, "*")
}

func wrapAll(fs []Expr) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = wrapFactor(f)
	}
	return out
}

func wrapFactor(f Expr) string {
	if _, isAdd := f.(*Add); isAdd {
		return "(" + f.String() + ")"
	}
	return f.String()
}

func needsParens(e Expr) bool {
	switch v := e.(type) {
	case *Add, *Mul:
		return true
	case *Num:
		return !v.IsInteger() || v.IsNegative()
	}
	return false
}

func (m *Mul) LaTeX() string {
	num, den := m.fraction()
	numStr := latexFactors(num)
	if len(den) == 0 {
		return numStr
	}
	return "\\frac{" + numStr + "}{" + latexFactors(den) + "}"
}

func latexFactors(fs []Expr) string {
	if len(fs) == 0 {
		return "1"
	}
	parts := make([]string, len(fs))
	for i, f := range fs {
		if n, ok := f.(*Num); ok && i == 0 && n.IsNegOne() && len(fs) > 1 {
			parts[i] = "-"
			continue
		}
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "\\left(" + f.LaTeX() + "\\right)"
		} else {
			parts[i] = f.LaTeX()
		}
	}
	if parts[0] == "-" {
		return "-" + strings.Join(parts[1:], " ")
	}
	return strings.Join(parts, " ")
}

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) Base() Expr       { return p.base }
func (p *Pow) ExpExpr() Expr    { return p.exp }

func (p *Pow) String() string {
	if e, ok := p.exp.(*Num); ok && e.IsNegative() {
		inv := PowOf(p.base, numNeg(e))
		s := inv.String()
		if needsParens(inv) {
			s = "(" + s + ")"
		}
		return "1/" + s
	}
	baseStr := p.base.String()
	switch b := p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "(" + baseStr + ")"
	case *Num:
		if b.IsNegative() || !b.IsInteger() {
			baseStr = "(" + baseStr + ")"
		}
	}
	expStr := p.exp.String()
	switch e := p.exp.(type) {
	case *Sym, *Const:
	case *Num:
		if !e.IsInteger() || e.IsNegative() {
			expStr = "(" + expStr + ")"
		}
	default:
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	if e, ok := p.exp.(*Num); ok && e.IsNegative() {
		return "\\frac{1}{" + PowOf(p.base, numNeg(e)).LaTeX() + "}"
	}
	if e, ok := p.exp.(*Num); ok && !e.inexact && e.val.Cmp(big.NewRat(1, 2)) == 0 {
		return "\\sqrt{" + p.base.LaTeX() + "}"
	}
	baseStr := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr   { return simplifyFunc(funcOf("sin", arg)) }
func CosOf(arg Expr) Expr   { return simplifyFunc(funcOf("cos", arg)) }
func TanOf(arg Expr) Expr   { return simplifyFunc(funcOf("tan", arg)) }
func ExpOf(arg Expr) Expr   { return simplifyFunc(funcOf("exp", arg)) }
func LnOf(arg Expr) Expr    { return simplifyFunc(funcOf("ln", arg)) }
func SqrtOf(arg Expr) Expr  { return PowOf(arg, F(1, 2)) }
func AbsOf(arg Expr) Expr   { return simplifyFunc(funcOf("abs", arg)) }
func AsinOf(arg Expr) Expr  { return simplifyFunc(funcOf("asin", arg)) }
func AcosOf(arg Expr) Expr  { return simplifyFunc(funcOf("acos", arg)) }
func AtanOf(arg Expr) Expr  { return simplifyFunc(funcOf("atan", arg)) }
func SinhOf(arg Expr) Expr  { return simplifyFunc(funcOf("sinh", arg)) }
func CoshOf(arg Expr) Expr  { return simplifyFunc(funcOf("cosh", arg)) }
func TanhOf(arg Expr) Expr  { return simplifyFunc(funcOf("tanh", arg)) }
func FloorOf(arg Expr) Expr { return simplifyFunc(funcOf("floor", arg)) }
func CeilOf(arg Expr) Expr  { return simplifyFunc(funcOf("ceil", arg)) }
func SignOf(arg Expr) Expr  { return simplifyFunc(funcOf("sign", arg)) }

// Apply builds name(arg) for any name in Functions.
func Apply(name string, arg Expr) (Expr, error) {
	if _, ok := Functions[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return simplifyFunc(funcOf(name, arg)), nil
}

func (f *Func) exprType() string { return "func" }
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }
func (f *Func) String() string   { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "exp", "ln", "sinh", "cosh", "tanh":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	case "floor":
		return "\\lfloor " + f.arg.LaTeX() + " \\rfloor"
	case "ceil":
		return "\\lceil " + f.arg.LaTeX() + " \\rceil"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

// ============================================================
// Public Helpers
// ============================================================

func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

// Equal reports structural equality of two expressions.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *Num:
		y, ok := b.(*Num)
		return ok && numCmp(x, y) == 0
	case *Sym:
		y, ok := b.(*Sym)
		return ok && x.name == y.name
	case *Const:
		y, ok := b.(*Const)
		return ok && x.name == y.name
	case *Add:
		y, ok := b.(*Add)
		return ok && equalAll(x.terms, y.terms)
	case *Mul:
		y, ok := b.(*Mul)
		return ok && equalAll(x.factors, y.factors)
	case *Pow:
		y, ok := b.(*Pow)
		return ok && Equal(x.base, y.base) && Equal(x.exp, y.exp)
	case *Func:
		y, ok := b.(*Func)
		return ok && x.name == y.name && Equal(x.arg, y.arg)
	}
	return false
}

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.val.Cmp(big.NewRat(v, 1)) == 0
}
