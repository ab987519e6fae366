package symbolic

import (
	"math/big"
	"sort"
)

// ============================================================
// Constructors
// ============================================================

// Every constructor returns a simplified node, so trees built through them
// are always in normal form.

func AddOf(terms ...Expr) Expr { return simplifyAdd(terms) }

func MulOf(factors ...Expr) Expr { return simplifyMul(factors) }

func PowOf(base, exp Expr) Expr { return simplifyPow(base, exp) }

// Neg returns -e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// Quo returns a/b.
func Quo(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

// Simplify rebuilds e bottom-up through the constructors.
func Simplify(e Expr) Expr {
	switch v := e.(type) {
	case *Num, *Sym, *Const:
		return e
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = Simplify(t)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = Simplify(f)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(Simplify(v.base), Simplify(v.exp))
	case *Func:
		return simplifyFunc(funcOf(v.name, Simplify(v.arg)))
	}
	return e
}

// ============================================================
// Add
// ============================================================

func simplifyAdd(terms []Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	for _, t := range terms {
		if inner, ok := t.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, t)
		}
	}

	numAccum := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, rest := extractCoefficient(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], coeff)
	}

	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		c := coeffs[key]
		switch {
		case c.IsZero():
		case c.IsOne() && !c.inexact:
			result = append(result, rests[key])
		default:
			result = append(result, MulOf(c, rests[key]))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

func extractCoefficient(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest}
		}
	}
	return N(1), e
}

// ============================================================
// Mul
// ============================================================

func simplifyMul(factors []Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	for _, f := range factors {
		if inner, ok := f.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, f)
		}
	}

	coeff := N(1)
	order := []string{}
	bases := map[string]Expr{}
	exps := map[string][]Expr{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := Expr(f), Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		if _, seen := bases[key]; !seen {
			order = append(order, key)
			bases[key] = base
		}
		exps[key] = append(exps[key], exp)
	}
	if coeff.IsZero() {
		return N(0)
	}

	others := make([]Expr, 0, len(order))
	for _, key := range order {
		p := PowOf(bases[key], AddOf(exps[key]...))
		if n, ok := p.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		others = append(others, p)
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sorted := make([]Expr, len(ks))
	for i := range ks {
		sorted[i] = ks[i].e
	}

	if coeff.IsOne() && !coeff.inexact {
		if len(sorted) == 1 {
			return sorted[0]
		}
		return &Mul{factors: sorted}
	}
	return &Mul{factors: append([]Expr{coeff}, sorted...)}
}

// ============================================================
// Pow
// ============================================================

const maxFoldedExponent = 20

func simplifyPow(base, exp Expr) Expr {
	en, expIsNum := exp.(*Num)
	bn, baseIsNum := base.(*Num)

	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() && !en.inexact {
		return base
	}

	// 0^0 is indeterminate and 0^negative is a division by zero; both are
	// left for evaluation to report.
	if baseIsNum && bn.IsZero() {
		if expIsNum && en.IsPositive() {
			return N(0)
		}
		return &Pow{base: base, exp: exp}
	}
	if baseIsNum && bn.IsOne() && !bn.inexact {
		return N(1)
	}

	if baseIsNum && expIsNum && en.IsInteger() {
		e := en.val.Num().Int64()
		if en.val.Num().IsInt64() && e >= -maxFoldedExponent && e <= maxFoldedExponent {
			k := e
			if k < 0 {
				k = -k
			}
			result := &Num{val: big.NewRat(1, 1), inexact: en.inexact}
			for i := int64(0); i < k; i++ {
				result = numMul(result, bn)
			}
			if e < 0 {
				return numRecip(result)
			}
			return result
		}
	}

	// (b^p)^q = b^(p*q) only holds for integer q in general.
	if inner, ok := base.(*Pow); ok && expIsNum && en.IsInteger() {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}

	// exp(u)^k = exp(k*u)
	if inner, ok := base.(*Func); ok && inner.name == "exp" && expIsNum {
		return ExpOf(MulOf(inner.arg, exp))
	}
	return &Pow{base: base, exp: exp}
}

// ============================================================
// Func
// ============================================================

func simplifyFunc(f *Func) Expr {
	arg := f.arg
	switch f.name {
	case "sin", "tan", "asin", "atan", "sinh", "tanh":
		if isNumEqual(arg, 0) {
			return N(0)
		}
	case "cos", "cosh":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if isNumEqual(arg, 1) {
			return E
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "ln":
		if isNumEqual(arg, 1) {
			return N(0)
		}
		if arg == Expr(E) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
		if p, ok := arg.(*Pow); ok && p.base == Expr(E) {
			return p.exp
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			if n.IsNegative() {
				return numNeg(n)
			}
			return n
		}
		if m, ok := arg.(*Mul); ok {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegative() {
				rest := append([]Expr{numNeg(coeff)}, m.factors[1:]...)
				return AbsOf(MulOf(rest...))
			}
		}
	case "sign":
		if n, ok := arg.(*Num); ok {
			return N(int64(n.val.Sign()))
		}
	case "floor", "ceil":
		if n, ok := arg.(*Num); ok && n.IsInteger() && !n.inexact {
			return n
		}
	}

	// Exact literals stay symbolic (sin(2) rather than 0.909...); only values
	// already produced by floating point are folded again.
	if n, ok := arg.(*Num); ok && n.inexact {
		if fn, known := Functions[f.name]; known {
			if folded, finite := foldFloat(fn(n.Float64())); finite {
				return folded
			}
		}
	}
	return &Func{name: f.name, arg: arg}
}

// ============================================================
// Substitution and free symbols
// ============================================================

// Sub replaces every occurrence of the symbol varName with value.
func Sub(e Expr, varName string, value Expr) Expr {
	switch v := e.(type) {
	case *Num, *Const:
		return e
	case *Sym:
		if v.name == varName {
			return value
		}
		return v
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = Sub(t, varName, value)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = Sub(f, varName, value)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(Sub(v.base, varName, value), Sub(v.exp, varName, value))
	case *Func:
		return simplifyFunc(funcOf(v.name, Sub(v.arg, varName, value)))
	}
	return e
}

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

// SortedFreeSymbols returns the free symbol names in lexical order.
func SortedFreeSymbols(e Expr) []string {
	set := FreeSymbols(e)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DependsOn reports whether varName occurs in e.
func DependsOn(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}
