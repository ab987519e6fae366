package symbolic

// ============================================================
// Differentiation
// ============================================================

// Diff returns d(e)/d(varName), simplified.
func Diff(e Expr, varName string) Expr {
	switch v := e.(type) {
	case *Num, *Const:
		return N(0)
	case *Sym:
		if v.name == varName {
			return N(1)
		}
		return N(0)
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = Diff(t, varName)
		}
		return AddOf(terms...)
	case *Mul:
		return diffMul(v, varName)
	case *Pow:
		return diffPow(v, varName)
	case *Func:
		return diffFunc(v, varName)
	}
	return N(0)
}

// DiffN returns the n-th derivative of e.
func DiffN(e Expr, varName string, n int) Expr {
	for i := 0; i < n; i++ {
		e = Diff(e, varName)
	}
	return e
}

// product rule: d(f1*f2*...*fn) = sum_i (f1*...*fi'*...*fn)
func diffMul(m *Mul, varName string) Expr {
	terms := make([]Expr, 0, len(m.factors))
	for i := range m.factors {
		di := Diff(m.factors[i], varName)
		if isNumEqual(di, 0) {
			continue
		}
		factors := make([]Expr, len(m.factors))
		copy(factors, m.factors)
		factors[i] = di
		terms = append(terms, MulOf(factors...))
	}
	return AddOf(terms...)
}

func diffPow(p *Pow, varName string) Expr {
	baseDeps := DependsOn(p.base, varName)
	expDeps := DependsOn(p.exp, varName)
	switch {
	case !baseDeps && !expDeps:
		return N(0)
	case !expDeps:
		// d(u^n) = n*u^(n-1)*u'
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), Diff(p.base, varName))
	case !baseDeps:
		// d(b^w) = b^w*ln(b)*w'
		return MulOf(p, LnOf(p.base), Diff(p.exp, varName))
	}
	// d(u^w) = u^w*(w'*ln(u) + w*u'/u)
	du := Diff(p.base, varName)
	dw := Diff(p.exp, varName)
	return MulOf(p, AddOf(
		MulOf(dw, LnOf(p.base)),
		MulOf(p.exp, du, PowOf(p.base, N(-1))),
	))
}

// chain rule: d(f(u)) = f'(u)*u'
func diffFunc(f *Func, varName string) Expr {
	u := f.arg
	du := Diff(u, varName)
	if isNumEqual(du, 0) {
		return N(0)
	}
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(u)
	case "cos":
		outer = Neg(SinOf(u))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(u), N(2)))
	case "exp":
		outer = f
	case "ln":
		outer = PowOf(u, N(-1))
	case "asin":
		outer = PowOf(AddOf(N(1), Neg(PowOf(u, N(2)))), F(-1, 2))
	case "acos":
		outer = Neg(PowOf(AddOf(N(1), Neg(PowOf(u, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(u, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(u)
	case "cosh":
		outer = SinhOf(u)
	case "tanh":
		outer = AddOf(N(1), Neg(PowOf(TanhOf(u), N(2))))
	case "abs":
		outer = SignOf(u)
	case "floor", "ceil", "sign":
		// piecewise constant; the derivative is zero wherever it exists
		return N(0)
	default:
		return N(0)
	}
	return MulOf(outer, du)
}
