package compiler_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gonewton/compiler"
)

func compile(t *testing.T, src string) *compiler.Compiled {
	t.Helper()
	c, err := compiler.Compile(src)
	require.NoError(t, err, "compile %q", src)
	return c
}

func eval(t *testing.T, f *compiler.Function, x float64) float64 {
	t.Helper()
	v, err := f.Eval(x)
	require.NoError(t, err)
	return v
}

// ============================================================
// Syntax
// ============================================================

func TestNormalize(t *testing.T) {
	assert.Equal(t, "x**2 + 2**x", compiler.Normalize("x^2 + 2^x"))
	assert.Equal(t, "x**2", compile(t, "x^2").Normalized)
}

func TestCompile_Forms(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"x^2 - 4", "x^2 - 4"},
		{"3x", "3*x"},
		{"3*x", "3*x"},
		{"3 x", "3*x"},
		{"cos x", "cos(x)"},
		{"cosx", "cos(x)"},
		{"2 sin x", "2*sin(x)"},
		{"(x+1)(x-1)", "(x + 1)*(x - 1)"},
		{"x(x+1)", "x*(x + 1)"},
		{"sin^2 x", "sin(x)^2"},
		{"sin 2x", "sin(2*x)"},
		{"sin x cos x", "cos(x)*sin(x)"},
		{"sin x^2", "sin(x^2)"},
		{"-x**2", "-x^2"},
		{"x**-1", "1/x"},
		{"ex", "e*x"},
		{"2e", "2*e"},
		{"2e3", "2000"},
		{"1.5x", "3/2*x"},
		{"sqrt x", "x^(1/2)"},
		{"log(x)", "ln(x)"},
		{"pi x", "pi*x"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			assert.Equal(t, tc.want, compile(t, tc.src).F.String())
		})
	}
}

func TestCompile_ImplicitMultiplicationEquivalent(t *testing.T) {
	a := compile(t, "3x")
	b := compile(t, "3*x")
	c := compile(t, "3 x")
	for _, p := range []float64{-2, 0, 0.5, 7} {
		want := eval(t, b.F, p)
		assert.Equal(t, want, eval(t, a.F, p))
		assert.Equal(t, want, eval(t, c.F, p))
	}
	assert.Equal(t, b.FPrime.String(), a.FPrime.String())
	assert.Equal(t, b.FPrime.String(), c.FPrime.String())
}

func TestCompile_EulerNumber(t *testing.T) {
	c := compile(t, "e**x")
	assert.InDelta(t, math.E, eval(t, c.F, 1), 1e-12)
	assert.InDelta(t, math.Pow(2.71828, 2), eval(t, c.F, 2), 1e-4)

	upper := compile(t, "E^x")
	assert.Equal(t, c.F.String(), upper.F.String())

	// identifiers containing the letter e are left alone
	sec := compile(t, "sec x")
	assert.InDelta(t, 1, eval(t, sec.F, 0), 1e-12)
	assert.InDelta(t, math.Exp(2), eval(t, compile(t, "exp(x)").F, 2), 1e-9)
}

// ============================================================
// Derivatives
// ============================================================

func TestCompile_Derivatives(t *testing.T) {
	cases := []struct {
		src    string
		want   string
		at     float64
		expect float64
	}{
		{"x^2 - 4", "2*x", 3, 6},
		{"x**3 - 2x + 1", "3*x^2 - 2", 2, 10},
		{"cos x", "-sin(x)", 1, -math.Sin(1)},
		{"sin(x)", "cos(x)", 1, math.Cos(1)},
		{"exp(x)", "exp(x)", 1, math.E},
		{"e^x", "e^x", 0, 1},
		{"ln x", "1/x", 4, 0.25},
		{"(x+1)(x-1)", "2*x", 5, 10},
		{"sin^2 x", "2*cos(x)*sin(x)", 0.7, math.Sin(1.4)},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			c := compile(t, tc.src)
			assert.Equal(t, tc.want, c.FPrime.String())
			assert.InDelta(t, tc.expect, eval(t, c.FPrime, tc.at), 1e-12)
		})
	}
}

// ============================================================
// Errors
// ============================================================

func TestCompile_Errors(t *testing.T) {
	cases := []struct {
		src  string
		want error
	}{
		{"3x +* 2", compiler.ErrSyntax},
		{"", compiler.ErrSyntax},
		{"   ", compiler.ErrSyntax},
		{"(x+1", compiler.ErrSyntax},
		{"x+1)", compiler.ErrSyntax},
		{"x $ 2", compiler.ErrSyntax},
		{"sin", compiler.ErrSyntax},
		{"1.2.3", compiler.ErrSyntax},
		{"x +", compiler.ErrSyntax},
		{"foo(x)", compiler.ErrUnknownIdentifier},
		{"y + x", compiler.ErrFreeVariable},
		{"x*y", compiler.ErrFreeVariable},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			_, err := compiler.Compile(tc.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var cerr *compiler.Error
			assert.ErrorAs(t, err, &cerr)
		})
	}
}

func TestCompile_ErrorPosition(t *testing.T) {
	_, err := compiler.Compile("3x +* 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "position 4")

	_, err = compiler.Compile("x + y")
	var cerr *compiler.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 4, cerr.Pos)
	assert.Contains(t, cerr.Msg, `"y"`)
}

func TestCompile_ReportsWholeRune(t *testing.T) {
	_, err := compiler.Compile("2é")
	var cerr *compiler.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "unexpected character 'é'", cerr.Msg)
	assert.Equal(t, 1, cerr.Pos)
}

func TestParse_KeepsOtherSymbols(t *testing.T) {
	e, err := compiler.Parse("a x + b")
	require.NoError(t, err)
	assert.Equal(t, "a*x + b", e.String())
}

// ============================================================
// Evaluation
// ============================================================

func TestFunction_EvalAllBroadcastsConstants(t *testing.T) {
	c := compile(t, "5")
	assert.True(t, c.F.IsConstant())
	ys, err := c.F.EvalAll([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5, 5}, ys)

	zeros, err := c.FPrime.EvalAll([]float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, zeros)
}

func TestFunction_EvalErrors(t *testing.T) {
	c := compile(t, "ln x")
	_, err := c.F.Eval(-1)
	assert.Error(t, err)

	_, err = c.F.EvalAll([]float64{1, -1})
	assert.Error(t, err)
}
