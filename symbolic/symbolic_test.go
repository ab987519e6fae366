package symbolic_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gonewton/symbolic"
)

var x = symbolic.S("x")

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	assert.Equal(t, "42", symbolic.N(42).String())
}

func TestNum_Rational(t *testing.T) {
	assert.Equal(t, "1/3", symbolic.F(1, 3).String())
	assert.Equal(t, `\frac{2}{5}`, symbolic.F(2, 5).LaTeX())
}

func TestNum_ParseExact(t *testing.T) {
	n, err := symbolic.ParseNum("0.25")
	require.NoError(t, err)
	assert.Equal(t, "1/4", n.String())
	assert.False(t, n.Inexact())

	_, err = symbolic.ParseNum("abc")
	assert.Error(t, err)
}

func TestNum_RationalArithmetic(t *testing.T) {
	assert.Equal(t, "5/6", symbolic.AddOf(symbolic.F(1, 2), symbolic.F(1, 3)).String())
	assert.Equal(t, "1024", symbolic.PowOf(symbolic.N(2), symbolic.N(10)).String())
	assert.Equal(t, "1/4", symbolic.PowOf(symbolic.N(2), symbolic.N(-2)).String())
}

// ============================================================
// Simplification
// ============================================================

func TestSimplify_LikeTerms(t *testing.T) {
	assert.Equal(t, "2*x", symbolic.AddOf(x, x).String())
	assert.Equal(t, "0", symbolic.AddOf(x, symbolic.Neg(x)).String())
	assert.Equal(t, "x^2", symbolic.MulOf(x, x).String())
	assert.Equal(t, "1", symbolic.Quo(x, x).String())
}

func TestSimplify_Printing(t *testing.T) {
	assert.Equal(t, "x - 4", symbolic.AddOf(x, symbolic.N(-4)).String())
	assert.Equal(t, "-3*x + 2", symbolic.AddOf(symbolic.MulOf(symbolic.N(-3), x), symbolic.N(2)).String())
	assert.Equal(t, "x/(x + 1)", symbolic.Quo(x, symbolic.AddOf(x, symbolic.N(1))).String())
	assert.Equal(t, "2/(x + 1)", symbolic.Quo(symbolic.N(2), symbolic.AddOf(x, symbolic.N(1))).String())
	assert.Equal(t, "sin(x)/(x - 1)", symbolic.Quo(symbolic.SinOf(x), symbolic.AddOf(x, symbolic.N(-1))).String())
	assert.Equal(t, "x^(1/2)", symbolic.SqrtOf(x).String())
	assert.Equal(t, `\sqrt{x}`, symbolic.SqrtOf(x).LaTeX())
	assert.Equal(t, `\pi`, symbolic.Pi.LaTeX())
}

func TestSimplify_FunctionIdentities(t *testing.T) {
	assert.Equal(t, "0", symbolic.SinOf(symbolic.N(0)).String())
	assert.Equal(t, "1", symbolic.CosOf(symbolic.N(0)).String())
	assert.Equal(t, "1", symbolic.LnOf(symbolic.E).String())
	assert.Equal(t, "x", symbolic.ExpOf(symbolic.LnOf(x)).String())
	assert.Equal(t, "sin(2)", symbolic.SinOf(symbolic.N(2)).String())
}

func TestSimplify_FoldsInexact(t *testing.T) {
	folded := symbolic.SinOf(symbolic.NFloat(0.5))
	n, ok := folded.(*symbolic.Num)
	require.True(t, ok, "want a folded number, got %s", folded)
	assert.True(t, n.Inexact())
	assert.InDelta(t, math.Sin(0.5), n.Float64(), 1e-15)
}

func TestSub(t *testing.T) {
	e := symbolic.PowOf(x, symbolic.N(2))
	assert.Equal(t, "9", symbolic.Sub(e, "x", symbolic.N(3)).String())
	assert.Equal(t, "x^2", symbolic.Sub(e, "y", symbolic.N(3)).String())
}

func TestFreeSymbols(t *testing.T) {
	e := symbolic.AddOf(symbolic.MulOf(symbolic.S("y"), x), symbolic.SinOf(symbolic.S("a")))
	assert.Equal(t, []string{"a", "x", "y"}, symbolic.SortedFreeSymbols(e))
	assert.True(t, symbolic.DependsOn(e, "y"))
	assert.False(t, symbolic.DependsOn(e, "z"))
}

// ============================================================
// Differentiation
// ============================================================

func TestDiff(t *testing.T) {
	cases := []struct {
		name string
		expr symbolic.Expr
		want string
	}{
		{"constant", symbolic.N(5), "0"},
		{"self", x, "1"},
		{"other symbol", symbolic.S("y"), "0"},
		{"power", symbolic.PowOf(x, symbolic.N(2)), "2*x"},
		{"polynomial", symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(-4)), "2*x"},
		{"shifted square", symbolic.PowOf(symbolic.AddOf(x, symbolic.N(-2)), symbolic.N(2)), "2*(x - 2)"},
		{"sin", symbolic.SinOf(x), "cos(x)"},
		{"cos", symbolic.CosOf(x), "-sin(x)"},
		{"ln", symbolic.LnOf(x), "1/x"},
		{"exp", symbolic.ExpOf(x), "exp(x)"},
		{"e to the x", symbolic.PowOf(symbolic.E, x), "e^x"},
		{"product", symbolic.MulOf(x, symbolic.SinOf(x)), "cos(x)*x + sin(x)"},
		{"chain", symbolic.SinOf(symbolic.PowOf(x, symbolic.N(2))), "2*cos(x^2)*x"},
		{"floor", symbolic.FloorOf(x), "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, symbolic.Diff(tc.expr, "x").String())
		})
	}
}

func TestDiffN(t *testing.T) {
	cube := symbolic.PowOf(x, symbolic.N(3))
	assert.Equal(t, "3*x^2", symbolic.DiffN(cube, "x", 1).String())
	assert.Equal(t, "6*x", symbolic.DiffN(cube, "x", 2).String())
}

// Numerically compare symbolic derivatives against central differences.
func TestDiff_MatchesFiniteDifference(t *testing.T) {
	exprs := []symbolic.Expr{
		symbolic.MulOf(x, symbolic.ExpOf(x)),
		symbolic.Quo(symbolic.SinOf(x), symbolic.AddOf(x, symbolic.N(2))),
		symbolic.PowOf(x, x),
		symbolic.AtanOf(symbolic.MulOf(symbolic.N(3), x)),
		symbolic.TanhOf(x),
		symbolic.SqrtOf(symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(1))),
	}
	const h = 1e-6
	for _, e := range exprs {
		f, err := symbolic.Compile(e, "x")
		require.NoError(t, err)
		df, err := symbolic.Compile(symbolic.Diff(e, "x"), "x")
		require.NoError(t, err)
		for _, p := range []float64{0.3, 1.1, 2.5} {
			hi, err := f(p + h)
			require.NoError(t, err)
			lo, err := f(p - h)
			require.NoError(t, err)
			got, err := df(p)
			require.NoError(t, err)
			assert.InDelta(t, (hi-lo)/(2*h), got, 1e-5, "%s at %g", e, p)
		}
	}
}

// ============================================================
// Numeric compilation
// ============================================================

func TestCompile_Evaluates(t *testing.T) {
	f, err := symbolic.Compile(symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(-4)), "x")
	require.NoError(t, err)
	v, err := f(3)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
}

func TestCompile_Errors(t *testing.T) {
	ln, err := symbolic.Compile(symbolic.LnOf(x), "x")
	require.NoError(t, err)
	_, err = ln(-1)
	assert.ErrorIs(t, err, symbolic.ErrDomain)

	var evalErr *symbolic.EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "ln", evalErr.Op)

	recip, err := symbolic.Compile(symbolic.PowOf(x, symbolic.N(-1)), "x")
	require.NoError(t, err)
	_, err = recip(0)
	assert.ErrorIs(t, err, symbolic.ErrDivisionByZero)

	huge, err := symbolic.Compile(symbolic.ExpOf(x), "x")
	require.NoError(t, err)
	_, err = huge(1000)
	assert.ErrorIs(t, err, symbolic.ErrOverflow)

	_, err = symbolic.Compile(symbolic.AddOf(x, symbolic.S("y")), "x")
	assert.ErrorIs(t, err, symbolic.ErrUnboundSymbol)
}

func TestEval_Bindings(t *testing.T) {
	e := symbolic.AddOf(symbolic.MulOf(symbolic.S("a"), x), symbolic.Pi)
	v, err := symbolic.Eval(e, map[string]float64{"a": 2, "x": 3})
	require.NoError(t, err)
	assert.InDelta(t, 6+math.Pi, v, 1e-12)

	_, err = symbolic.Eval(e, map[string]float64{"x": 3})
	assert.ErrorIs(t, err, symbolic.ErrUnboundSymbol)
}

func TestApply_UnknownFunction(t *testing.T) {
	_, err := symbolic.Apply("gamma", x)
	assert.ErrorIs(t, err, symbolic.ErrUnknownFunction)
}

// ============================================================
// JSON
// ============================================================

func TestJSON_RoundTrip(t *testing.T) {
	e := symbolic.AddOf(
		symbolic.MulOf(symbolic.F(3, 2), symbolic.SinOf(x)),
		symbolic.PowOf(symbolic.E, x),
		symbolic.Pi,
	)
	s, err := symbolic.ToJSON(e)
	require.NoError(t, err)

	var tree map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &tree))
	back, err := symbolic.FromJSON(tree)
	require.NoError(t, err)
	assert.True(t, symbolic.Equal(e, back), "want %s, got %s", e, back)
}

func TestJSON_RejectsUnknownType(t *testing.T) {
	_, err := symbolic.FromJSON(map[string]interface{}{"type": "matrix"})
	assert.Error(t, err)
}
