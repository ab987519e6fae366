package plot_test

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gonewton/plot"
)

type fn func(float64) (float64, error)

func (f fn) Eval(x float64) (float64, error) { return f(x) }

var square = fn(func(x float64) (float64, error) { return x*x - 4, nil })

func TestBounds(t *testing.T) {
	lo, hi := plot.Bounds([]float64{3, 2.1666, 2})
	assert.InDelta(t, 1.5, lo, 1e-12)
	assert.InDelta(t, 3.5, hi, 1e-12)

	// a single point gets a padding of 1
	lo, hi = plot.Bounds([]float64{2})
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 3.0, hi)
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, plot.Linspace(0, 1, 5))
	assert.Equal(t, []float64{3}, plot.Linspace(3, 9, 1))
	assert.Nil(t, plot.Linspace(0, 1, 0))

	xs := plot.Linspace(-1.7, 4.3, 400)
	assert.Len(t, xs, 400)
	assert.Equal(t, -1.7, xs[0])
	assert.Equal(t, 4.3, xs[399])
}

func TestPrepare(t *testing.T) {
	points := []float64{3, 2.1666666666666665, 2.0064102564102564, 2}
	d, err := plot.Prepare(square, points, 0)
	require.NoError(t, err)

	assert.Len(t, d.Domain, plot.DefaultSamples)
	assert.Len(t, d.CurveY, plot.DefaultSamples)
	assert.InDelta(t, 1.5, d.Domain[0], 1e-12)
	assert.InDelta(t, 3.5, d.Domain[len(d.Domain)-1], 1e-12)
	assert.Equal(t, points, d.IterateXs)
	assert.Equal(t, 5.0, d.IterateYs[0])
	assert.Equal(t, plot.Point{X: 2, Y: 0}, d.Root)
	assert.Zero(t, d.Skipped)
}

func TestPrepare_ConstantFunctionIsBroadcast(t *testing.T) {
	constant := fn(func(float64) (float64, error) { return 7, nil })
	d, err := plot.Prepare(constant, []float64{1}, 50)
	require.NoError(t, err)

	require.Len(t, d.CurveY, 50)
	assert.Len(t, d.Domain, 50)
	for _, y := range d.CurveY {
		assert.Equal(t, 7.0, y)
	}
}

func TestPrepare_SkipsUndefinedSamples(t *testing.T) {
	undefined := errors.New("undefined")
	sqrt := fn(func(x float64) (float64, error) {
		if x < 0 {
			return 0, undefined
		}
		return math.Sqrt(x), nil
	})
	// domain is [-1, 3]; a quarter of it is undefined
	d, err := plot.Prepare(sqrt, []float64{0, 2}, 401)
	require.NoError(t, err)

	assert.Equal(t, 100, d.Skipped)
	assert.Len(t, d.Domain, 301)
	assert.Len(t, d.CurveY, 301)
	assert.Equal(t, 0.0, d.Domain[0])
}

func TestPrepare_Errors(t *testing.T) {
	_, err := plot.Prepare(square, nil, 0)
	assert.ErrorIs(t, err, plot.ErrNoPoints)

	_, err = plot.Prepare(square, []float64{1}, 1)
	assert.ErrorIs(t, err, plot.ErrBadSamples)

	never := fn(func(float64) (float64, error) { return 0, errors.New("nope") })
	_, err = plot.Prepare(never, []float64{1}, 10)
	assert.ErrorIs(t, err, plot.ErrNoCurve)

	// the marker itself is undefined even though most samples are fine
	hole := fn(func(x float64) (float64, error) {
		if x == 1 {
			return 0, errors.New("hole")
		}
		return x, nil
	})
	_, err = plot.Prepare(hole, []float64{1}, 10)
	assert.ErrorIs(t, err, plot.ErrMarkerFailed)
}

func TestRender(t *testing.T) {
	d, err := plot.Prepare(square, []float64{3, 2.1666666666666665, 2}, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, plot.Render(&buf, d, plot.RenderOptions{Width: 320, Height: 240}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestRender_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, plot.Render(&buf, nil, plot.RenderOptions{}), plot.ErrNoPoints)

	d, err := plot.Prepare(square, []float64{2}, 10)
	require.NoError(t, err)
	assert.Error(t, plot.Render(&buf, d, plot.RenderOptions{Width: 50, Height: 50}))
}
