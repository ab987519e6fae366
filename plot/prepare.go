// Package plot prepares the data needed to draw f together with the
// iterates a run visited, and renders it as a PNG.
package plot

import (
	"errors"
	"fmt"
	"math"
)

// DefaultSamples is the number of curve samples when none is requested.
const DefaultSamples = 400

var (
	ErrNoPoints     = errors.New("plot: no points to plot")
	ErrNoCurve      = errors.New("plot: function is undefined over the whole domain")
	ErrBadSamples   = errors.New("plot: sample count must be at least 2")
	ErrMarkerFailed = errors.New("plot: cannot evaluate iterate")
)

// Function is the curve to draw.
type Function interface {
	Eval(x float64) (float64, error)
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Data is everything a plot of one run needs. Domain and CurveY always have
// the same length; samples where f is undefined are left out of both and
// counted in Skipped.
type Data struct {
	Domain    []float64 `json:"domain"`
	CurveY    []float64 `json:"curveY"`
	IterateXs []float64 `json:"iterateXs"`
	IterateYs []float64 `json:"iterateYs"`
	Root      Point     `json:"root"`
	Skipped   int       `json:"skipped,omitempty"`
}

// Prepare samples f around the visited points. The last point is the root
// marker whether or not the run converged.
func Prepare(f Function, points []float64, samples int) (*Data, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if samples == 0 {
		samples = DefaultSamples
	}
	if samples < 2 {
		return nil, fmt.Errorf("%w: %d", ErrBadSamples, samples)
	}

	lo, hi := Bounds(points)
	d := &Data{
		Domain:    make([]float64, 0, samples),
		CurveY:    make([]float64, 0, samples),
		IterateXs: append([]float64(nil), points...),
		IterateYs: make([]float64, len(points)),
	}
	for _, x := range Linspace(lo, hi, samples) {
		y, err := f.Eval(x)
		if err != nil {
			d.Skipped++
			continue
		}
		d.Domain = append(d.Domain, x)
		d.CurveY = append(d.CurveY, y)
	}
	if len(d.Domain) == 0 {
		return nil, ErrNoCurve
	}

	for i, x := range points {
		y, err := f.Eval(x)
		if err != nil {
			return nil, fmt.Errorf("%w at x=%g: %v", ErrMarkerFailed, x, err)
		}
		d.IterateYs[i] = y
	}
	last := len(points) - 1
	d.Root = Point{X: points[last], Y: d.IterateYs[last]}
	return d, nil
}

// Bounds returns the padded display interval for points: half the spread
// on each side, or 1.0 when all points coincide.
func Bounds(points []float64) (lo, hi float64) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p)
		maxX = math.Max(maxX, p)
	}
	padding := 0.5 * (maxX - minX)
	if padding == 0 {
		padding = 1.0
	}
	return minX - padding, maxX + padding
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
