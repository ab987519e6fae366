package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// DefaultTitle is drawn above the curve when RenderOptions.Title is empty.
const DefaultTitle = "Function Visualization"

type RenderOptions struct {
	Width  int
	Height int
	Title  string
}

var (
	curveColor  = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	iterColor   = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	rootColor   = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	axisColor   = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	frameColor  = color.RGBA{R: 0xbb, G: 0xbb, B: 0xbb, A: 0xff}
	titleColor  = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
	plotMargin  = 48
	titleHeight = 28
)

// Render draws d as a PNG: the x-axis, the curve, one marker per iterate and
// a larger marker on the root.
func Render(w io.Writer, d *Data, opts RenderOptions) error {
	if d == nil || len(d.Domain) == 0 {
		return ErrNoPoints
	}
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Width <= 2*plotMargin || opts.Height <= 2*plotMargin+titleHeight {
		return fmt.Errorf("plot: canvas %dx%d is too small", opts.Width, opts.Height)
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	vp := newViewport(d, opts.Width, opts.Height)
	c := &canvas{img: img}

	c.rect(vp.left, vp.top, vp.right, vp.bottom, 1, frameColor)
	if vp.minY <= 0 && vp.maxY >= 0 {
		c.line(vp.left, vp.py(0), vp.right, vp.py(0), 1, axisColor)
	}

	step := 0.0
	if len(d.Domain) > 1 {
		step = (d.Domain[len(d.Domain)-1] - d.Domain[0]) / float64(len(d.Domain)-1+d.Skipped)
	}
	for i := 1; i < len(d.Domain); i++ {
		// leave a gap where samples were skipped
		if d.Skipped > 0 && d.Domain[i]-d.Domain[i-1] > 1.5*step {
			continue
		}
		c.line(vp.px(d.Domain[i-1]), vp.py(d.CurveY[i-1]), vp.px(d.Domain[i]), vp.py(d.CurveY[i]), 2, curveColor)
	}

	for i := range d.IterateXs {
		c.dot(vp.px(d.IterateXs[i]), vp.py(d.IterateYs[i]), 4, iterColor)
	}
	c.dot(vp.px(d.Root.X), vp.py(d.Root.Y), 7, rootColor)

	if err := c.text(opts.Title, plotMargin, titleHeight-6, titleColor); err != nil {
		return err
	}
	return png.Encode(w, img)
}

// viewport maps data coordinates to pixels.
type viewport struct {
	minX, maxX, minY, maxY   float64
	left, right, top, bottom float32
}

func newViewport(d *Data, width, height int) viewport {
	minX, maxX := d.Domain[0], d.Domain[len(d.Domain)-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, ys := range [][]float64{d.CurveY, d.IterateYs} {
		for _, y := range ys {
			minY = math.Min(minY, y)
			maxY = math.Max(maxY, y)
		}
	}
	for _, x := range d.IterateXs {
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
	}
	if maxX == minX {
		minX, maxX = minX-1, maxX+1
	}
	if maxY == minY {
		minY, maxY = minY-1, maxY+1
	}
	pad := 0.05 * (maxY - minY)
	return viewport{
		minX: minX, maxX: maxX,
		minY: minY - pad, maxY: maxY + pad,
		left:   float32(plotMargin),
		right:  float32(width - plotMargin),
		top:    float32(plotMargin + titleHeight),
		bottom: float32(height - plotMargin),
	}
}

func (v viewport) px(x float64) float32 {
	return v.left + float32((x-v.minX)/(v.maxX-v.minX))*(v.right-v.left)
}

func (v viewport) py(y float64) float32 {
	return v.bottom - float32((y-v.minY)/(v.maxY-v.minY))*(v.bottom-v.top)
}

// canvas fills shapes with a vector rasterizer, one shape per call.
type canvas struct {
	img *image.RGBA
}

func (c *canvas) fill(col color.Color, path func(z *vector.Rasterizer)) {
	b := c.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	path(z)
	z.Draw(c.img, b, image.NewUniform(col), image.Point{})
}

// line strokes a segment of the given width as a quad.
func (c *canvas) line(x0, y0, x1, y1, width float32, col color.Color) {
	dx, dy := x1-x0, y1-y0
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	c.fill(col, func(z *vector.Rasterizer) {
		z.MoveTo(x0+nx, y0+ny)
		z.LineTo(x1+nx, y1+ny)
		z.LineTo(x1-nx, y1-ny)
		z.LineTo(x0-nx, y0-ny)
		z.ClosePath()
	})
}

func (c *canvas) rect(x0, y0, x1, y1, width float32, col color.Color) {
	c.line(x0, y0, x1, y0, width, col)
	c.line(x1, y0, x1, y1, width, col)
	c.line(x1, y1, x0, y1, width, col)
	c.line(x0, y1, x0, y0, width, col)
}

// dot fills a circle approximated by a 24-gon.
func (c *canvas) dot(cx, cy, r float32, col color.Color) {
	const sides = 24
	c.fill(col, func(z *vector.Rasterizer) {
		for i := 0; i <= sides; i++ {
			a := 2 * math.Pi * float64(i) / sides
			x := cx + r*float32(math.Cos(a))
			y := cy + r*float32(math.Sin(a))
			if i == 0 {
				z.MoveTo(x, y)
			} else {
				z.LineTo(x, y)
			}
		}
		z.ClosePath()
	})
}

func (c *canvas) text(s string, x, y int, col color.Color) error {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("plot: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: 16, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return fmt.Errorf("plot: font face: %w", err)
	}
	defer func() {
		_ = face.Close()
	}()

	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
	return nil
}
