// Package starfield draws a procedural star field. It stands in for the star
// chart service when none is configured, so previews work offline.
package starfield

import (
	"context"
	"hash/fnv"
	"image/color"
	"math"
	"math/rand/v2"
	"time"

	simage "starmap/internal/image"
	"starmap/internal/paint"
	"starmap/pkg/geometry"
)

// SourceName labels generated layers.
const SourceName = "star field"

// Options controls the look of the field.
type Options struct {
	Background color.Color
	StarColor  color.Color
	Density    float64 // stars per 10,000 square pixels
}

// DefaultOptions returns a midnight field with white stars.
func DefaultOptions() Options {
	return Options{
		Background: color.RGBA{R: 0x0b, G: 0x10, B: 0x26, A: 0xff},
		StarColor:  color.White,
		Density:    6,
	}
}

// Generator draws fields sized on demand.
type Generator struct {
	opts Options
}

// New returns a Generator with opts, defaulting zero fields.
func New(opts Options) *Generator {
	def := DefaultOptions()
	if opts.Background == nil {
		opts.Background = def.Background
	}
	if opts.StarColor == nil {
		opts.StarColor = def.StarColor
	}
	if opts.Density <= 0 {
		opts.Density = def.Density
	}
	return &Generator{opts: opts}
}

// Seed derives the field seed from the calendar day and the location rounded
// to a hundredth of a degree, so the same night and place give the same sky.
func Seed(t time.Time, lat, lon float64) uint64 {
	h := fnv.New64a()
	h.Write([]byte(t.UTC().Format("2006-01-02")))
	var b [16]byte
	putInt := func(off int, v float64) {
		n := uint64(int64(math.Round(v * 100)))
		for i := 0; i < 8; i++ {
			b[off+i] = byte(n >> (8 * i))
		}
	}
	putInt(0, lat)
	putInt(8, lon)
	h.Write(b[:])
	return h.Sum64()
}

// Generate draws a width x height field. It only fails on a cancelled context
// or invalid size.
func (g *Generator) Generate(ctx context.Context, width, height int, seed uint64) (*simage.Layer, error) {
	if width <= 0 || height <= 0 {
		return nil, geometry.ErrInvalidDimensions
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := paint.NewCanvas(width, height)
	c.Clear(g.opts.Background)

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	count := int(float64(width*height) / 10000 * g.opts.Density)
	r, gr, b, _ := g.opts.StarColor.RGBA()
	scale := float64(min(width, height)) / 1000

	for i := 0; i < count; i++ {
		if i%4096 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Magnitude-like brightness: most stars are faint.
		mag := math.Pow(rng.Float64(), 3)
		radius := math.Max(0.4, (0.5+2.5*mag)*scale)
		a := 0.35 + 0.65*mag
		star := color.RGBA64{
			R: uint16(float64(r) * a),
			G: uint16(float64(gr) * a),
			B: uint16(float64(b) * a),
			A: uint16(0xffff * a),
		}
		c.FillCircle(geometry.Circle{
			CenterX: rng.Float64() * float64(width),
			CenterY: rng.Float64() * float64(height),
			Radius:  radius,
		}, star)
	}
	return simage.NewLayer(SourceName, c.Image()), nil
}
