// Package export writes rendered posters as PNG, JPEG or SVG.
package export

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"starmap/internal/render"
)

// Format is an output file format.
type Format int

const (
	PNG Format = iota
	JPEG
	SVG
)

func (f Format) String() string {
	switch f {
	case JPEG:
		return "jpeg"
	case SVG:
		return "svg"
	default:
		return "png"
	}
}

// Extension returns the preferred file extension including the dot.
func (f Format) Extension() string {
	switch f {
	case JPEG:
		return ".jpg"
	case SVG:
		return ".svg"
	default:
		return ".png"
	}
}

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "svg":
		return SVG, nil
	}
	return PNG, fmt.Errorf("unsupported export format %q", s)
}

// FormatFromPath picks the format from a file name's extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// DefaultJPEGQuality is used when Options.JPEGQuality is zero.
const DefaultJPEGQuality = 92

// Options tunes encoders.
type Options struct {
	JPEGQuality int
}

// Write encodes res in format f.
func Write(w io.Writer, res *render.Result, f Format, opts Options) error {
	if res == nil || res.Image == nil {
		return fmt.Errorf("nothing to export")
	}
	switch f {
	case PNG:
		return png.Encode(w, res.Image)
	case JPEG:
		q := opts.JPEGQuality
		if q <= 0 || q > 100 {
			q = DefaultJPEGQuality
		}
		return jpeg.Encode(w, flatten(res.Image, res.Scene.Background), &jpeg.Options{Quality: q})
	case SVG:
		return WriteSVG(w, res.Scene)
	}
	return fmt.Errorf("unsupported export format %v", f)
}

// WriteFile saves res to path, choosing the format from the extension.
func WriteFile(path string, res *render.Result, opts Options) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	bw := bufio.NewWriter(file)
	if err := Write(bw, res, f, opts); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", f, err)
	}
	if err := bw.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	log.Printf("Exported %s (%dx%d) to %s", f, res.Scene.Width, res.Scene.Height, path)
	return nil
}

// flatten composites img over an opaque background, since JPEG has no alpha.
func flatten(img *image.RGBA, bg color.Color) *image.RGBA {
	if bg == nil {
		bg = color.White
	}
	r, g, b, _ := bg.RGBA()
	opaque := color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: 0xffff}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(opaque), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return out
}
