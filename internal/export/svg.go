package export

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"strconv"

	"starmap/internal/paint"
	"starmap/internal/render"
	"starmap/pkg/colorutil"
	"starmap/pkg/geometry"
)

var svgFamilies = map[string]string{
	paint.FamilySans:      "Go, sans-serif",
	paint.FamilyMedium:    "Go Medium, sans-serif",
	paint.FamilyMono:      "Go Mono, monospace",
	paint.FamilySmallCaps: "Go Smallcaps, sans-serif",
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// paintAttrs renders a color as an SVG paint attribute plus its opacity.
func paintAttrs(attr string, c color.Color) string {
	s := fmt.Sprintf(`%s="%s"`, attr, colorutil.Hex(c))
	if op := colorutil.Opacity(c); op < 1 {
		s += fmt.Sprintf(` %s-opacity="%s"`, attr, num(op))
	}
	return s
}

// WriteSVG serializes a scene. Rasters are embedded as PNG data URLs, clipped
// to their circles, and placed with the same cover transform the canvas uses,
// so the vector file lines up with the raster export.
func WriteSVG(w io.Writer, scene render.Scene) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		scene.Width, scene.Height, scene.Width, scene.Height)

	bg := scene.Background
	if bg == nil {
		bg = colorutil.Black
	}
	fmt.Fprintf(bw, `<rect width="100%%" height="100%%" %s/>`+"\n", paintAttrs("fill", bg))

	if len(scene.Rasters) > 0 {
		bw.WriteString("<defs>\n")
		for i, r := range scene.Rasters {
			fmt.Fprintf(bw, `<clipPath id="circle-%d"><circle cx="%s" cy="%s" r="%s"/></clipPath>`+"\n",
				i, num(r.Circle.CenterX), num(r.Circle.CenterY), num(r.Circle.Radius))
		}
		bw.WriteString("</defs>\n")
	}

	for i, r := range scene.Rasters {
		if r.Layer == nil || r.Layer.Image == nil {
			continue
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, r.Layer.Image); err != nil {
			return fmt.Errorf("failed to encode %s: %w", r.Layer.Source, err)
		}
		rect := paint.CoverTransform(r.Layer.Size(), r.Circle, scene.Zoom).
			ApplyRect(geometry.NewRect(0, 0, float64(r.Layer.Width()), float64(r.Layer.Height())))
		fmt.Fprintf(bw, `<image x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="none" clip-path="url(#circle-%d)" href="data:image/png;base64,%s"/>`+"\n",
			num(rect.X), num(rect.Y), num(rect.Width), num(rect.Height), i,
			base64.StdEncoding.EncodeToString(buf.Bytes()))
	}

	if scene.BorderWidth > 0 {
		bc := scene.BorderColor
		if bc == nil {
			bc = colorutil.White
		}
		for _, c := range scene.Circles {
			fmt.Fprintf(bw, `<circle cx="%s" cy="%s" r="%s" fill="none" %s stroke-width="%s"/>`+"\n",
				num(c.CenterX), num(c.CenterY), num(c.Radius), paintAttrs("stroke", bc), num(scene.BorderWidth))
		}
	}

	for _, p := range scene.Texts {
		st := p.Item.Style
		family := svgFamilies[paint.NormalizeFamily(st.Family)]
		fill := st.Color
		if fill == nil {
			fill = colorutil.Black
		}
		fmt.Fprintf(bw, `<text x="%s" y="%s" text-anchor="middle" font-family="%s" font-size="%s"`,
			num(p.X), num(p.BaselineY), family, num(st.Size))
		if st.Bold {
			bw.WriteString(` font-weight="bold"`)
		}
		if st.Italic {
			bw.WriteString(` font-style="italic"`)
		}
		fmt.Fprintf(bw, ` %s>`, paintAttrs("fill", fill))
		if err := xml.EscapeText(bw, []byte(p.Item.Text)); err != nil {
			return err
		}
		bw.WriteString("</text>\n")
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}
