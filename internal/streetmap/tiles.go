package streetmap

import (
	"math"
	"strconv"
	"strings"
)

// TileSize is the edge length of a slippy-map tile in pixels.
const TileSize = 256

// MaxLatitude is the Web Mercator latitude limit.
const MaxLatitude = 85.05112878

// TileKey identifies one tile.
type TileKey struct {
	Z, X, Y int
}

// WorldPixel projects a position to Web Mercator pixel coordinates at zoom z.
// The world spans TileSize * 2^z pixels on each axis.
func WorldPixel(lat, lon float64, z int) (x, y float64) {
	lat = math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))
	world := float64(TileSize) * math.Exp2(float64(z))
	x = (lon + 180) / 360 * world
	sin := math.Sin(lat * math.Pi / 180)
	y = (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * world
	return x, y
}

// LatLon is the inverse of WorldPixel.
func LatLon(x, y float64, z int) (lat, lon float64) {
	world := float64(TileSize) * math.Exp2(float64(z))
	lon = x/world*360 - 180
	n := math.Pi - 2*math.Pi*y/world
	lat = 180 / math.Pi * math.Atan(math.Sinh(n))
	return lat, lon
}

// wrap normalizes a tile column into [0, 2^z).
func wrap(x, z int) int {
	n := 1 << z
	x %= n
	if x < 0 {
		x += n
	}
	return x
}

// TileURL expands a template containing {z}, {x} and {y}.
func TileURL(template string, k TileKey) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(k.Z),
		"{x}", strconv.Itoa(k.X),
		"{y}", strconv.Itoa(k.Y),
	).Replace(template)
}
