package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ffffff", White},
		{"000", Black},
		{"#FFF", White},
		{"navy", color.RGBA{R: 0, G: 0, B: 0x80, A: 255}},
		{" Gold ", color.RGBA{R: 0xff, G: 0xd7, B: 0, A: 255}},
		{"#0b1026", Midnight},
		{"#ff000080", color.RGBA{R: 0x80, G: 0, B: 0, A: 0x80}},
		{"transparent", color.RGBA{}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "#12", "#gggggg", "notacolor", "#1234567"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
	assert.Equal(t, Gold, MustParse("bogus", Gold))
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#0b1026", Hex(Midnight))
	assert.Equal(t, "#ffffff", Hex(color.White))
}

func TestLuminance(t *testing.T) {
	assert.InDelta(t, 1.0, Luminance(White), 1e-9)
	assert.InDelta(t, 0.0, Luminance(Black), 1e-9)
	assert.InDelta(t, 1.0, Opacity(White), 1e-9)
}
