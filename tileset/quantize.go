package tileset

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/ericpauley/go-quantize/quantize"
)

// Quantize reduces m to at most maxColors colors using a median-cut
// quantizer. Fewer colors mean more identical tiles, which is where the
// pool and the DUB deduplication earn their keep on photographic
// sources. A maxColors of zero or less returns m unchanged.
func Quantize(m image.Image, maxColors int) image.Image {
	if maxColors <= 0 {
		return m
	}

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(m.Bounds(), q.Quantize(make(color.Palette, 0, maxColors), m))
	draw.Draw(pm, m.Bounds(), m, m.Bounds().Min, draw.Src)

	return pm
}
