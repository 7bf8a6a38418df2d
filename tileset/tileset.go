/*
Package tileset turns source images into the tile form consumed by the
DUB encoder.

An image is cut into 8 by 8 pixel tiles, row-major, one animation frame
at a time; frames are stacked vertically in the source image. Every
distinct tile is stored once in a pool, in order of first appearance, and
each position in the image becomes a 16-bit index into that pool. The
pool is capped at 65536 tiles, the largest index the format can address.

Pixels are reduced to the cube's native RGB565 before comparison, so
tiles that differ only below that precision deduplicate.
*/
package tileset

import (
	"errors"
	"image"
	"image/color"
)

const (
	tileWidth  = 8
	tileHeight = tileWidth
	tilePixels = tileWidth * tileHeight

	maxTiles = 1 << 16

	proofColumns = 16
)

var errPoolFull = errors.New("tileset: tile pool is full")

// Tile is one 8 by 8 pixel tile in row-major RGB565.
type Tile [tilePixels]uint16

// Pool is an ordered collection of unique tiles.
type Pool struct {
	tiles []Tile
	index map[Tile]uint16
}

// NewPool returns an empty tile pool.
func NewPool() *Pool {
	return &Pool{
		index: make(map[Tile]uint16),
	}
}

// Add returns the index of t, storing it first if the pool has not seen
// it before.
func (p *Pool) Add(t Tile) (uint16, error) {
	if i, ok := p.index[t]; ok {
		return i, nil
	}
	if len(p.tiles) >= maxTiles {
		return 0, errPoolFull
	}
	i := uint16(len(p.tiles))
	p.tiles = append(p.tiles, t)
	p.index[t] = i
	return i, nil
}

// Len returns the number of unique tiles in the pool.
func (p *Pool) Len() int {
	return len(p.tiles)
}

// Tile returns the tile stored at index i.
func (p *Pool) Tile(i int) Tile {
	return p.tiles[i]
}

// Image renders the pool as a proof sheet, sixteen tiles per row, for
// eyeballing what actually got stored.
func (p *Pool) Image() *image.RGBA {
	cols := min(max(len(p.tiles), 1), proofColumns)
	rows := max((len(p.tiles)+cols-1)/cols, 1)

	m := image.NewRGBA(image.Rect(0, 0, cols*tileWidth, rows*tileHeight))
	for i, t := range p.tiles {
		ox, oy := i%cols*tileWidth, i/cols*tileHeight
		for y := 0; y < tileHeight; y++ {
			for x := 0; x < tileWidth; x++ {
				m.SetRGBA(ox+x, oy+y, rgba(t[y*tileWidth+x]))
			}
		}
	}
	return m
}

// rgb565 packs a color into the cube's native 5:6:5 format.
func rgb565(c color.Color) uint16 {
	r, g, b, _ := c.RGBA()
	return uint16(r>>11<<11 | g>>10&0x3f<<5 | b>>11)
}

// rgba expands a packed RGB565 pixel, replicating high bits into the low
// ones so that white stays white.
func rgba(p uint16) color.RGBA {
	r := uint8(p >> 11)
	g := uint8(p >> 5 & 0x3f)
	b := uint8(p & 0x1f)
	return color.RGBA{r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2, 0xff}
}
