package tileset

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidTile(p uint16) Tile {
	var t Tile
	for i := range t {
		t[i] = p
	}
	return t
}

func TestPoolAdd(t *testing.T) {
	p := NewPool()

	i, err := p.Add(solidTile(0xf800))
	require.NoError(t, err)
	assert.Equal(t, uint16(0), i)

	i, err = p.Add(solidTile(0x001f))
	require.NoError(t, err)
	assert.Equal(t, uint16(1), i)

	// A tile already in the pool keeps its first index.
	i, err = p.Add(solidTile(0xf800))
	require.NoError(t, err)
	assert.Equal(t, uint16(0), i)

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, solidTile(0x001f), p.Tile(1))
}

func TestPoolFull(t *testing.T) {
	p := NewPool()

	var tile Tile
	for i := 0; i < maxTiles; i++ {
		tile[0] = uint16(i)
		tile[1] = uint16(i >> 16)
		_, err := p.Add(tile)
		require.NoError(t, err)
	}

	tile[0] = 0
	tile[1] = 1
	_, err := p.Add(tile)
	assert.ErrorIs(t, err, errPoolFull)

	// Tiles the pool has already seen still resolve.
	tile[0] = 123
	tile[1] = 0
	i, err := p.Add(tile)
	require.NoError(t, err)
	assert.Equal(t, uint16(123), i)
}

func fill(m *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.SetRGBA(x, y, c)
		}
	}
}

func TestGrid(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 16, 16))
	fill(m, image.Rect(0, 0, 8, 8), color.RGBA{0xff, 0x00, 0x00, 0xff})
	fill(m, image.Rect(8, 0, 16, 8), color.RGBA{0x00, 0x00, 0xff, 0xff})
	fill(m, image.Rect(0, 8, 8, 16), color.RGBA{0xff, 0x00, 0x00, 0xff})
	fill(m, image.Rect(8, 8, 16, 16), color.RGBA{0xff, 0x00, 0x00, 0xff})

	p := NewPool()
	g, err := p.Grid(m, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, g.Width)
	assert.Equal(t, 2, g.Height)
	assert.Equal(t, 1, g.Frames)

	// Three red tiles share one pool entry.
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []uint16{0, 1, 0, 0}, g.Tiles)
	assert.Equal(t, solidTile(0xf800), p.Tile(0))
	assert.Equal(t, solidTile(0x001f), p.Tile(1))
}

func TestGridFrames(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 8, 16))
	fill(m, image.Rect(0, 0, 8, 8), color.RGBA{0x00, 0xff, 0x00, 0xff})
	fill(m, image.Rect(0, 8, 8, 16), color.RGBA{0x00, 0x00, 0xff, 0xff})

	p := NewPool()
	g, err := p.Grid(m, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, g.Width)
	assert.Equal(t, 1, g.Height)
	assert.Equal(t, 2, g.Frames)
	assert.Equal(t, []uint16{0, 1}, g.Tiles)
}

func TestGridErrors(t *testing.T) {
	p := NewPool()

	_, err := p.Grid(image.NewRGBA(image.Rect(0, 0, 10, 8)), 1)
	assert.ErrorIs(t, err, errImageSize)

	_, err = p.Grid(image.NewRGBA(image.Rect(0, 0, 8, 9)), 2)
	assert.ErrorIs(t, err, errFrameCount)

	// A strip height that divides evenly but not into whole tiles.
	_, err = p.Grid(image.NewRGBA(image.Rect(0, 0, 8, 12)), 2)
	assert.ErrorIs(t, err, errImageSize)
}

func TestRGB565(t *testing.T) {
	tables := []struct {
		color color.RGBA
		pixel uint16
	}{
		{color.RGBA{0x00, 0x00, 0x00, 0xff}, 0x0000},
		{color.RGBA{0xff, 0xff, 0xff, 0xff}, 0xffff},
		{color.RGBA{0xff, 0x00, 0x00, 0xff}, 0xf800},
		{color.RGBA{0x00, 0xff, 0x00, 0xff}, 0x07e0},
		{color.RGBA{0x00, 0x00, 0xff, 0xff}, 0x001f},
	}

	for _, table := range tables {
		assert.Equal(t, table.pixel, rgb565(table.color))

		// Round-tripping a saturated channel must saturate again.
		assert.Equal(t, table.color, rgba(table.pixel))
	}
}

func TestPoolImage(t *testing.T) {
	p := NewPool()
	for _, pixel := range []uint16{0xf800, 0x07e0, 0x001f} {
		_, err := p.Add(solidTile(pixel))
		require.NoError(t, err)
	}

	m := p.Image()
	assert.Equal(t, image.Rect(0, 0, 24, 8), m.Bounds())
	assert.Equal(t, color.RGBA{0xff, 0x00, 0x00, 0xff}, m.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{0x00, 0x00, 0xff, 0xff}, m.RGBAAt(16, 7))

	// An empty pool still renders a placeholder tile.
	assert.Equal(t, image.Rect(0, 0, 8, 8), NewPool().Image().Bounds())
}

func TestQuantize(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			m.SetRGBA(x, y, color.RGBA{uint8(x * 16), uint8(y * 16), uint8(x * y), 0xff})
		}
	}

	q := Quantize(m, 16)
	pm, ok := q.(*image.Paletted)
	require.True(t, ok)
	assert.LessOrEqual(t, len(pm.Palette), 16)
	assert.Equal(t, m.Bounds(), pm.Bounds())

	// Disabled quantization passes the image straight through.
	assert.Equal(t, image.Image(m), Quantize(m, 0))
}
