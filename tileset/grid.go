package tileset

import (
	"errors"
	"image"
)

var (
	errImageSize  = errors.New("tileset: image dimensions are not a multiple of the tile size")
	errFrameCount = errors.New("tileset: image height does not divide into frames")
)

// Grid is an image converted to pool indices: Width by Height tiles per
// frame, Frames frames concatenated row-major in Tiles.
type Grid struct {
	Width  int
	Height int
	Frames int
	Tiles  []uint16
}

// Grid cuts m into 8 by 8 pixel tiles, adds each tile to the pool, and
// returns the resulting index grid. frames splits the image vertically
// into that many equal strips; values below one mean a single frame.
func (p *Pool) Grid(m image.Image, frames int) (*Grid, error) {
	if frames < 1 {
		frames = 1
	}

	b := m.Bounds()
	if b.Dy()%frames != 0 {
		return nil, errFrameCount
	}
	fw, fh := b.Dx(), b.Dy()/frames
	if fw%tileWidth != 0 || fh%tileHeight != 0 {
		return nil, errImageSize
	}

	g := &Grid{
		Width:  fw / tileWidth,
		Height: fh / tileHeight,
		Frames: frames,
	}
	g.Tiles = make([]uint16, 0, g.Width*g.Height*g.Frames)

	for f := 0; f < frames; f++ {
		for ty := 0; ty < g.Height; ty++ {
			for tx := 0; tx < g.Width; tx++ {
				var t Tile
				for y := 0; y < tileHeight; y++ {
					for x := 0; x < tileWidth; x++ {
						t[y*tileWidth+x] = rgb565(m.At(
							b.Min.X+tx*tileWidth+x,
							b.Min.Y+f*fh+ty*tileHeight+y))
					}
				}

				i, err := p.Add(t)
				if err != nil {
					return nil, err
				}
				g.Tiles = append(g.Tiles, i)
			}
		}
	}

	return g, nil
}
