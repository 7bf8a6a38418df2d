package asset

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/bodgit/stir/dub"
	"github.com/bodgit/stir/tileset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidTile(p uint16) tileset.Tile {
	var t tileset.Tile
	for i := range t {
		t[i] = p
	}
	return t
}

func testGroup(t *testing.T) *Group {
	pool := tileset.NewPool()
	for _, p := range []uint16{0xf800, 0x001f} {
		_, err := pool.Add(solidTile(p))
		require.NoError(t, err)
	}

	g := &tileset.Grid{
		Width:  3,
		Height: 1,
		Frames: 2,
		Tiles:  []uint16{0, 1, 0, 1, 0, 1},
	}

	e := dub.NewEncoder(g.Width, g.Height, g.Frames)
	require.NoError(t, e.Encode(g.Tiles))

	return &Group{
		Pool:   pool,
		Images: []*Image{NewImage("logo", g, e)},
	}
}

func TestGroupRoundTrip(t *testing.T) {
	group := testGroup(t)

	b, err := group.MarshalBinary()
	require.NoError(t, err)

	decoded := new(Group)
	require.NoError(t, decoded.UnmarshalBinary(b))

	assert.Equal(t, group.Pool, decoded.Pool)
	assert.Equal(t, group.Images, decoded.Images)

	img := decoded.Images[0]
	assert.True(t, img.Compressed)
	assert.Equal(t, "logo", img.Name)
	assert.Equal(t, 2, img.Frames)
}

func TestNewImageFallback(t *testing.T) {
	// Incompressible noise at 256x256 tiles overflows the 16-bit word
	// space, so the raw indices get stored instead.
	rng := rand.New(rand.NewSource(3))
	g := &tileset.Grid{
		Width:  256,
		Height: 256,
		Frames: 1,
		Tiles:  make([]uint16, 256*256),
	}
	for i := range g.Tiles {
		g.Tiles[i] = uint16(rng.Uint32())
	}

	e := dub.NewEncoder(g.Width, g.Height, g.Frames)
	require.NoError(t, e.Encode(g.Tiles))
	require.True(t, e.IsTooLarge())

	img := NewImage("noise", g, e)
	assert.False(t, img.Compressed)
	assert.False(t, img.Index16)
	assert.Equal(t, g.Tiles, img.Words)
}

func TestGroupMarshalErrors(t *testing.T) {
	g := &Group{Pool: tileset.NewPool()}

	for i := 0; i < maxImages+1; i++ {
		g.Images = append(g.Images, &Image{})
	}
	_, err := g.MarshalBinary()
	assert.ErrorIs(t, err, errTooMany)

	g.Images = []*Image{{Name: strings.Repeat("x", 256)}}
	_, err = g.MarshalBinary()
	assert.ErrorIs(t, err, errNameLength)
}

func TestGroupUnmarshalErrors(t *testing.T) {
	empty := append([]byte("STIR\x01"), 0, 0, 0, 0, 0)

	tables := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, errNotEnough},
		{"bad magic", []byte("MEGA\x01"), errBadMagic},
		{"bad version", []byte("STIR\x02"), errBadVersion},
		{"truncated pool", append([]byte("STIR\x01"), 1, 0, 0, 0), errNotEnough},
		{"absurd word count", append(append([]byte(nil), empty[:len(empty)-1]...),
			1, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff), errNotEnough},
		{"trailing data", append(append([]byte(nil), empty...), 0), errTooMuch},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			assert.ErrorIs(t, new(Group).UnmarshalBinary(table.data), table.err)
		})
	}
}

func TestGroupEmpty(t *testing.T) {
	g := &Group{Pool: tileset.NewPool()}

	b, err := g.MarshalBinary()
	require.NoError(t, err)

	decoded := new(Group)
	require.NoError(t, decoded.UnmarshalBinary(b))
	assert.Zero(t, decoded.Pool.Len())
	assert.Empty(t, decoded.Images)
}
