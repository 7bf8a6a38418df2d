/*
Package asset implements the container that compiled tile assets are
written to and read from.

A group file starts with the magic "STIR" and a format version, followed
by the tile pool (every unique 8 by 8 tile as RGB565 words) and one
record per image: its name, dimensions in tiles, frame count, a flag byte
recording how the tile indices are stored, and the data words. Images are
DUB-compressed unless the encoder reported that the compressed form
outgrew its 16-bit address space, in which case the raw tile indices are
stored instead and the compressed flag is left clear. All integers are
little-endian.
*/
package asset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/bodgit/stir/dub"
	"github.com/bodgit/stir/tileset"
)

const (
	version   = 1
	maxImages = 255
	maxTiles  = 1 << 16
)

var magic = []byte("STIR")

var (
	errBadMagic   = errors.New("asset: bad magic")
	errBadVersion = errors.New("asset: unsupported version")
	errNotEnough  = errors.New("asset: not enough data")
	errTooMuch    = errors.New("asset: too much data")
	errTooMany    = errors.New("asset: too many images")
	errNameLength = errors.New("asset: image name too long")
	errPoolSize   = errors.New("asset: tile pool too large")
)

const (
	flagIndex16 byte = 1 << iota
	flagCompressed
)

// Image is one compiled image in a group.
type Image struct {
	Name   string
	Width  int // tiles per row
	Height int // tile rows per frame
	Frames int

	// Index16 records the encoder's index width decision; the decoder
	// needs it before it can address the stream.
	Index16 bool

	// Compressed is clear when the encoder flagged its output too
	// large and the raw tile indices were stored instead.
	Compressed bool

	Words []uint16
}

// NewImage wraps an encoded grid for storage. e must already have encoded
// g. When the encoder reports the compressed form too large to address,
// the image falls back to holding the raw tile indices.
func NewImage(name string, g *tileset.Grid, e *dub.Encoder) *Image {
	img := &Image{
		Name:       name,
		Width:      g.Width,
		Height:     g.Height,
		Frames:     g.Frames,
		Index16:    e.IsIndex16(),
		Compressed: true,
		Words:      e.Words(),
	}

	if e.IsTooLarge() {
		img.Index16 = false
		img.Compressed = false
		img.Words = append([]uint16(nil), g.Tiles...)
	}

	return img
}

// Group is a tile pool and the images compiled against it, typically one
// source file's worth.
type Group struct {
	Pool   *tileset.Pool
	Images []*Image
}

type imageHeader struct {
	Width  uint16
	Height uint16
	Frames uint16
	Flags  byte
	Words  uint32
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (g *Group) MarshalBinary() ([]byte, error) {
	if len(g.Images) > maxImages {
		return nil, errTooMany
	}

	b := new(bytes.Buffer)
	b.Write(magic)
	b.WriteByte(version)

	if err := binary.Write(b, binary.LittleEndian, uint32(g.Pool.Len())); err != nil {
		return nil, err
	}
	for i := 0; i < g.Pool.Len(); i++ {
		if err := binary.Write(b, binary.LittleEndian, g.Pool.Tile(i)); err != nil {
			return nil, err
		}
	}

	b.WriteByte(byte(len(g.Images)))
	for _, img := range g.Images {
		if len(img.Name) > 255 {
			return nil, errNameLength
		}
		b.WriteByte(byte(len(img.Name)))
		b.WriteString(img.Name)

		hdr := imageHeader{
			Width:  uint16(img.Width),
			Height: uint16(img.Height),
			Frames: uint16(img.Frames),
			Words:  uint32(len(img.Words)),
		}
		if img.Index16 {
			hdr.Flags |= flagIndex16
		}
		if img.Compressed {
			hdr.Flags |= flagCompressed
		}

		if err := binary.Write(b, binary.LittleEndian, hdr); err != nil {
			return nil, err
		}
		if err := binary.Write(b, binary.LittleEndian, img.Words); err != nil {
			return nil, err
		}
	}

	return b.Bytes(), nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (g *Group) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)

	hdr := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return errNotEnough
	}
	if !bytes.Equal(hdr[:len(magic)], magic) {
		return errBadMagic
	}
	if hdr[len(magic)] != version {
		return errBadVersion
	}

	var poolLen uint32
	if err := binary.Read(r, binary.LittleEndian, &poolLen); err != nil {
		return errNotEnough
	}
	if poolLen > maxTiles {
		return errPoolSize
	}

	pool := tileset.NewPool()
	for i := uint32(0); i < poolLen; i++ {
		var t tileset.Tile
		if err := binary.Read(r, binary.LittleEndian, &t); err != nil {
			return errNotEnough
		}
		if _, err := pool.Add(t); err != nil {
			return err
		}
	}

	count, err := r.ReadByte()
	if err != nil {
		return errNotEnough
	}

	images := make([]*Image, 0, count)
	for i := 0; i < int(count); i++ {
		nameLen, err := r.ReadByte()
		if err != nil {
			return errNotEnough
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return errNotEnough
		}

		var hdr imageHeader
		if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
			return errNotEnough
		}
		if int(hdr.Words) > r.Len()/2 {
			return errNotEnough
		}

		words := make([]uint16, hdr.Words)
		if err := binary.Read(r, binary.LittleEndian, words); err != nil {
			return errNotEnough
		}

		images = append(images, &Image{
			Name:       string(name),
			Width:      int(hdr.Width),
			Height:     int(hdr.Height),
			Frames:     int(hdr.Frames),
			Index16:    hdr.Flags&flagIndex16 != 0,
			Compressed: hdr.Flags&flagCompressed != 0,
			Words:      words,
		})
	}

	if r.Len() != 0 {
		return errTooMuch
	}

	g.Pool = pool
	g.Images = images

	return nil
}
