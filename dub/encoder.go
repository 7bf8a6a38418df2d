package dub

import (
	"encoding/binary"
	"errors"
	"log"
)

var errTileCount = errors.New("dub: tile count does not match dimensions")

// Encoder compresses one image, a grid of 16-bit tile indices repeated
// over one or more animation frames. It can be reused; every call to
// Encode discards the previous result.
type Encoder struct {
	width, height, frames int

	index16 bool
	index   []uint16
	blocks  []uint16
}

// NewEncoder returns an encoder for an image of width by height tiles and
// the given number of animation frames.
func NewEncoder(width, height, frames int) *Encoder {
	return &Encoder{
		width:  width,
		height: height,
		frames: frames,
	}
}

// Encode compresses tiles, laid out row-major within each frame with
// frames concatenated. Apart from a tile count mismatch, encoding always
// succeeds; whether the result still fits the addressable word space is
// reported separately by IsTooLarge.
func (e *Encoder) Encode(tiles []uint16) error {
	if len(tiles) != e.width*e.height*e.frames {
		return errTileCount
	}

	e.index = e.index[:0]
	e.blocks = e.blocks[:0]
	e.index16 = false

	// Blocks that encode to identical words share one address,
	// across frames as well as within them.
	dedupe := make(map[string]uint16)

	for f := 0; f < e.frames; f++ {
		for y := 0; y < e.height; y += blockSize {
			for x := 0; x < e.width; x += blockSize {
				w := min(blockSize, e.width-x)
				h := min(blockSize, e.height-y)

				block := encodeBlock(tiles[x+y*e.width+f*e.width*e.height:], w, h, e.width)

				key := blockKey(block)
				if addr, ok := dedupe[key]; ok {
					e.index = append(e.index, addr)
				} else {
					addr := uint16(len(e.blocks))
					dedupe[key] = addr
					e.index = append(e.index, addr)
					e.blocks = append(e.blocks, block...)
				}
			}
		}
	}

	// Decide the index width: scan under the narrow hypothesis and
	// widen on the first entry that cannot be stored in a byte.
	for i := range e.index {
		if e.packIndex(i, false) >= 0x100 {
			e.index16 = true
			break
		}
	}

	return nil
}

// encodeBlock compresses one block of width by height tiles whose
// top-left tile is tiles[0]; stride is the full image width. The result
// is word-aligned and depends only on the block's tiles and dimensions,
// which is what makes whole-block deduplication safe.
func encodeBlock(tiles []uint16, width, height, stride int) []uint16 {
	var (
		bits      bitBuffer
		data      []uint16
		prev      code
		repeats   int
		repeating bool
	)
	dict := make([]uint16, 0, blockSize*blockSize)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			tile := tiles[x+y*stride]

			c := findBestCode(dict, tile)
			dict = append(dict, tile)

			// Two identical codes in a row open a run; the code
			// emitted after them must be a REPEAT count.
			sameCode := c == prev
			prev = c

			if repeating {
				if sameCode {
					repeats++
					continue
				}
				code{codeRepeat, repeats}.pack(&bits)
				data = bits.flush(data, false)
				repeating = false
			} else if sameCode {
				repeating = true
				repeats = 0
			}

			c.pack(&bits)
			data = bits.flush(data, false)
		}
	}

	if repeating {
		// The run hit the end of the block.
		code{codeRepeat, repeats}.pack(&bits)
	}

	return bits.flush(data, true)
}

// blockKey renders an encoded block as a string so the dedupe map hashes
// and compares it by content.
func blockKey(words []uint16) string {
	b := make([]byte, len(words)*2)
	for i, w := range words {
		binary.LittleEndian.PutUint16(b[2*i:], w)
	}
	return string(b)
}

// indexSize is the packed length of the index in words under the given
// width hypothesis: one word per entry when wide, two entries per word,
// rounding up, when narrow.
func (e *Encoder) indexSize(wide bool) int {
	s := len(e.index)
	if !wide {
		s = (s + 1) / 2
	}
	return s
}

// packIndex relocates entry i. Block addresses are stored relative to the
// word following the entry in the packed index, so the decoder adds its
// own read position instead of carrying the index base around.
func (e *Encoder) packIndex(i int, wide bool) int {
	nextWord := (i + 2) / 2
	if wide {
		nextWord = i + 1
	}
	return e.indexSize(wide) + int(e.index[i]) - nextWord
}

// Words assembles the final stream: the relocated index, packed per the
// width decision, followed by the deduplicated block data.
func (e *Encoder) Words() []uint16 {
	out := make([]uint16, 0, e.indexSize(e.index16)+len(e.blocks))

	if e.index16 {
		for i := range e.index {
			out = append(out, uint16(e.packIndex(i, true)))
		}
	} else {
		index8 := make([]byte, 0, len(e.index)+1)
		for i := range e.index {
			index8 = append(index8, byte(e.packIndex(i, false)))
		}
		if len(index8)&1 != 0 {
			index8 = append(index8, 0)
		}
		for i := 0; i < len(index8); i += 2 {
			out = append(out, uint16(index8[i])|uint16(index8[i+1])<<8)
		}
	}

	return append(out, e.blocks...)
}

// NumBlocks returns the number of index entries, including duplicates.
func (e *Encoder) NumBlocks() int {
	return ((e.width + blockSize - 1) / blockSize) *
		((e.height + blockSize - 1) / blockSize) * e.frames
}

// TileCount returns the size of the uncompressed image in tiles, which is
// also its size in words.
func (e *Encoder) TileCount() int {
	return e.width * e.height * e.frames
}

// CompressedWords returns the size of the encoded image in words.
func (e *Encoder) CompressedWords() int {
	return e.indexSize(e.index16) + len(e.blocks)
}

// IsIndex16 reports whether index entries are stored as whole words
// rather than bytes. The decoder needs this before it can address the
// stream.
func (e *Encoder) IsIndex16() bool {
	return e.index16
}

// IsTooLarge reports whether the encoded image outgrew the 16-bit word
// space. The result is advisory; callers are expected to fall back to
// storing the tiles uncompressed.
func (e *Encoder) IsTooLarge() bool {
	return e.CompressedWords() >= 0x10000
}

// Ratio returns the percentage of words saved against the uncompressed
// tile array.
func (e *Encoder) Ratio() float64 {
	return 100 - float64(e.CompressedWords())*100/float64(e.TileCount())
}

// LogStats writes one line of encode statistics for the named image.
func (e *Encoder) LogStats(name string, logger *log.Logger) {
	logger.Printf("%s: %4d tiles, %4d words, % 5.1f%% compression",
		name, e.TileCount(), e.CompressedWords(), e.Ratio())
}
