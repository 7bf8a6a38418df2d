package dub

// A test-side decoder mirroring the cube firmware's, used to prove that
// everything the encoder emits reconstructs the original tiles.

type bitReader struct {
	words []uint16
	pos   int
	bits  uint64
	nbits int
}

func (r *bitReader) read(width int) uint32 {
	for r.nbits < width {
		r.bits |= uint64(r.words[r.pos]) << r.nbits
		r.pos++
		r.nbits += 16
	}
	v := uint32(r.bits) & (uint32(1)<<width - 1)
	r.bits >>= width
	r.nbits -= width
	return v
}

func (r *bitReader) readVar(chunk int) int {
	v, shift := 0, 0
	for {
		more := r.read(1)
		v |= int(r.read(chunk)) << shift
		shift += chunk
		if more == 0 {
			return v
		}
	}
}

func (r *bitReader) readCode(chunk int) code {
	if r.read(1) == 1 {
		return code{codeRef, r.readVar(chunk)}
	}
	if r.read(1) == 1 {
		return code{codeDelta, -r.readVar(chunk)}
	}
	return code{codeDelta, r.readVar(chunk)}
}

// decodeBlock reads codes until count tiles have been produced. A code
// identical to the one before it is followed by a repeat count, and each
// repetition is re-applied against the growing dictionary, so a repeated
// REF(0) walks forward just as the encoder intended.
func decodeBlock(r *bitReader, count int) []uint16 {
	dict := make([]uint16, 0, count)

	apply := func(c code) {
		var tile uint16
		switch c.kind {
		case codeDelta:
			var last uint16
			if len(dict) > 0 {
				last = dict[len(dict)-1]
			}
			tile = uint16(int(last) + c.value)
		case codeRef:
			tile = dict[len(dict)-1-c.value]
		}
		dict = append(dict, tile)
	}

	var prev code
	for len(dict) < count {
		c := r.readCode(chunkBits)
		apply(c)
		if c == prev {
			for n := r.readVar(chunkBits); n > 0; n-- {
				apply(c)
			}
			prev = code{}
		} else {
			prev = c
		}
	}

	return dict
}

// decodeImage reconstructs a full image from an encoded stream, reading
// block offsets out of the relocation index exactly as the firmware
// would: each packed entry plus the word position following it gives the
// absolute start of the block's data.
func decodeImage(words []uint16, width, height, frames int, index16 bool) []uint16 {
	tiles := make([]uint16, width*height*frames)

	block := 0
	for f := 0; f < frames; f++ {
		for y := 0; y < height; y += blockSize {
			for x := 0; x < width; x += blockSize {
				w := min(blockSize, width-x)
				h := min(blockSize, height-y)

				var packed, nextWord int
				if index16 {
					packed = int(words[block])
					nextWord = block + 1
				} else {
					entry := words[block/2]
					if block&1 == 1 {
						packed = int(entry >> 8)
					} else {
						packed = int(entry & 0xff)
					}
					nextWord = (block + 2) / 2
				}

				r := &bitReader{words: words[packed+nextWord:]}
				decoded := decodeBlock(r, w*h)

				for by := 0; by < h; by++ {
					for bx := 0; bx < w; bx++ {
						tiles[f*width*height+(y+by)*width+x+bx] = decoded[by*w+bx]
					}
				}

				block++
			}
		}
	}

	return tiles
}
