package dub

type codeKind uint8

const (
	codeInvalid codeKind = iota
	codeDelta
	codeRef
	codeRepeat
)

// code is one encoded symbol: a signed difference from the previous tile
// (DELTA), a backward distance to an identical earlier tile (REF), or a
// run length extending the two identical codes before it (REPEAT). The
// zero value is invalid and never equals an emitted code.
type code struct {
	kind  codeKind
	value int
}

// findBestCode returns the cheapest encoding of tile against the block
// dictionary: a DELTA from the most recent entry, or a literal from zero
// when the dictionary is still empty, or a REF to an identical earlier
// tile. On equal cost the REF wins, and the backward scan means the
// nearest match is the one adopted.
func findBestCode(dict []uint16, tile uint16) code {
	var c code
	if len(dict) == 0 {
		c = code{codeDelta, int(tile)}
	} else {
		c = code{codeDelta, int(tile) - int(dict[len(dict)-1])}
	}
	best := c.encodedLen()

	for i := 0; i < len(dict); i++ {
		if tile == dict[len(dict)-1-i] {
			ref := code{codeRef, i}
			if ref.encodedLen() <= best {
				c = ref
				// No farther match can pack smaller.
				break
			}
		}
	}

	return c
}

// pack appends the code's bit representation to b.
func (c code) pack(b *bitBuffer) {
	switch c.kind {
	case codeDelta:
		// Type bit, sign bit, magnitude.
		b.append(0, 1)
		if c.value < 0 {
			b.append(1, 1)
			b.appendVar(uint32(-c.value), chunkBits)
		} else {
			b.append(0, 1)
			b.appendVar(uint32(c.value), chunkBits)
		}
	case codeRef:
		// Type bit, backward distance.
		b.append(1, 1)
		b.appendVar(uint32(c.value), chunkBits)
	case codeRepeat:
		// Bare count. A REPEAT only ever follows two identical
		// codes, so it needs no type bit of its own.
		b.appendVar(uint32(c.value), chunkBits)
	default:
		panic("dub: invalid code")
	}
}

// encodedLen is the cost of the code in bits.
func (c code) encodedLen() int {
	var b bitBuffer
	c.pack(&b)
	return b.nbits
}
