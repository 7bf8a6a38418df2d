package dub

// bitBuffer accumulates variable-width codes least significant bit first
// and releases them as whole 16-bit words. It never holds more than one
// word plus one packed code, well under 64 bits.
type bitBuffer struct {
	bits  uint64
	nbits int
}

// append adds the low width bits of value.
func (b *bitBuffer) append(value uint32, width int) {
	b.bits |= uint64(value) << b.nbits
	b.nbits += width
}

// appendVar adds a non-negative integer in chunk-bit groups, least
// significant group first. Every group is preceded by a continuation bit,
// set on all but the last group.
func (b *bitBuffer) appendVar(value uint32, chunk int) {
	mask := uint32(1)<<chunk - 1
	for value>>chunk != 0 {
		b.append(1, 1)
		b.append(value&mask, chunk)
		value >>= chunk
	}
	b.append(0, 1)
	b.append(value&mask, chunk)
}

// flush appends whole accumulated words to out. With pad set, a trailing
// partial word is zero-padded and appended too, leaving the buffer empty.
func (b *bitBuffer) flush(out []uint16, pad bool) []uint16 {
	for b.nbits >= 16 {
		out = append(out, uint16(b.bits))
		b.bits >>= 16
		b.nbits -= 16
	}
	if pad && b.nbits > 0 {
		out = append(out, uint16(b.bits))
		b.bits = 0
		b.nbits = 0
	}
	return out
}
