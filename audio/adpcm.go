package audio

const (
	headerSize = 3
	indexMax   = 88

	// Samples examined when searching for initial conditions.
	optimizeSamples = 100
)

var stepSizeTable = [indexMax + 1]int32{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17,
	19, 21, 23, 25, 28, 31, 34, 37, 41, 45,
	50, 55, 60, 66, 73, 80, 88, 97, 107, 118,
	130, 143, 157, 173, 190, 209, 230, 253, 279, 307,
	337, 371, 408, 449, 494, 544, 598, 658, 724, 796,
	876, 963, 1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066,
	2272, 2499, 2749, 3024, 3327, 3660, 4026, 4428, 4871, 5358,
	5894, 6484, 7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794, 32767,
}

// codeTable packs each 4-bit code's predictor multiplier into the low
// byte, as a signed value, and its step index adjustment into the rest.
var codeTable = [16]uint32{
	0xffffff01, 0xffffff03, 0xffffff05, 0xffffff07,
	0x00000209, 0x0000040b, 0x0000060d, 0x0000080f,
	0xffffffff, 0xfffffffd, 0xfffffffb, 0xfffffff9,
	0x000002f7, 0x000004f5, 0x000006f3, 0x000008f1,
}

// state is the codec predictor: the last decoded sample and the current
// step table index.
type state struct {
	sample int
	index  int
}

type adpcm struct{}

func (adpcm) Encode(in []byte) []byte {
	out, _ := encodeAll(optimize(in), in, len(in))
	return out
}

// sampleAt reads the k'th little-endian 16-bit sample.
func sampleAt(in []byte, k int) int {
	return int(int16(uint16(in[2*k]) | uint16(in[2*k+1])<<8))
}

// encodeSample reduces one sample to a 4-bit code and advances the
// predictor. The prediction update multiplies and shifts rather than
// successively approximating, matching the decoder in the cube firmware,
// and code ties resolve to the highest code so both sides agree exactly.
func encodeSample(s *state, sample int) int {
	step := stepSizeTable[s.index]
	diff := sample - s.sample

	bestCode, bestDiff := 0, 0x100000
	for c := 0; c < 16; c++ {
		thisDiff := int(int32(int8(codeTable[c])) * step >> 3)
		thisErr := max(thisDiff-diff, diff-thisDiff)
		bestErr := max(bestDiff-diff, diff-bestDiff)
		if thisErr <= bestErr {
			bestCode, bestDiff = c, thisDiff
		}
	}

	s.sample = min(32767, max(-32768, s.sample+bestDiff))
	s.index = min(indexMax, max(0, s.index+int(int32(codeTable[bestCode])>>8)))

	return bestCode
}

// encodePair packs two samples into one byte and returns it with the
// squared prediction error.
func encodePair(s *state, s1, s2 int) (byte, uint64) {
	n1 := encodeSample(s, s1)
	e1 := int64(s.sample - s1)
	n2 := encodeSample(s, s2)
	e2 := int64(s.sample - s2)
	return byte(n1 | n2<<4), uint64(e1*e1) + uint64(e2*e2)
}

// encodeAll compresses the first n bytes of in from the initial
// conditions s, returning the stream and its summed squared error. An odd
// trailing sample is doubled up to fill the last nibble pair.
func encodeAll(s state, in []byte, n int) ([]byte, uint64) {
	samples := n / 2
	pairs := samples / 2

	out := make([]byte, 0, headerSize+pairs+samples&1)
	out = append(out, byte(s.sample), byte(s.sample>>8), byte(s.index))

	var distortion uint64
	for p := 0; p < pairs; p++ {
		b, d := encodePair(&s, sampleAt(in, 2*p), sampleAt(in, 2*p+1))
		out = append(out, b)
		distortion += d
	}
	if samples&1 == 1 {
		last := sampleAt(in, samples-1)
		b, d := encodePair(&s, last, last)
		out = append(out, b)
		distortion += d
	}

	return out, distortion
}

func distortion(s state, in []byte, n int) uint64 {
	_, d := encodeAll(s, in, n)
	return d
}

// optimize finds initial conditions that converge quickly on this input.
// Bad ones can take the predictor dozens of samples to recover from, so
// every step index is tried over the opening stretch, then a hill climb
// nudges sample and index until no single step improves the error.
func optimize(in []byte) state {
	var s state
	if len(in) < 4 {
		return s
	}

	s.sample = sampleAt(in, 0)

	n := min(len(in), optimizeSamples*2)

	best := ^uint64(0)
	bestIndex := 0
	for s.index = 0; s.index < indexMax; s.index++ {
		if d := distortion(s, in, n); d < best {
			best, bestIndex = d, s.index
		}
	}
	s.index = bestIndex

	for {
		s.sample++
		if d := distortion(s, in, n); d < best {
			best = d
			continue
		}
		s.sample -= 2
		if d := distortion(s, in, n); d < best {
			best = d
			continue
		}
		s.sample++

		if s.index < indexMax {
			s.index++
			if d := distortion(s, in, n); d < best {
				best = d
				continue
			}
			s.index--
		}
		if s.index > 0 {
			s.index--
			if d := distortion(s, in, n); d < best {
				best = d
				continue
			}
			s.index++
		}

		return s
	}
}
