/*
Package audio implements the sample encoders for cube sound assets.

Input is little-endian 16-bit mono PCM. The pcm encoder stores it as is.
The adpcm encoder compresses 4:1 using the cube's variant of IMA ADPCM: a
three-byte header holds the initial predictor sample and step index, then
each byte packs two samples as 4-bit codes. The variant rounds with a
multiply and shift instead of the usual successive approximation, and the
encoder searches for the initial conditions that track the input best.
*/
package audio

import (
	"fmt"
	"strings"
)

// Encoder turns raw PCM into one of the stored sample formats.
type Encoder interface {
	Encode(pcm []byte) []byte
}

// New returns the encoder named by format, either "pcm" or "adpcm". An
// empty format selects adpcm.
func New(format string) (Encoder, error) {
	switch strings.ToLower(format) {
	case "pcm":
		return pcm{}, nil
	case "adpcm", "":
		return adpcm{}, nil
	}
	return nil, fmt.Errorf("audio: unknown format %q", format)
}

type pcm struct{}

// Encode returns a copy of the samples; PCM is already the stored format.
func (pcm) Encode(in []byte) []byte {
	return append([]byte(nil), in...)
}
