package stir

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bodgit/stir/asset"
	"github.com/bodgit/stir/audio"
	"github.com/bodgit/stir/cache"
	"github.com/bodgit/stir/dub"
	"github.com/bodgit/stir/tileset"
)

// CompileImage compiles one source image into a marshalled asset group
// holding its tile pool and encoded tile indices. frames splits the image
// vertically into an animation; maxColors, when positive, quantizes the
// image before anything else.
func (s *Stir) CompileImage(file string, frames, maxColors int) ([]byte, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var key string
	if s.cache != nil {
		if key, err = cache.Key(f, strconv.Itoa(frames), strconv.Itoa(maxColors)); err != nil {
			return nil, err
		}

		b, err := s.cache.Get(key)
		if err != nil {
			return nil, err
		}
		if b != nil {
			s.logger.Printf("%s: cached", filepath.Base(file))
			return b, nil
		}

		if _, err = f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	pool := tileset.NewPool()
	g, err := pool.Grid(tileset.Quantize(m, maxColors), frames)
	if err != nil {
		return nil, err
	}

	e := dub.NewEncoder(g.Width, g.Height, g.Frames)
	if err := e.Encode(g.Tiles); err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	e.LogStats(name, s.logger)
	if e.IsTooLarge() {
		s.logger.Printf("%s: too large to address, storing uncompressed", name)
	}

	group := &asset.Group{
		Pool:   pool,
		Images: []*asset.Image{asset.NewImage(name, g, e)},
	}

	b, err := group.MarshalBinary()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Put(key, b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// CompileSound encodes one file of raw little-endian 16-bit mono PCM into
// the named sample format; an empty format means adpcm.
func (s *Stir) CompileSound(file, format string) ([]byte, error) {
	enc, err := audio.New(format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var key string
	if s.cache != nil {
		if key, err = cache.Key(f, format); err != nil {
			return nil, err
		}

		b, err := s.cache.Get(key)
		if err != nil {
			return nil, err
		}
		if b != nil {
			s.logger.Printf("%s: cached", filepath.Base(file))
			return b, nil
		}

		if _, err = f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}

	in, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	out := enc.Encode(in)
	s.logger.Printf("%s: %d PCM bytes in, %d bytes out", filepath.Base(file), len(in), len(out))

	if s.cache != nil {
		if err := s.cache.Put(key, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}
