/*
Package stir is a library for compiling image and audio assets into the
compressed formats used by the Sifteo Cube.
*/
package stir

import (
	"log"

	"github.com/bodgit/stir/cache"
)

type Stir struct {
	cache  *cache.Cache
	logger *log.Logger
}

// New returns an asset compiler. c may be nil, in which case everything
// is compiled from scratch every time.
func New(c *cache.Cache, logger *log.Logger) *Stir {
	return &Stir{
		cache:  c,
		logger: logger,
	}
}
