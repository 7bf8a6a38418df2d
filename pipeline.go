package stir

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	groupExt = ".stir"
	soundExt = ".adpcm"

	scanWorkers = 10
)

func isAsset(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".png", ".gif", ".jpg", ".jpeg", ".raw", ".pcm":
		return true
	}
	return false
}

func (s *Stir) findAssets(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			// Ignore any file greater than 16 MB
			if info.Size() > 16<<(10*2) {
				return nil
			}

			if !isAsset(file) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (s *Stir) assetWorker(ctx context.Context, frames, maxColors int, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			var (
				b   []byte
				ext string
				err error
			)

			switch strings.ToLower(filepath.Ext(file)) {
			case ".raw", ".pcm":
				b, err = s.CompileSound(file, "")
				ext = soundExt
			default:
				b, err = s.CompileImage(file, frames, maxColors)
				ext = groupExt
			}
			if err != nil {
				errc <- err
				return
			}

			if err := os.WriteFile(strings.TrimSuffix(file, filepath.Ext(file))+ext, b, 0666); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks a directory tree and compiles every image and sound it
// finds, writing the result alongside each source file.
func (s *Stir) Scan(path string, frames, maxColors int) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := s.findAssets(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < scanWorkers; i++ {
		errc, err := s.assetWorker(ctx, frames, maxColors, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
