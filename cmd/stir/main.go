package main

import (
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/stir"
	"github.com/bodgit/stir/asset"
	"github.com/bodgit/stir/cache"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func newStir(c *cli.Context) (*stir.Stir, func() error, error) {
	closer := func() error { return nil }

	var db *cache.Cache
	if file := c.String("cache"); file != "" {
		var err error
		if db, err = cache.New(file); err != nil {
			return nil, nil, err
		}
		closer = db.Close
	}

	return stir.New(db, newLogger(c)), closer, nil
}

func outputFile(c *cli.Context, file, ext string) string {
	if out := c.String("output"); out != "" {
		return out
	}
	return strings.TrimSuffix(file, filepath.Ext(file)) + ext
}

func readGroup(file string) (*asset.Group, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	g := new(asset.Group)
	if err := g.UnmarshalBinary(b); err != nil {
		return nil, err
	}

	return g, nil
}

func main() {
	app := cli.NewApp()

	app.Name = "stir"
	app.Usage = "Sifteo Cube asset compiler"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "cache",
			EnvVars: []string{"STIR_CACHE"},
			Usage:   "path to compile cache database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "compile",
			Usage:       "Compile an image into a tile asset group",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "frames",
					Aliases: []string{"f"},
					Value:   1,
					Usage:   "animation frames stacked vertically",
				},
				&cli.IntFlag{
					Name:    "max-colors",
					Aliases: []string{"m"},
					Usage:   "quantize to at most this many colors first",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "write the group to this file",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				s, closer, err := newStir(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closer()

				file := c.Args().First()
				b, err := s.CompileImage(file, c.Int("frames"), c.Int("max-colors"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				if err := os.WriteFile(outputFile(c, file, ".stir"), b, 0666); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Recursively compile every asset under a directory",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "frames",
					Aliases: []string{"f"},
					Value:   1,
					Usage:   "animation frames stacked vertically",
				},
				&cli.IntFlag{
					Name:    "max-colors",
					Aliases: []string{"m"},
					Usage:   "quantize to at most this many colors first",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				s, closer, err := newStir(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closer()

				if err := s.Scan(c.Args().First(), c.Int("frames"), c.Int("max-colors")); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "sound",
			Usage:       "Encode a raw PCM file into a sample asset",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "adpcm",
					Usage:   "sample format, pcm or adpcm",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "write the sample to this file",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				s, closer, err := newStir(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closer()

				file := c.Args().First()
				b, err := s.CompileSound(file, c.String("format"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				if err := os.WriteFile(outputFile(c, file, "."+c.String("format")), b, 0666); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "info",
			Usage:       "Describe a compiled asset group",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				file := c.Args().First()
				g, err := readGroup(file)
				if err != nil {
					return cli.Exit(err, 1)
				}

				fmt.Printf("%s: %d tiles, %d images\n", filepath.Base(file), g.Pool.Len(), len(g.Images))
				for _, img := range g.Images {
					storage := "dub"
					if !img.Compressed {
						storage = "raw"
					}
					index := 8
					if img.Index16 {
						index = 16
					}
					fmt.Printf("  %s: %dx%d tiles, %d frames, %d words, %s, %d-bit index\n",
						img.Name, img.Width, img.Height, img.Frames, len(img.Words), storage, index)
				}

				return nil
			},
		},
		{
			Name:        "proof",
			Usage:       "Render the tile pool of a compiled group as a PNG",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "write the proof sheet to this file",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				file := c.Args().First()
				g, err := readGroup(file)
				if err != nil {
					return cli.Exit(err, 1)
				}

				f, err := os.Create(outputFile(c, file, ".png"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				if err := png.Encode(f, g.Pool.Image()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
