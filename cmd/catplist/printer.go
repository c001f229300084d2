package main

import (
	"errors"
	"fmt"
	"github.com/go-gum/catplist"
	"github.com/go-gum/catplist/render"
	log "github.com/sirupsen/logrus"
	"io"
	"os"
	"path/filepath"
	"slices"
)

type printer struct {
	out     io.Writer
	render  render.Renderer
	raw     bool
	recurse bool
	decoder *catplist.Decoder
	log     log.FieldLogger
}

// printPaths prints every file named in paths, in order. Directories are expanded
// depth first when recursing.
func (p *printer) printPaths(paths []string) {
	stack := slices.Clone(paths)
	slices.Reverse(stack)

	for len(stack) > 0 {
		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		info, err := os.Stat(path)
		if err != nil {
			p.log.WithError(err).WithField("path", path).Warn("Skipping path")
			continue
		}

		switch {
		case info.IsDir() && p.recurse:
			entries, err := os.ReadDir(path)
			if err != nil {
				p.log.WithError(err).WithField("path", path).Warn("Skipping directory")
				continue
			}

			for idx := len(entries) - 1; idx >= 0; idx-- {
				stack = append(stack, filepath.Join(path, entries[idx].Name()))
			}

		case info.IsDir():
			p.log.WithField("path", path).Info("Skipping directory, use --recurse to descend")

		case info.Mode().IsRegular():
			p.printFile(path)
		}
	}
}

func (p *printer) printFile(path string) {
	fmt.Fprintf(p.out, "Printing file %s:\n", path)
	defer fmt.Fprintln(p.out)

	logger := p.log.WithField("file", path)

	file, err := p.decoder.WithLogger(logger).Open(path)

	var parseErr *catplist.ParseError
	switch {
	case errors.As(err, &parseErr):
		fmt.Fprintf(p.out, " - is not a valid plist. Skipping over Error '%s'.\n", parseErr.Err)
		return

	case err != nil:
		fmt.Fprintf(p.out, " - could not be read. Skipping over Error '%s'.\n", err)
		return
	}

	value := file.Value
	if p.raw {
		value = file.Raw.Raw()
	}

	if err := p.render(p.out, value); err != nil {
		logger.WithError(err).Error("Render failed")
	}
}
