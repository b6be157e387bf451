// seehuhn.de/go/pssvg - render PostScript graphics as SVG
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Ps2svg converts PostScript graphics into SVG files.
//
// Usage:
//
//	ps2svg [-config settings.toml] [-o out.svg] [-q] file.eps...
//
// Every input file gives one SVG page.  The graphics are placed using the
// %%BoundingBox comment of the input file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"seehuhn.de/go/pssvg"
	"seehuhn.de/go/pssvg/page"
	"seehuhn.de/go/pssvg/postscript"
)

func main() {
	configFile := flag.String("config", "", "read settings from this TOML `file`")
	outName := flag.String("o", "", "output file `name`; %d is replaced by the page number")
	quiet := flag.Bool("q", false, "only report errors")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] file.eps...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *quiet {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := pssvg.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = pssvg.LoadConfigFile(*configFile)
		if err != nil {
			logger.Error("cannot load configuration", "file", *configFile, "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &converter{
		cfg:      cfg,
		logger:   logger,
		outName:  *outName,
		progress: !*quiet,
	}
	err := c.run(ctx, flag.Args())
	if err != nil {
		logger.Error("conversion failed", "error", err)
		os.Exit(1)
	}
}

type converter struct {
	cfg      *pssvg.Config
	logger   *slog.Logger
	outName  string
	progress bool
}

// run converts the input files, one page per file.  Cancellation is
// checked between pages.
func (c *converter) run(ctx context.Context, files []string) error {
	if len(files) > 1 && c.outName != "" && !strings.Contains(c.outName, "%d") {
		return errors.New("output name must contain %d for more than one input file")
	}
	for i, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.convertPage(i+1, name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (c *converter) convertPage(pageNo int, name string) error {
	llx, lly, urx, ury, err := boundingBox(name)
	if err != nil {
		return err
	}

	pc := page.New(pageNo)
	pc.FilePattern = c.outName
	if pc.FilePattern == "" {
		pc.FilePattern = strings.TrimSuffix(name, filepath.Ext(name)) + ".svg"
	}
	if c.progress {
		pc.ShowProgress(os.Stderr)
	}

	h := pssvg.New(pc, &pssvg.Options{
		Logger: c.logger,
		Config: c.cfg,
	})
	spec := fmt.Sprintf(`"%s" llx=%s lly=%s urx=%s ury=%s`, name,
		num(llx), num(lly), num(urx), num(ury))
	err = h.Process("psfile=", strings.NewReader(spec))
	if err != nil {
		return err
	}
	h.EndPage()
	pc.EndProgress()

	outFile := pc.SVGFilePath(pageNo)
	out, err := os.Create(outFile)
	if err != nil {
		return err
	}
	_, err = pc.Finish().WriteTo(out)
	if err2 := out.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return err
	}
	c.logger.Info("page written", "page", pageNo, "file", outFile)
	return nil
}

func num(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// boundingBox reads the %%BoundingBox comment from the header of a
// PostScript file.
func boundingBox(name string) (llx, lly, urx, ury float64, err error) {
	fd, err := os.Open(name)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	defer fd.Close()

	s := postscript.NewScanner(fd)
	err = s.SkipWhiteSpace()
	if err != nil && len(s.DSC) == 0 {
		return 0, 0, 0, 0, err
	}
	c, ok := postscript.FindComment(s.DSC, "BoundingBox")
	if !ok {
		return 0, 0, 0, 0, errors.New("no BoundingBox comment found")
	}
	v, ok := c.Numbers()
	if !ok || len(v) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("invalid bounding box %q", c.Value)
	}
	return v[0], v[1], v[2], v[3], nil
}
