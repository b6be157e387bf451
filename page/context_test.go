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

package page

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pssvg/bbox"
	"seehuhn.de/go/pssvg/color"
)

func TestNew(t *testing.T) {
	pc := New(3)
	if pc.PageNumber() != 3 {
		t.Errorf("wrong page number %d", pc.PageNumber())
	}
	if !pc.Matrix().IsIdentity() || !pc.PageTransform().IsIdentity() {
		t.Error("transformations not initialized")
	}
	if pc.Color() != color.Black {
		t.Errorf("wrong initial color %s", pc.Color())
	}
	if pc.OutputLocked() {
		t.Error("output locked")
	}
}

func TestSVGFilePath(t *testing.T) {
	pc := New(1)
	if got := pc.SVGFilePath(7); got != "page-7.svg" {
		t.Errorf("got %q", got)
	}
	pc.FilePattern = "out/fig.svg"
	if got := pc.SVGFilePath(7); got != "out/fig.svg" {
		t.Errorf("got %q", got)
	}
}

func TestEmbed(t *testing.T) {
	pc := New(1)
	pc.Embed(bbox.New(0, 0, 10, 5))
	pc.BBox().Lock()
	pc.Embed(bbox.New(-100, -100, 0, 0))
	pc.BBox().Unlock()
	pc.Embed(bbox.New(5, 5, 20, 6))

	doc := pc.Finish()
	want := rect.Rect{LLx: 0, LLy: 0, URx: 20, URy: 6}
	if d := cmp.Diff(want, doc.ViewBox); d != "" {
		t.Error(d)
	}
}

func TestFinishEmpty(t *testing.T) {
	doc := New(1).Finish()
	if !doc.ViewBox.IsZero() {
		t.Errorf("empty page has view box %v", doc.ViewBox)
	}
}

func TestProgressNoTerminal(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "progress")
	fd, err := os.Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer fd.Close()

	pc := New(1)
	pc.ShowProgress(fd)
	for range 2 * progressStep {
		pc.Progress("ps")
	}
	pc.EndProgress()

	fi, err := fd.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != 0 {
		t.Errorf("%d bytes of progress output written to a file", fi.Size())
	}
}
