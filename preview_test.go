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

package pssvg

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pssvg/transform"
)

const previewHeader = "/preview@tightpage true def /preview@version(13.1)def"

// previewSpecial gives the box data for a box of width 20bp, height 10bp
// and depth 2bp, without border adjustments.
const previewSpecial = "0 0 0 0 657817.6 131563.52 1315635.2 "

func TestPreviewBox(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BBoxFormat = "preview"
	h, pc := newTestHandler(t, cfg, "")

	err := h.Preprocess("!", strings.NewReader(previewHeader))
	if err != nil {
		t.Fatal(err)
	}
	err = h.Process("ps::", strings.NewReader(previewSpecial))
	if err != nil {
		t.Fatal(err)
	}
	if h.preview.version != "13.1" {
		t.Errorf("version %q", h.preview.version)
	}
	do(t, h, seq(square(100, 100, 10), "fill")...)
	h.EndPage()

	box := pc.BBox()
	if !box.Locked() {
		t.Error("page box not locked")
	}
	want := rect.Rect{LLx: 0, LLy: -10, URx: 20, URy: 2}
	if d := cmp.Diff(want, box.Rect(), cmpopts.EquateApprox(0, 1e-9)); d != "" {
		t.Error(d)
	}
}

func TestPreviewMin(t *testing.T) {
	h, pc := newTestHandler(t, nil, "")

	err := h.Preprocess("!", strings.NewReader(previewHeader))
	if err != nil {
		t.Fatal(err)
	}
	err = h.Process("ps::", strings.NewReader(previewSpecial))
	if err != nil {
		t.Fatal(err)
	}
	do(t, h, seq(square(0, 0, 5), "fill")...)
	h.EndPage()

	box := pc.BBox()
	if !box.Locked() {
		t.Error("page box not locked")
	}
	want := rect.Rect{URx: 5, URy: 5}
	if d := cmp.Diff(want, box.Rect()); d != "" {
		t.Error(d)
	}
}

func TestNoPreview(t *testing.T) {
	h, pc := newTestHandler(t, nil, "")

	err := h.Process("ps::", strings.NewReader("1 2 3 4 5 6 7 7 {pop} repeat"))
	if err != nil {
		t.Fatal(err)
	}
	h.EndPage()
	if pc.BBox().Locked() {
		t.Error("page box locked without preview data")
	}
}

func TestReadExtents(t *testing.T) {
	var p previewData
	rest := p.readExtents([]byte("-65781.76 0 0 0 1 2 3 newpath"))
	if string(rest) != " newpath" {
		t.Errorf("remaining code %q", rest)
	}
	if len(p.extents) != 7 || math.Abs(p.extents[0]+1) > 1e-9 {
		t.Errorf("wrong extents %v", p.extents)
	}

	p = previewData{}
	code := []byte("1 2 moveto")
	if rest := p.readExtents(code); string(rest) != string(code) {
		t.Errorf("code changed to %q", rest)
	}
	if p.extents != nil {
		t.Errorf("unexpected extents %v", p.extents)
	}
}

func TestTransformExtents(t *testing.T) {
	w, h, d := 1.0, 3.0, 1.0
	if !transformExtents(transform.Scaling(2, -2), &w, &h, &d) {
		t.Fatal("horizontal baseline not recognized")
	}
	if w != 2 || h != 2 || d != 6 {
		t.Errorf("got w=%g h=%g d=%g, want 2, 2, 6", w, h, d)
	}

	if transformExtents(transform.Rotation(45), &w, &h, &d) {
		t.Error("rotated baseline not detected")
	}
}
