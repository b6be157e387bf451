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
	"image"
	"image/color"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pssvg/svg"
)

func square(x, y, size float64) []any {
	return []any{
		"moveto", x, y,
		"lineto", x + size, y,
		"lineto", x + size, y + size,
		"lineto", x, y + size,
		"closepath",
	}
}

func seq(parts ...any) []any {
	var res []any
	for _, p := range parts {
		if list, ok := p.([]any); ok {
			res = append(res, list...)
		} else {
			res = append(res, p)
		}
	}
	return res
}

func TestStrokeDot(t *testing.T) {
	h, pc := newTestHandler(t, nil, "")
	do(t, h, "setlinecap", 1, "setlinewidth", 4,
		"moveto", 10, 20, "lineto", 10, 20, "stroke")

	els := pageElements(pc)
	if len(els) != 1 {
		t.Fatalf("got %d elements, want 1", len(els))
	}
	want := &svg.Element{
		Name: "circle",
		Attrs: []svg.Attr{
			{Name: "cx", Value: "10"},
			{Name: "cy", Value: "20"},
			{Name: "r", Value: "2"},
			{Name: "fill", Value: "#000000"},
		},
	}
	if d := cmp.Diff(want, els[0]); d != "" {
		t.Error(d)
	}

	// with butt caps, dots are invisible
	do(t, h, "setlinecap", 0, "moveto", 10, 20, "lineto", 10, 20, "stroke")
	if n := len(pageElements(pc)); n != 1 {
		t.Errorf("got %d elements, want 1", n)
	}
}

func TestStrokeAttributes(t *testing.T) {
	h, pc := newTestHandler(t, nil, "")
	do(t, h,
		"setlinewidth", 2,
		"setmiterlimit", 10,
		"setlinecap", 2,
		"setlinejoin", 1,
		"setstrokeconstantalpha", 0.5,
		"setblendmode", 1,
		"setdash", 3, 1, 0.5,
		"moveto", 0, 0, "lineto", 10, 0, "stroke")

	els := pageElements(pc)
	if len(els) != 1 {
		t.Fatalf("got %d elements, want 1", len(els))
	}
	want := []svg.Attr{
		{Name: "d", Value: "m0 0h10"},
		{Name: "stroke", Value: "#000000"},
		{Name: "fill", Value: "none"},
		{Name: "stroke-width", Value: "2"},
		{Name: "stroke-miterlimit", Value: "10"},
		{Name: "stroke-linecap", Value: "square"},
		{Name: "stroke-linejoin", Value: "round"},
		{Name: "stroke-opacity", Value: "0.5"},
		{Name: "style", Value: "mix-blend-mode:multiply"},
		{Name: "stroke-dasharray", Value: "3,1"},
		{Name: "stroke-dashoffset", Value: "0.5"},
	}
	if d := cmp.Diff(want, els[0].Attrs); d != "" {
		t.Error(d)
	}

	box := pc.BBox()
	if box.Width() != 12 || box.Height() != 2 {
		t.Errorf("page box is %gx%g, want 12x2", box.Width(), box.Height())
	}
}

func TestLineWidthScaling(t *testing.T) {
	h, _ := newTestHandler(t, nil, "")
	do(t, h, "applyscalevals", 2, 8, 1, "setlinewidth", 1)
	if lw := h.State().LineWidth; lw != 4 {
		t.Errorf("line width %g, want 4", lw)
	}
	do(t, h, "setlinewidth", 0)
	if lw := h.State().LineWidth; lw != 2 {
		t.Errorf("hairline width %g, want 2", lw)
	}
	do(t, h, "setdash", 1, 2, 0)
	if d := cmp.Diff([]float64{4, 8}, h.State().Dash); d != "" {
		t.Error(d)
	}
	do(t, h, "setdash", 0)
	if h.State().Dash != nil {
		t.Errorf("dash %v not cleared", h.State().Dash)
	}
}

func TestFillAttributes(t *testing.T) {
	h, pc := newTestHandler(t, nil, "")
	do(t, h, seq(square(0, 0, 10), "fill")...)
	do(t, h, seq(
		"setgray", 0.5,
		"setfillconstantalpha", 0.5,
		"setshapealpha", 0.5,
		square(20, 0, 10), "eofill")...)

	els := pageElements(pc)
	if len(els) != 2 {
		t.Fatalf("got %d elements, want 2", len(els))
	}
	want := []svg.Attr{{Name: "d", Value: "m0 0h10v10h-10z"}}
	if d := cmp.Diff(want, els[0].Attrs); d != "" {
		t.Error(d)
	}
	want = []svg.Attr{
		{Name: "d", Value: "m20 0h10v10h-10z"},
		{Name: "fill", Value: "#808080"},
		{Name: "fill-rule", Value: "evenodd"},
		{Name: "fill-opacity", Value: "0.25"},
	}
	if d := cmp.Diff(want, els[1].Attrs); d != "" {
		t.Error(d)
	}
	if pc.Color() != h.State().Color {
		t.Error("host color out of sync")
	}

	// paths without drawn segments produce no output
	do(t, h, "moveto", 5, 5, "fill")
	if n := len(pageElements(pc)); n != 2 {
		t.Errorf("got %d elements, want 2", n)
	}
}

func TestOpacityAlphaIsShape(t *testing.T) {
	h, _ := newTestHandler(t, nil, "")
	do(t, h, "setopacityalpha", 0.5)
	if h.State().FillAlpha != [2]float64{0.5, 1} {
		t.Errorf("fill alpha %v", h.State().FillAlpha)
	}
	do(t, h, "setalphaisshape", 1, "setopacityalpha", 0.25)
	if h.State().StrokeAlpha != [2]float64{0.5, 0.25} {
		t.Errorf("stroke alpha %v", h.State().StrokeAlpha)
	}
}

func TestMatrix(t *testing.T) {
	h, pc := newTestHandler(t, nil, "")
	do(t, h, "setmatrix", 2, 0, 0, 3, 5, 7,
		"moveto", 0, 0, "lineto", 1, 0, "lineto", 0, 1, "closepath", "fill")
	els := pageElements(pc)
	if len(els) != 1 {
		t.Fatalf("got %d elements, want 1", len(els))
	}
	if got := attr(els[0], "d"); got != "m5 7h2l-2 3z" {
		t.Errorf("wrong path data %q", got)
	}

	do(t, h, "setmatrix", 1, 0, 0, 1, 0, 0, "translate", 10, 0, "scale", 2, 2)
	x, y := pc.Matrix().ApplyXY(1, 1)
	if x != 12 || y != 2 {
		t.Errorf("(1, 1) maps to (%g, %g), want (12, 2)", x, y)
	}

	do(t, h, "setmatrix", 1, 0, 0, 1, 0, 0, "rotate", 90)
	x, y = pc.Matrix().ApplyXY(1, 0)
	if math.Abs(x) > 1e-9 || math.Abs(y-1) > 1e-9 {
		t.Errorf("(1, 0) maps to (%g, %g), want (0, 1)", x, y)
	}
}

func TestClip(t *testing.T) {
	h, pc := newTestHandler(t, nil, "")
	doc := pc.Document()

	do(t, h, seq(square(0, 0, 10), "clip", "newpath", 0, square(2, 2, 4), "fill")...)
	clips := doc.Defs.FindAll("clipPath")
	if len(clips) != 1 {
		t.Fatalf("got %d clip paths, want 1", len(clips))
	}
	if got := attr(clips[0], "id"); got != "clip1" {
		t.Errorf("wrong clip id %q", got)
	}
	if got := attr(clips[0].Children[0], "d"); got != "m0 0h10v10h-10z" {
		t.Errorf("wrong clip path data %q", got)
	}
	els := pageElements(pc)
	if got := attr(els[0], "clip-path"); got != "url(#clip1)" {
		t.Errorf("wrong clip-path attribute %q", got)
	}

	do(t, h, seq("gsave", square(5, 5, 10), "eoclip", "newpath", 0)...)
	clips = doc.Defs.FindAll("clipPath")
	if len(clips) != 2 {
		t.Fatalf("got %d clip paths, want 2", len(clips))
	}
	want := []svg.Attr{
		{Name: "id", Value: "clip2"},
		{Name: "clip-path", Value: "url(#clip1)"},
	}
	if d := cmp.Diff(want, clips[1].Attrs); d != "" {
		t.Error(d)
	}
	if got := attr(clips[1].Children[0], "clip-rule"); got != "evenodd" {
		t.Errorf("wrong clip rule %q", got)
	}

	do(t, h, "grestore")
	if id := h.clipStack.TopID(); id != 1 {
		t.Errorf("clip id %d after grestore, want 1", id)
	}

	// clipping to the current clip path adds no definition
	do(t, h, seq(square(0, 0, 10), "clip", "newpath", 0)...)
	if n := len(doc.Defs.FindAll("clipPath")); n != 2 {
		t.Errorf("got %d clip paths, want 2", n)
	}

	do(t, h, seq("initclip", square(0, 0, 1), "fill")...)
	els = pageElements(pc)
	if _, ok := els[len(els)-1].Get("clip-path"); ok {
		t.Error("clip-path set after initclip")
	}
}

func TestClipIntersection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ComputeClipIntersections = true
	h, pc := newTestHandler(t, cfg, "")

	do(t, h, seq(square(0, 0, 10), "clip", "newpath", 0)...)
	do(t, h, seq(square(5, 5, 10), "clip", "newpath", 0)...)

	clips := pc.Document().Defs.FindAll("clipPath")
	if len(clips) != 2 {
		t.Fatalf("got %d clip paths, want 2", len(clips))
	}
	if _, ok := clips[1].Get("clip-path"); ok {
		t.Error("intersected clip path refers to its predecessor")
	}
	got := h.clipStack.Path().BBox().Rect()
	want := rect.Rect{LLx: 5, LLy: 5, URx: 10, URy: 10}
	if d := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); d != "" {
		t.Error(d)
	}

	// the page box is restricted to the clipping area
	do(t, h, seq(square(0, 0, 20), "fill")...)
	box := pc.BBox()
	if box.Width() != 5 || box.Height() != 5 {
		t.Errorf("page box is %gx%g, want 5x5", box.Width(), box.Height())
	}
}

func TestClippathPrepend(t *testing.T) {
	h, pc := newTestHandler(t, nil, "")
	do(t, h, seq(square(0, 0, 10), "clip", "newpath", 0, "clippath",
		square(20, 20, 10), "fill")...)

	els := pageElements(pc)
	if len(els) != 1 {
		t.Fatalf("got %d elements, want 1", len(els))
	}
	got := attr(els[0], "d")
	if !strings.HasPrefix(got, "m0 0h10v10h-10z") || !strings.HasSuffix(got, "h10v10h-10z") {
		t.Errorf("clip path not prepended: %q", got)
	}
	if h.clipStack.PrependedPath() != nil {
		t.Error("prepended path kept after painting")
	}

	// newpath with a positive argument discards the pending clip path
	do(t, h, "clippath", "newpath", 1, "fill")
	if n := len(pageElements(pc)); n != 1 {
		t.Errorf("got %d elements, want 1", n)
	}
}

func TestColoredPattern(t *testing.T) {
	h, pc := newTestHandler(t, nil, "")
	do(t, h, seq(square(0, 0, 100), "clip", "newpath", 0)...)

	do(t, h, seq(
		"makepattern", 1, 7, 0, 0, 10, 10, 10, 10, 1, 1, 0, 0, 1, 0, 0,
		"setrgbcolor", 1, 0, 0,
		square(0, 0, 5), "fill",
		"makepattern", 0)...)
	if n := len(pageElements(pc)); n != 0 {
		t.Fatalf("pattern content written to the page")
	}
	if pc.BBox().Valid() {
		t.Error("pattern content enlarged the page box")
	}

	do(t, h, seq("setpattern", 7, square(20, 20, 10), "fill")...)
	els := pageElements(pc)
	if len(els) != 1 {
		t.Fatalf("got %d elements, want 1", len(els))
	}
	if got := attr(els[0], "fill"); got != "url(#pat7)" {
		t.Errorf("wrong fill %q", got)
	}

	defs := pc.Document().Defs.FindAll("pattern")
	if len(defs) != 1 {
		t.Fatalf("got %d pattern definitions, want 1", len(defs))
	}
	cell := defs[0].FindAll("path")
	if len(cell) != 1 {
		t.Fatalf("pattern cell has %d paths, want 1", len(cell))
	}
	if got := attr(cell[0], "fill"); got != "#ff0000" {
		t.Errorf("wrong cell fill %q", got)
	}
	if _, ok := cell[0].Get("clip-path"); ok {
		t.Error("clip-path set inside a pattern")
	}

	// a color operator ends the pattern
	do(t, h, seq("setgray", 0, square(20, 20, 10), "fill")...)
	els = pageElements(pc)
	if _, ok := els[1].Get("fill"); ok {
		t.Errorf("fill %q after setgray", attr(els[1], "fill"))
	}
}

func TestUncoloredPattern(t *testing.T) {
	h, pc := newTestHandler(t, nil, "")
	do(t, h, seq(
		"makepattern", 1, 3, 0, 0, 10, 10, 10, 10, 2, 1, 0, 0, 1, 0, 0,
		square(0, 0, 5), "fill",
		"makepattern", 0,
		"setpattern", 3, 1, 0, 0,
		square(0, 0, 10), "fill")...)

	els := pageElements(pc)
	if len(els) != 1 {
		t.Fatalf("got %d elements, want 1", len(els))
	}
	if got := attr(els[0], "fill"); got != "url(#pat3-2)" {
		t.Errorf("wrong fill %q", got)
	}
	if pc.Color() != h.State().Color || pc.Color().String() != "#ff0000" {
		t.Errorf("wrong paint %s", pc.Color())
	}
	if h.State().Pattern == nil {
		t.Error("pattern lost by setting its paint")
	}

	do(t, h, "setpattern", 99)
	if h.State().Pattern != nil {
		t.Error("unknown pattern selected")
	}
}

// triangle returns shfill arguments for a free-form triangle mesh with gray
// vertex colors.
func triangle(bg []float64, bbox []float64) []any {
	args := []any{"shfill", 4, 1}
	if bg != nil {
		args = append(args, 1)
		for _, x := range bg {
			args = append(args, x)
		}
	} else {
		args = append(args, 0)
	}
	if bbox != nil {
		args = append(args, 1)
		for _, x := range bbox {
			args = append(args, x)
		}
	} else {
		args = append(args, 0)
	}
	return append(args,
		0, 0, 0, 0,
		0, 4, 0, 0.5,
		0, 0, 4, 1)
}

func TestShfill(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShadingSegmentSize = 2
	h, pc := newTestHandler(t, cfg, "")

	do(t, h, triangle(nil, nil)...)
	els := pageElements(pc)
	if len(els) != 1 {
		t.Fatalf("got %d elements, want 1", len(els))
	}
	group := els[0]
	if group.Name != "g" || len(group.Children) != 4 {
		t.Fatalf("got <%s> with %d children, want <g> with 4", group.Name, len(group.Children))
	}
	for _, seg := range group.Children {
		if _, ok := seg.Get("fill"); !ok {
			t.Error("segment without fill")
		}
	}
	box := pc.BBox()
	if box.Width() != 4 || box.Height() != 4 {
		t.Errorf("page box is %gx%g, want 4x4", box.Width(), box.Height())
	}
}

func TestShfillBBox(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShadingSegmentSize = 2
	h, pc := newTestHandler(t, cfg, "")

	do(t, h, triangle([]float64{0.5}, []float64{0, 0, 2, 2})...)
	els := pageElements(pc)
	if len(els) != 1 {
		t.Fatalf("got %d elements, want 1", len(els))
	}
	group := els[0]
	if got := attr(group, "clip-path"); got != "url(#clip1)" {
		t.Errorf("wrong clip-path %q", got)
	}
	if len(group.Children) != 5 {
		t.Fatalf("got %d children, want 5", len(group.Children))
	}
	bg := group.Children[0]
	want := []svg.Attr{
		{Name: "d", Value: "m0 0h2v2h-2z"},
		{Name: "fill", Value: "#808080"},
	}
	if d := cmp.Diff(want, bg.Attrs); d != "" {
		t.Error(d)
	}

	// the temporary clip path is gone
	if n := h.clipStack.Len(); n != 0 {
		t.Errorf("clip stack has %d entries", n)
	}
	box := pc.BBox()
	if box.Width() != 2 || box.Height() != 2 {
		t.Errorf("page box is %gx%g, want 2x2", box.Width(), box.Height())
	}
}

func TestShfillMalformed(t *testing.T) {
	h, pc := newTestHandler(t, nil, "")

	// the first patch of a mesh cannot continue a previous patch
	do(t, h, "shfill", 4, 1, 0, 0, 1, 0, 0, 0, 1, 4, 0, 1, 1, 0, 4, 1)
	if n := len(pageElements(pc)); n != 0 {
		t.Errorf("got %d elements, want 0", n)
	}
}

func TestShfillLatticeTooLong(t *testing.T) {
	h, pc := newTestHandler(t, nil, "")

	// the row length exceeds the available data
	do(t, h, "shfill", 5, 1, 0, 0, 1e15, 0, 0, 0, 1, 0, 1)
	if n := len(pageElements(pc)); n != 0 {
		t.Errorf("got %d elements, want 0", n)
	}

	// the handler keeps working afterwards
	do(t, h, seq(square(0, 0, 10), "fill")...)
	if n := len(pageElements(pc)); n != 1 {
		t.Errorf("got %d elements, want 1", n)
	}
}

func TestNullDevice(t *testing.T) {
	h, pc := newTestHandler(t, nil, "")
	do(t, h, seq("setnulldevice", 1, square(0, 0, 10), "fill")...)
	if n := len(pageElements(pc)); n != 0 {
		t.Errorf("got %d elements, want 0", n)
	}
	do(t, h, seq("setnulldevice", 0, square(0, 0, 10), "fill")...)
	if n := len(pageElements(pc)); n != 1 {
		t.Errorf("got %d elements, want 1", n)
	}
}

func TestImage(t *testing.T) {
	h, pc := newTestHandler(t, nil, "")

	img := image.NewGray(image.Rect(0, 0, 2, 3))
	img.Set(1, 1, color.White)
	err := h.bitmaps.WriteImage(1, img)
	if err != nil {
		t.Fatal(err)
	}
	fname := h.bitmaps.fileName(1)

	do(t, h, "image", 1, 2, 3)
	els := pageElements(pc)
	if len(els) != 1 {
		t.Fatalf("got %d elements, want 1", len(els))
	}
	el := els[0]
	if el.Name != "image" {
		t.Fatalf("got <%s>, want <image>", el.Name)
	}
	if got := attr(el, "transform"); got != "matrix(0.5 0 0 -0.333333 0 1)" {
		t.Errorf("wrong transform %q", got)
	}
	if got := attr(el, "xlink:href"); !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("wrong image data %.40q", got)
	}
	if _, err := os.Stat(fname); !os.IsNotExist(err) {
		t.Errorf("temporary file %s not removed", fname)
	}

	// the image covers the unit square
	box := pc.BBox()
	if d := cmp.Diff(rect.Rect{URx: 1, URy: 1}, box.Rect(), cmpopts.EquateApprox(0, 1e-9)); d != "" {
		t.Error(d)
	}
}
