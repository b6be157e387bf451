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

package pattern

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pssvg/color"
	"seehuhn.de/go/pssvg/svg"
	"seehuhn.de/go/pssvg/transform"
)

func TestColoredPattern(t *testing.T) {
	reg := NewRegistry()
	box := rect.Rect{LLx: 0, LLy: 0, URx: 10, URy: 10}
	p := reg.Define(3, Colored, box, 10, 10, transform.Translation(5, 0))
	p.Container().Append(svg.NewElement("path").Set("d", "M0 0h5v5z").Set("fill", "#ff0000"))

	if got := reg.Select(3, color.Black); got != p {
		t.Fatal("Select returned wrong pattern")
	}
	if p.SVGID() != "pat3" {
		t.Errorf("SVGID() = %q", p.SVGID())
	}

	doc := svg.NewDocument()
	p.Apply(doc)
	p.Apply(doc)
	defs := doc.Defs.FindAll("pattern")
	if len(defs) != 1 {
		t.Fatalf("got %d pattern definitions, want 1", len(defs))
	}
	want := `<pattern id="pat3" x="0" y="0" width="10" height="10" viewBox="0 0 10 10" ` +
		`patternUnits="userSpaceOnUse" patternTransform="matrix(1 0 0 1 5 0)">` +
		`<g><path d="M0 0h5v5z" fill="#ff0000"/></g></pattern>`
	if d := cmp.Diff(want, defs[0].String()); d != "" {
		t.Error(d)
	}
}

func TestUncoloredPattern(t *testing.T) {
	reg := NewRegistry()
	box := rect.Rect{LLx: 0, LLy: 0, URx: 4, URy: 4}
	p := reg.Define(1, Uncolored, box, 4, 4, transform.Identity)
	p.Container().Append(svg.NewElement("path").Set("d", "M0 0h2v2z").Set("fill", "#000000"))

	doc := svg.NewDocument()
	red := color.RGB(1, 0, 0)
	reg.Select(1, red).Apply(doc)
	redID := p.SVGID()
	reg.Select(1, color.Gray(0.5)).Apply(doc)
	reg.Select(1, red).Apply(doc)

	if redID == p.SVGID() {
		t.Errorf("different paints share the id %q", redID)
	}
	defs := doc.Defs.FindAll("pattern")
	if len(defs) != 2 {
		t.Fatalf("got %d pattern definitions, want 2", len(defs))
	}
	fill, _ := defs[0].Find("path").Get("fill")
	if fill != "#ff0000" {
		t.Errorf("first definition painted with %s", fill)
	}
	fill, _ = defs[1].Find("path").Get("fill")
	if fill != "#808080" {
		t.Errorf("second definition painted with %s", fill)
	}

	// the container itself stays unchanged
	fill, _ = p.Container().Find("path").Get("fill")
	if fill != "#000000" {
		t.Errorf("container was modified: %s", fill)
	}
}

func TestTileClipping(t *testing.T) {
	reg := NewRegistry()
	box := rect.Rect{LLx: 0, LLy: 0, URx: 2, URy: 2}
	p := reg.Define(7, Colored, box, 5, 5, transform.Identity)
	p.Container().Append(svg.NewElement("circle"))

	doc := svg.NewDocument()
	p.Apply(doc)
	def := doc.Defs.Find("pattern")
	if def.Find("clipPath") == nil {
		t.Error("missing clip path for tile larger than bounding box")
	}
	if v, _ := def.Find("g").Get("clip-path"); v != "url(#pcpat7)" {
		t.Errorf("clip-path = %q", v)
	}

	p = reg.Define(8, Colored, box, 1, 1, transform.Identity)
	p.Apply(doc)
	def = doc.Defs.FindAll("pattern")[1]
	if v, _ := def.Get("overflow"); v != "visible" {
		t.Error("overlapping tiles must not be clipped")
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	box := rect.Rect{URx: 1, URy: 1}
	reg.Define(5, Colored, box, 1, 1, transform.Identity)
	reg.Define(2, Colored, box, 1, 1, transform.Identity)
	old := reg.Define(9, Colored, box, 1, 1, transform.Identity)
	p := reg.Define(9, Uncolored, box, 1, 1, transform.Identity)

	if reg.Lookup(9) != p || reg.Lookup(9) == old {
		t.Error("redefinition did not replace the pattern")
	}
	if reg.Select(4, color.Black) != nil {
		t.Error("unknown pattern id selected")
	}
	if d := cmp.Diff([]int{2, 5, 9}, reg.IDs()); d != "" {
		t.Error(d)
	}
}

func TestRedefinitionIDs(t *testing.T) {
	reg := NewRegistry()
	box := rect.Rect{URx: 1, URy: 1}
	doc := svg.NewDocument()

	reg.Define(4, Colored, box, 1, 1, transform.Identity).Apply(doc)
	reg.Define(4, Colored, box, 1, 1, transform.Identity).Apply(doc)
	p := reg.Define(4, Uncolored, box, 1, 1, transform.Identity)
	p.Apply(doc)

	var ids []string
	for _, def := range doc.Defs.FindAll("pattern") {
		id, _ := def.Get("id")
		ids = append(ids, id)
	}
	if d := cmp.Diff([]string{"pat4", "pat4.1", "pat4.2-1"}, ids); d != "" {
		t.Error(d)
	}
}
