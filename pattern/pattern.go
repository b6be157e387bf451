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

// Package pattern keeps track of PostScript tiling patterns and writes them
// as SVG pattern definitions.
package pattern

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/slices"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pssvg/color"
	"seehuhn.de/go/pssvg/svg"
	"seehuhn.de/go/pssvg/transform"
)

// Kind is the PaintType of a tiling pattern.
type Kind int

// These are the supported kinds of tiling patterns.
const (
	Colored   Kind = 1
	Uncolored Kind = 2
)

func (k Kind) String() string {
	switch k {
	case Colored:
		return "colored"
	case Uncolored:
		return "uncolored"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Pattern is a tiling pattern.  The graphics drawn while the pattern is
// being defined are collected in its container element.
type Pattern struct {
	ID     int
	Kind   Kind
	BBox   rect.Rect
	XStep  float64
	YStep  float64
	Matrix transform.Matrix

	container *svg.Element

	// gen counts earlier definitions with the same ID.
	gen int

	// color is the paint used for uncolored patterns.
	color color.Color

	// written records the SVG ids of all definitions which have been
	// added to the document.
	written map[string]bool
	colors  map[color.Color]int
}

// Container returns the element which receives the pattern content.
func (p *Pattern) Container() *svg.Element {
	return p.container
}

// SetColor sets the paint for an uncolored pattern.  The call has no effect
// for colored patterns.
func (p *Pattern) SetColor(c color.Color) {
	if p.Kind != Uncolored {
		return
	}
	p.color = c
	if _, ok := p.colors[c]; !ok {
		p.colors[c] = len(p.colors) + 1
	}
}

// Color returns the current paint of an uncolored pattern.
func (p *Pattern) Color() color.Color {
	return p.color
}

// SVGID returns the element id used to reference the pattern from a fill
// attribute.  Every paint of an uncolored pattern gets its own id, and so
// does every redefinition of a pattern ID.
func (p *Pattern) SVGID() string {
	id := "pat" + strconv.Itoa(p.ID)
	if p.gen > 0 {
		id += "." + strconv.Itoa(p.gen)
	}
	if p.Kind == Uncolored {
		id += "-" + strconv.Itoa(p.colors[p.color])
	}
	return id
}

// Apply makes sure that the SVG definition for the current state of the
// pattern is present in the document.
func (p *Pattern) Apply(doc *svg.Document) {
	id := p.SVGID()
	if p.written[id] {
		return
	}
	doc.AppendToDefs(p.definition(id))
	p.written[id] = true
}

// definition builds the <pattern> element.  The tile is the rectangle of
// size (XStep, YStep) at the lower left corner of the pattern bounding box.
func (p *Pattern) definition(id string) *svg.Element {
	tile := rect.Rect{
		LLx: p.BBox.LLx,
		LLy: p.BBox.LLy,
		URx: p.BBox.LLx + p.XStep,
		URy: p.BBox.LLy + p.YStep,
	}
	el := svg.NewElement("pattern").
		Set("id", id).
		SetNumber("x", tile.LLx).
		SetNumber("y", tile.LLy).
		SetNumber("width", tile.Dx()).
		SetNumber("height", tile.Dy()).
		Set("viewBox", fmt.Sprintf("%s %s %s %s",
			svg.FormatNumber(tile.LLx), svg.FormatNumber(tile.LLy),
			svg.FormatNumber(tile.Dx()), svg.FormatNumber(tile.Dy()))).
		Set("patternUnits", "userSpaceOnUse")
	if !p.Matrix.IsIdentity() {
		el.Set("patternTransform", p.Matrix.String())
	}
	if p.XStep < p.BBox.Dx() || p.YStep < p.BBox.Dy() {
		// overlapping tiles
		el.Set("overflow", "visible")
	}

	group := p.container
	if p.Kind == Uncolored {
		group = recolor(p.container, p.color.String())
	}
	if p.XStep > p.BBox.Dx() || p.YStep > p.BBox.Dy() {
		// The tile is larger than the bounding box.  Content outside the
		// bounding box must not show.
		clipID := "pc" + id
		clipPath := svg.NewElement("clipPath").Set("id", clipID)
		clipPath.Append(svg.NewElement("rect").
			SetNumber("x", p.BBox.LLx).
			SetNumber("y", p.BBox.LLy).
			SetNumber("width", p.BBox.Dx()).
			SetNumber("height", p.BBox.Dy()))
		el.Append(clipPath)

		clipped := svg.NewElement("g").Set("clip-path", "url(#"+clipID+")")
		clipped.Children = group.Children
		group = clipped
	}
	el.Append(group)
	return el
}

// recolor returns a deep copy of el where all fill and stroke paints are
// replaced by c.
func recolor(el *svg.Element, c string) *svg.Element {
	res := &svg.Element{
		Name:  el.Name,
		Attrs: slices.Clone(el.Attrs),
	}
	for i, a := range res.Attrs {
		if (a.Name == "fill" || a.Name == "stroke") && a.Value != "none" {
			res.Attrs[i].Value = c
		}
	}
	for _, child := range el.Children {
		res.Children = append(res.Children, recolor(child, c))
	}
	return res
}

// Registry holds the patterns of a document, indexed by their PostScript
// pattern id.
type Registry struct {
	patterns map[int]*Pattern
	gens     map[int]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		patterns: make(map[int]*Pattern),
		gens:     make(map[int]int),
	}
}

// Define creates a new pattern, replacing any previous pattern with the
// same id.  The new pattern gets SVG ids distinct from those of the
// patterns it replaces.
func (r *Registry) Define(id int, kind Kind, bbox rect.Rect, xStep, yStep float64, m transform.Matrix) *Pattern {
	p := &Pattern{
		ID:        id,
		Kind:      kind,
		BBox:      bbox,
		XStep:     xStep,
		YStep:     yStep,
		Matrix:    m,
		container: svg.NewElement("g"),
		gen:       r.gens[id],
		color:     color.Black,
		written:   make(map[string]bool),
		colors:    make(map[color.Color]int),
	}
	if kind == Uncolored {
		p.colors[color.Black] = 1
	}
	r.patterns[id] = p
	r.gens[id]++
	return p
}

// Lookup returns the pattern with the given id, or nil.
func (r *Registry) Lookup(id int) *Pattern {
	return r.patterns[id]
}

// Select prepares the pattern with the given id for painting.  For
// uncolored patterns, c gives the paint.  Unknown ids give nil.
func (r *Registry) Select(id int, c color.Color) *Pattern {
	p := r.patterns[id]
	if p == nil {
		return nil
	}
	p.SetColor(c)
	return p
}

// IDs returns the ids of all defined patterns in increasing order.
func (r *Registry) IDs() []int {
	ids := make([]int, 0, len(r.patterns))
	for id := range r.patterns {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of defined patterns.
func (r *Registry) Len() int {
	return len(r.patterns)
}
