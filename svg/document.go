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

package svg

import (
	"io"

	"seehuhn.de/go/geom/rect"
)

// Document is an SVG document consisting of a definitions section and a
// single page group.
type Document struct {
	// ViewBox is the visible area of the page, in SVG user units.
	// If ViewBox is zero, no size information is written.
	ViewBox rect.Rect

	Defs *Element
	Page *Element
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		Defs: NewElement("defs"),
		Page: NewElement("g"),
	}
}

// AppendToPage adds el as the last element of the page group.
func (d *Document) AppendToPage(el *Element) {
	d.Page.Append(el)
}

// AppendToDefs adds el to the definitions section.
func (d *Document) AppendToDefs(el *Element) {
	d.Defs.Append(el)
}

// Root assembles the complete <svg> element.
// Empty <defs> sections are omitted.
func (d *Document) Root() *Element {
	root := NewElement("svg")
	root.Set("xmlns", "http://www.w3.org/2000/svg")
	root.Set("xmlns:xlink", "http://www.w3.org/1999/xlink")
	root.Set("version", "1.1")
	if !d.ViewBox.IsZero() {
		root.SetNumber("width", d.ViewBox.Dx())
		root.SetNumber("height", d.ViewBox.Dy())
		root.Set("viewBox", FormatNumber(d.ViewBox.LLx)+" "+FormatNumber(d.ViewBox.LLy)+" "+
			FormatNumber(d.ViewBox.Dx())+" "+FormatNumber(d.ViewBox.Dy()))
	}
	if !d.Defs.Empty() {
		root.Append(d.Defs)
	}
	root.Append(d.Page)
	return root
}

// WriteTo writes the document, including the XML declaration, to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	total := int64(n)
	if err != nil {
		return total, err
	}
	m, err := d.Root().WriteTo(w)
	return total + m, err
}
