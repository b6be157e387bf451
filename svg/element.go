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

// Package svg implements the small subset of SVG document handling needed
// to collect drawing output: an element tree with ordered attributes, a
// document with a definitions section and a page group, and serialization.
package svg

import (
	"bufio"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

// Attr is a single attribute of an Element.
type Attr struct {
	Name  string
	Value string
}

// Element is a node in the SVG output tree.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
}

// NewElement returns a new element without attributes or children.
func NewElement(name string) *Element {
	return &Element{Name: name}
}

// Set sets the attribute name to value.
// If the attribute already exists, its value is replaced in place,
// otherwise the attribute is appended.
func (e *Element) Set(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{name, value})
	return e
}

// SetNumber sets the attribute name to the formatted value of x.
func (e *Element) SetNumber(name string, x float64) *Element {
	return e.Set(name, FormatNumber(x))
}

// Get returns the value of the attribute name.
func (e *Element) Get(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Append adds child as the last child of e.
// A nil child is ignored.
func (e *Element) Append(child *Element) {
	if child == nil {
		return
	}
	e.Children = append(e.Children, child)
}

// Empty reports whether e has no children.
func (e *Element) Empty() bool {
	return len(e.Children) == 0
}

// Find returns the first element in the subtree rooted at e (including e)
// whose name is name, or nil if there is no such element.
func (e *Element) Find(name string) *Element {
	if e.Name == name {
		return e
	}
	for _, c := range e.Children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns all elements in the subtree rooted at e (including e)
// whose name is name, in document order.
func (e *Element) FindAll(name string) []*Element {
	var res []*Element
	e.walk(func(el *Element) {
		if el.Name == name {
			res = append(res, el)
		}
	})
	return res
}

func (e *Element) walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		c.walk(fn)
	}
}

// WriteTo writes the XML representation of the subtree rooted at e to w.
func (e *Element) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	e.write(cw, 0)
	err := cw.w.Flush()
	if cw.err == nil {
		cw.err = err
	}
	return cw.n, cw.err
}

// String returns the XML representation of e without indentation.
func (e *Element) String() string {
	sb := &strings.Builder{}
	cw := &countingWriter{w: bufio.NewWriter(sb)}
	e.write(cw, -1)
	cw.w.Flush()
	return sb.String()
}

func (e *Element) write(w *countingWriter, indent int) {
	if indent > 0 {
		w.WriteString(strings.Repeat(" ", indent))
	}
	w.WriteString("<")
	w.WriteString(e.Name)
	for _, a := range e.Attrs {
		w.WriteString(" ")
		w.WriteString(a.Name)
		w.WriteString("=\"")
		xml.EscapeText(w, []byte(a.Value))
		w.WriteString("\"")
	}
	if len(e.Children) == 0 {
		w.WriteString("/>")
		if indent >= 0 {
			w.WriteString("\n")
		}
		return
	}
	w.WriteString(">")
	childIndent := -1
	if indent >= 0 {
		w.WriteString("\n")
		childIndent = indent + 1
	}
	for _, c := range e.Children {
		c.write(w, childIndent)
	}
	if indent > 0 {
		w.WriteString(strings.Repeat(" ", indent))
	}
	w.WriteString("</")
	w.WriteString(e.Name)
	w.WriteString(">")
	if indent >= 0 {
		w.WriteString("\n")
	}
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	if cw.err != nil {
		return 0, cw.err
	}
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	cw.err = err
	return n, err
}

func (cw *countingWriter) WriteString(s string) {
	cw.Write([]byte(s))
}

// FormatNumber formats x for use in SVG attributes.
// At most six digits after the decimal point are kept and trailing zeros
// are removed.
func FormatNumber(x float64) string {
	s := strconv.FormatFloat(x, 'f', 6, 64)
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
