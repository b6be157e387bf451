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

// Package page provides a simple host context for converting PostScript
// graphics into a single SVG document per page.
package page

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"seehuhn.de/go/pssvg/bbox"
	"seehuhn.de/go/pssvg/color"
	"seehuhn.de/go/pssvg/svg"
	"seehuhn.de/go/pssvg/transform"
)

// Context holds the state of the page being converted.
// It implements the pssvg.Actions interface.
type Context struct {
	x, y   float64
	ctm    transform.Matrix
	col    color.Color
	pageNo int
	locked bool
	box    bbox.Box
	doc    *svg.Document

	// PageTransform maps page coordinates to big points.
	pageTransform transform.Matrix

	// FilePattern is the name template for the output files.  A "%d"
	// is replaced by the page number.  Patterns without "%d" are used
	// unchanged.
	FilePattern string

	progress      io.Writer
	progressCount int
	finishedLines int
}

// New returns the context for the given page.
func New(pageNo int) *Context {
	return &Context{
		ctm:           transform.Identity,
		col:           color.Black,
		pageNo:        pageNo,
		doc:           svg.NewDocument(),
		pageTransform: transform.Identity,
		FilePattern:   "page-%d.svg",
	}
}

// X implements the pssvg.Actions interface.
func (c *Context) X() float64 { return c.x }

// Y implements the pssvg.Actions interface.
func (c *Context) Y() float64 { return c.y }

// SetX implements the pssvg.Actions interface.
func (c *Context) SetX(x float64) { c.x = x }

// SetY implements the pssvg.Actions interface.
func (c *Context) SetY(y float64) { c.y = y }

// Matrix implements the pssvg.Actions interface.
func (c *Context) Matrix() transform.Matrix { return c.ctm }

// SetMatrix implements the pssvg.Actions interface.
func (c *Context) SetMatrix(m transform.Matrix) { c.ctm = m }

// Color implements the pssvg.Actions interface.
func (c *Context) Color() color.Color { return c.col }

// SetColor implements the pssvg.Actions interface.
func (c *Context) SetColor(col color.Color) { c.col = col }

// PageNumber implements the pssvg.Actions interface.
func (c *Context) PageNumber() int { return c.pageNo }

// LockOutput implements the pssvg.Actions interface.
func (c *Context) LockOutput() { c.locked = true }

// UnlockOutput implements the pssvg.Actions interface.
func (c *Context) UnlockOutput() { c.locked = false }

// OutputLocked implements the pssvg.Actions interface.
func (c *Context) OutputLocked() bool { return c.locked }

// Embed implements the pssvg.Actions interface.
// Nothing changes while the bounding box is locked.
func (c *Context) Embed(b bbox.Box) {
	if c.box.Locked() {
		return
	}
	c.box.Embed(b)
}

// BBox implements the pssvg.Actions interface.
func (c *Context) BBox() *bbox.Box { return &c.box }

// PageTransform implements the pssvg.Actions interface.
func (c *Context) PageTransform() transform.Matrix { return c.pageTransform }

// SetPageTransform sets the map from page coordinates to big points.
func (c *Context) SetPageTransform(m transform.Matrix) { c.pageTransform = m }

// Document implements the pssvg.Actions interface.
func (c *Context) Document() *svg.Document { return c.doc }

// SVGFilePath implements the pssvg.Actions interface.
func (c *Context) SVGFilePath(page int) string {
	if !strings.Contains(c.FilePattern, "%d") {
		return c.FilePattern
	}
	return fmt.Sprintf(c.FilePattern, page)
}

// FinishLine implements the pssvg.Actions interface.
func (c *Context) FinishLine() { c.finishedLines++ }

// ShowProgress enables progress reporting on w.  Progress is only shown if
// w is a terminal.
func (c *Context) ShowProgress(w *os.File) {
	if term.IsTerminal(int(w.Fd())) {
		c.progress = w
	}
}

// progressStep is the number of operators per progress dot.
const progressStep = 1000

// Progress implements the pssvg.Actions interface.
func (c *Context) Progress(id string) {
	if c.progress == nil {
		return
	}
	c.progressCount++
	if c.progressCount%progressStep == 0 {
		fmt.Fprint(c.progress, ".")
	}
}

// EndProgress terminates the line of progress dots.
func (c *Context) EndProgress() {
	if c.progress != nil && c.progressCount >= progressStep {
		fmt.Fprintln(c.progress)
	}
	c.progressCount = 0
}

// Finish sets the view box of the document to the page bounding box.
func (c *Context) Finish() *svg.Document {
	if c.box.Valid() {
		c.doc.ViewBox = c.box.Rect()
	}
	return c.doc
}
