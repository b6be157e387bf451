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
	"seehuhn.de/go/pssvg/bbox"
	"seehuhn.de/go/pssvg/color"
	"seehuhn.de/go/pssvg/svg"
	"seehuhn.de/go/pssvg/transform"
)

// Actions gives the handler access to the page being converted.
//
// The position, matrix and color are those of the surrounding document.
// PostScript code changes them through the operators it executes, and
// changes made by the host between two specials are picked up when the
// next special starts.
type Actions interface {
	// X and Y give the current drawing position in device space.
	X() float64
	Y() float64
	SetX(x float64)
	SetY(y float64)

	// Matrix is the current transformation matrix, mapping user space
	// to device space.
	Matrix() transform.Matrix
	SetMatrix(m transform.Matrix)

	Color() color.Color
	SetColor(c color.Color)

	// PageNumber returns the number of the page being converted,
	// starting at 1.
	PageNumber() int

	// While the output is locked, nothing is added to the page.
	LockOutput()
	UnlockOutput()
	OutputLocked() bool

	// Embed enlarges the page bounding box to include b.
	Embed(b bbox.Box)

	// BBox returns the page bounding box collected so far.
	BBox() *bbox.Box

	// PageTransform maps page coordinates to physical units (big points).
	PageTransform() transform.Matrix

	Document() *svg.Document

	// SVGFilePath returns the name of the file which will hold the given
	// page.
	SVGFilePath(page int) string

	// FinishLine tells the host that the current line of text ends, so
	// that the next text output starts at a fresh position.
	FinishLine()

	// Progress is called once for every graphics operator.
	Progress(id string)
}
