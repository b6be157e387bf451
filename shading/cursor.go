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

// Package shading converts PostScript shading meshes (shading types 4 to 7)
// into paths filled with a single color each.
package shading

import (
	"errors"
	"fmt"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pssvg/color"
)

// ErrIncomplete is returned when the mesh data ends in the middle of a patch.
var ErrIncomplete = errors.New("incomplete shading data")

// Error describes malformed mesh data.
type Error struct {
	Type Type
	Msg  string
}

func (err *Error) Error() string {
	return fmt.Sprintf("shading type %d: %s", int(err.Type), err.Msg)
}

// Cursor reads numbers sequentially from the parameter list of a shading
// request.
type Cursor struct {
	data    []float64
	pos     int
	invalid bool
}

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []float64) *Cursor {
	return &Cursor{data: data}
}

// Valid reports whether more data can be read.
func (c *Cursor) Valid() bool {
	return !c.invalid && c.pos < len(c.data)
}

// Invalidate stops all further reading.
func (c *Cursor) Invalidate() {
	c.invalid = true
}

// Remaining returns the number of values which are left to read.
func (c *Cursor) Remaining() int {
	if c.invalid {
		return 0
	}
	return len(c.data) - c.pos
}

// Pos returns the index of the next number to be read.
func (c *Cursor) Pos() int {
	return c.pos
}

// Next returns the next number.
func (c *Cursor) Next() (float64, error) {
	if !c.Valid() {
		return 0, ErrIncomplete
	}
	x := c.data[c.pos]
	c.pos++
	return x, nil
}

// Skip advances the cursor by n numbers.
func (c *Cursor) Skip(n int) error {
	if c.invalid || c.pos+n > len(c.data) {
		c.pos = len(c.data)
		return ErrIncomplete
	}
	c.pos += n
	return nil
}

// Point reads an x and a y coordinate.
func (c *Cursor) Point() (vec.Vec2, error) {
	x, err := c.Next()
	if err != nil {
		return vec.Vec2{}, err
	}
	y, err := c.Next()
	if err != nil {
		return vec.Vec2{}, err
	}
	return vec.Vec2{X: x, Y: y}, nil
}

// Color reads the components of one color in the given color space.
func (c *Cursor) Color(space color.Space) ([]float64, error) {
	n := space.NumComponents()
	if c.invalid || c.pos+n > len(c.data) {
		c.pos = len(c.data)
		return nil, ErrIncomplete
	}
	comps := make([]float64, n)
	copy(comps, c.data[c.pos:c.pos+n])
	c.pos += n
	return comps, nil
}
