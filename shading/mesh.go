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

package shading

import (
	"fmt"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pssvg/color"
)

// Request holds the parameters of a shfill operation.
type Request struct {
	Type  Type
	Space color.Space

	// Background is the background color of the shading, or nil.
	Background []float64

	// BBox, if non-nil, restricts the shading to a rectangle.
	BBox *rect.Rect

	// Data gives access to the mesh data following the header.
	Data *Cursor
}

// ParseRequest decodes the header of a shfill parameter list:
// the shading type, the number of color components, an optional background
// color and an optional bounding box.  Lists with fewer than 9 numbers
// are ignored and yield nil.
func ParseRequest(params []float64) (*Request, error) {
	if len(params) < 9 {
		return nil, nil
	}
	req := &Request{
		Type:  Type(int(params[0])),
		Space: color.SpaceFromComponents(int(params[1])),
	}
	cur := NewCursor(params[2:])

	bgFlag, err := cur.Next()
	if err != nil {
		return nil, err
	}
	if bgFlag != 0 {
		req.Background, err = cur.Color(req.Space)
		if err != nil {
			return nil, err
		}
	}

	bboxFlag, err := cur.Next()
	if err != nil {
		return nil, err
	}
	if bboxFlag != 0 {
		var v [4]float64
		for i := range v {
			v[i], err = cur.Next()
			if err != nil {
				return nil, err
			}
		}
		req.BBox = &rect.Rect{
			LLx: min(v[0], v[2]),
			LLy: min(v[1], v[3]),
			URx: max(v[0], v[2]),
			URy: max(v[1], v[3]),
		}
	}
	req.Data = cur
	return req, nil
}

// Read decodes the mesh data of the request and calls emit for every
// patch.  Patches decoded before an error occurs are still emitted.
func (req *Request) Read(emit func(*Patch)) error {
	if req.Type == Lattice {
		return ReadLattice(req.Space, req.Data, emit)
	}
	return ReadSequential(req.Type, req.Space, req.Data, emit)
}

// ReadSequential decodes a mesh where every patch starts with an edge flag,
// as used by shading types 4, 6 and 7.
func ReadSequential(tp Type, space color.Space, cur *Cursor, emit func(*Patch)) error {
	if tp == Lattice {
		return &Error{Type: tp, Msg: "lattice mesh has no edge flags"}
	}
	var prev *Patch
	for cur.Valid() {
		patch, err := NewPatch(tp, space)
		if err != nil {
			cur.Invalidate()
			return err
		}

		f, err := cur.Next()
		if err != nil {
			return err
		}
		edgeFlag := int(f)
		if err := patch.checkFlag(edgeFlag, prev); err != nil {
			cur.Invalidate()
			return err
		}

		pts, cols, err := readPatchData(patch, edgeFlag, cur)
		if err != nil {
			return err
		}
		if err := patch.SetPoints(pts, edgeFlag, prev); err != nil {
			cur.Invalidate()
			return err
		}
		if err := patch.SetColors(cols, edgeFlag, prev); err != nil {
			cur.Invalidate()
			return err
		}
		emit(patch)
		prev = patch
	}
	return nil
}

func readPatchData(patch *Patch, edgeFlag int, cur *Cursor) ([]vec.Vec2, [][]float64, error) {
	numPoints := patch.NumPoints(edgeFlag)
	numColors := patch.NumColors(edgeFlag)
	pts := make([]vec.Vec2, numPoints)
	cols := make([][]float64, numColors)

	var err error
	if patch.Type == FreeForm {
		// f x y c [f x y c f x y c]: the flags of the second and third
		// vertex carry no information
		for i := range numPoints {
			if i > 0 {
				if err = cur.Skip(1); err != nil {
					return nil, nil, err
				}
			}
			if pts[i], err = cur.Point(); err != nil {
				return nil, nil, err
			}
			if cols[i], err = cur.Color(patch.Space); err != nil {
				return nil, nil, err
			}
		}
		return pts, cols, nil
	}

	for i := range pts {
		if pts[i], err = cur.Point(); err != nil {
			return nil, nil, err
		}
	}
	for i := range cols {
		if cols[i], err = cur.Color(patch.Space); err != nil {
			return nil, nil, err
		}
	}
	return pts, cols, nil
}

type latticeVertex struct {
	pt  vec.Vec2
	col []float64
}

// ReadLattice decodes a lattice-form triangle mesh (shading type 5).  The
// first number gives the number of vertices per row.  Each pair of adjacent
// rows is split into triangles.
func ReadLattice(space color.Space, cur *Cursor, emit func(*Patch)) error {
	n, err := cur.Next()
	if err != nil {
		return err
	}
	if n < 2 {
		return nil
	}
	rowSize := 2 + space.NumComponents()
	if !(n*float64(rowSize) <= float64(cur.Remaining())) {
		cur.Invalidate()
		return &Error{Type: Lattice, Msg: fmt.Sprintf("%g vertices per row exceed the mesh data", n)}
	}
	perRow := int(n)

	// only two rows are kept in memory
	row0 := make([]latticeVertex, perRow)
	row1 := make([]latticeVertex, perRow)
	readRow := func(row []latticeVertex) error {
		for i := range row {
			pt, err := cur.Point()
			if err != nil {
				return err
			}
			col, err := cur.Color(space)
			if err != nil {
				return err
			}
			row[i] = latticeVertex{pt, col}
		}
		return nil
	}

	if err := readRow(row0); err != nil {
		return err
	}
	for cur.Valid() {
		if err := readRow(row1); err != nil {
			return err
		}
		for i := 0; i < perRow-1; i++ {
			v1, v2 := row0[i], row0[i+1]
			v3, v4 := row1[i], row1[i+1]
			emit(latticeTriangle(space, v1, v2, v3))
			emit(latticeTriangle(space, v2, v3, v4))
		}
		row0, row1 = row1, row0
	}
	return nil
}

func latticeTriangle(space color.Space, a, b, c latticeVertex) *Patch {
	p := &Patch{Type: Lattice, Space: space}
	p.pts[0], p.pts[1], p.pts[2] = a.pt, b.pt, c.pt
	p.cols[0], p.cols[1], p.cols[2] = a.col, b.col, c.col
	return p
}
