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
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pssvg/bbox"
	"seehuhn.de/go/pssvg/color"
	"seehuhn.de/go/pssvg/outline"
)

// Type is the PostScript shading type of a mesh.
type Type int

// These are the supported mesh shading types.
const (
	FreeForm Type = 4 // free-form Gouraud-shaded triangle mesh
	Lattice  Type = 5 // lattice-form Gouraud-shaded triangle mesh
	Coons    Type = 6 // Coons patch mesh
	Tensor   Type = 7 // tensor-product patch mesh
)

func (tp Type) triangular() bool {
	return tp == FreeForm || tp == Lattice
}

// Callback receives one segment of an approximated patch together with its
// fill color.
type Callback func(seg *outline.Path, c color.Color)

// Patch is a single triangle or tensor-product patch of a mesh.
//
// For triangles, the first three entries of the point and color arrays are
// used.  Coons patches are stored as tensor-product patches.  The points of
// tensor-product patches are kept in the order in which they appear in the
// mesh data: p00 p01 p02 p03 p13 p23 p33 p32 p31 p30 p20 p10 p11 p12 p22 p21.
// The colors belong to the corners p00, p03, p33 and p30.
type Patch struct {
	Type  Type
	Space color.Space

	pts  [16]vec.Vec2
	cols [4][]float64
}

// NewPatch allocates an empty patch of the given type.
func NewPatch(tp Type, space color.Space) (*Patch, error) {
	switch tp {
	case FreeForm, Lattice, Coons, Tensor:
		return &Patch{Type: tp, Space: space}, nil
	default:
		return nil, &Error{Type: tp, Msg: "unsupported shading type"}
	}
}

// NumPoints returns how many points are read from the mesh data for a patch
// with the given edge flag.
func (p *Patch) NumPoints(edgeFlag int) int {
	switch p.Type {
	case FreeForm:
		if edgeFlag == 0 {
			return 3
		}
		return 1
	case Lattice:
		return 3
	case Coons:
		if edgeFlag == 0 {
			return 12
		}
		return 8
	default:
		if edgeFlag == 0 {
			return 16
		}
		return 12
	}
}

// NumColors returns how many colors are read from the mesh data for a patch
// with the given edge flag.
func (p *Patch) NumColors(edgeFlag int) int {
	switch p.Type {
	case FreeForm:
		if edgeFlag == 0 {
			return 3
		}
		return 1
	case Lattice:
		return 3
	default:
		if edgeFlag == 0 {
			return 4
		}
		return 2
	}
}

// sharedEdge lists, for edge flags 1 to 3, which points and colors of the
// preceding tensor-product patch become the first points and colors of the
// next one.
var sharedEdge = [4]struct {
	pts  [4]int
	cols [2]int
}{
	1: {[4]int{3, 4, 5, 6}, [2]int{1, 2}},
	2: {[4]int{6, 7, 8, 9}, [2]int{2, 3}},
	3: {[4]int{9, 10, 11, 0}, [2]int{3, 0}},
}

func (p *Patch) checkFlag(edgeFlag int, prev *Patch) error {
	maxFlag := 3
	if p.Type.triangular() {
		maxFlag = 2
	}
	if edgeFlag < 0 || edgeFlag > maxFlag {
		return &Error{Type: p.Type, Msg: "invalid edge flag"}
	}
	if edgeFlag > 0 && (prev == nil || prev.Type != p.Type) {
		return &Error{Type: p.Type, Msg: "missing preceding patch"}
	}
	return nil
}

// SetPoints assigns the points read from the mesh data.  For edge flags
// other than 0, the remaining points are taken from the preceding patch.
func (p *Patch) SetPoints(pts []vec.Vec2, edgeFlag int, prev *Patch) error {
	if err := p.checkFlag(edgeFlag, prev); err != nil {
		return err
	}
	if len(pts) != p.NumPoints(edgeFlag) {
		return &Error{Type: p.Type, Msg: "wrong number of points"}
	}

	if p.Type.triangular() {
		switch edgeFlag {
		case 0:
			copy(p.pts[:3], pts)
		case 1:
			p.pts[0], p.pts[1], p.pts[2] = prev.pts[1], prev.pts[2], pts[0]
		case 2:
			p.pts[0], p.pts[1], p.pts[2] = prev.pts[0], prev.pts[2], pts[0]
		}
		return nil
	}

	if edgeFlag == 0 {
		copy(p.pts[:], pts)
	} else {
		for i, k := range sharedEdge[edgeFlag].pts {
			p.pts[i] = prev.pts[k]
		}
		copy(p.pts[4:], pts)
	}
	if p.Type == Coons {
		p.setCoonsInterior()
	}
	return nil
}

// SetColors assigns the colors read from the mesh data.  For edge flags
// other than 0, the remaining colors are taken from the preceding patch.
func (p *Patch) SetColors(cols [][]float64, edgeFlag int, prev *Patch) error {
	if err := p.checkFlag(edgeFlag, prev); err != nil {
		return err
	}
	if len(cols) != p.NumColors(edgeFlag) {
		return &Error{Type: p.Type, Msg: "wrong number of colors"}
	}

	if p.Type.triangular() {
		switch edgeFlag {
		case 0:
			copy(p.cols[:3], cols)
		case 1:
			p.cols[0], p.cols[1], p.cols[2] = prev.cols[1], prev.cols[2], cols[0]
		case 2:
			p.cols[0], p.cols[1], p.cols[2] = prev.cols[0], prev.cols[2], cols[0]
		}
		return nil
	}

	if edgeFlag == 0 {
		copy(p.cols[:], cols)
	} else {
		e := sharedEdge[edgeFlag]
		p.cols[0], p.cols[1] = prev.cols[e.cols[0]], prev.cols[e.cols[1]]
		p.cols[2], p.cols[3] = cols[0], cols[1]
	}
	return nil
}

// Point returns the i-th point in mesh data order.
func (p *Patch) Point(i int) vec.Vec2 {
	return p.pts[i]
}

// VertexColor returns the color components of the i-th corner.
func (p *Patch) VertexColor(i int) []float64 {
	return p.cols[i]
}

// gridIndex maps the control point p_ij of a tensor-product patch to its
// position in mesh data order.
var gridIndex = [4][4]int{
	{0, 1, 2, 3},
	{11, 12, 13, 4},
	{10, 15, 14, 5},
	{9, 8, 7, 6},
}

func (p *Patch) grid() [4][4]vec.Vec2 {
	var g [4][4]vec.Vec2
	for i := range 4 {
		for j := range 4 {
			g[i][j] = p.pts[gridIndex[i][j]]
		}
	}
	return g
}

// setCoonsInterior computes the four inner control points which make a
// tensor-product patch describe the same surface as a Coons patch.
func (p *Patch) setCoonsInterior() {
	g := p.grid()
	inner := func(c, a1, a2, b1, b2, d1, d2, o vec.Vec2) vec.Vec2 {
		v := c.Mul(-4).
			Add(a1.Add(a2).Mul(6)).
			Sub(b1.Add(b2).Mul(2)).
			Add(d1.Add(d2).Mul(3)).
			Sub(o)
		return v.Mul(1.0 / 9)
	}
	p.pts[gridIndex[1][1]] = inner(g[0][0], g[0][1], g[1][0], g[0][3], g[3][0], g[3][1], g[1][3], g[3][3])
	p.pts[gridIndex[1][2]] = inner(g[0][3], g[0][2], g[1][3], g[0][0], g[3][3], g[3][2], g[1][0], g[3][0])
	p.pts[gridIndex[2][1]] = inner(g[3][0], g[3][1], g[2][0], g[3][3], g[0][0], g[0][1], g[2][3], g[0][3])
	p.pts[gridIndex[2][2]] = inner(g[3][3], g[3][2], g[2][3], g[3][0], g[0][3], g[0][2], g[2][0], g[0][0])
}

// Boundary returns the outline of the patch.
func (p *Patch) Boundary() *outline.Path {
	path := &outline.Path{}
	if p.Type.triangular() {
		moveTo(path, p.pts[0])
		lineTo(path, p.pts[1])
		lineTo(path, p.pts[2])
		path.Close()
		return path
	}
	moveTo(path, p.pts[0])
	for k := 0; k < 12; k += 3 {
		cubeTo(path, p.pts[k+1], p.pts[k+2], p.pts[(k+3)%12])
	}
	path.Close()
	return path
}

// BBox returns the bounding box of the patch outline.
func (p *Patch) BBox() bbox.Box {
	return p.Boundary().BBox()
}

func (p *Patch) color(comps []float64) color.Color {
	return p.Space.Color(comps)
}

func (p *Patch) uniform() bool {
	n := 4
	if p.Type.triangular() {
		n = 3
	}
	for i := 1; i < n; i++ {
		if !sameComps(p.cols[0], p.cols[i]) {
			return false
		}
	}
	return true
}

func sameComps(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// mix returns the weighted sum of the given color components.
func mix(cols [][]float64, weights []float64) []float64 {
	res := make([]float64, len(cols[0]))
	for k, c := range cols {
		for i := range res {
			res[i] += weights[k] * c[i]
		}
	}
	return res
}

func moveTo(p *outline.Path, a vec.Vec2) { p.MoveTo(a.X, a.Y) }

func lineTo(p *outline.Path, a vec.Vec2) { p.LineTo(a.X, a.Y) }

func cubeTo(p *outline.Path, a, b, c vec.Vec2) { p.CubeTo(a.X, a.Y, b.X, b.Y, c.X, c.Y) }
