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

// Package transform implements affine transformations in SVG matrix layout.
//
// A Matrix stores the first two rows of the 3x3 matrix
//
//	| a c e |
//	| b d f |
//	| 0 0 1 |
//
// as [a c e b d f].  Points are column vectors, so that the matrix maps
// (x, y) to (a*x + c*y + e, b*x + d*y + f).
package transform

import (
	"errors"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pssvg/svg"
)

// Matrix is an affine transformation, stored row by row.
type Matrix [6]float64

// Identity is the identity transformation.
var Identity = Matrix{1, 0, 0, 0, 1, 0}

// Translation returns the matrix which shifts points by (dx, dy).
func Translation(dx, dy float64) Matrix {
	return Matrix{1, 0, dx, 0, 1, dy}
}

// Scaling returns the matrix which scales by sx horizontally and sy
// vertically.
func Scaling(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, 0, sy, 0}
}

// Rotation returns the matrix which rotates counter-clockwise by deg degrees.
func Rotation(deg float64) Matrix {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Matrix{c, -s, 0, s, c, 0}
}

// FromPS converts a PostScript matrix [a b c d e f] into SVG layout.
// Missing trailing entries are taken from the identity matrix, extra
// entries are ignored.
func FromPS(v []float64) Matrix {
	var ps [6]float64
	for i := range ps {
		if i < len(v) {
			ps[i] = v[i]
		} else if i%3 == 0 {
			ps[i] = 1
		}
	}
	ps[1], ps[2] = ps[2], ps[1] // a c b d e f
	ps[2], ps[4] = ps[4], ps[2] // a c e d b f
	ps[3], ps[4] = ps[4], ps[3] // a c e b d f
	return Matrix(ps)
}

// FromPDF converts a matrix from the geom package (PDF order) to SVG layout.
func FromPDF(m matrix.Matrix) Matrix {
	return Matrix{m[0], m[2], m[4], m[1], m[3], m[5]}
}

// PDF returns m as a geom matrix in PDF/PostScript order.
func (m Matrix) PDF() matrix.Matrix {
	return matrix.Matrix{m[0], m[3], m[1], m[4], m[2], m[5]}
}

// RMultiply returns m*n.  When the result is applied to a point, n acts
// first.
func (m Matrix) RMultiply(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[3],
		m[0]*n[1] + m[1]*n[4],
		m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3],
		m[3]*n[1] + m[4]*n[4],
		m[3]*n[2] + m[4]*n[5] + m[5],
	}
}

// LMultiply returns n*m.  When the result is applied to a point, m acts
// first.
func (m Matrix) LMultiply(n Matrix) Matrix {
	return n.RMultiply(m)
}

// Then returns the transformation which applies m first and n afterwards.
func (m Matrix) Then(n Matrix) Matrix {
	return n.RMultiply(m)
}

// Apply transforms the point p.
func (m Matrix) Apply(p vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// ApplyXY transforms the point (x, y).
func (m Matrix) ApplyXY(x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// Det returns the determinant of the linear part of m.
func (m Matrix) Det() float64 {
	return m[0]*m[4] - m[1]*m[3]
}

// Inverse returns the inverse transformation.
func (m Matrix) Inverse() (Matrix, error) {
	det := m.Det()
	if math.Abs(det) < 1e-12 {
		return Matrix{}, ErrSingular
	}
	a := m[4] / det
	c := -m[1] / det
	b := -m[3] / det
	d := m[0] / det
	return Matrix{
		a, c, -a*m[2] - c*m[5],
		b, d, -b*m[2] - d*m[5],
	}, nil
}

// IsIdentity reports whether m is the identity transformation.
func (m Matrix) IsIdentity() bool {
	const eps = 1e-10
	for i, x := range m {
		if math.Abs(x-Identity[i]) > eps {
			return false
		}
	}
	return true
}

// String returns m as an SVG transform attribute value.
func (m Matrix) String() string {
	return "matrix(" + svg.FormatNumber(m[0]) + " " + svg.FormatNumber(m[3]) + " " +
		svg.FormatNumber(m[1]) + " " + svg.FormatNumber(m[4]) + " " +
		svg.FormatNumber(m[2]) + " " + svg.FormatNumber(m[5]) + ")"
}

// ErrSingular is returned when inverting a matrix without inverse.
var ErrSingular = errors.New("singular matrix")
