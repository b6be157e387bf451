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

// Package outline implements the path buffer filled by the PostScript path
// construction operators.
package outline

import (
	"math"

	"golang.org/x/exp/slices"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pssvg/bbox"
	"seehuhn.de/go/pssvg/transform"
)

// WindingRule selects how the interior of a path is determined.
type WindingRule int

// These are the winding rules supported by PostScript.
const (
	NonZero WindingRule = iota
	EvenOdd
)

func (r WindingRule) String() string {
	if r == EvenOdd {
		return "evenodd"
	}
	return "nonzero"
}

// Path is a sequence of subpaths made of straight lines and cubic Bézier
// curves, together with a winding rule.
//
// The zero value is an empty path using the nonzero winding rule.
type Path struct {
	data path.Data
	Rule WindingRule
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) {
	p.data.Cmds = append(p.data.Cmds, path.CmdMoveTo)
	p.data.Coords = append(p.data.Coords, vec.Vec2{X: x, Y: y})
}

// LineTo appends a straight line to (x, y).
func (p *Path) LineTo(x, y float64) {
	p.data.Cmds = append(p.data.Cmds, path.CmdLineTo)
	p.data.Coords = append(p.data.Coords, vec.Vec2{X: x, Y: y})
}

// CubeTo appends a cubic Bézier curve with control points (x1, y1) and
// (x2, y2), ending at (x3, y3).
func (p *Path) CubeTo(x1, y1, x2, y2, x3, y3 float64) {
	p.data.Cmds = append(p.data.Cmds, path.CmdCubeTo)
	p.data.Coords = append(p.data.Coords,
		vec.Vec2{X: x1, Y: y1}, vec.Vec2{X: x2, Y: y2}, vec.Vec2{X: x3, Y: y3})
}

// Close closes the current subpath.
func (p *Path) Close() {
	p.data.Cmds = append(p.data.Cmds, path.CmdClose)
}

// Clear removes all segments.  The winding rule is kept.
func (p *Path) Clear() {
	p.data.Cmds = p.data.Cmds[:0]
	p.data.Coords = p.data.Coords[:0]
}

// Empty reports whether p contains no commands.
func (p *Path) Empty() bool {
	return p == nil || len(p.data.Cmds) == 0
}

// Len returns the number of path commands.
func (p *Path) Len() int {
	return len(p.data.Cmds)
}

// Clone returns a deep copy of p.
func (p *Path) Clone() *Path {
	return &Path{
		data: path.Data{
			Cmds:   slices.Clone(p.data.Cmds),
			Coords: slices.Clone(p.data.Coords),
		},
		Rule: p.Rule,
	}
}

// Equal reports whether p and other describe the same path with the same
// winding rule.
func (p *Path) Equal(other *Path) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Rule == other.Rule &&
		slices.Equal(p.data.Cmds, other.data.Cmds) &&
		slices.Equal(p.data.Coords, other.data.Coords)
}

// Iter returns an iterator over the path commands and their points.
func (p *Path) Iter() path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		k := 0
		for _, cmd := range p.data.Cmds {
			n := numPoints(cmd)
			if !yield(cmd, p.data.Coords[k:k+n]) {
				return
			}
			k += n
		}
	}
}

// Transform applies m to all points of p.
func (p *Path) Transform(m transform.Matrix) {
	for i, c := range p.data.Coords {
		p.data.Coords[i] = m.Apply(c)
	}
}

// Prepend inserts the segments of other in front of the segments of p.
func (p *Path) Prepend(other *Path) {
	if other.Empty() {
		return
	}
	p.data.Cmds = append(slices.Clone(other.data.Cmds), p.data.Cmds...)
	p.data.Coords = append(slices.Clone(other.data.Coords), p.data.Coords...)
}

// RemoveRedundantCommands drops commands without visible effect:
// a move directly followed by another move, a close which does not end a
// drawn subpath, and a trailing move.
func (p *Path) RemoveRedundantCommands() {
	var cmds []path.Command
	var coords []vec.Vec2

	var pending *vec.Vec2 // move not yet written
	drawn := false        // anything drawn since the last move
	k := 0
	for _, cmd := range p.data.Cmds {
		n := numPoints(cmd)
		pts := p.data.Coords[k : k+n]
		k += n
		switch cmd {
		case path.CmdMoveTo:
			pt := pts[0]
			pending = &pt
			drawn = false
		case path.CmdClose:
			if !drawn {
				continue
			}
			cmds = append(cmds, cmd)
			drawn = false
		default:
			if pending != nil {
				cmds = append(cmds, path.CmdMoveTo)
				coords = append(coords, *pending)
				pending = nil
			}
			cmds = append(cmds, cmd)
			coords = append(coords, pts...)
			drawn = true
		}
	}
	p.data.Cmds = cmds
	p.data.Coords = coords
}

// IsDot reports whether p has zero extent, i.e. all its points coincide.
// If so, the location of the dot is returned.
func (p *Path) IsDot() (vec.Vec2, bool) {
	if p.Empty() || len(p.data.Coords) == 0 {
		return vec.Vec2{}, false
	}
	pt := p.data.Coords[0]
	for _, c := range p.data.Coords[1:] {
		if c != pt {
			return vec.Vec2{}, false
		}
	}
	return pt, true
}

// BBox returns the exact bounding box of p.
// Curve segments only contribute their extreme points, not their control
// points.
func (p *Path) BBox() bbox.Box {
	var b bbox.Box
	var cur vec.Vec2
	for cmd, pts := range p.Iter() {
		switch cmd {
		case path.CmdMoveTo, path.CmdLineTo:
			b.EmbedPoint(pts[0])
			cur = pts[0]
		case path.CmdCubeTo:
			b.EmbedPoint(pts[2])
			for _, t := range cubicExtrema(cur, pts[0], pts[1], pts[2]) {
				b.EmbedPoint(cubicAt(cur, pts[0], pts[1], pts[2], t))
			}
			cur = pts[2]
		}
	}
	return b
}

func numPoints(cmd path.Command) int {
	switch cmd {
	case path.CmdMoveTo, path.CmdLineTo:
		return 1
	case path.CmdQuadTo:
		return 2
	case path.CmdCubeTo:
		return 3
	default:
		return 0
	}
}

func cubicAt(p0, p1, p2, p3 vec.Vec2, t float64) vec.Vec2 {
	s := 1 - t
	a := s * s * s
	b := 3 * s * s * t
	c := 3 * s * t * t
	d := t * t * t
	return vec.Vec2{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// cubicExtrema returns the parameters in (0, 1) where one of the
// coordinates of the curve has a local extremum.
func cubicExtrema(p0, p1, p2, p3 vec.Vec2) []float64 {
	var res []float64
	for _, c := range [2][4]float64{
		{p0.X, p1.X, p2.X, p3.X},
		{p0.Y, p1.Y, p2.Y, p3.Y},
	} {
		// derivative: a t^2 + b t + c
		a := 3 * (-c[0] + 3*c[1] - 3*c[2] + c[3])
		b := 6 * (c[0] - 2*c[1] + c[2])
		cc := 3 * (c[1] - c[0])
		for _, t := range solveQuadratic(a, b, cc) {
			if t > 0 && t < 1 {
				res = append(res, t)
			}
		}
	}
	return res
}

func solveQuadratic(a, b, c float64) []float64 {
	const eps = 1e-12
	if math.Abs(a) < eps {
		if math.Abs(b) < eps {
			return nil
		}
		return []float64{-c / b}
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
}
