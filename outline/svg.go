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

package outline

import (
	"strings"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pssvg/svg"
)

// SVG returns the path data in the format of the SVG "d" attribute.
// If relative is true, relative commands are used and axis-parallel lines
// are abbreviated using "h" and "v".
func (p *Path) SVG(relative bool) string {
	w := &pathWriter{relative: relative}
	var cur, start vec.Vec2
	for cmd, pts := range p.Iter() {
		switch cmd {
		case path.CmdMoveTo:
			w.command('M', cur, pts[0])
			cur, start = pts[0], pts[0]
		case path.CmdLineTo:
			d := pts[0].Sub(cur)
			switch {
			case relative && d.Y == 0:
				w.op('h')
				w.num(d.X)
			case relative && d.X == 0:
				w.op('v')
				w.num(d.Y)
			default:
				w.command('L', cur, pts[0])
			}
			cur = pts[0]
		case path.CmdQuadTo:
			w.command('Q', cur, pts...)
			cur = pts[1]
		case path.CmdCubeTo:
			w.command('C', cur, pts...)
			cur = pts[2]
		case path.CmdClose:
			w.op('Z')
			cur = start
		}
	}
	return w.sb.String()
}

type pathWriter struct {
	sb       strings.Builder
	relative bool
	needSep  bool
}

func (w *pathWriter) op(c byte) {
	if w.relative && c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	w.sb.WriteByte(c)
	w.needSep = false
}

func (w *pathWriter) num(x float64) {
	s := svg.FormatNumber(x)
	if w.needSep && s[0] != '-' {
		w.sb.WriteByte(' ')
	}
	w.sb.WriteString(s)
	w.needSep = true
}

func (w *pathWriter) command(c byte, cur vec.Vec2, pts ...vec.Vec2) {
	w.op(c)
	for _, pt := range pts {
		if w.relative {
			pt = pt.Sub(cur)
		}
		w.num(pt.X)
		w.num(pt.Y)
	}
}
