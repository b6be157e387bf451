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
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pssvg/color"
	"seehuhn.de/go/pssvg/pattern"
	"seehuhn.de/go/pssvg/transform"
)

func (h *Handler) setgray(args []float64) {
	h.setColor(color.Gray(args[0]))
}

func (h *Handler) setrgbcolor(args []float64) {
	h.setColor(color.RGB(args[0], args[1], args[2]))
}

func (h *Handler) setcmykcolor(args []float64) {
	h.setColor(color.CMYK(args[0], args[1], args[2], args[3]))
}

func (h *Handler) sethsbcolor(args []float64) {
	h.setColor(color.HSB(args[0], args[1], args[2]))
}

// setColor installs c as the current color.  Unless a pattern is
// installing its paint, this also ends the use of the active pattern.
func (h *Handler) setColor(c color.Color) {
	if !h.state.PatternEnabled {
		h.state.Pattern = nil
	}
	h.state.Color = c
	h.actions.SetColor(c)
}

// makepattern starts or ends the definition of a pattern.
//
// For a tiling pattern the arguments are: the pattern type 1, the pattern
// id, the pattern bounding box (4 values), the horizontal and vertical step
// sizes, the paint type and the pattern matrix (6 values).  All elements
// produced until makepattern is called with the single argument 0 form the
// pattern tile.
func (h *Handler) makepattern(args []float64) {
	if len(args) == 0 {
		return
	}
	switch int(args[0]) {
	case 0:
		if n := len(h.containers); n > 0 && h.containers[n-1].isPattern {
			h.popContainer()
		}
	case 1:
		if len(args) < 9 {
			h.log.Warn("incomplete pattern definition", "args", len(args))
			return
		}
		id := int(args[1])
		box := rect.Rect{LLx: args[2], LLy: args[3], URx: args[4], URy: args[5]}
		xStep, yStep := args[6], args[7]
		kind := pattern.Colored
		if int(args[8]) != 1 {
			kind = pattern.Uncolored
		}
		m := transform.FromPS(args[9:]).LMultiply(h.actions.Matrix())
		pat := h.patterns.Define(id, kind, box, xStep, yStep, m)
		h.pushContainer(pat.Container(), true)
	default:
		// TODO(voss): shading patterns (type 2) could be mapped to SVG
		// gradients for axial and radial shadings.
	}
}

// setpattern selects the pattern with the given id as the fill paint.
// For uncolored patterns, three further arguments give the RGB paint.
func (h *Handler) setpattern(args []float64) {
	if len(args) == 0 {
		return
	}
	id := int(args[0])
	paint := color.Black
	if len(args) == 4 {
		paint = color.RGB(args[1], args[2], args[3])
		h.state.PatternEnabled = true
		h.setColor(paint)
		h.state.PatternEnabled = false
	}
	pat := h.patterns.Select(id, paint)
	if pat == nil {
		h.state.Pattern = nil
		return
	}
	pat.Apply(h.actions.Document())
	h.state.Pattern = pat
}
