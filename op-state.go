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
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pssvg/transform"
)

// This file implements the operators which change the graphics state
// without producing output.

func (h *Handler) gsave([]float64) {
	h.clipStack.Dup(-1)
}

func (h *Handler) grestore([]float64) {
	h.clipStack.Pop(-1, false)
}

func (h *Handler) grestoreall([]float64) {
	h.clipStack.Pop(-1, true)
}

func (h *Handler) save(args []float64) {
	h.clipStack.Dup(int(args[0]))
}

func (h *Handler) restore(args []float64) {
	h.clipStack.Pop(int(args[0]), false)
}

// setmatrix replaces the CTM.  The arguments form a PostScript matrix
// [a b c d e f].
func (h *Handler) setmatrix(args []float64) {
	h.actions.SetMatrix(transform.FromPS(args))
}

// PostScript applies scale, translate and rotate before the existing CTM,
// which in SVG layout is a multiplication from the right.

func (h *Handler) scale(args []float64) {
	m := h.actions.Matrix()
	h.actions.SetMatrix(m.RMultiply(transform.Scaling(args[0], args[1])))
}

func (h *Handler) translate(args []float64) {
	m := h.actions.Matrix()
	h.actions.SetMatrix(m.RMultiply(transform.Translation(args[0], args[1])))
}

func (h *Handler) rotate(args []float64) {
	m := h.actions.Matrix()
	h.actions.SetMatrix(m.RMultiply(transform.Rotation(args[0])))
}

func (h *Handler) applyscalevals(args []float64) {
	h.state.SX, h.state.SY, h.state.Cos = args[0], args[1], args[2]
}

// setlinewidth sets the line width.  A width of 0 asks for the thinnest
// line the device can draw, which is taken to be half a point.
func (h *Handler) setlinewidth(args []float64) {
	w := args[0]
	if w == 0 {
		w = 0.5
	}
	h.state.LineWidth = h.state.scale(w)
}

func (h *Handler) setlinecap(args []float64) {
	h.state.LineCap = int(args[0])
}

func (h *Handler) setlinejoin(args []float64) {
	h.state.LineJoin = int(args[0])
}

// setmiterlimit sets the miter limit.  The value is a ratio and does not
// depend on the CTM.
func (h *Handler) setmiterlimit(args []float64) {
	h.state.MiterLimit = args[0]
}

// setdash expects the dash lengths followed by the dash offset.
func (h *Handler) setdash(args []float64) {
	h.state.Dash = nil
	h.state.DashOffset = 0
	if len(args) == 0 {
		return
	}
	n := len(args) - 1
	if n > 0 {
		h.state.Dash = make([]float64, n)
		for i, d := range args[:n] {
			h.state.Dash[i] = h.state.scale(d)
		}
	}
	h.state.DashOffset = h.state.scale(args[n])
}

func (h *Handler) setfillconstantalpha(args []float64) {
	h.state.FillAlpha[0] = args[0]
}

func (h *Handler) setstrokeconstantalpha(args []float64) {
	h.state.StrokeAlpha[0] = args[0]
}

func (h *Handler) setshapealpha(args []float64) {
	h.state.FillAlpha[1] = args[0]
	h.state.StrokeAlpha[1] = args[0]
}

// setopacityalpha changes either the constant or the shape opacity,
// depending on the setting made by setalphaisshape.
func (h *Handler) setopacityalpha(args []float64) {
	i := 0
	if h.state.IsShapeAlpha {
		i = 1
	}
	h.state.FillAlpha[i] = args[0]
	h.state.StrokeAlpha[i] = args[0]
}

func (h *Handler) setalphaisshape(args []float64) {
	h.state.IsShapeAlpha = args[0] != 0
}

func (h *Handler) setblendmode(args []float64) {
	h.state.BlendMode = int(args[0])
}

// setnulldevice is called when the interpreter switches between the
// null device and the real output device.
func (h *Handler) setnulldevice(args []float64) {
	if args[0] != 0 {
		h.actions.LockOutput()
	} else {
		h.actions.UnlockOutput()
	}
}

// setpagedevice resets the graphics parameters.  The clipping path is
// kept.
func (h *Handler) setpagedevice([]float64) {
	h.state = DefaultState()
	h.path.Clear()
}

// querypos receives the current point in device space.
func (h *Handler) querypos(args []float64) {
	h.currentPoint = vec.Vec2{X: args[0], Y: args[1]}
	h.hasPoint = true
}
