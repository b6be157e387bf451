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
	"strconv"
	"strings"

	"seehuhn.de/go/pssvg/bbox"
	"seehuhn.de/go/pssvg/color"
	"seehuhn.de/go/pssvg/outline"
	"seehuhn.de/go/pssvg/svg"
)

// This file implements the path construction, painting and clipping
// operators.  The interpreter reports the current path right before each
// painting or clipping operator, in the user space of the CTM in effect at
// that time.  The path is transformed to device space when it is painted.

func (h *Handler) moveto(args []float64) {
	h.path.MoveTo(args[0], args[1])
}

func (h *Handler) lineto(args []float64) {
	h.path.LineTo(args[0], args[1])
}

func (h *Handler) curveto(args []float64) {
	h.path.CubeTo(args[0], args[1], args[2], args[3], args[4], args[5])
}

func (h *Handler) closepath([]float64) {
	h.path.Close()
}

// newpath clears the current path.  The argument is positive if the
// PostScript newpath operator was used, in which case a path installed by
// clippath is dropped as well.
func (h *Handler) newpath(args []float64) {
	if args[0] > 0 {
		h.clipStack.RemovePrependedPath()
	}
	h.path.Clear()
}

// preparePath converts the current path to device space.  The return
// value is false if there is nothing to paint.
func (h *Handler) preparePath() bool {
	h.path.RemoveRedundantCommands()
	pre := h.clipStack.PrependedPath()
	if h.path.Empty() && pre == nil {
		return false
	}
	if m := h.actions.Matrix(); !m.IsIdentity() {
		h.path.Transform(m)
	}
	if pre != nil {
		h.path.Prepend(pre)
	}
	return true
}

// applyClipAttr restricts el to the current clipping path.  Inside pattern
// definitions no clipping is applied, since the pattern tile is clipped
// separately.
func (h *Handler) applyClipAttr(el *svg.Element, box *bbox.Box) {
	if el == nil || h.inPattern() {
		return
	}
	clipPath := h.clipStack.Path()
	if clipPath == nil {
		return
	}
	el.Set("clip-path", clipRef(h.clipStack.TopID()))
	box.Intersect(clipPath.BBox())
}

func (h *Handler) stroke([]float64) {
	if !h.preparePath() {
		return
	}

	st := &h.state
	var el *svg.Element
	var box bbox.Box
	if pt, isDot := h.path.IsDot(); isDot {
		// Zero-length paths are only visible with round caps.
		if st.LineCap == 1 {
			r := st.LineWidth / 2
			el = svg.NewElement("circle").
				SetNumber("cx", pt.X).
				SetNumber("cy", pt.Y).
				SetNumber("r", r).
				Set("fill", h.actions.Color().String())
			box = bbox.New(pt.X-r, pt.Y-r, pt.X+r, pt.Y+r)
		}
	} else {
		box = h.path.BBox()
		box.Expand(st.LineWidth / 2)

		el = svg.NewElement("path").
			Set("d", h.path.SVG(true)).
			Set("stroke", h.actions.Color().String()).
			Set("fill", "none")
		if st.LineWidth != 1 {
			el.SetNumber("stroke-width", st.LineWidth)
		}
		if st.MiterLimit != 4 { // the initial value in SVG
			el.SetNumber("stroke-miterlimit", st.MiterLimit)
		}
		switch st.LineCap {
		case 1:
			el.Set("stroke-linecap", "round")
		case 2:
			el.Set("stroke-linecap", "square")
		}
		switch st.LineJoin {
		case 1:
			el.Set("stroke-linejoin", "round")
		case 2:
			el.Set("stroke-linejoin", "bevel")
		}
		if st.StrokeAlpha[0] < 1 || st.StrokeAlpha[1] < 1 {
			el.SetNumber("stroke-opacity", st.strokeOpacity())
		}
		if style := st.blendStyle(); style != "" {
			el.Set("style", style)
		}
		if len(st.Dash) > 0 {
			parts := make([]string, len(st.Dash))
			for i, d := range st.Dash {
				parts[i] = svg.FormatNumber(d)
			}
			el.Set("stroke-dasharray", strings.Join(parts, ","))
			if st.DashOffset != 0 {
				el.SetNumber("stroke-dashoffset", st.DashOffset)
			}
		}
	}
	h.applyClipAttr(el, &box)
	h.clipStack.RemovePrependedPath()
	h.appendNode(el, box)
	h.path.Clear()
}

func (h *Handler) fill([]float64) {
	h.fillPath(false)
}

func (h *Handler) eofill([]float64) {
	h.fillPath(true)
}

func (h *Handler) fillPath(evenOdd bool) {
	if !h.preparePath() {
		return
	}

	st := &h.state
	box := h.path.BBox()
	el := svg.NewElement("path").Set("d", h.path.SVG(true))
	if st.Pattern != nil {
		el.Set("fill", "url(#"+st.Pattern.SVGID()+")")
	} else if c := h.actions.Color(); c != color.Black || h.inPattern() {
		el.Set("fill", c.String())
	}
	h.applyClipAttr(el, &box)
	h.clipStack.RemovePrependedPath()
	if evenOdd {
		el.Set("fill-rule", "evenodd")
	}
	if st.FillAlpha[0] < 1 || st.FillAlpha[1] < 1 {
		el.SetNumber("fill-opacity", st.fillOpacity())
	}
	if style := st.blendStyle(); style != "" {
		el.Set("style", style)
	}
	h.appendNode(el, box)
	h.path.Clear()
}

func (h *Handler) clip([]float64) {
	h.applyClip(h.path.Clone(), false)
}

func (h *Handler) eoclip([]float64) {
	h.applyClip(h.path.Clone(), true)
}

// applyClip restricts the clipping region to the area enclosed by p,
// which is given in user space.
func (h *Handler) applyClip(p *outline.Path, evenOdd bool) {
	if p.Empty() {
		return
	}
	if evenOdd {
		p.Rule = outline.EvenOdd
	} else {
		p.Rule = outline.NonZero
	}
	if m := h.actions.Matrix(); !m.IsIdentity() {
		p.Transform(m)
	}
	if pre := h.clipStack.PrependedPath(); pre != nil {
		p = h.clipper.Unite(pre, p)
	}

	oldID := h.clipStack.TopID()
	intersect := h.cfg.ComputeClipIntersections && oldID >= 1
	if intersect {
		p = h.clipper.Intersect(h.clipStack.Path(), p)
	}
	if !h.clipStack.Replace(p) {
		return
	}

	pathEl := svg.NewElement("path").Set("d", p.SVG(true))
	if p.Rule == outline.EvenOdd {
		pathEl.Set("clip-rule", "evenodd")
	}
	clipEl := svg.NewElement("clipPath").Set("id", "clip"+strconv.Itoa(h.clipStack.TopID()))
	if !h.cfg.ComputeClipIntersections && oldID > 0 {
		clipEl.Set("clip-path", clipRef(oldID))
	}
	clipEl.Append(pathEl)
	h.actions.Document().AppendToDefs(clipEl)
}

// clippath makes the current clipping path the current path.
func (h *Handler) clippath([]float64) {
	h.clipStack.SetPrependedPath()
}

// initclip removes all clipping.
func (h *Handler) initclip([]float64) {
	h.clipStack.PushEmpty()
}
