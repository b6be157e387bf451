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
	"seehuhn.de/go/pssvg/outline"
	"seehuhn.de/go/pssvg/shading"
	"seehuhn.de/go/pssvg/svg"
)

// shfill paints a mesh shading.  See [shading.ParseRequest] for the layout
// of the arguments.  All cells of the mesh are collected in one group.
func (h *Handler) shfill(args []float64) {
	req, err := shading.ParseRequest(args)
	if err != nil {
		h.log.Error("PostScript error", "op", "shfill", "error", err)
		return
	}
	if req == nil {
		return
	}

	if req.BBox != nil {
		h.clipStack.Dup(-1)
		defer h.clipStack.Pop(-1, false)
		h.applyClip(rectPath(req.BBox.LLx, req.BBox.LLy, req.BBox.URx, req.BBox.URy), false)
	}

	m := h.actions.Matrix()
	group := svg.NewElement("g")
	if id := h.clipStack.TopID(); id > 0 && !h.inPattern() {
		group.Set("clip-path", clipRef(id))
	}
	addSegment := func(seg *outline.Path, c color.Color) {
		if !m.IsIdentity() {
			seg.Transform(m)
		}
		group.Append(svg.NewElement("path").
			Set("d", seg.SVG(true)).
			Set("fill", c.String()))
	}

	var box bbox.Box
	if req.Background != nil && req.BBox != nil {
		bg := rectPath(req.BBox.LLx, req.BBox.LLy, req.BBox.URx, req.BBox.URy)
		addSegment(bg, req.Space.Color(req.Background))
	}

	cfg := h.cfg
	err = req.Read(func(patch *shading.Patch) {
		patch.Approximate(cfg.ShadingSegmentSize, cfg.ShadingSegmentOverlap,
			cfg.ShadingSimplifyDelta, addSegment)
		patchBox := patch.BBox()
		patchBox.Transform(m)
		box.Embed(patchBox)
	})
	if err != nil {
		// The patches read so far are kept.
		h.log.Error("PostScript error", "op", "shfill", "error", err)
	}

	if group.Empty() {
		return
	}
	if clipPath := h.clipStack.Path(); clipPath != nil && !h.inPattern() {
		box.Intersect(clipPath.BBox())
	}
	h.appendNode(group, box)
}

func rectPath(x1, y1, x2, y2 float64) *outline.Path {
	p := &outline.Path{}
	p.MoveTo(x1, y1)
	p.LineTo(x2, y1)
	p.LineTo(x2, y2)
	p.LineTo(x1, y2)
	p.Close()
	return p
}
