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
	"math"

	pstrconv "github.com/tdewolff/parse/v2/strconv"

	"seehuhn.de/go/pssvg/bbox"
	"seehuhn.de/go/pssvg/postscript"
	"seehuhn.de/go/pssvg/transform"
)

// spPerBP is the number of TeX scaled points per big point.
const spPerBP = 65781.76

// previewData holds the box written by the LaTeX preview package when its
// tightpage option is used.  The first PostScript special of each page
// starts with seven numbers in scaled points: the left, bottom, right and
// top border adjustments, followed by the height, depth and width of the
// box.
type previewData struct {
	version   string
	tightpage bool

	// waiting is set until the first special of the page has been seen.
	waiting bool

	// extents holds the seven numbers, converted to big points.
	extents []float64
}

// activatePreview checks whether the header code of the preview package
// has been loaded.  It is called at the start of every page, after the
// header code has been executed.
func (h *Handler) activatePreview() {
	p := &h.preview
	p.extents = nil
	p.tightpage = false
	p.waiting = false

	n := len(h.intp.Stack)
	h.execute("SDict begin" +
		" /preview@tightpage where{/preview@tightpage get}{false}ifelse" +
		" /preview@version where{/preview@version get}{()}ifelse end ")
	if len(h.intp.Stack) != n+2 {
		return
	}
	tight, _ := h.intp.Stack[n].(postscript.Boolean)
	version, _ := h.intp.Stack[n+1].(postscript.String)
	h.intp.Stack = h.intp.Stack[:n]

	p.version = string(version)
	p.tightpage = bool(tight)
	p.waiting = p.tightpage
}

// readExtents removes the box data from the start of code and returns the
// remaining code.  If code does not start with seven numbers, it is
// returned unchanged.
func (p *previewData) readExtents(code []byte) []byte {
	p.waiting = false

	rest := code
	ext := make([]float64, 0, 7)
	for len(ext) < 7 {
		i := 0
		for i < len(rest) && isSpace(rest[i]) {
			i++
		}
		rest = rest[i:]
		x, k := pstrconv.ParseFloat(rest)
		if k == 0 || k < len(rest) && !isSpace(rest[k]) {
			return code
		}
		ext = append(ext, x/spPerBP)
		rest = rest[k:]
	}
	p.extents = ext
	return rest
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func (p *previewData) height() float64 {
	return p.extents[4] + p.extents[3]
}

func (p *previewData) depth() float64 {
	return p.extents[5] - p.extents[1]
}

func (p *previewData) width() float64 {
	return p.extents[6] + p.extents[2] - p.extents[0]
}

// box returns the bounding box set by the preview package, relative to the
// reference point of the box.  The second return value is false if no
// data was found on the current page.
func (p *previewData) box() (bbox.Box, bool) {
	if len(p.extents) < 7 {
		return bbox.Box{}, false
	}
	left := p.extents[0]
	return bbox.New(left, -p.height(), left+p.width(), p.depth()), true
}

// applyPreviewBox uses the preview data to fix the page bounding box.  With
// the "preview" bounding box format, the box set by the preview package
// replaces the page box.  With "min", the collected box is kept and only
// the extents are reported.  In both cases the box is locked.
func (h *Handler) applyPreviewBox() bool {
	p := &h.preview
	box, ok := p.box()
	if !ok {
		return false
	}
	pageBox := h.actions.BBox()

	var w, ht, d float64
	switch h.cfg.BBoxFormat {
	case "preview":
		w = max(0, p.width())
		ht = max(0, p.height())
		d = max(0, p.depth())
		*pageBox = box
	case "min":
		w = pageBox.Width()
		ht = max(0, -pageBox.MinY())
		d = max(0, pageBox.MaxY())
	default:
		return false
	}
	pageBox.Lock()

	const bp2pt = 72.27 / 72
	if !transformExtents(h.actions.PageTransform(), &w, &ht, &d) {
		h.log.Info("preview package: non-horizontal baseline",
			"page", h.actions.PageNumber(), "version", p.version)
		return true
	}
	h.log.Info("preview package box",
		"page", h.actions.PageNumber(),
		"version", p.version,
		"width", w*bp2pt,
		"height", ht*bp2pt,
		"depth", d*bp2pt)
	return true
}

// transformExtents applies the page transformation m to the width, height
// and depth of a box.  The return value is false if m rotates the baseline
// by an angle which is not a multiple of 90 degrees.
func transformExtents(m transform.Matrix, w, h, d *float64) bool {
	x0, y0 := m.ApplyXY(0, 0)
	exX, exY := m.ApplyXY(1, 0)
	eyX, eyY := m.ApplyXY(0, 1)
	exX, exY = exX-x0, exY-y0
	eyX, eyY = eyX-x0, eyY-y0
	if exY != 0 && eyX != 0 {
		return false
	}

	if exY == 0 {
		*w *= math.Abs(exX)
	}
	if eyX == 0 || exY == 0 {
		if eyY < 0 {
			*h, *d = *d, *h
		}
		sy := math.Abs(eyY) / math.Hypot(eyX, eyY)
		if sy < 1e-8 {
			*h, *d = 0, 0
		} else {
			*h *= math.Abs(eyY / sy)
			*d *= math.Abs(eyY / sy)
		}
	}
	return true
}
