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
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	pstrconv "github.com/tdewolff/parse/v2/strconv"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"seehuhn.de/go/pssvg/bbox"
	"seehuhn.de/go/pssvg/svg"
	"seehuhn.de/go/pssvg/transform"
)

// image embeds a bitmap painted by the PostScript image operators.  The
// arguments are the image id, the width and the height in pixels.  The CTM
// maps the unit square to the area covered by the image.
func (h *Handler) image(args []float64) {
	id := int(args[0])
	if id < 0 || h.bitmaps == nil {
		return
	}
	width, height := args[1], args[2]
	if width <= 0 || height <= 0 {
		return
	}

	fname := h.bitmaps.fileName(id)
	data, err := os.ReadFile(fname)
	if err != nil {
		h.log.Warn("bitmap file missing", "file", fname, "error", err)
		return
	}
	os.Remove(fname)

	// M maps the unit square to the pixel grid, with the first image row
	// at the top.
	M := transform.Matrix{width, 0, 0, 0, -height, height}
	Minv, err := M.Inverse()
	if err != nil {
		return
	}
	m := Minv.LMultiply(h.actions.Matrix())

	el := svg.NewElement("image").
		SetNumber("width", width).
		SetNumber("height", height).
		Set("transform", m.String()).
		Set("xlink:href", "data:"+h.bitmaps.mimeType()+";base64,"+
			base64.StdEncoding.EncodeToString(data))

	box := bbox.New(0, 0, width, height)
	box.Transform(m)
	if clipPath := h.clipStack.Path(); clipPath != nil && !h.inPattern() {
		group := svg.NewElement("g").Set("clip-path", clipRef(h.clipStack.TopID()))
		group.Append(el)
		el = group
		box.Intersect(clipPath.BBox())
	}
	h.appendNode(el, box)
}

type fileType int

const (
	fileEPS fileType = iota
	filePDF
	fileSVG
	fileBitmap
)

func (tp fileType) String() string {
	switch tp {
	case fileEPS:
		return "EPS"
	case filePDF:
		return "PDF"
	case fileSVG:
		return "SVG"
	case fileBitmap:
		return "bitmap"
	default:
		return fmt.Sprintf("fileType(%d)", int(tp))
	}
}

// includeFile handles the psfile=, PSfile= and pdffile= specials, which
// place an external graphic at the current position.  The lower left
// corner of the graphic's bounding box is placed at the current position.
func (h *Handler) includeFile(prefix, spec string) {
	name, attrs := parseFileSpecial(spec)
	name = filepath.ToSlash(name)
	if name == "/dev/null" {
		return
	}
	fname, ok := h.finder.Find(name)
	if !ok {
		h.log.Warn("file not found", "file", name)
		return
	}
	tp := detectFileType(prefix, name, fname)
	if tp == filePDF {
		h.log.Warn("cannot render PDF content", "file", name)
		return
	}

	// the bounding box of the graphic, in PostScript points
	llx := attrNumber(attrs, "llx", 0)
	lly := attrNumber(attrs, "lly", 0)
	urx := attrNumber(attrs, "urx", 0)
	ury := attrNumber(attrs, "ury", 0)
	if tp == fileBitmap && llx == 0 && lly == 0 && urx == 0 && ury == 0 {
		w, ht, err := bitmapSize(fname)
		if err != nil {
			h.log.Warn("cannot read bitmap header", "file", name, "error", err)
			return
		}
		urx, ury = w, ht
	}
	if tp == fileBitmap || tp == fileSVG {
		lly, ury = ury, lly
	}

	// requested width and height, in tenths of a point
	rwi := attrNumber(attrs, "rwi", -10) / 10
	rhi := attrNumber(attrs, "rhi", -10) / 10
	if rwi == 0 || rhi == 0 || urx-llx == 0 || ury-lly == 0 {
		return
	}

	hoffset := attrNumber(attrs, "hoffset", 0)
	voffset := attrNumber(attrs, "voffset", 0)
	hscale := attrNumber(attrs, "hscale", 100)
	vscale := attrNumber(attrs, "vscale", 100)
	angle := attrNumber(attrs, "angle", 0)
	_, clipToBox := attrs["clip"]

	sx := rwi / math.Abs(llx-urx)
	sy := rhi / math.Abs(lly-ury)
	if sx < 0 {
		sx = sy // rwi not given
	}
	if sy < 0 {
		sy = sx // rhi not given
	}
	if sx < 0 {
		sx, sy = 1, 1
	}

	x, y := h.actions.X(), h.actions.Y()
	h.actions.SetX(0)
	h.actions.SetY(0)
	h.moveToDVIPos()

	box := bbox.New(llx, lly, urx, ury)
	el := h.createImageNode(tp, name, fname, box, clipToBox)
	if el != nil {
		if tp == fileEPS {
			sy = -sy // PostScript y coordinates point upwards
		}
		m := transform.Scaling(sx, sy).
			Then(transform.Rotation(-angle)).
			Then(transform.Scaling(hscale/100, vscale/100)).
			Then(transform.Translation(x+hoffset, y-voffset)).
			Then(h.actions.Matrix())

		pageBox := bbox.New(0, 0, urx-llx, ury-lly)
		pageBox.Transform(m)

		m = m.RMultiply(transform.Translation(-llx, -lly))
		if !m.IsIdentity() {
			el.Set("transform", m.String())
		}
		h.appendNode(el, pageBox)
	}

	h.actions.SetX(x)
	h.actions.SetY(y)
	h.moveToDVIPos()
}

// createImageNode returns the element showing the graphic, or nil if
// nothing was drawn.
func (h *Handler) createImageNode(tp fileType, name, fname string, box bbox.Box, clipToBox bool) *svg.Element {
	if tp == fileBitmap || tp == fileSVG {
		return svg.NewElement("image").
			SetNumber("x", 0).
			SetNumber("y", 0).
			SetNumber("width", box.Width()).
			SetNumber("height", box.Height()).
			Set("xlink:href", h.imageHref(name, fname))
	}

	group := svg.NewElement("g")
	h.pushContainer(group, false)
	defer h.popContainer()

	setup := "\n@beginspecial @setspecial /setpagedevice{@setpagedevice}def matrix setmatrix "
	if clipToBox {
		setup += fmt.Sprintf("%s %s %s %s rectclip ",
			svg.FormatNumber(box.MinX()), svg.FormatNumber(box.MinY()),
			svg.FormatNumber(box.Width()), svg.FormatNumber(box.Height()))
	}
	h.execute(setup)
	h.executeEPS(fname)
	h.execute("\n@endspecial\n")

	if group.Empty() {
		return nil
	}
	return group
}

// executeEPS runs the PostScript code of an EPS file.  For DOS EPS files
// with a binary header only the PostScript section is used.
func (h *Handler) executeEPS(fname string) {
	fd, err := os.Open(fname)
	if err != nil {
		h.log.Warn("cannot open file", "file", fname, "error", err)
		return
	}
	defer fd.Close()

	var r io.Reader = fd
	if section, ok := dosEPSSection(fd); ok {
		r = section
	} else if _, err := fd.Seek(0, io.SeekStart); err != nil {
		h.log.Warn("cannot read file", "file", fname, "error", err)
		return
	}
	h.executeReader(r)
}

// dosEPSSection returns the PostScript part of a DOS EPS file.
func dosEPSSection(r io.ReaderAt) (io.Reader, bool) {
	var hdr [12]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return nil, false
	}
	if !bytes.Equal(hdr[:4], []byte{0xC5, 0xD0, 0xD3, 0xC6}) {
		return nil, false
	}
	offset := binary.LittleEndian.Uint32(hdr[4:8])
	length := binary.LittleEndian.Uint32(hdr[8:12])
	return io.NewSectionReader(r, int64(offset), int64(length)), true
}

// imageHref returns the reference to an included image file.  Files given
// by a relative name are referenced relative to the SVG file.
func (h *Handler) imageHref(name, fname string) string {
	if filepath.IsAbs(name) {
		return filepath.ToSlash(fname)
	}
	svgDir, err := filepath.Abs(filepath.Dir(h.actions.SVGFilePath(h.actions.PageNumber())))
	if err != nil {
		return filepath.ToSlash(fname)
	}
	abs, err := filepath.Abs(fname)
	if err != nil {
		return filepath.ToSlash(fname)
	}
	rel, err := filepath.Rel(svgDir, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// detectFileType determines the type of an included file from the special
// prefix, the file name suffix and, as a last resort, the file contents.
func detectFileType(prefix, name, fname string) fileType {
	if prefix == "pdffile=" {
		return filePDF
	}
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "pdf":
		return filePDF
	case "svg":
		return fileSVG
	case "png", "jpg", "jpeg", "bmp", "tif", "tiff", "webp":
		return fileBitmap
	case "eps", "ps":
		return fileEPS
	}

	fd, err := os.Open(fname)
	if err != nil {
		return fileEPS
	}
	defer fd.Close()
	head := make([]byte, 262)
	n, _ := io.ReadFull(fd, head)
	head = head[:n]
	if bytes.HasPrefix(head, []byte("%!PS")) {
		return fileEPS
	}
	if filetype.IsImage(head) {
		return fileBitmap
	}
	if kind, err := filetype.Match(head); err == nil && kind.Extension == "pdf" {
		return filePDF
	}
	return fileEPS
}

// bitmapSize returns the pixel dimensions of an image file.
func bitmapSize(fname string) (float64, float64, error) {
	fd, err := os.Open(fname)
	if err != nil {
		return 0, 0, err
	}
	defer fd.Close()
	cfg, _, err := image.DecodeConfig(fd)
	if err != nil {
		return 0, 0, err
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}

// parseFileSpecial splits the argument of a psfile special into the file
// name and the attributes.  The file name may be quoted.  Attributes have
// the form key=value or key; values may be quoted.
func parseFileSpecial(spec string) (string, map[string]string) {
	s := strings.TrimLeft(spec, " \t\r\n")
	var name string
	if strings.HasPrefix(s, `"`) {
		end := strings.IndexByte(s[1:], '"')
		if end < 0 {
			name, s = s[1:], ""
		} else {
			name, s = s[1:end+1], s[end+2:]
		}
	} else {
		end := strings.IndexAny(s, " \t\r\n")
		if end < 0 {
			end = len(s)
		}
		name, s = s[:end], s[end:]
	}

	attrs := make(map[string]string)
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		if s == "" {
			break
		}
		end := strings.IndexAny(s, "= \t\r\n")
		if end < 0 {
			attrs[s] = ""
			break
		}
		key := s[:end]
		s = s[end:]
		if s[0] != '=' {
			attrs[key] = ""
			continue
		}
		s = s[1:]
		var val string
		if strings.HasPrefix(s, `"`) {
			q := strings.IndexByte(s[1:], '"')
			if q < 0 {
				val, s = s[1:], ""
			} else {
				val, s = s[1:q+1], s[q+2:]
			}
		} else {
			end := strings.IndexAny(s, " \t\r\n")
			if end < 0 {
				end = len(s)
			}
			val, s = s[:end], s[end:]
		}
		attrs[key] = val
	}
	return name, attrs
}

// attrNumber returns the numeric value of an attribute.  Like C's strtod,
// a numeric prefix of the value is used and trailing text is ignored.
func attrNumber(attrs map[string]string, key string, def float64) float64 {
	val, ok := attrs[key]
	if !ok {
		return def
	}
	x, n := pstrconv.ParseFloat([]byte(strings.TrimSpace(val)))
	if n == 0 {
		return 0
	}
	return x
}
