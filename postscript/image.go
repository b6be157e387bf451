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

package postscript

import (
	"image"
	"math"

	"seehuhn.de/go/geom/matrix"
)

// ImageSink stores the sampled images painted by image and colorimage.
type ImageSink interface {
	// WriteImage stores img under the given id.  The id is reported to the
	// "image" callback afterwards.
	WriteImage(id int, img image.Image) error
}

type imageParams struct {
	width, height int
	bits          int
	comps         int
	m             matrix.Matrix
	sources       []Object // one source, or one per component
}

func bImage(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "image: not enough arguments")
	}
	if dict, ok := intp.Stack[len(intp.Stack)-1].(Dict); ok {
		p, err := intp.imageDict(dict)
		if err != nil {
			return err
		}
		intp.Stack = intp.Stack[:len(intp.Stack)-1]
		return intp.paintImage(p)
	}

	if len(intp.Stack) < 5 {
		return intp.e(eStackunderflow, "image: not enough arguments")
	}
	p, err := intp.imageOperands("image", intp.Stack[len(intp.Stack)-5:len(intp.Stack)-1])
	if err != nil {
		return err
	}
	p.comps = 1
	p.sources = []Object{intp.Stack[len(intp.Stack)-1]}
	intp.Stack = intp.Stack[:len(intp.Stack)-5]
	return intp.paintImage(p)
}

func bColorimage(intp *Interpreter) error {
	if len(intp.Stack) < 7 {
		return intp.e(eStackunderflow, "colorimage: not enough arguments")
	}
	ncomp, ok1 := intp.Stack[len(intp.Stack)-1].(Integer)
	multi, ok2 := intp.Stack[len(intp.Stack)-2].(Boolean)
	if !ok1 || !ok2 {
		return intp.e(eTypecheck, "colorimage: invalid arguments")
	}
	if ncomp != 1 && ncomp != 3 && ncomp != 4 {
		return intp.e(eRangecheck, "colorimage: invalid number of components %d", ncomp)
	}
	nSrc := 1
	if multi {
		nSrc = int(ncomp)
	}
	base := len(intp.Stack) - 2 - nSrc - 4
	if base < 0 {
		return intp.e(eStackunderflow, "colorimage: not enough arguments")
	}
	p, err := intp.imageOperands("colorimage", intp.Stack[base:base+4])
	if err != nil {
		return err
	}
	p.comps = int(ncomp)
	p.sources = append([]Object(nil), intp.Stack[base+4:base+4+nSrc]...)
	intp.Stack = intp.Stack[:base]
	return intp.paintImage(p)
}

// imageOperands reads the width, height, bits per component and image
// matrix operands.
func (intp *Interpreter) imageOperands(op string, args []Object) (*imageParams, error) {
	w, ok1 := args[0].(Integer)
	h, ok2 := args[1].(Integer)
	bits, ok3 := args[2].(Integer)
	if !ok1 || !ok2 || !ok3 {
		return nil, intp.e(eTypecheck, "%s: invalid image size", op)
	}
	m, err := intp.toMatrix(op, args[3])
	if err != nil {
		return nil, err
	}
	return intp.checkImage(op, &imageParams{
		width:  int(w),
		height: int(h),
		bits:   int(bits),
		m:      m,
	})
}

func (intp *Interpreter) imageDict(dict Dict) (*imageParams, error) {
	if tp, _ := dict["ImageType"].(Integer); tp != 1 {
		return nil, intp.e(eRangecheck, "image: unsupported image type %d", tp)
	}
	w, ok1 := dict["Width"].(Integer)
	h, ok2 := dict["Height"].(Integer)
	bits, ok3 := dict["BitsPerComponent"].(Integer)
	if !ok1 || !ok2 || !ok3 {
		return nil, intp.e(eTypecheck, "image: invalid image dictionary")
	}
	m, err := intp.toMatrix("image", dict["ImageMatrix"])
	if err != nil {
		return nil, err
	}
	src, ok := dict["DataSource"]
	if !ok {
		return nil, intp.e(eUndefined, "image: missing DataSource")
	}
	comps := 1
	if cs, ok := colorSpaces[intp.gs.space]; ok {
		comps = cs.comps
	}
	sources := []Object{src}
	if multi, _ := dict["MultipleDataSources"].(Boolean); multi {
		a, ok := src.(Array)
		if !ok || len(a) != comps {
			return nil, intp.e(eTypecheck, "image: invalid DataSource")
		}
		sources = a
	}
	return intp.checkImage("image", &imageParams{
		width:   int(w),
		height:  int(h),
		bits:    int(bits),
		comps:   comps,
		m:       m,
		sources: sources,
	})
}

func (intp *Interpreter) checkImage(op string, p *imageParams) (*imageParams, error) {
	if p.width <= 0 || p.height <= 0 || p.width*p.height > maxImagePixels {
		return nil, intp.e(eRangecheck, "%s: invalid image size %dx%d", op, p.width, p.height)
	}
	switch p.bits {
	case 1, 2, 4, 8:
		// pass
	default:
		return nil, intp.e(eRangecheck, "%s: unsupported bits per component %d", op, p.bits)
	}
	return p, nil
}

const maxImagePixels = 1 << 24

// readSamples collects n bytes from the data source src.  String sources
// are reused until enough data has been read.  A procedure returning an
// empty string ends the data.
func (intp *Interpreter) readSamples(src Object, n int) ([]byte, error) {
	var res []byte
	for len(res) < n {
		var chunk String
		switch src := src.(type) {
		case String:
			chunk = src
		case Procedure:
			err := intp.executeOne(src, true)
			if err != nil {
				return nil, err
			}
			if len(intp.Stack) < 1 {
				return nil, intp.e(eStackunderflow, "image: data source returned nothing")
			}
			s, ok := intp.Stack[len(intp.Stack)-1].(String)
			if !ok {
				return nil, intp.e(eTypecheck, "image: data source returned %T", intp.Stack[len(intp.Stack)-1])
			}
			intp.Stack = intp.Stack[:len(intp.Stack)-1]
			chunk = s
		default:
			return nil, intp.e(eTypecheck, "image: unsupported data source %T", src)
		}
		if len(chunk) == 0 {
			break
		}
		res = append(res, chunk...)
	}
	if len(res) > n {
		res = res[:n]
	}
	return res, nil
}

func (intp *Interpreter) paintImage(p *imageParams) error {
	rowBytes := (p.width*p.bits*p.comps + 7) / 8
	if len(p.sources) > 1 {
		rowBytes = (p.width*p.bits + 7) / 8
	}
	planes := make([][]byte, len(p.sources))
	for i, src := range p.sources {
		data, err := intp.readSamples(src, rowBytes*p.height)
		if err != nil {
			return err
		}
		planes[i] = data
	}
	img := buildImage(p, planes, rowBytes)

	id := -1
	if intp.Images != nil {
		intp.imageID++
		id = intp.imageID
		if err := intp.Images.WriteImage(id, img); err != nil {
			return intp.e(eIoerror, "image: %v", err)
		}
	}

	w, h := float64(p.width), float64(p.height)
	std := matrix.Matrix{w, 0, 0, -h, 0, h}
	if sameMatrix(p.m, std) {
		return intp.notify("image", float64(id), w, h)
	}

	// The callback assumes the standard image matrix, so the CTM is
	// adjusted to map the standard image space like the given one.
	inv, ok := invert(p.m)
	if !ok {
		return intp.e(eUndefinedresult, "image: singular image matrix")
	}
	ctm := intp.gs.ctm
	if err := intp.notifyMatrix(std.Mul(inv).Mul(ctm)); err != nil {
		return err
	}
	if err := intp.notify("image", float64(id), w, h); err != nil {
		return err
	}
	return intp.notifyMatrix(ctm)
}

func sameMatrix(a, b matrix.Matrix) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

// buildImage converts the sample data into an image.  Missing samples are
// treated as zero.
func buildImage(p *imageParams, planes [][]byte, rowBytes int) image.Image {
	rect := image.Rect(0, 0, p.width, p.height)
	maxVal := (1 << p.bits) - 1

	sample := func(row, idx int, plane []byte) uint8 {
		bitPos := idx * p.bits
		pos := row*rowBytes + bitPos/8
		if pos >= len(plane) {
			return 0
		}
		shift := 8 - p.bits - bitPos%8
		v := int(plane[pos]>>shift) & maxVal
		return uint8(v * 255 / maxVal)
	}
	get := func(x, y, c int) uint8 {
		if len(planes) > 1 {
			return sample(y, x, planes[c])
		}
		return sample(y, x*p.comps+c, planes[0])
	}

	switch p.comps {
	case 1:
		img := image.NewGray(rect)
		for y := 0; y < p.height; y++ {
			for x := 0; x < p.width; x++ {
				img.Pix[y*img.Stride+x] = get(x, y, 0)
			}
		}
		return img
	case 4:
		img := image.NewCMYK(rect)
		for y := 0; y < p.height; y++ {
			for x := 0; x < p.width; x++ {
				for c := 0; c < 4; c++ {
					img.Pix[y*img.Stride+4*x+c] = get(x, y, c)
				}
			}
		}
		return img
	default:
		img := image.NewNRGBA(rect)
		for y := 0; y < p.height; y++ {
			for x := 0; x < p.width; x++ {
				off := y*img.Stride + 4*x
				for c := 0; c < 3; c++ {
					img.Pix[off+c] = get(x, y, c)
				}
				img.Pix[off+3] = 255
			}
		}
		return img
	}
}
