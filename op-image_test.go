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
	"encoding/binary"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFileSpecial(t *testing.T) {
	name, attrs := parseFileSpecial(` "my file.eps" llx=0 lly=-5 urx=10.5 ury=20 clip rwi="100" `)
	if name != "my file.eps" {
		t.Errorf("wrong file name %q", name)
	}
	want := map[string]string{
		"llx":  "0",
		"lly":  "-5",
		"urx":  "10.5",
		"ury":  "20",
		"clip": "",
		"rwi":  "100",
	}
	if d := cmp.Diff(want, attrs); d != "" {
		t.Error(d)
	}

	name, attrs = parseFileSpecial("fig.eps")
	if name != "fig.eps" || len(attrs) != 0 {
		t.Errorf("got %q, %v", name, attrs)
	}
}

func TestAttrNumber(t *testing.T) {
	attrs := map[string]string{
		"a": "12",
		"b": "-1.5e1",
		"c": "7pt",
		"d": "abc",
	}
	cases := []struct {
		key  string
		want float64
	}{
		{"a", 12},
		{"b", -15},
		{"c", 7},
		{"d", 0},
		{"missing", 42},
	}
	for _, c := range cases {
		if got := attrNumber(attrs, c.key, 42); got != c.want {
			t.Errorf("%s: got %g, want %g", c.key, got, c.want)
		}
	}
}

func TestDetectFileType(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		fname := filepath.Join(dir, name)
		if err := os.WriteFile(fname, data, 0o644); err != nil {
			t.Fatal(err)
		}
		return fname
	}

	pngData := &bytes.Buffer{}
	if err := png.Encode(pngData, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		prefix, name string
		data         []byte
		want         fileType
	}{
		{"pdffile=", "a.eps", []byte("%!PS"), filePDF},
		{"psfile=", "a.PNG", nil, fileBitmap},
		{"psfile=", "a.svg", nil, fileSVG},
		{"psfile=", "a.pdf", nil, filePDF},
		{"psfile=", "ps-data", []byte("%!PS-Adobe-3.0\n"), fileEPS},
		{"psfile=", "png-data", pngData.Bytes(), fileBitmap},
		{"psfile=", "pdf-data", []byte("%PDF-1.4\n"), filePDF},
		{"psfile=", "other-data", []byte("hello"), fileEPS},
	}
	for _, c := range cases {
		fname := write(c.name, c.data)
		if got := detectFileType(c.prefix, c.name, fname); got != c.want {
			t.Errorf("%s%s: got %s, want %s", c.prefix, c.name, got, c.want)
		}
	}
}

func TestDOSEPSSection(t *testing.T) {
	buf := &bytes.Buffer{}
	buf.Write([]byte{0xC5, 0xD0, 0xD3, 0xC6})
	binary.Write(buf, binary.LittleEndian, uint32(30))
	binary.Write(buf, binary.LittleEndian, uint32(5))
	buf.Write(make([]byte, 30-buf.Len()))
	buf.WriteString("hello, world")

	r, ok := dosEPSSection(bytes.NewReader(buf.Bytes()))
	if !ok {
		t.Fatal("DOS EPS header not recognized")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want %q", data, "hello")
	}

	_, ok = dosEPSSection(strings.NewReader("%!PS-Adobe-3.0 EPSF-3.0"))
	if ok {
		t.Error("plain EPS file taken for DOS EPS")
	}
}

func TestIncludeSVG(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "pic.svg"), []byte("<svg/>"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	h, pc := newTestHandler(t, nil, dir)
	pc.SetX(5)
	pc.SetY(7)

	err = h.Process("psfile=", strings.NewReader("pic.svg llx=0 lly=0 urx=20 ury=10"))
	if err != nil {
		t.Fatal(err)
	}
	els := pageElements(pc)
	if len(els) != 1 {
		t.Fatalf("got %d elements, want 1", len(els))
	}
	el := els[0]
	if el.Name != "image" {
		t.Fatalf("got <%s>, want <image>", el.Name)
	}
	for _, a := range []struct{ name, value string }{
		{"x", "0"},
		{"y", "0"},
		{"width", "20"},
		{"height", "10"},
		{"transform", "matrix(1 0 0 1 5 -3)"},
	} {
		if got := attr(el, a.name); got != a.value {
			t.Errorf("%s: got %q, want %q", a.name, got, a.value)
		}
	}
	if got := attr(el, "xlink:href"); !strings.HasSuffix(got, "pic.svg") {
		t.Errorf("wrong href %q", got)
	}
	if pc.X() != 5 || pc.Y() != 7 {
		t.Errorf("position changed to (%g, %g)", pc.X(), pc.Y())
	}
	box := pc.BBox()
	if box.MinX() != 5 || box.MinY() != -3 || box.Width() != 20 || box.Height() != 10 {
		t.Errorf("wrong page box %v", box.Rect())
	}
}

func TestIncludeBitmapSize(t *testing.T) {
	dir := t.TempDir()
	fd, err := os.Create(filepath.Join(dir, "pic.png"))
	if err != nil {
		t.Fatal(err)
	}
	err = png.Encode(fd, image.NewGray(image.Rect(0, 0, 4, 3)))
	if err2 := fd.Close(); err == nil {
		err = err2
	}
	if err != nil {
		t.Fatal(err)
	}
	h, pc := newTestHandler(t, nil, dir)

	err = h.Process("psfile=", strings.NewReader("pic.png"))
	if err != nil {
		t.Fatal(err)
	}
	els := pageElements(pc)
	if len(els) != 1 {
		t.Fatalf("got %d elements, want 1", len(els))
	}
	if w, ht := attr(els[0], "width"), attr(els[0], "height"); w != "4" || ht != "3" {
		t.Errorf("image size %sx%s, want 4x3", w, ht)
	}
}

func TestIncludeEPS(t *testing.T) {
	dir := t.TempDir()
	eps := "%!PS-Adobe-3.0 EPSF-3.0\n" +
		"%%BoundingBox: 0 0 10 10\n" +
		"newpath 0 0 moveto 10 0 lineto 10 10 lineto closepath fill\n" +
		"showpage\n"
	err := os.WriteFile(filepath.Join(dir, "fig.eps"), []byte(eps), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	h, pc := newTestHandler(t, nil, dir)
	pc.SetX(100)
	pc.SetY(200)

	err = h.Process("psfile=", strings.NewReader(`"fig.eps" llx=0 lly=0 urx=10 ury=10`))
	if err != nil {
		t.Fatal(err)
	}
	els := pageElements(pc)
	if len(els) != 1 {
		t.Fatalf("got %d elements, want 1", len(els))
	}
	group := els[0]
	if got := attr(group, "transform"); got != "matrix(1 0 0 -1 100 200)" {
		t.Errorf("wrong transform %q", got)
	}
	paths := group.FindAll("path")
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	if got := attr(paths[0], "d"); got != "m0 0h10v10z" {
		t.Errorf("wrong path data %q", got)
	}
	if !pc.Matrix().IsIdentity() {
		t.Errorf("matrix not restored: %s", pc.Matrix())
	}
	box := pc.BBox()
	if box.MinX() != 100 || box.MinY() != 190 || box.Width() != 10 || box.Height() != 10 {
		t.Errorf("wrong page box %v", box.Rect())
	}
}

func TestIncludeMissing(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "doc.pdf"), []byte("%PDF-1.4\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	h, pc := newTestHandler(t, nil, dir)

	for _, spec := range []string{"missing.eps", "doc.pdf", "/dev/null", "doc.pdf rwi=0"} {
		err = h.Process("psfile=", strings.NewReader(spec))
		if err != nil {
			t.Fatal(err)
		}
	}
	if n := len(pageElements(pc)); n != 0 {
		t.Errorf("got %d elements, want 0", n)
	}
}
