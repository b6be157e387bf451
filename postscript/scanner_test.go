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
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScanToken(t *testing.T) {
	in := `
	% this is a comment
	123
	-9
	1e6
	-1.
	2#1000
	16#FF
	(ABC)
	ABC
	/ABC
	23A
	23E1
	23#1
	[ }
	`
	exp := []Object{
		Integer(123),
		Integer(-9),
		Real(1e6),
		Real(-1),
		Integer(0b1000),
		Integer(0xFF),
		String("ABC"),
		Operator("ABC"),
		Name("ABC"),
		Operator("23A"),
		Real(23e1),
		Integer(1),
		Operator("["),
		Operator("}"),
	}
	s := NewScanner(strings.NewReader(in))
	var oo []Object
	for {
		o, err := s.ScanToken()
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
		oo = append(oo, o)
	}
	if d := cmp.Diff(exp, oo); d != "" {
		t.Errorf("unexpected objects: %s", d)
	}
}

func TestImmediateName(t *testing.T) {
	s := NewScanner(strings.NewReader("//add"))
	o, err := s.ScanToken()
	if err != nil {
		t.Fatal(err)
	}
	if o != immediateName("add") {
		t.Errorf("got %v (%T)", o, o)
	}
}

func TestReadString(t *testing.T) {
	exp := "A(BC))\n\r\t\b\f\\DE\n%*!&}^"
	r := strings.NewReader(`(A(BC)\)\
\n\r\t\b\f\\\D\105
%*!&}^)`)
	s := NewScanner(r)
	o, err := s.ReadString()
	if err != nil {
		t.Fatal(err)
	}
	if string(o) != exp {
		t.Errorf("expected %q, got %q", exp, o)
	}
}

func TestReadStringNewlines(t *testing.T) {
	for _, nl := range []string{"\n", "\r", "\r\n"} {
		r := strings.NewReader("(A\\" + nl + "B" + nl + "C)")
		s := NewScanner(r)
		o, err := s.ReadString()
		if err != nil {
			t.Fatal(err)
		}
		if string(o) != "AB\nC" {
			t.Errorf("expected %q, got %q", "AB\nC", o)
		}
	}
}

func TestReadStringOctal(t *testing.T) {
	exp := string([]byte{1, 2, 3, 0, '4', 0o377})
	r := strings.NewReader(`(\1\02\003\0004\777)`)
	s := NewScanner(r)
	o, err := s.ReadString()
	if err != nil {
		t.Fatal(err)
	}
	if string(o) != exp {
		t.Errorf("expected %q, got %q", exp, o)
	}
}

func TestReadHexString(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"<901fa>", "\x90\x1f\xa0"},
		{"<>", ""},
		{"<41 42\n43>", "ABC"},
	}
	for _, c := range cases {
		s := NewScanner(strings.NewReader(c.in))
		o, err := s.ReadHexString()
		if err != nil {
			t.Fatal(err)
		}
		if string(o) != c.out {
			t.Errorf("%q: expected %q, got %q", c.in, c.out, o)
		}
	}
}

func TestReadBase85String(t *testing.T) {
	in := `<~z!<N?+"T~>`
	out := String([]byte{0, 0, 0, 0, 1, 2, 3, 4, 5})
	s := NewScanner(strings.NewReader(in))
	o, err := s.ReadBase85String()
	if err != nil {
		t.Fatal(err)
	}
	if string(o) != string(out) {
		t.Errorf("expected %q, got %q", out, o)
	}
}

func TestLineCol(t *testing.T) {
	r := strings.NewReader("1\n12\r123\r\n\n1\n")
	s := NewScanner(r)
	for {
		b, err := s.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
		switch b {
		case '1', '2', '3':
			if s.Col != int(b-'0') {
				t.Errorf("%q: expected col %d, got %d", b, b-'0', s.Col)
			}
		}
	}
	if s.Line != 5 {
		t.Errorf("expected line 5, got %d", s.Line)
	}
}

func TestDSC(t *testing.T) {
	in := "%!PS-Adobe-3.0 EPSF-3.0\n%%BoundingBox: 0 0 10 20\n%%EndComments\n1 2 add\n"
	intp := NewInterpreter()
	err := intp.ExecuteString(in)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, c := range intp.DSC {
		if c.Key == "BoundingBox" {
			found = true
			if c.Value != "0 0 10 20" {
				t.Errorf("wrong BoundingBox value %q", c.Value)
			}
		}
	}
	if !found {
		t.Error("BoundingBox comment not found")
	}
}
