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
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArray(t *testing.T) {
	intp := NewInterpreter()
	err := intp.ExecuteString("[ 1 2 3 ]")
	if err != nil {
		t.Fatal(err)
	}
	if len(intp.Stack) != 1 {
		t.Fatal("len(intp.Stack) != 1")
	}
	if d := cmp.Diff(intp.Stack[0], Array{Integer(1), Integer(2), Integer(3)}); d != "" {
		t.Fatal(d)
	}
}

func TestRun(t *testing.T) {
	files := map[string]string{
		"a.ps": "1 (b.ps) run 3",
		"b.ps": "2",
	}
	intp := NewInterpreter()
	intp.OpenFile = func(name string) (io.ReadCloser, error) {
		body, ok := files[name]
		if !ok {
			return nil, os.ErrNotExist
		}
		return io.NopCloser(strings.NewReader(body)), nil
	}
	err := intp.ExecuteFile("a.ps")
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]Object{Integer(1), Integer(2), Integer(3)}, intp.Stack); d != "" {
		t.Error(d)
	}

	err = intp.ExecuteString("(missing.ps) run")
	if name, _ := ErrorName(err); name != eUndefinedfilename {
		t.Errorf("got %v", err)
	}
}

func TestCheckStart(t *testing.T) {
	intp := NewInterpreter()
	intp.CheckStart = true
	if err := intp.ExecuteString("1 2 add"); err == nil {
		t.Error("missing %! header not detected")
	}

	intp = NewInterpreter()
	intp.CheckStart = true
	if err := intp.ExecuteString("%!PS\n1 2 add"); err != nil {
		t.Error(err)
	}
}

func TestRecursionLimit(t *testing.T) {
	intp := NewInterpreter()
	err := intp.ExecuteString("/f { f } def f")
	if name, _ := ErrorName(err); name != eLimitcheck {
		t.Errorf("got %v", err)
	}
}

func TestLookup(t *testing.T) {
	intp := NewInterpreter()
	err := intp.ExecuteString("/TeXDict 10 dict def")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := intp.Lookup("TeXDict"); !ok {
		t.Error("TeXDict not found")
	}
	if _, ok := intp.Lookup("end-hook"); ok {
		t.Error("unexpected end-hook")
	}
}
