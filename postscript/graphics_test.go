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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type call struct {
	Name string
	Args []float64
}

// record registers callbacks for the given operator names which append
// all calls to the returned list.
func record(intp *Interpreter, names ...string) *[]call {
	calls := &[]call{}
	for _, name := range names {
		name := name
		intp.Register(name, -1, func(args []float64) error {
			*calls = append(*calls, call{name, append([]float64(nil), args...)})
			return nil
		})
	}
	return calls
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func checkCalls(t *testing.T, code string, names []string, want []call) *Interpreter {
	t.Helper()
	intp := NewInterpreter()
	calls := record(intp, names...)
	err := intp.ExecuteString(code)
	if err != nil {
		t.Fatalf("%s: %v", code, err)
	}
	if d := cmp.Diff(want, *calls, approx, cmpopts.EquateEmpty()); d != "" {
		t.Errorf("%s: %s", code, d)
	}
	return intp
}

var pathOps = []string{"moveto", "lineto", "curveto", "closepath", "newpath", "stroke", "fill", "eofill", "clip"}

func TestPathCallbacks(t *testing.T) {
	checkCalls(t, "10 20 moveto 5 0 rlineto 0 5 rlineto closepath stroke", pathOps, []call{
		{"newpath", []float64{0}},
		{"moveto", []float64{10, 20}},
		{"lineto", []float64{15, 20}},
		{"lineto", []float64{15, 25}},
		{"closepath", nil},
		{"stroke", nil},
	})
}

func TestRelativeUserSpace(t *testing.T) {
	names := append([]string{"scale"}, pathOps...)
	checkCalls(t, "2 2 scale 1 1 moveto 1 0 rlineto 1 1 1 1 1 1 rcurveto fill", names, []call{
		{"scale", []float64{2, 2}},
		{"newpath", []float64{0}},
		{"moveto", []float64{1, 1}},
		{"lineto", []float64{2, 1}},
		{"curveto", []float64{3, 2, 3, 2, 3, 2}},
		{"fill", nil},
	})
}

func TestPathSurvivesGrestore(t *testing.T) {
	code := "0 0 moveto 10 0 lineto gsave fill grestore stroke"
	checkCalls(t, code, pathOps, []call{
		{"newpath", []float64{0}},
		{"moveto", []float64{0, 0}},
		{"lineto", []float64{10, 0}},
		{"fill", nil},
		{"newpath", []float64{0}},
		{"moveto", []float64{0, 0}},
		{"lineto", []float64{10, 0}},
		{"stroke", nil},
	})
}

// Path points are fixed when they are added.  At paint time they are
// reported in the user space of the CTM in effect then.
func TestPathFixedInDeviceSpace(t *testing.T) {
	names := append([]string{"setmatrix"}, pathOps...)
	checkCalls(t, "10 0 moveto 2 2 scale 10 0 lineto 0.5 0.5 scale stroke", names, []call{
		{"newpath", []float64{0}},
		{"moveto", []float64{10, 0}},
		{"lineto", []float64{20, 0}},
		{"stroke", nil},
	})
	checkCalls(t, "0 0 moveto 10 0 lineto 2 2 scale stroke", pathOps, []call{
		{"newpath", []float64{0}},
		{"moveto", []float64{0, 0}},
		{"lineto", []float64{5, 0}},
		{"stroke", nil},
	})
}

func TestStrokeParams(t *testing.T) {
	checkCalls(t, "2 setlinewidth 3 3 scale 0 0 moveto 1 0 lineto stroke",
		[]string{"applyscalevals", "setlinewidth", "stroke"},
		[]call{
			{"applyscalevals", []float64{1, 1, 1}},
			{"setlinewidth", []float64{2}},
			{"applyscalevals", []float64{3, 3, 1}},
			{"setlinewidth", []float64{2}},
			{"stroke", nil},
		})
}

func TestRectfillKeepsPath(t *testing.T) {
	checkCalls(t, "0 0 moveto 5 5 lineto 1 1 2 2 rectfill stroke",
		[]string{"moveto", "lineto", "fill", "stroke"},
		[]call{
			{"moveto", []float64{1, 1}},
			{"lineto", []float64{3, 1}},
			{"lineto", []float64{3, 3}},
			{"lineto", []float64{1, 3}},
			{"fill", nil},
			{"moveto", []float64{0, 0}},
			{"lineto", []float64{5, 5}},
			{"stroke", nil},
		})
}

func TestNoCurrentPointAfterStroke(t *testing.T) {
	intp := NewInterpreter()
	err := intp.ExecuteString("0 0 moveto 1 1 lineto stroke 1 0 rlineto")
	if name, _ := ErrorName(err); name != eNocurrentpoint {
		t.Errorf("got %v", err)
	}
}

func TestCurrentpoint(t *testing.T) {
	intp, err := run("10 10 translate 1 2 moveto currentpoint", 2)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]Object{Real(1), Real(2)}, intp.Stack, approx); d != "" {
		t.Error(d)
	}
}

func TestQuerypos(t *testing.T) {
	checkCalls(t, "querypos 2 0 translate 1 1 moveto querypos", []string{"querypos"}, []call{
		{"querypos", []float64{3, 1}},
	})
}

func TestArc(t *testing.T) {
	k := 4.0 / 3.0 * math.Tan(math.Pi/8)
	checkCalls(t, "0 0 1 0 90 arc stroke", pathOps, []call{
		{"newpath", []float64{0}},
		{"moveto", []float64{1, 0}},
		{"curveto", []float64{1, k, k, 1, 0, 1}},
		{"stroke", nil},
	})
	checkCalls(t, "0 0 moveto 0 0 2 0 360 arc fill", []string{"lineto", "curveto"}, []call{
		{"lineto", []float64{2, 0}},
		{"curveto", []float64{2, 2 * k, 2 * k, 2, 0, 2}},
		{"curveto", []float64{-2 * k, 2, -2, 2 * k, -2, 0}},
		{"curveto", []float64{-2, -2 * k, -2 * k, -2, 0, -2}},
		{"curveto", []float64{2 * k, -2, 2, -2 * k, 2, 0}},
	})
}

func TestGrestoreResync(t *testing.T) {
	checkCalls(t, "gsave 3 setlinewidth 1 setlinecap grestore",
		[]string{"gsave", "grestore", "setlinewidth", "setlinecap"},
		[]call{
			{"gsave", nil},
			{"setlinewidth", []float64{3}},
			{"setlinecap", []float64{1}},
			{"grestore", nil},
			{"setlinewidth", []float64{1}},
			{"setlinecap", []float64{0}},
		})
}

func TestGrestoreMatrix(t *testing.T) {
	checkCalls(t, "gsave 2 3 scale grestore", []string{"scale", "setmatrix"}, []call{
		{"scale", []float64{2, 3}},
		{"setmatrix", []float64{1, 0, 0, 1, 0, 0}},
	})
}

func TestSaveRestore(t *testing.T) {
	checkCalls(t, "save gsave save restore grestore restore",
		[]string{"save", "restore", "gsave", "grestore"},
		[]call{
			{"save", []float64{1}},
			{"gsave", nil},
			{"save", []float64{2}},
			{"restore", []float64{2}},
			{"grestore", nil},
			{"restore", []float64{1}},
		})

	intp := NewInterpreter()
	err := intp.ExecuteString("save save exch restore restore")
	if name, _ := ErrorName(err); name != eInvalidrestore {
		t.Errorf("got %v, expected invalidrestore", err)
	}
}

func TestGrestoreKeepsSave(t *testing.T) {
	intp := NewInterpreter()
	calls := record(intp, "setlinewidth")
	err := intp.ExecuteString("2 setlinewidth save 5 setlinewidth grestore grestore restore")
	if err != nil {
		t.Fatal(err)
	}
	want := []call{
		{"setlinewidth", []float64{2}},
		{"setlinewidth", []float64{5}},
		{"setlinewidth", []float64{2}},
		{"setlinewidth", []float64{2}},
		{"setlinewidth", []float64{2}},
	}
	if d := cmp.Diff(want, *calls); d != "" {
		t.Error(d)
	}
}

func TestRectclip(t *testing.T) {
	checkCalls(t, "0 0 10 20 rectclip", pathOps, []call{
		{"newpath", []float64{0}},
		{"moveto", []float64{0, 0}},
		{"lineto", []float64{10, 0}},
		{"lineto", []float64{10, 20}},
		{"lineto", []float64{0, 20}},
		{"closepath", nil},
		{"clip", nil},
		{"newpath", []float64{0}},
	})
}

func TestSetdash(t *testing.T) {
	checkCalls(t, "2 3 scale [2 1] 0.5 setdash []0 setdash",
		[]string{"applyscalevals", "setdash"},
		[]call{
			{"applyscalevals", []float64{2, 3, 1}},
			{"setdash", []float64{2, 1, 0.5}},
			{"applyscalevals", []float64{2, 3, 1}},
			{"setdash", []float64{0}},
		})
}

func TestColors(t *testing.T) {
	checkCalls(t, "0.5 setgray 1 0 0 setrgbcolor 0 0 0 1 setcmykcolor 2 setgray /DeviceRGB setcolorspace 0 1 0 setcolor",
		[]string{"setgray", "setrgbcolor", "setcmykcolor"},
		[]call{
			{"setgray", []float64{0.5}},
			{"setrgbcolor", []float64{1, 0, 0}},
			{"setcmykcolor", []float64{0, 0, 0, 1}},
			{"setgray", []float64{1}},
			{"setrgbcolor", []float64{0, 0, 0}},
			{"setrgbcolor", []float64{0, 1, 0}},
		})
}

func TestTransparency(t *testing.T) {
	checkCalls(t, ".5 .setfillconstantalpha /Multiply .setblendmode true .setalphaisshape .25 .setopacityalpha",
		[]string{"setfillconstantalpha", "setblendmode", "setalphaisshape", "setopacityalpha"},
		[]call{
			{"setfillconstantalpha", []float64{0.5}},
			{"setblendmode", []float64{1}},
			{"setalphaisshape", []float64{1}},
			{"setopacityalpha", []float64{0.25}},
		})

	intp := NewInterpreter()
	err := intp.ExecuteString("/NoSuchMode .setblendmode")
	if name, _ := ErrorName(err); name != eUndefined {
		t.Errorf("got %v", err)
	}
}

func TestNulldevice(t *testing.T) {
	checkCalls(t, "gsave nulldevice grestore", []string{"setnulldevice"}, []call{
		{"setnulldevice", []float64{1}},
		{"setnulldevice", []float64{0}},
	})
}

const coloredPattern = `
<< /PatternType 1 /PaintType 1 /TilingType 1
   /BBox [0 0 10 10] /XStep 10 /YStep 10
   /PaintProc { pop 0 0 moveto 5 5 lineto stroke }
>> matrix makepattern
`

func TestMakepattern(t *testing.T) {
	intp := checkCalls(t, coloredPattern+"dup setpattern",
		[]string{"makepattern", "moveto", "lineto", "stroke", "setpattern", "setmatrix"},
		[]call{
			{"makepattern", []float64{1, 1, 0, 0, 10, 10, 10, 10, 1, 1, 0, 0, 1, 0, 0}},
			{"setmatrix", []float64{1, 0, 0, 1, 0, 0}},
			{"moveto", []float64{0, 0}},
			{"lineto", []float64{5, 5}},
			{"stroke", nil},
			{"setmatrix", []float64{1, 0, 0, 1, 0, 0}},
			{"makepattern", []float64{0}},
			{"setpattern", []float64{1}},
		})
	if len(intp.Stack) != 1 {
		t.Fatalf("stack length %d", len(intp.Stack))
	}
	inst := intp.Stack[0].(Dict)
	if inst["Implementation"] != Integer(1) {
		t.Errorf("Implementation = %v", inst["Implementation"])
	}
}

func TestUncoloredPattern(t *testing.T) {
	code := `
/pat << /PatternType 1 /PaintType 2 /TilingType 1
   /BBox [0 0 4 4] /XStep 4 /YStep 4 /PaintProc { pop }
>> matrix makepattern def
0 1 0 setrgbcolor
1 0 0 pat setpattern
[/Pattern /DeviceGray] setcolorspace 0.5 pat setcolor
gsave 0 setgray grestore
`
	checkCalls(t, code, []string{"setpattern"}, []call{
		{"setpattern", []float64{1, 1, 0, 0}},
		{"setpattern", []float64{1, 0.5, 0.5, 0.5}},
		{"setpattern", []float64{1, 0.5, 0.5, 0.5}},
	})
}

func TestShfill(t *testing.T) {
	code := `
<< /ShadingType 4 /ColorSpace /DeviceGray /Background [0.5]
   /DataSource [0 0 0 0  0 1 0 1  0 0 1 1]
>> shfill
<< /ShadingType 5 /ColorSpace [/DeviceRGB] /BBox [0 0 1 1] /VerticesPerRow 2
   /DataSource [0 0 1 0 0  1 0 0 1 0  0 1 0 0 1  1 1 1 1 1]
>> shfill
<< /ShadingType 2 /ColorSpace /DeviceGray /Coords [0 0 1 1] >> shfill
`
	checkCalls(t, code, []string{"shfill"}, []call{
		{"shfill", []float64{4, 1, 1, 0.5, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 0, 1, 1}},
		{"shfill", []float64{5, 3, 0, 1, 0, 0, 1, 1, 2,
			0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 1, 1, 1, 1, 1}},
	})
}

func TestTransformOperators(t *testing.T) {
	intp, err := run("2 4 scale 1 1 transform 2 4 itransform 1 1 dtransform 1 1 [1 0 0 1 5 5] transform", 8)
	if err != nil {
		t.Fatal(err)
	}
	want := []Object{Real(2), Real(4), Real(1), Real(1), Real(2), Real(4), Real(6), Real(6)}
	if d := cmp.Diff(want, intp.Stack, approx); d != "" {
		t.Error(d)
	}

	intp, err = run("3 matrix scale", 0)
	if name, _ := ErrorName(err); name != eStackunderflow {
		t.Errorf("got %v", err)
	}
	intp, err = run("1 2 matrix translate", 1)
	if err != nil {
		t.Fatal(err)
	}
	want = []Object{Array{Real(1), Real(0), Real(0), Real(1), Real(1), Real(2)}}
	if d := cmp.Diff(want, intp.Stack); d != "" {
		t.Error(d)
	}
}

type imageRecorder map[int]image.Image

func (r imageRecorder) WriteImage(id int, img image.Image) error {
	r[id] = img
	return nil
}

func TestImage(t *testing.T) {
	intp := NewInterpreter()
	sink := imageRecorder{}
	intp.Images = sink
	calls := record(intp, "image", "setmatrix")
	code := `
2 1 8 [2 0 0 -1 0 1] <00ff> image
2 2 8 [2 0 0 -2 0 2] {currentfile 2 string readhexstring pop} image
00ff
8040
1 1 8 [1 0 0 1 0 0] <ff0000> false 3 colorimage
`
	err := intp.ExecuteString(code)
	if err != nil {
		t.Fatal(err)
	}
	want := []call{
		{"image", []float64{1, 2, 1}},
		{"image", []float64{2, 2, 2}},
		{"setmatrix", []float64{1, 0, 0, -1, 0, 1}},
		{"image", []float64{3, 1, 1}},
		{"setmatrix", []float64{1, 0, 0, 1, 0, 0}},
	}
	if d := cmp.Diff(want, *calls, approx); d != "" {
		t.Error(d)
	}

	if d := cmp.Diff([]byte{0, 255}, sink[1].(*image.Gray).Pix); d != "" {
		t.Error(d)
	}
	if d := cmp.Diff([]byte{0, 255, 128, 64}, sink[2].(*image.Gray).Pix); d != "" {
		t.Error(d)
	}
	if d := cmp.Diff([]byte{255, 0, 0, 255}, sink[3].(*image.NRGBA).Pix); d != "" {
		t.Error(d)
	}
}

func TestImageOneBit(t *testing.T) {
	intp := NewInterpreter()
	sink := imageRecorder{}
	intp.Images = sink
	err := intp.ExecuteString("4 1 1 [4 0 0 -1 0 1] <a0> image")
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]byte{255, 0, 255, 0}, sink[1].(*image.Gray).Pix); d != "" {
		t.Error(d)
	}
}

func TestImageWithoutSink(t *testing.T) {
	checkCalls(t, "1 1 8 [1 0 0 -1 0 1] <00> image", []string{"image"}, []call{
		{"image", []float64{-1, 1, 1}},
	})
}

func TestSetpagedevice(t *testing.T) {
	checkCalls(t, "3 setlinewidth 2 2 scale << >> setpagedevice currentlinewidth pop",
		[]string{"setpagedevice", "setmatrix"},
		[]call{
			{"setpagedevice", nil},
			{"setmatrix", []float64{1, 0, 0, 1, 0, 0}},
		})
}

func TestCallbackArity(t *testing.T) {
	intp := NewInterpreter()
	intp.Register("moveto", 3, func(args []float64) error { return nil })
	err := intp.ExecuteString("1 2 moveto fill")
	if name, _ := ErrorName(err); name != eStackunderflow {
		t.Errorf("got %v", err)
	}
}
