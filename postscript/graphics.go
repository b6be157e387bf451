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
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// graphicsState holds the part of the PostScript graphics state which is
// needed to convert operands and to replay the state after grestore.
type graphicsState struct {
	ctm        matrix.Matrix
	lineWidth  float64
	lineCap    int
	lineJoin   int
	miterLimit float64
	dash       []float64
	dashOffset float64

	colorOp    string // setgray, setrgbcolor, setcmykcolor or sethsbcolor
	color      []float64
	space      Name // current color space family
	baseComps  int  // components of the underlying space of a Pattern space
	pattern    Dict
	patternRGB []float64

	fillAlpha    float64
	strokeAlpha  float64
	shapeAlpha   float64
	alphaIsShape bool
	blendMode    int

	path       []segment
	cp, start  vec.Vec2 // device space
	hasCP      bool
	nullDevice bool

	// isSave marks states pushed by save.  grestore does not pop them.
	isSave bool
}

// segment is an element of the current path.  The points are stored in
// device space, so that later changes of the CTM do not affect them.
type segment struct {
	op  string // moveto, lineto, curveto or closepath
	pts []vec.Vec2
}

func newGraphicsState(ctm matrix.Matrix) *graphicsState {
	return &graphicsState{
		ctm:         ctm,
		lineWidth:   1,
		miterLimit:  10,
		colorOp:     "setgray",
		color:       []float64{0},
		space:       "DeviceGray",
		fillAlpha:   1,
		strokeAlpha: 1,
		shapeAlpha:  1,
	}
}

func (gs *graphicsState) clone() *graphicsState {
	res := *gs
	res.path = append([]segment(nil), gs.path...)
	res.dash = append([]float64(nil), gs.dash...)
	res.color = append([]float64(nil), gs.color...)
	res.patternRGB = append([]float64(nil), gs.patternRGB...)
	res.isSave = false
	return &res
}

func addGraphicsOperators(d Dict) {
	ops := map[Name]builtin{
		"arc":              bArc,
		"arcn":             bArcn,
		"clip":             paintOp("clip"),
		"clippath":         bClippath,
		"closepath":        bClosepath,
		"colorimage":       bColorimage,
		"concat":           bConcat,
		"currentlinewidth": bCurrentlinewidth,
		"currentmatrix":    bCurrentmatrix,
		"currentpoint":     bCurrentpoint,
		"curveto":          bCurveto,
		"dtransform":       transformOp("dtransform", false, false),
		"eoclip":           paintOp("eoclip"),
		"eofill":           paintOp("eofill"),
		"fill":             paintOp("fill"),
		"grestore":         bGrestore,
		"grestoreall":      bGrestoreall,
		"gsave":            bGsave,
		"identmatrix":      bIdentmatrix,
		"idtransform":      transformOp("idtransform", false, true),
		"image":            bImage,
		"initclip":         bInitclip,
		"initgraphics":     bInitgraphics,
		"initmatrix":       bInitmatrix,
		"itransform":       transformOp("itransform", true, true),
		"lineto":           bLineto,
		"makepattern":      bMakepattern,
		"matrix":           bMatrix,
		"moveto":           bMoveto,
		"newpath":          bNewpath,
		"nulldevice":       bNulldevice,
		"querypos":         bQuerypos,
		"rcurveto":         bRcurveto,
		"rectclip":         rectOp("clip"),
		"rectfill":         rectOp("fill"),
		"rectstroke":       rectOp("stroke"),
		"restore":          bRestore,
		"rlineto":          bRlineto,
		"rmoveto":          bRmoveto,
		"rotate":           bRotate,
		"run":              bRun,
		"save":             bSave,
		"scale":            bScale,
		"setcmykcolor":     colorOp("setcmykcolor", 4),
		"setcolor":         bSetcolor,
		"setcolorspace":    bSetcolorspace,
		"setdash":          bSetdash,
		"setgray":          colorOp("setgray", 1),
		"sethsbcolor":      colorOp("sethsbcolor", 3),
		"setlinecap":       bSetlinecap,
		"setlinejoin":      bSetlinejoin,
		"setlinewidth":     bSetlinewidth,
		"setmatrix":        bSetmatrix,
		"setmiterlimit":    bSetmiterlimit,
		"setpagedevice":    bSetpagedevice,
		"setpattern":       bSetpattern,
		"setrgbcolor":      colorOp("setrgbcolor", 3),
		"shfill":           bShfill,
		"showpage":         bNoop,
		"stroke":           paintOp("stroke"),
		"transform":        transformOp("transform", true, false),
		"translate":        bTranslate,

		".setalphaisshape":        bSetalphaisshape,
		".setblendmode":           bSetblendmode,
		".setfillconstantalpha":   alphaOp(".setfillconstantalpha"),
		".setopacityalpha":        alphaOp(".setopacityalpha"),
		".setshapealpha":          alphaOp(".setshapealpha"),
		".setstrokeconstantalpha": alphaOp(".setstrokeconstantalpha"),
	}
	for name, op := range ops {
		d[name] = op
	}
}

// toDevice maps the user space point (x, y) to device space.
func toDevice(m matrix.Matrix, x, y float64) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*x + m[2]*y + m[4],
		Y: m[1]*x + m[3]*y + m[5],
	}
}

// invert returns the inverse of m.  The second return value is false if m
// is singular.
func invert(m matrix.Matrix) (matrix.Matrix, bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-12 {
		return matrix.Matrix{}, false
	}
	a := m[3] / det
	b := -m[1] / det
	c := -m[2] / det
	d := m[0] / det
	return matrix.Matrix{a, b, c, d, -a*m[4] - c*m[5], -b*m[4] - d*m[5]}, true
}

// userPoint returns the current point in user space.
func (intp *Interpreter) userPoint(op string) (vec.Vec2, error) {
	gs := intp.gs
	if !gs.hasCP {
		return vec.Vec2{}, intp.e(eNocurrentpoint, "%s", op)
	}
	inv, ok := invert(gs.ctm)
	if !ok {
		return vec.Vec2{}, intp.e(eUndefinedresult, "%s: singular matrix", op)
	}
	return toDevice(inv, gs.cp.X, gs.cp.Y), nil
}

func (intp *Interpreter) popMatrix(op string) (matrix.Matrix, error) {
	if len(intp.Stack) < 1 {
		return matrix.Matrix{}, intp.e(eStackunderflow, "%s: not enough arguments", op)
	}
	m, err := intp.toMatrix(op, intp.Stack[len(intp.Stack)-1])
	if err != nil {
		return m, err
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	return m, nil
}

func (intp *Interpreter) toMatrix(op string, obj Object) (matrix.Matrix, error) {
	var m matrix.Matrix
	a, ok := obj.(Array)
	if !ok || len(a) != 6 {
		return m, intp.e(eTypecheck, "%s: needs a matrix", op)
	}
	for i, x := range a {
		v, ok := toFloat(x)
		if !ok {
			return m, intp.e(eTypecheck, "%s: invalid matrix entry %T", op, x)
		}
		m[i] = v
	}
	return m, nil
}

func (intp *Interpreter) notifyMatrix(m matrix.Matrix) error {
	return intp.notify("setmatrix", m[:]...)
}

func bGsave(intp *Interpreter) error {
	intp.gsStack = append(intp.gsStack, intp.gs.clone())
	return intp.notify("gsave")
}

func bGrestore(intp *Interpreter) error {
	old := intp.gs
	if n := len(intp.gsStack); n > 0 {
		top := intp.gsStack[n-1]
		intp.gs = top.clone()
		if !top.isSave {
			intp.gsStack = intp.gsStack[:n-1]
		}
	}
	if err := intp.notify("grestore"); err != nil {
		return err
	}
	return intp.resync(old)
}

func bGrestoreall(intp *Interpreter) error {
	old := intp.gs
	for n := len(intp.gsStack); n > 0; n-- {
		top := intp.gsStack[n-1]
		intp.gs = top.clone()
		if top.isSave {
			break
		}
		intp.gsStack = intp.gsStack[:n-1]
	}
	if err := intp.notify("grestoreall"); err != nil {
		return err
	}
	return intp.resync(old)
}

func bSave(intp *Interpreter) error {
	saved := intp.gs.clone()
	saved.isSave = true
	intp.gsStack = append(intp.gsStack, saved)
	intp.saveLevel++
	obj := &SaveObject{Level: intp.saveLevel, depth: len(intp.gsStack)}
	intp.Stack = append(intp.Stack, obj)
	return intp.notify("save", float64(obj.Level))
}

// bRestore restores the graphics state saved by the corresponding save.
// The contents of virtual memory are not restored.
func bRestore(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "restore: not enough arguments")
	}
	obj, ok := intp.Stack[len(intp.Stack)-1].(*SaveObject)
	if !ok {
		return intp.e(eTypecheck, "restore: needs a save object")
	}
	if obj.depth < 1 || obj.depth > len(intp.gsStack) || !intp.gsStack[obj.depth-1].isSave {
		return intp.e(eInvalidrestore, "restore: save level %d", obj.Level)
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-1]

	old := intp.gs
	intp.gs = intp.gsStack[obj.depth-1].clone()
	intp.gsStack = intp.gsStack[:obj.depth-1]
	intp.saveLevel = obj.Level - 1
	if err := intp.notify("restore", float64(obj.Level)); err != nil {
		return err
	}
	return intp.resync(old)
}

// resync reports the current graphics state after it has been replaced by
// grestore or restore.
func (intp *Interpreter) resync(old *graphicsState) error {
	gs := intp.gs
	sx, sy, cos := scaleValues(gs.ctm)
	calls := []struct {
		name string
		args []float64
	}{
		{"setmatrix", gs.ctm[:]},
		{"applyscalevals", []float64{sx, sy, cos}},
		{"setlinewidth", []float64{gs.lineWidth}},
		{"setlinecap", []float64{float64(gs.lineCap)}},
		{"setlinejoin", []float64{float64(gs.lineJoin)}},
		{"setmiterlimit", []float64{gs.miterLimit}},
		{"setdash", append(append([]float64(nil), gs.dash...), gs.dashOffset)},
		{"setfillconstantalpha", []float64{gs.fillAlpha}},
		{"setstrokeconstantalpha", []float64{gs.strokeAlpha}},
		{"setshapealpha", []float64{gs.shapeAlpha}},
		{"setalphaisshape", []float64{boolToFloat(gs.alphaIsShape)}},
		{"setblendmode", []float64{float64(gs.blendMode)}},
		{gs.colorOp, gs.color},
	}
	for _, c := range calls {
		if err := intp.notify(c.name, c.args...); err != nil {
			return err
		}
	}
	if gs.pattern != nil {
		if err := intp.notifyPattern(gs.pattern, gs.patternRGB); err != nil {
			return err
		}
	}
	if old.nullDevice != gs.nullDevice {
		return intp.notify("setnulldevice", boolToFloat(gs.nullDevice))
	}
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// scaleValues returns the lengths of the unit vectors mapped by the linear
// part of m, together with the cosine of the rotation angle.
func scaleValues(m matrix.Matrix) (sx, sy, cos float64) {
	sx = math.Hypot(m[0], m[1])
	sy = math.Hypot(m[2], m[3])
	cos = 1
	if sx != 0 {
		cos = m[0] / sx
	}
	return sx, sy, cos
}

func (intp *Interpreter) notifyScaleValues() error {
	sx, sy, cos := scaleValues(intp.gs.ctm)
	return intp.notify("applyscalevals", sx, sy, cos)
}

func bInitgraphics(intp *Interpreter) error {
	old := intp.gs
	intp.gs = newGraphicsState(intp.DefaultMatrix)
	intp.gs.nullDevice = old.nullDevice
	if err := intp.notify("initclip"); err != nil {
		return err
	}
	if err := intp.notify("newpath", 1); err != nil {
		return err
	}
	return intp.resync(old)
}

func bSetpagedevice(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "setpagedevice: not enough arguments")
	}
	if _, ok := intp.Stack[len(intp.Stack)-1].(Dict); !ok {
		return intp.e(eTypecheck, "setpagedevice: needs a dictionary")
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	intp.gs = newGraphicsState(intp.DefaultMatrix)
	if err := intp.notify("setpagedevice"); err != nil {
		return err
	}
	return intp.notifyMatrix(intp.gs.ctm)
}

func bNulldevice(intp *Interpreter) error {
	intp.gs.nullDevice = true
	return intp.notify("setnulldevice", 1)
}

// path construction

func bMoveto(intp *Interpreter) error {
	args, err := intp.popNumbers("moveto", 2)
	if err != nil {
		return err
	}
	return intp.moveTo(args[0], args[1])
}

func bRmoveto(intp *Interpreter) error {
	p, err := intp.userPoint("rmoveto")
	if err != nil {
		return err
	}
	args, err := intp.popNumbers("rmoveto", 2)
	if err != nil {
		return err
	}
	return intp.moveTo(p.X+args[0], p.Y+args[1])
}

func (intp *Interpreter) moveTo(x, y float64) error {
	gs := intp.gs
	gs.cp = toDevice(gs.ctm, x, y)
	gs.start = gs.cp
	gs.hasCP = true
	seg := segment{op: "moveto", pts: []vec.Vec2{gs.cp}}
	if n := len(gs.path); n > 0 && gs.path[n-1].op == "moveto" {
		gs.path[n-1] = seg
	} else {
		gs.path = append(gs.path, seg)
	}
	return nil
}

func bLineto(intp *Interpreter) error {
	if !intp.gs.hasCP {
		return intp.e(eNocurrentpoint, "lineto")
	}
	args, err := intp.popNumbers("lineto", 2)
	if err != nil {
		return err
	}
	return intp.lineTo(args[0], args[1])
}

func bRlineto(intp *Interpreter) error {
	p, err := intp.userPoint("rlineto")
	if err != nil {
		return err
	}
	args, err := intp.popNumbers("rlineto", 2)
	if err != nil {
		return err
	}
	return intp.lineTo(p.X+args[0], p.Y+args[1])
}

func (intp *Interpreter) lineTo(x, y float64) error {
	gs := intp.gs
	gs.cp = toDevice(gs.ctm, x, y)
	gs.path = append(gs.path, segment{op: "lineto", pts: []vec.Vec2{gs.cp}})
	return nil
}

func bCurveto(intp *Interpreter) error {
	if !intp.gs.hasCP {
		return intp.e(eNocurrentpoint, "curveto")
	}
	args, err := intp.popNumbers("curveto", 6)
	if err != nil {
		return err
	}
	return intp.curveTo(args)
}

func bRcurveto(intp *Interpreter) error {
	p, err := intp.userPoint("rcurveto")
	if err != nil {
		return err
	}
	args, err := intp.popNumbers("rcurveto", 6)
	if err != nil {
		return err
	}
	for i := 0; i < 6; i += 2 {
		args[i] += p.X
		args[i+1] += p.Y
	}
	return intp.curveTo(args)
}

func (intp *Interpreter) curveTo(args []float64) error {
	gs := intp.gs
	pts := make([]vec.Vec2, 3)
	for i := range pts {
		pts[i] = toDevice(gs.ctm, args[2*i], args[2*i+1])
	}
	gs.cp = pts[2]
	gs.path = append(gs.path, segment{op: "curveto", pts: pts})
	return nil
}

func bArc(intp *Interpreter) error {
	return intp.arc("arc", false)
}

func bArcn(intp *Interpreter) error {
	return intp.arc("arcn", true)
}

// arc appends a circular arc, approximated by Bézier curves spanning at
// most 90 degrees each.
func (intp *Interpreter) arc(op string, clockwise bool) error {
	args, err := intp.popNumbers(op, 5)
	if err != nil {
		return err
	}
	x, y, r := args[0], args[1], args[2]
	a1 := args[3] * math.Pi / 180
	a2 := args[4] * math.Pi / 180
	if clockwise {
		for a2 > a1 {
			a2 -= 2 * math.Pi
		}
	} else {
		for a2 < a1 {
			a2 += 2 * math.Pi
		}
	}

	px, py := x+r*math.Cos(a1), y+r*math.Sin(a1)
	if intp.gs.hasCP {
		err = intp.lineTo(px, py)
	} else {
		err = intp.moveTo(px, py)
	}
	if err != nil {
		return err
	}

	n := int(math.Ceil(math.Abs(a2-a1)/(math.Pi/2) - 1e-9))
	if n == 0 {
		return nil
	}
	delta := (a2 - a1) / float64(n)
	k := 4.0 / 3.0 * math.Tan(delta/4)
	for i := 0; i < n; i++ {
		phi0 := a1 + float64(i)*delta
		phi1 := phi0 + delta
		c0, s0 := math.Cos(phi0), math.Sin(phi0)
		c1, s1 := math.Cos(phi1), math.Sin(phi1)
		err := intp.curveTo([]float64{
			x + r*(c0-k*s0), y + r*(s0+k*c0),
			x + r*(c1+k*s1), y + r*(s1-k*c1),
			x + r*c1, y + r*s1,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func bClosepath(intp *Interpreter) error {
	gs := intp.gs
	if !gs.hasCP {
		return nil
	}
	gs.cp = gs.start
	if n := len(gs.path); n > 0 && gs.path[n-1].op != "closepath" {
		gs.path = append(gs.path, segment{op: "closepath"})
	}
	return nil
}

func bNewpath(intp *Interpreter) error {
	intp.gs.clearPath()
	return intp.notify("newpath", 1)
}

func (gs *graphicsState) clearPath() {
	gs.path = nil
	gs.hasCP = false
}

// reportPath passes the current path to the callbacks, as a newpath call
// followed by the path segments.  Like pathforall, the coordinates are
// given in the current user space.
func (intp *Interpreter) reportPath(op string) error {
	gs := intp.gs
	inv, ok := invert(gs.ctm)
	if !ok && len(gs.path) > 0 {
		return intp.e(eUndefinedresult, "%s: singular matrix", op)
	}
	if err := intp.notify("newpath", 0); err != nil {
		return err
	}
	for _, seg := range gs.path {
		args := make([]float64, 0, 2*len(seg.pts))
		for _, p := range seg.pts {
			u := toDevice(inv, p.X, p.Y)
			args = append(args, u.X, u.Y)
		}
		if err := intp.notify(seg.op, args...); err != nil {
			return err
		}
	}
	return nil
}

// notifyStrokeParams reports the line width and the dash pattern, which
// both depend on the CTM in effect when a path is stroked.
func (intp *Interpreter) notifyStrokeParams() error {
	gs := intp.gs
	if err := intp.notifyScaleValues(); err != nil {
		return err
	}
	if err := intp.notify("setlinewidth", gs.lineWidth); err != nil {
		return err
	}
	return intp.notify("setdash", append(append([]float64(nil), gs.dash...), gs.dashOffset)...)
}

func bCurrentpoint(intp *Interpreter) error {
	p, err := intp.userPoint("currentpoint")
	if err != nil {
		return err
	}
	intp.Stack = append(intp.Stack, Real(p.X), Real(p.Y))
	return nil
}

// bQuerypos reports the current point in device space, if there is one.
func bQuerypos(intp *Interpreter) error {
	gs := intp.gs
	if !gs.hasCP {
		return nil
	}
	return intp.notify("querypos", gs.cp.X, gs.cp.Y)
}

// paintOp returns the implementation of an operator which paints or clips
// using the current path.
func paintOp(name string) builtin {
	clears := name != "clip" && name != "eoclip"
	return func(intp *Interpreter) error {
		if name == "stroke" {
			if err := intp.notifyStrokeParams(); err != nil {
				return err
			}
		}
		if err := intp.reportPath(name); err != nil {
			return err
		}
		if clears {
			intp.gs.clearPath()
		}
		return intp.notify(name)
	}
}

// rectOp returns the implementation of rectclip, rectfill and rectstroke.
// rectfill and rectstroke leave the current path unchanged, rectclip
// clears it.
func rectOp(paint string) builtin {
	op := "rect" + paint
	return func(intp *Interpreter) error {
		args, err := intp.popNumbers(op, 4)
		if err != nil {
			return err
		}
		x, y, w, h := args[0], args[1], args[2], args[3]
		calls := []struct {
			name string
			args []float64
		}{
			{"newpath", []float64{0}},
			{"moveto", []float64{x, y}},
			{"lineto", []float64{x + w, y}},
			{"lineto", []float64{x + w, y + h}},
			{"lineto", []float64{x, y + h}},
			{"closepath", nil},
			{paint, nil},
			{"newpath", []float64{0}},
		}
		if paint != "clip" {
			calls = calls[:len(calls)-1]
		}
		if paint == "stroke" {
			if err := intp.notifyStrokeParams(); err != nil {
				return err
			}
		}
		for _, c := range calls {
			if err := intp.notify(c.name, c.args...); err != nil {
				return err
			}
		}
		if paint == "clip" {
			intp.gs.clearPath()
		}
		return nil
	}
}

func bInitclip(intp *Interpreter) error {
	return intp.notify("initclip")
}

// bClippath replaces the current path by the clipping path.  The clipping
// path itself is kept by the callbacks.
func bClippath(intp *Interpreter) error {
	intp.gs.path = nil
	return intp.notify("clippath")
}

// line attributes

func bSetlinewidth(intp *Interpreter) error {
	args, err := intp.popNumbers("setlinewidth", 1)
	if err != nil {
		return err
	}
	intp.gs.lineWidth = math.Abs(args[0])
	if err := intp.notifyScaleValues(); err != nil {
		return err
	}
	return intp.notify("setlinewidth", intp.gs.lineWidth)
}

func bCurrentlinewidth(intp *Interpreter) error {
	intp.Stack = append(intp.Stack, Real(intp.gs.lineWidth))
	return nil
}

func bSetlinecap(intp *Interpreter) error {
	v, err := intp.popStyle("setlinecap")
	if err != nil {
		return err
	}
	intp.gs.lineCap = v
	return intp.notify("setlinecap", float64(v))
}

func bSetlinejoin(intp *Interpreter) error {
	v, err := intp.popStyle("setlinejoin")
	if err != nil {
		return err
	}
	intp.gs.lineJoin = v
	return intp.notify("setlinejoin", float64(v))
}

// popStyle pops a line cap or line join value, which must be 0, 1 or 2.
func (intp *Interpreter) popStyle(op string) (int, error) {
	if len(intp.Stack) < 1 {
		return 0, intp.e(eStackunderflow, "%s: not enough arguments", op)
	}
	v, ok := intp.Stack[len(intp.Stack)-1].(Integer)
	if !ok {
		return 0, intp.e(eTypecheck, "%s: needs an integer", op)
	} else if v < 0 || v > 2 {
		return 0, intp.e(eRangecheck, "%s: invalid value %d", op, v)
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	return int(v), nil
}

func bSetmiterlimit(intp *Interpreter) error {
	args, err := intp.popNumbers("setmiterlimit", 1)
	if err != nil {
		return err
	}
	if args[0] < 1 {
		intp.Stack = append(intp.Stack, Real(args[0]))
		return intp.e(eRangecheck, "setmiterlimit: %g < 1", args[0])
	}
	intp.gs.miterLimit = args[0]
	return intp.notify("setmiterlimit", args[0])
}

func bSetdash(intp *Interpreter) error {
	if len(intp.Stack) < 2 {
		return intp.e(eStackunderflow, "setdash: not enough arguments")
	}
	a, ok := intp.Stack[len(intp.Stack)-2].(Array)
	if !ok {
		return intp.e(eTypecheck, "setdash: needs an array")
	}
	offset, ok := toFloat(intp.Stack[len(intp.Stack)-1])
	if !ok {
		return intp.e(eTypecheck, "setdash: invalid offset")
	}
	dash := make([]float64, len(a))
	allZero := true
	for i, obj := range a {
		x, ok := toFloat(obj)
		if !ok {
			return intp.e(eTypecheck, "setdash: invalid dash length %T", obj)
		} else if x < 0 {
			return intp.e(eRangecheck, "setdash: negative dash length")
		}
		if x != 0 {
			allZero = false
		}
		dash[i] = x
	}
	if len(dash) > 0 && allZero {
		return intp.e(eRangecheck, "setdash: all dash lengths are zero")
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-2]

	intp.gs.dash = dash
	intp.gs.dashOffset = offset
	if err := intp.notifyScaleValues(); err != nil {
		return err
	}
	return intp.notify("setdash", append(append([]float64(nil), dash...), offset)...)
}

// transparency extensions

func alphaOp(name string) builtin {
	return func(intp *Interpreter) error {
		args, err := intp.popNumbers(name, 1)
		if err != nil {
			return err
		}
		alpha := min(max(args[0], 0), 1)
		gs := intp.gs
		switch name {
		case ".setfillconstantalpha":
			gs.fillAlpha = alpha
		case ".setstrokeconstantalpha":
			gs.strokeAlpha = alpha
		case ".setshapealpha":
			gs.shapeAlpha = alpha
		case ".setopacityalpha":
			if gs.alphaIsShape {
				gs.shapeAlpha = alpha
			} else {
				gs.fillAlpha = alpha
				gs.strokeAlpha = alpha
			}
		}
		return intp.notify(name[1:], alpha)
	}
}

func bSetalphaisshape(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, ".setalphaisshape: not enough arguments")
	}
	b, ok := intp.Stack[len(intp.Stack)-1].(Boolean)
	if !ok {
		return intp.e(eTypecheck, ".setalphaisshape: needs a boolean")
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	intp.gs.alphaIsShape = bool(b)
	return intp.notify("setalphaisshape", boolToFloat(bool(b)))
}

// BlendModes lists the names of the supported blend modes.  The position
// in the list is the blend mode index reported to callbacks.
var BlendModes = []string{
	"Normal", "Multiply", "Screen", "Overlay", "SoftLight", "HardLight",
	"ColorDodge", "ColorBurn", "Darken", "Lighten", "Difference",
	"Exclusion", "Hue", "Saturation", "Color", "Luminosity",
}

func bSetblendmode(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, ".setblendmode: not enough arguments")
	}
	var name string
	switch obj := intp.Stack[len(intp.Stack)-1].(type) {
	case Name:
		name = string(obj)
	case String:
		name = string(obj)
	default:
		return intp.e(eTypecheck, ".setblendmode: needs a name")
	}
	idx := -1
	for i, mode := range BlendModes {
		if strings.EqualFold(mode, name) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return intp.e(eUndefined, ".setblendmode: unknown blend mode %q", name)
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	intp.gs.blendMode = idx
	return intp.notify("setblendmode", float64(idx))
}

// colors

func colorOp(name string, n int) builtin {
	return func(intp *Interpreter) error {
		args, err := intp.popNumbers(name, n)
		if err != nil {
			return err
		}
		return intp.setColor(name, args)
	}
}

var colorSpaces = map[Name]struct {
	op    string
	comps int
}{
	"DeviceGray": {"setgray", 1},
	"DeviceRGB":  {"setrgbcolor", 3},
	"DeviceCMYK": {"setcmykcolor", 4},
}

func (intp *Interpreter) setColor(op string, comps []float64) error {
	gs := intp.gs
	for i, x := range comps {
		if op != "sethsbcolor" || i > 0 {
			comps[i] = min(max(x, 0), 1)
		}
	}
	gs.colorOp = op
	gs.color = comps
	gs.pattern = nil
	gs.patternRGB = nil
	switch op {
	case "setgray":
		gs.space = "DeviceGray"
	case "setcmykcolor":
		gs.space = "DeviceCMYK"
	default:
		gs.space = "DeviceRGB"
	}
	return intp.notify(op, comps...)
}

// rgb converts the current color to RGB.
func (gs *graphicsState) rgb() []float64 {
	c := gs.color
	switch gs.colorOp {
	case "setgray":
		return []float64{c[0], c[0], c[0]}
	case "setcmykcolor":
		return []float64{
			(1 - c[0]) * (1 - c[3]),
			(1 - c[1]) * (1 - c[3]),
			(1 - c[2]) * (1 - c[3]),
		}
	case "sethsbcolor":
		h := c[0] - math.Floor(c[0])
		r, g, b := colorful.Hsv(h*360, c[1], c[2]).RGB255()
		return []float64{float64(r) / 255, float64(g) / 255, float64(b) / 255}
	default:
		return append([]float64(nil), c...)
	}
}

func bSetcolorspace(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "setcolorspace: not enough arguments")
	}
	var family Name
	base := Name("")
	switch obj := intp.Stack[len(intp.Stack)-1].(type) {
	case Name:
		family = obj
	case Array:
		if len(obj) > 0 {
			family, _ = obj[0].(Name)
		}
		if len(obj) > 1 {
			base, _ = obj[1].(Name)
		}
	}
	if family == "Pattern" {
		intp.Stack = intp.Stack[:len(intp.Stack)-1]
		intp.gs.space = "Pattern"
		intp.gs.baseComps = colorSpaces[base].comps
		return nil
	}
	cs, ok := colorSpaces[family]
	if !ok {
		return intp.e(eUndefined, "setcolorspace: unsupported color space %q", family)
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	comps := make([]float64, cs.comps)
	if family == "DeviceCMYK" {
		comps[3] = 1
	}
	return intp.setColor(cs.op, comps)
}

func bSetcolor(intp *Interpreter) error {
	gs := intp.gs
	if gs.space == "Pattern" {
		return intp.setPattern("setcolor", gs.baseComps)
	}
	cs := colorSpaces[gs.space]
	args, err := intp.popNumbers("setcolor", cs.comps)
	if err != nil {
		return err
	}
	return intp.setColor(cs.op, args)
}

// patterns

func bSetpattern(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "setpattern: not enough arguments")
	}
	n := len(intp.gs.color)
	if intp.gs.space == "Pattern" {
		n = intp.gs.baseComps
	}
	return intp.setPattern("setpattern", n)
}

// setPattern selects the pattern on top of the stack.  Uncolored patterns
// are preceded by n color components in the underlying color space.
func (intp *Interpreter) setPattern(op string, n int) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "%s: not enough arguments", op)
	}
	pat, ok := intp.Stack[len(intp.Stack)-1].(Dict)
	if !ok {
		return intp.e(eTypecheck, "%s: needs a pattern dictionary", op)
	}
	if _, ok := pat["Implementation"].(Integer); !ok {
		return intp.e(eUndefined, "%s: pattern has not been instantiated", op)
	}
	gs := intp.gs

	var rgb []float64
	if paintType, _ := pat["PaintType"].(Integer); paintType == 2 {
		if len(intp.Stack) < n+1 {
			return intp.e(eStackunderflow, "%s: not enough arguments", op)
		}
		comps := make([]float64, n)
		for i, obj := range intp.Stack[len(intp.Stack)-n-1 : len(intp.Stack)-1] {
			x, ok := toFloat(obj)
			if !ok {
				return intp.e(eTypecheck, "%s: invalid color component", op)
			}
			comps[i] = x
		}
		intp.Stack = intp.Stack[:len(intp.Stack)-n-1]
		under := &graphicsState{colorOp: "setrgbcolor", color: comps}
		switch n {
		case 1:
			under.colorOp = "setgray"
		case 4:
			under.colorOp = "setcmykcolor"
		}
		rgb = under.rgb()
	} else {
		intp.Stack = intp.Stack[:len(intp.Stack)-1]
	}

	if gs.space != "Pattern" {
		gs.baseComps = len(gs.color)
		gs.space = "Pattern"
	}
	gs.pattern = pat
	gs.patternRGB = rgb
	return intp.notifyPattern(pat, rgb)
}

func (intp *Interpreter) notifyPattern(pat Dict, rgb []float64) error {
	id, _ := pat["Implementation"].(Integer)
	return intp.notify("setpattern", append([]float64{float64(id)}, rgb...)...)
}

// bMakepattern instantiates a pattern.  For tiling patterns, the PaintProc
// is run immediately, so that the callbacks can record the pattern cell.
// Shading patterns are not supported and yield a pattern which paints
// nothing.
func bMakepattern(intp *Interpreter) error {
	if len(intp.Stack) < 2 {
		return intp.e(eStackunderflow, "makepattern: not enough arguments")
	}
	dict, ok := intp.Stack[len(intp.Stack)-2].(Dict)
	if !ok {
		return intp.e(eTypecheck, "makepattern: needs a dictionary")
	}
	m, err := intp.toMatrix("makepattern", intp.Stack[len(intp.Stack)-1])
	if err != nil {
		return err
	}

	inst := make(Dict, len(dict)+1)
	for k, v := range dict {
		inst[k] = v
	}
	intp.patternID++
	id := intp.patternID
	inst["Implementation"] = Integer(id)

	patternType, _ := inst["PatternType"].(Integer)
	if patternType != 1 {
		intp.Stack = append(intp.Stack[:len(intp.Stack)-2], inst)
		return nil
	}

	var bbox [4]float64
	box, ok := inst["BBox"].(Array)
	if !ok || len(box) != 4 {
		return intp.e(eTypecheck, "makepattern: invalid BBox")
	}
	for i, obj := range box {
		if bbox[i], ok = toFloat(obj); !ok {
			return intp.e(eTypecheck, "makepattern: invalid BBox")
		}
	}
	xStep, ok1 := toFloat(inst["XStep"])
	yStep, ok2 := toFloat(inst["YStep"])
	if !ok1 || !ok2 || xStep == 0 || yStep == 0 {
		return intp.e(eRangecheck, "makepattern: invalid step size")
	}
	paintType, _ := inst["PaintType"].(Integer)
	paintProc, ok := inst["PaintProc"].(Procedure)
	if !ok {
		return intp.e(eTypecheck, "makepattern: missing PaintProc")
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-2]

	args := []float64{1, float64(id)}
	args = append(args, bbox[:]...)
	args = append(args, xStep, yStep, float64(paintType))
	args = append(args, m[:]...)
	if err := intp.notify("makepattern", args...); err != nil {
		return err
	}

	if err := bGsave(intp); err != nil {
		return err
	}
	intp.gs.ctm = matrix.Identity
	intp.gs.clearPath()
	err = intp.notifyMatrix(matrix.Identity)
	if err == nil {
		intp.Stack = append(intp.Stack, inst)
		err = intp.executeOne(paintProc, true)
	}
	if err != nil {
		bGrestore(intp)
		intp.notify("makepattern", 0)
		return err
	}
	if err := bGrestore(intp); err != nil {
		return err
	}
	if err := intp.notify("makepattern", 0); err != nil {
		return err
	}
	intp.Stack = append(intp.Stack, inst)
	return nil
}

// bShfill converts a mesh shading dictionary into the flat parameter list
// shading type, color components, background flag and color, bounding box
// flag and box, followed by the mesh data.  Only shading types 4 to 7
// with an array DataSource are reported.
func bShfill(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "shfill: not enough arguments")
	}
	sh, ok := intp.Stack[len(intp.Stack)-1].(Dict)
	if !ok {
		return intp.e(eTypecheck, "shfill: needs a dictionary")
	}
	tp, _ := sh["ShadingType"].(Integer)
	if tp < 1 || tp > 7 {
		return intp.e(eRangecheck, "shfill: invalid shading type %d", tp)
	}

	var family Name
	switch cs := sh["ColorSpace"].(type) {
	case Name:
		family = cs
	case Array:
		if len(cs) > 0 {
			family, _ = cs[0].(Name)
		}
	}
	space, ok := colorSpaces[family]
	if !ok {
		return intp.e(eUndefined, "shfill: unsupported color space %q", family)
	}

	data, ok := sh["DataSource"].(Array)
	if tp < 4 || !ok {
		intp.Stack = intp.Stack[:len(intp.Stack)-1]
		return nil
	}

	args := []float64{float64(tp), float64(space.comps)}
	numbers := func(key string, obj Object, n int) error {
		a, ok := obj.(Array)
		if !ok || len(a) != n {
			return intp.e(eTypecheck, "shfill: invalid %s", key)
		}
		args = append(args, 1)
		for _, x := range a {
			v, ok := toFloat(x)
			if !ok {
				return intp.e(eTypecheck, "shfill: invalid %s", key)
			}
			args = append(args, v)
		}
		return nil
	}
	if bg, ok := sh["Background"]; ok {
		if err := numbers("Background", bg, space.comps); err != nil {
			return err
		}
	} else {
		args = append(args, 0)
	}
	if box, ok := sh["BBox"]; ok {
		if err := numbers("BBox", box, 4); err != nil {
			return err
		}
	} else {
		args = append(args, 0)
	}
	if tp == 5 {
		perRow, ok := sh["VerticesPerRow"].(Integer)
		if !ok {
			return intp.e(eTypecheck, "shfill: missing VerticesPerRow")
		}
		args = append(args, float64(perRow))
	}
	for _, x := range data {
		v, ok := toFloat(x)
		if !ok {
			return intp.e(eTypecheck, "shfill: invalid DataSource entry %T", x)
		}
		args = append(args, v)
	}

	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	return intp.notify("shfill", args...)
}

// coordinate system

func bMatrix(intp *Interpreter) error {
	intp.Stack = append(intp.Stack, matrixArray(matrix.Identity))
	return nil
}

func matrixArray(m matrix.Matrix) Array {
	a := make(Array, 6)
	for i, x := range m {
		a[i] = Real(x)
	}
	return a
}

// fillMatrix stores m in the matrix operand on top of the stack.
func (intp *Interpreter) fillMatrix(op string, m matrix.Matrix) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "%s: not enough arguments", op)
	}
	a, ok := intp.Stack[len(intp.Stack)-1].(Array)
	if !ok {
		return intp.e(eTypecheck, "%s: needs an array", op)
	} else if len(a) != 6 {
		return intp.e(eRangecheck, "%s: needs an array of length 6", op)
	}
	for i, x := range m {
		a[i] = Real(x)
	}
	return nil
}

func bIdentmatrix(intp *Interpreter) error {
	return intp.fillMatrix("identmatrix", matrix.Identity)
}

func bCurrentmatrix(intp *Interpreter) error {
	return intp.fillMatrix("currentmatrix", intp.gs.ctm)
}

func bSetmatrix(intp *Interpreter) error {
	m, err := intp.popMatrix("setmatrix")
	if err != nil {
		return err
	}
	intp.gs.ctm = m
	return intp.notifyMatrix(m)
}

func bConcat(intp *Interpreter) error {
	m, err := intp.popMatrix("concat")
	if err != nil {
		return err
	}
	intp.gs.ctm = m.Mul(intp.gs.ctm)
	return intp.notifyMatrix(intp.gs.ctm)
}

func bInitmatrix(intp *Interpreter) error {
	intp.gs.ctm = intp.DefaultMatrix
	return intp.notifyMatrix(intp.gs.ctm)
}

// modifyCTM implements the operators scale, translate and rotate.  If the
// topmost operand is a matrix, the transformation is stored there instead
// of being applied to the CTM.
func (intp *Interpreter) modifyCTM(op string, n int, mk func(args []float64) matrix.Matrix) error {
	if len(intp.Stack) > 0 {
		if _, isArray := intp.Stack[len(intp.Stack)-1].(Array); isArray {
			if len(intp.Stack) < n+1 {
				return intp.e(eStackunderflow, "%s: not enough arguments", op)
			}
			a := intp.Stack[len(intp.Stack)-1]
			intp.Stack = intp.Stack[:len(intp.Stack)-1]
			args, err := intp.popNumbers(op, n)
			if err != nil {
				intp.Stack = append(intp.Stack, a)
				return err
			}
			intp.Stack = append(intp.Stack, a)
			return intp.fillMatrix(op, mk(args))
		}
	}
	args, err := intp.popNumbers(op, n)
	if err != nil {
		return err
	}
	intp.gs.ctm = mk(args).Mul(intp.gs.ctm)
	return intp.notify(op, args...)
}

func bScale(intp *Interpreter) error {
	return intp.modifyCTM("scale", 2, func(args []float64) matrix.Matrix {
		return matrix.Scale(args[0], args[1])
	})
}

func bTranslate(intp *Interpreter) error {
	return intp.modifyCTM("translate", 2, func(args []float64) matrix.Matrix {
		return matrix.Translate(args[0], args[1])
	})
}

func bRotate(intp *Interpreter) error {
	return intp.modifyCTM("rotate", 1, func(args []float64) matrix.Matrix {
		return matrix.RotateDeg(args[0])
	})
}

// transformOp implements transform, itransform, dtransform and
// idtransform.
func transformOp(op string, withTranslation, inverse bool) builtin {
	return func(intp *Interpreter) error {
		m := intp.gs.ctm
		if len(intp.Stack) > 0 {
			if _, isArray := intp.Stack[len(intp.Stack)-1].(Array); isArray {
				var err error
				if m, err = intp.popMatrix(op); err != nil {
					return err
				}
			}
		}
		args, err := intp.popNumbers(op, 2)
		if err != nil {
			return err
		}
		if inverse {
			var ok bool
			if m, ok = invert(m); !ok {
				return intp.e(eUndefinedresult, "%s: singular matrix", op)
			}
		}
		if !withTranslation {
			m[4], m[5] = 0, 0
		}
		p := toDevice(m, args[0], args[1])
		intp.Stack = append(intp.Stack, Real(p.X), Real(p.Y))
		return nil
	}
}

func bRun(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "run: not enough arguments")
	}
	name, ok := intp.Stack[len(intp.Stack)-1].(String)
	if !ok {
		return intp.e(eTypecheck, "run: needs a file name")
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	return intp.ExecuteFile(string(name))
}
