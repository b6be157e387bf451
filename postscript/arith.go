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
)

// arith implements the binary arithmetic operators.  Integer results which
// overflow are converted to reals.
func (intp *Interpreter) arith(op string, fi func(a, b int64) (int64, bool), fr func(a, b float64) float64) error {
	if len(intp.Stack) < 2 {
		return intp.e(eStackunderflow, "%s: not enough arguments", op)
	}
	a := intp.Stack[len(intp.Stack)-2]
	b := intp.Stack[len(intp.Stack)-1]
	ai, aIsInt := a.(Integer)
	bi, bIsInt := b.(Integer)
	if aIsInt && bIsInt && fi != nil {
		if c, ok := fi(int64(ai), int64(bi)); ok && c >= math.MinInt && c <= math.MaxInt {
			intp.Stack = append(intp.Stack[:len(intp.Stack)-2], Integer(c))
			return nil
		}
	}
	ar, ok1 := toFloat(a)
	br, ok2 := toFloat(b)
	if !ok1 || !ok2 {
		return intp.e(eTypecheck, "%s: needs numbers, not %T and %T", op, a, b)
	}
	c := fr(ar, br)
	if math.IsInf(c, 0) || math.IsNaN(c) {
		return intp.e(eUndefinedresult, "%s: %g %g", op, ar, br)
	}
	intp.Stack = append(intp.Stack[:len(intp.Stack)-2], Real(c))
	return nil
}

func bAdd(intp *Interpreter) error {
	return intp.arith("add", func(a, b int64) (int64, bool) {
		c := a + b
		return c, !((a < 0 && b < 0 && c >= 0) || (a > 0 && b > 0 && c <= 0))
	}, func(a, b float64) float64 { return a + b })
}

func bSub(intp *Interpreter) error {
	return intp.arith("sub", func(a, b int64) (int64, bool) {
		c := a - b
		return c, !((a < 0 && b > 0 && c >= 0) || (a >= 0 && b < 0 && c < 0))
	}, func(a, b float64) float64 { return a - b })
}

func bMul(intp *Interpreter) error {
	return intp.arith("mul", func(a, b int64) (int64, bool) {
		c := a * b
		return c, a == 0 || (c/a == b && !(a == -1 && b == math.MinInt64))
	}, func(a, b float64) float64 { return a * b })
}

func bDiv(intp *Interpreter) error {
	return intp.arith("div", nil, func(a, b float64) float64 { return a / b })
}

func bIdiv(intp *Interpreter) error {
	return intp.intArith("idiv", func(a, b Integer) Integer { return a / b })
}

func bMod(intp *Interpreter) error {
	return intp.intArith("mod", func(a, b Integer) Integer { return a % b })
}

func (intp *Interpreter) intArith(op string, f func(a, b Integer) Integer) error {
	if len(intp.Stack) < 2 {
		return intp.e(eStackunderflow, "%s: not enough arguments", op)
	}
	a, ok1 := intp.Stack[len(intp.Stack)-2].(Integer)
	b, ok2 := intp.Stack[len(intp.Stack)-1].(Integer)
	if !ok1 || !ok2 {
		return intp.e(eTypecheck, "%s: needs integers", op)
	} else if b == 0 {
		return intp.e(eUndefinedresult, "%s: division by zero", op)
	}
	intp.Stack = append(intp.Stack[:len(intp.Stack)-2], f(a, b))
	return nil
}

// unary implements operators with one numeric operand.  If fi is nil,
// the result is always a real.
func (intp *Interpreter) unary(op string, fi func(Integer) Object, fr func(float64) float64) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "%s: not enough arguments", op)
	}
	x := intp.Stack[len(intp.Stack)-1]
	var res Object
	switch x := x.(type) {
	case Integer:
		if fi != nil {
			res = fi(x)
		} else {
			res = Real(fr(float64(x)))
		}
	case Real:
		res = Real(fr(float64(x)))
	default:
		return intp.e(eTypecheck, "%s: needs a number, not %T", op, x)
	}
	if r, ok := res.(Real); ok && (math.IsNaN(float64(r)) || math.IsInf(float64(r), 0)) {
		return intp.e(eUndefinedresult, "%s: %v", op, x)
	}
	intp.Stack[len(intp.Stack)-1] = res
	return nil
}

func bAbs(intp *Interpreter) error {
	return intp.unary("abs", func(x Integer) Object {
		if x == math.MinInt {
			return -Real(x)
		} else if x < 0 {
			return -x
		}
		return x
	}, math.Abs)
}

func bNeg(intp *Interpreter) error {
	return intp.unary("neg", func(x Integer) Object {
		if x == math.MinInt {
			return -Real(x)
		}
		return -x
	}, func(x float64) float64 { return -x })
}

func keepInt(x Integer) Object { return x }

func bCeiling(intp *Interpreter) error  { return intp.unary("ceiling", keepInt, math.Ceil) }
func bFloor(intp *Interpreter) error    { return intp.unary("floor", keepInt, math.Floor) }
func bRound(intp *Interpreter) error    { return intp.unary("round", keepInt, roundHalfUp) }
func bTruncate(intp *Interpreter) error { return intp.unary("truncate", keepInt, math.Trunc) }
func bSqrt(intp *Interpreter) error     { return intp.unary("sqrt", nil, math.Sqrt) }

func bSin(intp *Interpreter) error {
	return intp.unary("sin", nil, func(x float64) float64 { return math.Sin(x * math.Pi / 180) })
}

func bCos(intp *Interpreter) error {
	return intp.unary("cos", nil, func(x float64) float64 { return math.Cos(x * math.Pi / 180) })
}

func bAtan(intp *Interpreter) error {
	args, err := intp.popNumbers("atan", 2)
	if err != nil {
		return err
	}
	if args[0] == 0 && args[1] == 0 {
		return intp.e(eUndefinedresult, "atan: 0 0")
	}
	deg := math.Atan2(args[0], args[1]) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	intp.Stack = append(intp.Stack, Real(deg))
	return nil
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func bCvi(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "cvi: not enough arguments")
	}
	obj := intp.Stack[len(intp.Stack)-1]
	if s, ok := obj.(String); ok {
		num, ok := parseNumber(s)
		if !ok {
			return intp.e(eTypecheck, "cvi: %q is not a number", string(s))
		}
		obj = num
	}
	switch x := obj.(type) {
	case Integer:
		intp.Stack[len(intp.Stack)-1] = x
	case Real:
		t := math.Trunc(float64(x))
		if t < math.MinInt || t > math.MaxInt {
			return intp.e(eRangecheck, "cvi: %g out of range", t)
		}
		intp.Stack[len(intp.Stack)-1] = Integer(t)
	default:
		return intp.e(eTypecheck, "cvi: invalid argument type %T", x)
	}
	return nil
}

func bCvr(intp *Interpreter) error {
	return intp.unary("cvr", func(x Integer) Object { return Real(x) }, func(x float64) float64 { return x })
}

// compare implements the ordering operators for numbers and strings.
func (intp *Interpreter) compare(op string, test func(c int) bool) error {
	if len(intp.Stack) < 2 {
		return intp.e(eStackunderflow, "%s: not enough arguments", op)
	}
	a := intp.Stack[len(intp.Stack)-2]
	b := intp.Stack[len(intp.Stack)-1]
	var c int
	if as, ok := a.(String); ok {
		bs, ok := b.(String)
		if !ok {
			return intp.e(eTypecheck, "%s: mismatched argument types", op)
		}
		c = compareStrings(as, bs)
	} else {
		x, ok1 := toFloat(a)
		y, ok2 := toFloat(b)
		if !ok1 || !ok2 {
			return intp.e(eTypecheck, "%s: invalid argument types %T and %T", op, a, b)
		}
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	}
	intp.Stack = append(intp.Stack[:len(intp.Stack)-2], Boolean(test(c)))
	return nil
}

func compareStrings(a, b String) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func bGe(intp *Interpreter) error { return intp.compare("ge", func(c int) bool { return c >= 0 }) }
func bGt(intp *Interpreter) error { return intp.compare("gt", func(c int) bool { return c > 0 }) }
func bLe(intp *Interpreter) error { return intp.compare("le", func(c int) bool { return c <= 0 }) }
func bLt(intp *Interpreter) error { return intp.compare("lt", func(c int) bool { return c < 0 }) }

// logic implements and, or and xor.
func (intp *Interpreter) logic(op string, fb func(a, b bool) bool, fi func(a, b Integer) Integer) error {
	if len(intp.Stack) < 2 {
		return intp.e(eStackunderflow, "%s: not enough arguments", op)
	}
	a := intp.Stack[len(intp.Stack)-2]
	b := intp.Stack[len(intp.Stack)-1]
	var res Object
	switch a := a.(type) {
	case Boolean:
		b, ok := b.(Boolean)
		if !ok {
			return intp.e(eTypecheck, "%s: mismatched argument types", op)
		}
		res = Boolean(fb(bool(a), bool(b)))
	case Integer:
		b, ok := b.(Integer)
		if !ok {
			return intp.e(eTypecheck, "%s: mismatched argument types", op)
		}
		res = fi(a, b)
	default:
		return intp.e(eTypecheck, "%s: invalid argument type %T", op, a)
	}
	intp.Stack = append(intp.Stack[:len(intp.Stack)-2], res)
	return nil
}

func bAnd(intp *Interpreter) error {
	return intp.logic("and", func(a, b bool) bool { return a && b }, func(a, b Integer) Integer { return a & b })
}

func bOr(intp *Interpreter) error {
	return intp.logic("or", func(a, b bool) bool { return a || b }, func(a, b Integer) Integer { return a | b })
}

func bXor(intp *Interpreter) error {
	return intp.logic("xor", func(a, b bool) bool { return a != b }, func(a, b Integer) Integer { return a ^ b })
}

func bNot(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "not: not enough arguments")
	}
	obj := intp.Stack[len(intp.Stack)-1]
	switch obj := obj.(type) {
	case Boolean:
		intp.Stack[len(intp.Stack)-1] = !obj
	case Integer:
		intp.Stack[len(intp.Stack)-1] = ^obj
	default:
		return intp.e(eTypecheck, "not: invalid argument type %T", obj)
	}
	return nil
}
