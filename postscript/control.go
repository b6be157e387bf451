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

// loopBody runs proc once inside a looping operator.  The returned flag
// is set if the loop was terminated by exit.
func (intp *Interpreter) loopBody(proc Object) (bool, error) {
	err := intp.executeOne(proc, true)
	if err == errExit {
		return true, nil
	}
	return false, err
}

func bIf(intp *Interpreter) error {
	if len(intp.Stack) < 2 {
		return intp.e(eStackunderflow, "if: not enough arguments")
	}
	cond, ok := intp.Stack[len(intp.Stack)-2].(Boolean)
	if !ok {
		return intp.e(eTypecheck, "if: invalid condition")
	}
	proc := intp.Stack[len(intp.Stack)-1]
	intp.Stack = intp.Stack[:len(intp.Stack)-2]
	if cond {
		return intp.executeOne(proc, true)
	}
	return nil
}

func bIfelse(intp *Interpreter) error {
	if len(intp.Stack) < 3 {
		return intp.e(eStackunderflow, "ifelse: not enough arguments")
	}
	cond, ok := intp.Stack[len(intp.Stack)-3].(Boolean)
	if !ok {
		return intp.e(eTypecheck, "ifelse: invalid condition")
	}
	proc := intp.Stack[len(intp.Stack)-1]
	if cond {
		proc = intp.Stack[len(intp.Stack)-2]
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-3]
	return intp.executeOne(proc, true)
}

func bFor(intp *Interpreter) error {
	if len(intp.Stack) < 4 {
		return intp.e(eStackunderflow, "for: not enough arguments")
	}
	proc := intp.Stack[len(intp.Stack)-1]
	ctl := intp.Stack[len(intp.Stack)-4 : len(intp.Stack)-1]
	initial, ok1 := ctl[0].(Integer)
	increment, ok2 := ctl[1].(Integer)
	limit, ok3 := ctl[2].(Integer)
	if ok1 && ok2 && ok3 {
		intp.Stack = intp.Stack[:len(intp.Stack)-4]
		for val := initial; increment >= 0 && val <= limit || increment < 0 && val >= limit; val += increment {
			intp.Stack = append(intp.Stack, val)
			done, err := intp.loopBody(proc)
			if done || err != nil {
				return err
			}
			if increment == 0 {
				return intp.e(eLimitcheck, "for: zero increment")
			}
		}
		return nil
	}

	var nums [3]float64
	for i, obj := range ctl {
		x, ok := toFloat(obj)
		if !ok {
			return intp.e(eTypecheck, "for: invalid control value %T", obj)
		}
		nums[i] = x
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-4]
	from, step, to := nums[0], nums[1], nums[2]
	if step == 0 {
		return intp.e(eLimitcheck, "for: zero increment")
	}
	for val := from; step > 0 && val <= to || step < 0 && val >= to; val += step {
		intp.Stack = append(intp.Stack, Real(val))
		done, err := intp.loopBody(proc)
		if done || err != nil {
			return err
		}
	}
	return nil
}

func bRepeat(intp *Interpreter) error {
	if len(intp.Stack) < 2 {
		return intp.e(eStackunderflow, "repeat: not enough arguments")
	}
	count, ok := intp.Stack[len(intp.Stack)-2].(Integer)
	if !ok {
		return intp.e(eTypecheck, "repeat: invalid count")
	} else if count < 0 {
		return intp.e(eRangecheck, "repeat: negative count")
	}
	proc := intp.Stack[len(intp.Stack)-1]
	intp.Stack = intp.Stack[:len(intp.Stack)-2]
	for i := Integer(0); i < count; i++ {
		done, err := intp.loopBody(proc)
		if done || err != nil {
			return err
		}
	}
	return nil
}

func bLoop(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "loop: not enough arguments")
	}
	proc := intp.Stack[len(intp.Stack)-1]
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	for i := 0; ; i++ {
		if i >= maxLoopIterations {
			return intp.e(eLimitcheck, "loop: too many iterations")
		}
		done, err := intp.loopBody(proc)
		if done || err != nil {
			return err
		}
	}
}

func bForall(intp *Interpreter) error {
	if len(intp.Stack) < 2 {
		return intp.e(eStackunderflow, "forall: not enough arguments")
	}
	obj := intp.Stack[len(intp.Stack)-2]
	proc, ok := intp.Stack[len(intp.Stack)-1].(Procedure)
	if !ok {
		return intp.e(eTypecheck, "forall: needs a procedure")
	}

	var items [][]Object
	switch obj := obj.(type) {
	case Array:
		for _, val := range obj {
			items = append(items, []Object{val})
		}
	case Procedure:
		for _, val := range obj {
			items = append(items, []Object{val})
		}
	case String:
		for _, c := range obj {
			items = append(items, []Object{Integer(c)})
		}
	case Dict:
		for key, val := range obj {
			items = append(items, []Object{key, val})
		}
	default:
		return intp.e(eTypecheck, "forall: invalid type %T", obj)
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-2]

	for _, item := range items {
		intp.Stack = append(intp.Stack, item...)
		done, err := intp.loopBody(proc)
		if done || err != nil {
			return err
		}
	}
	return nil
}

func bExit(intp *Interpreter) error {
	return errExit
}

func bStop(intp *Interpreter) error {
	return errStop
}

// bStopped executes a procedure and reports whether it was terminated by
// stop or by an error.
func bStopped(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "stopped: not enough arguments")
	}
	proc := intp.Stack[len(intp.Stack)-1]
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	depth := len(intp.DictStack)
	err := intp.executeOne(proc, true)
	switch {
	case err == nil:
		intp.Stack = append(intp.Stack, Boolean(false))
		return nil
	case err == errStop:
		intp.Stack = append(intp.Stack, Boolean(true))
		return nil
	case err == errExit:
		return err
	}
	if _, isPS := ErrorName(err); !isPS {
		return err
	}
	if len(intp.DictStack) > depth {
		intp.DictStack = intp.DictStack[:depth]
	}
	intp.procStart = intp.procStart[:0]
	intp.Stack = append(intp.Stack, Boolean(true))
	return nil
}

func bExec(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "exec: not enough arguments")
	}
	obj := intp.Stack[len(intp.Stack)-1]
	intp.Stack = intp.Stack[:len(intp.Stack)-1]

	switch obj := obj.(type) {
	case Operator:
		return intp.executeOne(obj, false)
	default:
		return intp.executeOne(obj, true)
	}
}

const maxLoopIterations = 1 << 24
