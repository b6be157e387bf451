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
	"fmt"
	"io"
	"strconv"
)

func makeSystemDict() Dict {
	userDict := Dict{}
	errorDict := Dict{}

	systemDict := Dict{
		"[":             builtin(bListStart),
		"]":             builtin(bListEnd),
		"<<":            builtin(bListStart),
		">>":            builtin(bDictEnd),
		"=":             builtin(bPop),
		"==":            builtin(bPop),
		"abs":           builtin(bAbs),
		"add":           builtin(bAdd),
		"aload":         builtin(bAload),
		"and":           builtin(bAnd),
		"array":         builtin(bArray),
		"astore":        builtin(bAstore),
		"atan":          builtin(bAtan),
		"begin":         builtin(bBegin),
		"bind":          builtin(bBind),
		"ceiling":       builtin(bCeiling),
		"clear":         builtin(bClear),
		"cleartomark":   builtin(bCleartomark),
		"closefile":     builtin(bClosefile),
		"copy":          builtin(bCopy),
		"cos":           builtin(bCos),
		"count":         builtin(bCount),
		"counttomark":   builtin(bCounttomark),
		"currentdict":   builtin(bCurrentdict),
		"currentfile":   builtin(bCurrentfile),
		"cvi":           builtin(bCvi),
		"cvlit":         builtin(bCvlit),
		"cvn":           builtin(bCvn),
		"cvr":           builtin(bCvr),
		"cvx":           builtin(bCvx),
		"def":           builtin(bDef),
		"dict":          builtin(bDict),
		"div":           builtin(bDiv),
		"dup":           builtin(bDup),
		"end":           builtin(bEnd),
		"eq":            builtin(bEq),
		"errordict":     errorDict,
		"exch":          builtin(bExch),
		"exec":          builtin(bExec),
		"executeonly":   builtin(bNoop),
		"exit":          builtin(bExit),
		"false":         Boolean(false),
		"floor":         builtin(bFloor),
		"flush":         builtin(bNoop),
		"for":           builtin(bFor),
		"forall":        builtin(bForall),
		"ge":            builtin(bGe),
		"get":           builtin(bGet),
		"getinterval":   builtin(bGetinterval),
		"gt":            builtin(bGt),
		"idiv":          builtin(bIdiv),
		"if":            builtin(bIf),
		"ifelse":        builtin(bIfelse),
		"index":         builtin(bIndex),
		"known":         builtin(bKnown),
		"le":            builtin(bLe),
		"length":        builtin(bLength),
		"load":          builtin(bLoad),
		"loop":          builtin(bLoop),
		"lt":            builtin(bLt),
		"mark":          builtin(bMark),
		"maxlength":     builtin(bMaxlength),
		"mod":           builtin(bMod),
		"mul":           builtin(bMul),
		"ne":            builtin(bNe),
		"neg":           builtin(bNeg),
		"noaccess":      builtin(bNoop),
		"not":           builtin(bNot),
		"null":          nil,
		"or":            builtin(bOr),
		"pop":           builtin(bPop),
		"print":         builtin(bPop),
		"put":           builtin(bPut),
		"putinterval":   builtin(bPutinterval),
		"readhexstring": builtin(bReadhexstring),
		"readonly":      builtin(bNoop),
		"readstring":    builtin(bReadstring),
		"repeat":        builtin(bRepeat),
		"roll":          builtin(bRoll),
		"round":         builtin(bRound),
		"sin":           builtin(bSin),
		"sqrt":          builtin(bSqrt),
		"stop":          builtin(bStop),
		"stopped":       builtin(bStopped),
		"store":         builtin(bStore),
		"string":        builtin(bString),
		"sub":           builtin(bSub),
		"true":          Boolean(true),
		"truncate":      builtin(bTruncate),
		"type":          builtin(bType),
		"undef":         builtin(bUndef),
		"userdict":      userDict,
		"where":         builtin(bWhere),
		"xor":           builtin(bXor),
	}
	systemDict["systemdict"] = systemDict
	addGraphicsOperators(systemDict)

	return systemDict
}

func bNoop(intp *Interpreter) error {
	return nil
}

func bPrint(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "print: not enough arguments")
	}
	s, ok := intp.Stack[len(intp.Stack)-1].(String)
	if !ok {
		return intp.e(eTypecheck, "print: needs a string")
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	if intp.Output != nil {
		intp.Output.Write(s)
	}
	return nil
}

func bPrintLine(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "=: not enough arguments")
	}
	obj := intp.Stack[len(intp.Stack)-1]
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	if intp.Output != nil {
		fmt.Fprintln(intp.Output, intp.objectString(obj))
	}
	return nil
}

func bListStart(intp *Interpreter) error {
	intp.Stack = append(intp.Stack, theMark)
	return nil
}

// markPos returns the position of the topmost mark on the operand stack.
func (intp *Interpreter) markPos() int {
	for i := len(intp.Stack) - 1; i >= 0; i-- {
		if intp.Stack[i] == theMark {
			return i
		}
	}
	return -1
}

func bListEnd(intp *Interpreter) error {
	i := intp.markPos()
	if i < 0 {
		return intp.e(eUnmatchedmark, "]: missing '['")
	}
	a := make(Array, len(intp.Stack)-i-1)
	copy(a, intp.Stack[i+1:])
	intp.Stack = append(intp.Stack[:i], a)
	return nil
}

func bDictEnd(intp *Interpreter) error {
	markPos := intp.markPos()
	n := len(intp.Stack)
	if markPos < 0 {
		return intp.e(eUnmatchedmark, ">>: missing '<<'")
	} else if (n-markPos)%2 != 1 {
		return intp.e(eRangecheck, "dict literal: odd length")
	}
	d := make(Dict, (n-markPos-1)/2)
	for i := markPos + 1; i < n; i += 2 {
		name, err := intp.dictKey(">>", intp.Stack[i])
		if err != nil {
			return err
		}
		d[name] = intp.Stack[i+1]
	}
	intp.Stack = append(intp.Stack[:markPos], d)
	return nil
}

// dictKey converts obj into a dictionary key.  Strings are converted to
// names, as in most PostScript implementations.
func (intp *Interpreter) dictKey(op string, obj Object) (Name, error) {
	switch key := obj.(type) {
	case Name:
		return key, nil
	case Operator:
		return Name(key), nil
	case String:
		return Name(key), nil
	case Integer:
		return Name(strconv.Itoa(int(key))), nil
	default:
		return "", intp.e(eTypecheck, "%s: invalid dict key %T", op, obj)
	}
}

func bAload(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "aload: not enough arguments")
	}
	var elems []Object
	switch a := intp.Stack[len(intp.Stack)-1].(type) {
	case Array:
		elems = a
	case Procedure:
		elems = a
	default:
		return intp.e(eTypecheck, "aload: needs an array, not %T", a)
	}
	top := intp.Stack[len(intp.Stack)-1]
	intp.Stack = append(intp.Stack[:len(intp.Stack)-1], elems...)
	intp.Stack = append(intp.Stack, top)
	return nil
}

func bArray(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "array: not enough arguments")
	}
	size, ok := intp.Stack[len(intp.Stack)-1].(Integer)
	if !ok {
		return intp.e(eTypecheck, "array: need an integer")
	} else if size < 0 {
		return intp.e(eRangecheck, "array: invalid size %d", size)
	} else if size > maxArraySize {
		return intp.e(eLimitcheck, "array: invalid size %d", size)
	}
	intp.Stack[len(intp.Stack)-1] = make(Array, size)
	return nil
}

func bAstore(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "astore: not enough arguments")
	}
	a, ok := intp.Stack[len(intp.Stack)-1].(Array)
	if !ok {
		return intp.e(eTypecheck, "astore: needs an array")
	}
	n := len(a)
	if len(intp.Stack) < n+1 {
		return intp.e(eStackunderflow, "astore: not enough arguments")
	}
	copy(a, intp.Stack[len(intp.Stack)-n-1:])
	intp.Stack = append(intp.Stack[:len(intp.Stack)-n-1], a)
	return nil
}

func bBegin(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "begin: not enough arguments")
	}
	if len(intp.DictStack) >= maxDictStackDepth {
		return intp.e(eDictstackoverflow, "begin")
	}
	d, ok := intp.Stack[len(intp.Stack)-1].(Dict)
	if !ok {
		return intp.e(eTypecheck, "begin: needs a dictionary")
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	intp.DictStack = append(intp.DictStack, d)
	return nil
}

func bEnd(intp *Interpreter) error {
	if len(intp.DictStack) <= 2 {
		return intp.e(eDictstackunderflow, "end: dictionary stack is empty")
	}
	intp.DictStack = intp.DictStack[:len(intp.DictStack)-1]
	return nil
}

func bBind(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "bind: not enough arguments")
	}
	obj, ok := intp.Stack[len(intp.Stack)-1].(Procedure)
	if !ok {
		return intp.e(eTypecheck, "bind: needs a procedure, not %T", intp.Stack[len(intp.Stack)-1])
	}
	intp.bindProc(obj)
	return nil
}

// bindProc replaces operator names which refer to builtins by the builtins
// themselves.
func (intp *Interpreter) bindProc(proc Procedure) {
	for i, elem := range proc {
		switch obj := elem.(type) {
		case Operator:
			val, err := intp.load(obj)
			if err != nil {
				continue
			}
			if _, ok := val.(builtin); ok {
				proc[i] = val
			}
		case Procedure:
			proc[i] = nil // guard against cycles
			intp.bindProc(obj)
			proc[i] = obj
		}
	}
}

func bClear(intp *Interpreter) error {
	intp.Stack = intp.Stack[:0]
	return nil
}

func bCleartomark(intp *Interpreter) error {
	k := intp.markPos()
	if k < 0 {
		return intp.e(eUnmatchedmark, "cleartomark: no mark found")
	}
	intp.Stack = intp.Stack[:k]
	return nil
}

func bCounttomark(intp *Interpreter) error {
	k := intp.markPos()
	if k < 0 {
		return intp.e(eUnmatchedmark, "counttomark: no mark found")
	}
	intp.Stack = append(intp.Stack, Integer(len(intp.Stack)-k-1))
	return nil
}

func bClosefile(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "closefile: not enough arguments")
	}
	if x := intp.Stack[len(intp.Stack)-1]; x != nil {
		return intp.e(eTypecheck, "closefile: needs a file, not %T", x)
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	return io.EOF
}

func bCopy(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "copy: not enough arguments")
	}
	if n, ok := intp.Stack[len(intp.Stack)-1].(Integer); ok {
		if n < 0 {
			return intp.e(eRangecheck, "copy: invalid count %d", n)
		}
		if len(intp.Stack) < int(n)+1 {
			return intp.e(eStackunderflow, "copy: not enough arguments")
		}
		intp.Stack = intp.Stack[:len(intp.Stack)-1]
		intp.Stack = append(intp.Stack, intp.Stack[len(intp.Stack)-int(n):]...)
		return nil
	}
	args, err := intp.pop("copy", 2)
	if err != nil {
		return err
	}
	var res Object
	switch a := args[0].(type) {
	case Array:
		b, ok := args[1].(Array)
		if !ok || len(b) < len(a) {
			return intp.e(eRangecheck, "copy: invalid destination")
		}
		res = b[:copy(b, a)]
	case Dict:
		b, ok := args[1].(Dict)
		if !ok {
			return intp.e(eTypecheck, "copy: mismatched argument types")
		}
		for k, v := range a {
			b[k] = v
		}
		res = b
	case String:
		b, ok := args[1].(String)
		if !ok || len(b) < len(a) {
			return intp.e(eRangecheck, "copy: invalid destination")
		}
		res = b[:copy(b, a)]
	default:
		return intp.e(eTypecheck, "copy: invalid type %T", a)
	}
	intp.Stack = append(intp.Stack, res)
	return nil
}

func bCount(intp *Interpreter) error {
	intp.Stack = append(intp.Stack, Integer(len(intp.Stack)))
	return nil
}

func bCurrentdict(intp *Interpreter) error {
	intp.Stack = append(intp.Stack, intp.DictStack[len(intp.DictStack)-1])
	return nil
}

// bCurrentfile pushes nil, which stands for the file being executed.
func bCurrentfile(intp *Interpreter) error {
	intp.Stack = append(intp.Stack, nil)
	return nil
}

func bCvlit(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "cvlit: not enough arguments")
	}
	switch obj := intp.Stack[len(intp.Stack)-1].(type) {
	case Procedure:
		intp.Stack[len(intp.Stack)-1] = Array(obj)
	case Operator:
		intp.Stack[len(intp.Stack)-1] = Name(obj)
	}
	return nil
}

func bCvn(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "cvn: not enough arguments")
	}
	s, ok := intp.Stack[len(intp.Stack)-1].(String)
	if !ok {
		return intp.e(eTypecheck, "cvn: needs a string")
	}
	intp.Stack[len(intp.Stack)-1] = Name(s)
	return nil
}

func bCvx(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "cvx: not enough arguments")
	}
	switch obj := intp.Stack[len(intp.Stack)-1].(type) {
	case Array:
		intp.Stack[len(intp.Stack)-1] = Procedure(obj)
	case Name:
		intp.Stack[len(intp.Stack)-1] = Operator(obj)
	}
	return nil
}

func bDef(intp *Interpreter) error {
	args, err := intp.pop("def", 2)
	if err != nil {
		return err
	}
	name, err := intp.dictKey("def", args[0])
	if err != nil {
		intp.Stack = append(intp.Stack, args...)
		return err
	}
	intp.DictStack[len(intp.DictStack)-1][name] = args[1]
	return nil
}

func bStore(intp *Interpreter) error {
	args, err := intp.pop("store", 2)
	if err != nil {
		return err
	}
	name, err := intp.dictKey("store", args[0])
	if err != nil {
		return err
	}
	for j := len(intp.DictStack) - 1; j >= 0; j-- {
		if _, ok := intp.DictStack[j][name]; ok {
			intp.DictStack[j][name] = args[1]
			return nil
		}
	}
	intp.DictStack[len(intp.DictStack)-1][name] = args[1]
	return nil
}

func bUndef(intp *Interpreter) error {
	args, err := intp.pop("undef", 2)
	if err != nil {
		return err
	}
	d, ok := args[0].(Dict)
	if !ok {
		return intp.e(eTypecheck, "undef: needs a dictionary")
	}
	name, err := intp.dictKey("undef", args[1])
	if err != nil {
		return err
	}
	delete(d, name)
	return nil
}

func bDict(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "dict: not enough arguments")
	}
	size, ok := intp.Stack[len(intp.Stack)-1].(Integer)
	if !ok {
		return intp.e(eTypecheck, "dict: needs an integer, not %T", intp.Stack[len(intp.Stack)-1])
	} else if size < 0 {
		return intp.e(eRangecheck, "dict: invalid size %d", size)
	} else if size > maxDictSize {
		return intp.e(eLimitcheck, "dict: invalid size %d", size)
	}
	intp.Stack[len(intp.Stack)-1] = make(Dict, size)
	return nil
}

func bDup(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "dup: not enough arguments")
	}
	intp.Stack = append(intp.Stack, intp.Stack[len(intp.Stack)-1])
	return nil
}

func bEq(intp *Interpreter) error {
	args, err := intp.pop("eq", 2)
	if err != nil {
		return err
	}
	intp.Stack = append(intp.Stack, Boolean(equal(args[0], args[1])))
	return nil
}

func bNe(intp *Interpreter) error {
	args, err := intp.pop("ne", 2)
	if err != nil {
		return err
	}
	intp.Stack = append(intp.Stack, Boolean(!equal(args[0], args[1])))
	return nil
}

// equal implements the comparison used by eq and ne.  Numbers compare by
// value, strings and names by content, composite objects by identity.
func equal(a, b Object) bool {
	if x, ok := toFloat(a); ok {
		y, ok := toFloat(b)
		return ok && x == y
	}
	textOf := func(obj Object) (string, bool) {
		switch obj := obj.(type) {
		case String:
			return string(obj), true
		case Name:
			return string(obj), true
		case Operator:
			return string(obj), true
		}
		return "", false
	}
	if s, ok := textOf(a); ok {
		t, ok := textOf(b)
		return ok && s == t
	}
	switch a := a.(type) {
	case Dict:
		b, ok := b.(Dict)
		return ok && isSameDict(a, b)
	case Array:
		b, ok := b.(Array)
		return ok && len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
	case Procedure:
		b, ok := b.(Procedure)
		return ok && len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
	case Boolean, mark, nil:
		return a == b
	case *SaveObject:
		return a == b
	}
	return false
}

// isSameDict reports whether a and b refer to the same map.
func isSameDict(a, b Dict) bool {
	if len(a) != len(b) {
		return false
	}

	testKeyInt := 0
	var testKey Name
	for {
		testKey = Name("\x00" + strconv.Itoa(testKeyInt))
		_, inA := a[testKey]
		_, inB := b[testKey]
		if !inA && !inB {
			break
		}
		testKeyInt++
	}

	a[testKey] = true
	_, isSame := b[testKey]
	delete(a, testKey)
	return isSame
}

func bExch(intp *Interpreter) error {
	if len(intp.Stack) < 2 {
		return intp.e(eStackunderflow, "exch: not enough arguments")
	}
	n := len(intp.Stack)
	intp.Stack[n-1], intp.Stack[n-2] = intp.Stack[n-2], intp.Stack[n-1]
	return nil
}

// index checks that sel is a valid index into a container of length n.
func (intp *Interpreter) index(op string, sel Object, n int) (int, error) {
	idx, ok := sel.(Integer)
	if !ok {
		return 0, intp.e(eTypecheck, "%s: invalid index %T", op, sel)
	}
	if idx < 0 || int(idx) >= n {
		return 0, intp.e(eRangecheck, "%s: index %d out of bounds", op, idx)
	}
	return int(idx), nil
}

func bGet(intp *Interpreter) error {
	args, err := intp.pop("get", 2)
	if err != nil {
		return err
	}
	var val Object
	switch obj := args[0].(type) {
	case Array:
		var i int
		if i, err = intp.index("get", args[1], len(obj)); err == nil {
			val = obj[i]
		}
	case Procedure:
		var i int
		if i, err = intp.index("get", args[1], len(obj)); err == nil {
			val = obj[i]
		}
	case String:
		var i int
		if i, err = intp.index("get", args[1], len(obj)); err == nil {
			val = Integer(obj[i])
		}
	case Dict:
		var name Name
		if name, err = intp.dictKey("get", args[1]); err == nil {
			var ok bool
			if val, ok = obj[name]; !ok {
				err = intp.e(eUndefined, "get: missing dict key %q", name)
			}
		}
	default:
		err = intp.e(eTypecheck, "get: invalid argument type %T", obj)
	}
	if err != nil {
		return err
	}
	intp.Stack = append(intp.Stack, val)
	return nil
}

func bPut(intp *Interpreter) error {
	args, err := intp.pop("put", 3)
	if err != nil {
		return err
	}
	value := args[2]
	switch obj := args[0].(type) {
	case Array:
		i, err := intp.index("put", args[1], len(obj))
		if err != nil {
			return err
		}
		obj[i] = value
	case Procedure:
		i, err := intp.index("put", args[1], len(obj))
		if err != nil {
			return err
		}
		obj[i] = value
	case String:
		i, err := intp.index("put", args[1], len(obj))
		if err != nil {
			return err
		}
		c, ok := value.(Integer)
		if !ok {
			return intp.e(eTypecheck, "put: invalid value")
		}
		obj[i] = byte(c)
	case Dict:
		key, err := intp.dictKey("put", args[1])
		if err != nil {
			return err
		}
		obj[key] = value
	default:
		return intp.e(eTypecheck, "put: invalid argument type %T", obj)
	}
	return nil
}

func bGetinterval(intp *Interpreter) error {
	if len(intp.Stack) < 3 {
		return intp.e(eStackunderflow, "getinterval: not enough arguments")
	}
	obj := intp.Stack[len(intp.Stack)-3]
	var n int
	switch obj := obj.(type) {
	case Array:
		n = len(obj)
	case Procedure:
		n = len(obj)
	case String:
		n = len(obj)
	default:
		return intp.e(eTypecheck, "getinterval: invalid argument type %T", obj)
	}
	index, ok1 := intp.Stack[len(intp.Stack)-2].(Integer)
	count, ok2 := intp.Stack[len(intp.Stack)-1].(Integer)
	if !ok1 || !ok2 {
		return intp.e(eTypecheck, "getinterval: invalid index or count")
	} else if index < 0 || count < 0 || int(index+count) > n {
		return intp.e(eRangecheck, "getinterval: %d+%d out of bounds", index, count)
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-3]
	var res Object
	switch obj := obj.(type) {
	case Array:
		res = obj[index : index+count]
	case Procedure:
		res = obj[index : index+count]
	case String:
		res = obj[index : index+count]
	}
	intp.Stack = append(intp.Stack, res)
	return nil
}

func bPutinterval(intp *Interpreter) error {
	if len(intp.Stack) < 3 {
		return intp.e(eStackunderflow, "putinterval: not enough arguments")
	}
	dst := intp.Stack[len(intp.Stack)-3]
	index, ok := intp.Stack[len(intp.Stack)-2].(Integer)
	if !ok {
		return intp.e(eTypecheck, "putinterval: invalid index")
	} else if index < 0 {
		return intp.e(eRangecheck, "putinterval: index out of range")
	}
	src := intp.Stack[len(intp.Stack)-1]

	switch dst := dst.(type) {
	case Array:
		src, ok := src.(Array)
		if !ok {
			return intp.e(eTypecheck, "putinterval: mismatched argument types")
		} else if int(index)+len(src) > len(dst) {
			return intp.e(eRangecheck, "putinterval: index out of range")
		}
		copy(dst[index:], src)
	case String:
		src, ok := src.(String)
		if !ok {
			return intp.e(eTypecheck, "putinterval: mismatched argument types")
		} else if int(index)+len(src) > len(dst) {
			return intp.e(eRangecheck, "putinterval: index out of range")
		}
		copy(dst[index:], src)
	default:
		return intp.e(eTypecheck, "putinterval: invalid argument type %T", dst)
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-3]
	return nil
}

func bIndex(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "index: not enough arguments")
	}
	n, err := intp.index("index", intp.Stack[len(intp.Stack)-1], len(intp.Stack)-1)
	if err != nil {
		return err
	}
	intp.Stack[len(intp.Stack)-1] = intp.Stack[len(intp.Stack)-n-2]
	return nil
}

func bKnown(intp *Interpreter) error {
	args, err := intp.pop("known", 2)
	if err != nil {
		return err
	}
	d, ok := args[0].(Dict)
	if !ok {
		return intp.e(eTypecheck, "known: needs a dictionary, not %T", args[0])
	}
	name, err := intp.dictKey("known", args[1])
	if err != nil {
		return err
	}
	_, ok = d[name]
	intp.Stack = append(intp.Stack, Boolean(ok))
	return nil
}

func bLength(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "length: not enough arguments")
	}
	var res int
	switch obj := intp.Stack[len(intp.Stack)-1].(type) {
	case Array:
		res = len(obj)
	case Procedure:
		res = len(obj)
	case Dict:
		res = len(obj)
	case String:
		res = len(obj)
	case Name:
		res = len(obj)
	case Operator:
		res = len(obj)
	default:
		return intp.e(eTypecheck, "length: invalid argument type %T", obj)
	}
	intp.Stack[len(intp.Stack)-1] = Integer(res)
	return nil
}

func bLoad(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "load: not enough arguments")
	}
	val, err := intp.load(intp.Stack[len(intp.Stack)-1])
	if err != nil {
		return err
	}
	intp.Stack[len(intp.Stack)-1] = val
	return nil
}

func bMark(intp *Interpreter) error {
	intp.Stack = append(intp.Stack, theMark)
	return nil
}

func bMaxlength(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "maxlength: not enough arguments")
	}
	dict, ok := intp.Stack[len(intp.Stack)-1].(Dict)
	if !ok {
		return intp.e(eTypecheck, "maxlength: invalid argument")
	}
	intp.Stack[len(intp.Stack)-1] = Integer(len(dict) + 1)
	return nil
}

func bPop(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "pop: not enough arguments")
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	return nil
}

// currentScanner returns the scanner of the innermost file being executed.
func (intp *Interpreter) currentScanner(op string) (*Scanner, error) {
	if len(intp.scanners) == 0 {
		return nil, intp.e(eIoerror, "%s: no current file", op)
	}
	return intp.scanners[len(intp.scanners)-1], nil
}

func bReadstring(intp *Interpreter) error {
	if len(intp.Stack) < 2 {
		return intp.e(eStackunderflow, "readstring: not enough arguments")
	}
	buf, ok := intp.Stack[len(intp.Stack)-1].(String)
	if !ok {
		return intp.e(eTypecheck, "readstring: invalid argument")
	}
	s, err := intp.currentScanner("readstring")
	if err != nil {
		return err
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-2]
	// skip the single white-space character which terminates the
	// readstring token
	_, err = s.Next()
	if err != nil && err != io.EOF {
		return err
	}
	n, err := s.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	intp.Stack = append(intp.Stack, buf[:n], Boolean(n == len(buf)))
	return nil
}

func bReadhexstring(intp *Interpreter) error {
	if len(intp.Stack) < 2 {
		return intp.e(eStackunderflow, "readhexstring: not enough arguments")
	}
	buf, ok := intp.Stack[len(intp.Stack)-1].(String)
	if !ok {
		return intp.e(eTypecheck, "readhexstring: invalid argument")
	}
	s, err := intp.currentScanner("readhexstring")
	if err != nil {
		return err
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-2]
	data, err := s.readHex('>', len(buf))
	if err != nil {
		return err
	}
	n := copy(buf, data)
	intp.Stack = append(intp.Stack, buf[:n], Boolean(n == len(buf)))
	return nil
}

func bRoll(intp *Interpreter) error {
	if len(intp.Stack) < 2 {
		return intp.e(eStackunderflow, "roll: not enough arguments")
	}
	n, ok1 := intp.Stack[len(intp.Stack)-2].(Integer)
	j, ok2 := intp.Stack[len(intp.Stack)-1].(Integer)
	if !ok1 || !ok2 {
		return intp.e(eTypecheck, "roll: needs integers")
	}
	if n < 0 || n > Integer(len(intp.Stack)-2) {
		return intp.e(eRangecheck, "roll: length %d out of bounds", n)
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-2]
	if n == 0 {
		return nil
	}
	j %= n
	if j < 0 {
		j += n
	}

	// Move the top j elements below the remaining n-j elements.
	ji := int(j)
	ni := int(n)
	data := intp.Stack[len(intp.Stack)-ni:]
	tmp := make([]Object, ji)
	copy(tmp, data[ni-ji:])
	copy(data[ji:], data[:ni-ji])
	copy(data, tmp)

	return nil
}

func bString(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "string: not enough arguments")
	}
	size, ok := intp.Stack[len(intp.Stack)-1].(Integer)
	if !ok {
		return intp.e(eTypecheck, "string: invalid argument")
	} else if size < 0 {
		return intp.e(eRangecheck, "string: invalid size %d", size)
	} else if size > maxStringSize {
		return intp.e(eLimitcheck, "string: invalid size %d", size)
	}
	intp.Stack[len(intp.Stack)-1] = make(String, size)
	return nil
}

func bType(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "type: not enough arguments")
	}
	obj := intp.Stack[len(intp.Stack)-1]
	var tp Operator
	switch obj.(type) {
	case Array, Procedure:
		tp = "arraytype"
	case Boolean:
		tp = "booleantype"
	case Dict:
		tp = "dicttype"
	case nil:
		tp = "nulltype"
	case Integer:
		tp = "integertype"
	case Name, Operator:
		tp = "nametype"
	case builtin:
		tp = "operatortype"
	case Real:
		tp = "realtype"
	case *SaveObject:
		tp = "savetype"
	case String:
		tp = "stringtype"
	case mark:
		tp = "marktype"
	default:
		return intp.e(eTypecheck, "type: not implemented for %T", obj)
	}
	intp.Stack[len(intp.Stack)-1] = tp
	return nil
}

func bWhere(intp *Interpreter) error {
	if len(intp.Stack) < 1 {
		return intp.e(eStackunderflow, "where: not enough arguments")
	}
	key, err := intp.dictKey("where", intp.Stack[len(intp.Stack)-1])
	if err != nil {
		return err
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	for j := len(intp.DictStack) - 1; j >= 0; j-- {
		d := intp.DictStack[j]
		if _, ok := d[key]; ok {
			intp.Stack = append(intp.Stack, d, Boolean(true))
			return nil
		}
	}
	intp.Stack = append(intp.Stack, Boolean(false))
	return nil
}
