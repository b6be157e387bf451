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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"seehuhn.de/go/geom/matrix"
)

// Callback receives the numeric operands of a graphics operator.
type Callback func(args []float64) error

type callback struct {
	arity int
	fn    Callback
}

// Interpreter executes PostScript code.
type Interpreter struct {
	Stack     []Object
	DictStack []Dict
	DSC       []Comment

	// CheckStart requires the input to start with "%!".
	CheckStart bool

	SystemDict Dict
	UserDict   Dict
	ErrorDict  Dict

	// OpenFile is used by the run operator.
	// If OpenFile is nil, files are opened using os.Open.
	OpenFile func(name string) (io.ReadCloser, error)

	// Output receives the text written by print, = and ==.
	// If Output is nil, the text is discarded.
	Output io.Writer

	// Images receives the pixel data painted by image and colorimage.
	Images ImageSink

	// DefaultMatrix is the matrix installed by initgraphics and initmatrix.
	DefaultMatrix matrix.Matrix

	callbacks map[string]callback
	gs        *graphicsState
	gsStack   []*graphicsState
	saveLevel int
	patternID int
	imageID   int

	scanners  []*Scanner
	procStart []int
	execDepth int
}

// NewInterpreter allocates a new interpreter with the standard dictionaries
// in place.
func NewInterpreter() *Interpreter {
	systemDict := makeSystemDict()
	intp := &Interpreter{
		SystemDict:    systemDict,
		UserDict:      systemDict["userdict"].(Dict),
		ErrorDict:     systemDict["errordict"].(Dict),
		DefaultMatrix: matrix.Identity,
		callbacks:     make(map[string]callback),
	}
	intp.DictStack = []Dict{intp.SystemDict, intp.UserDict}
	intp.gs = newGraphicsState(intp.DefaultMatrix)
	return intp
}

// Register installs fn as the callback for the graphics operator name.
// The callback is only invoked if at least arity operands are available;
// an arity of -1 accepts any number of operands.
func (intp *Interpreter) Register(name string, arity int, fn Callback) {
	intp.callbacks[name] = callback{arity: arity, fn: fn}
}

// notify reports a graphics operator to the registered callback.
func (intp *Interpreter) notify(name string, args ...float64) error {
	cb, ok := intp.callbacks[name]
	if !ok {
		return nil
	}
	if cb.arity >= 0 && len(args) < cb.arity {
		return intp.e(eStackunderflow, "%s: %d operands, need %d", name, len(args), cb.arity)
	}
	return cb.fn(args)
}

// ExecuteString executes the PostScript code in code.
func (intp *Interpreter) ExecuteString(code string) error {
	return intp.Execute(strings.NewReader(code))
}

// Execute executes the PostScript code read from r.
func (intp *Interpreter) Execute(r io.Reader) error {
	s := NewScanner(r)
	err := intp.executeScanner(s)
	intp.DSC = append(intp.DSC, s.DSC...)
	return err
}

// ExecuteFile executes the PostScript file with the given name.
func (intp *Interpreter) ExecuteFile(name string) error {
	open := intp.OpenFile
	if open == nil {
		open = func(name string) (io.ReadCloser, error) { return os.Open(name) }
	}
	fd, err := open(name)
	if err != nil {
		return intp.e(eUndefinedfilename, "%s", name)
	}
	defer fd.Close()
	return intp.Execute(fd)
}

func (intp *Interpreter) executeScanner(s *Scanner) error {
	if intp.CheckStart {
		head := s.PeekN(2)
		if string(head) != "%!" {
			return errors.New("not a PostScript file")
		}
		intp.CheckStart = false
	}

	intp.scanners = append(intp.scanners, s)
	defer func() {
		intp.scanners = intp.scanners[:len(intp.scanners)-1]
	}()

	for {
		o, err := s.ScanToken()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		err = intp.executeOne(o, false)
		if err == io.EOF { // closefile on currentfile
			break
		} else if err != nil {
			return err
		}
	}
	if len(intp.procStart) > 0 {
		intp.procStart = intp.procStart[:0]
		return intp.e(eSyntaxerror, "unterminated procedure")
	}
	return nil
}

func (intp *Interpreter) executeOne(o Object, execProc bool) error {
	if len(intp.Stack) > maxOperandStackDepth {
		return intp.e(eStackoverflow, "%d objects on the operand stack", len(intp.Stack))
	}

	if o == Operator("}") {
		if len(intp.procStart) == 0 {
			return intp.e(eSyntaxerror, "unmatched '}'")
		}
		a := intp.procStart[len(intp.procStart)-1]
		intp.procStart = intp.procStart[:len(intp.procStart)-1]
		b := len(intp.Stack)
		proc := make(Procedure, b-a)
		copy(proc, intp.Stack[a:])
		intp.Stack = append(intp.Stack[:a], proc)
		return nil
	} else if o == Operator("{") {
		intp.procStart = append(intp.procStart, len(intp.Stack))
		return nil
	} else if name, ok := o.(immediateName); ok {
		val, err := intp.load(Name(name))
		if err != nil {
			return err
		}
		intp.Stack = append(intp.Stack, val)
		return nil
	} else if len(intp.procStart) > 0 {
		intp.Stack = append(intp.Stack, o)
		return nil
	}

	switch o := o.(type) {
	case Operator:
		val, err := intp.load(o)
		if err == nil {
			err = intp.executeOne(val, true)
		}
		if e2, ok := err.(*postScriptError); ok {
			if proc, ok := intp.ErrorDict[e2.tp]; ok {
				err = intp.executeOne(proc, true)
			}
		}
		return err

	case builtin:
		return o(intp)

	case Procedure:
		if !execProc {
			intp.Stack = append(intp.Stack, o)
			return nil
		}
		if intp.execDepth >= maxExecDepth {
			return intp.e(eLimitcheck, "procedures nested too deeply")
		}
		intp.execDepth++
		defer func() { intp.execDepth-- }()
		for _, token := range o {
			err := intp.executeOne(token, false)
			if err != nil {
				return err
			}
		}

	default:
		intp.Stack = append(intp.Stack, o)
	}
	return nil
}

func (intp *Interpreter) load(key Object) (Object, error) {
	var name Name
	switch key := key.(type) {
	case Name:
		name = key
	case Operator:
		name = Name(key)
	default:
		return nil, intp.e(eTypecheck, "cannot look up %T", key)
	}
	for j := len(intp.DictStack) - 1; j >= 0; j-- {
		d := intp.DictStack[j]
		if val, ok := d[name]; ok {
			return val, nil
		}
	}
	return nil, intp.e(eUndefined, "%s", name)
}

// Lookup returns the value of name in the current dictionary stack.
func (intp *Interpreter) Lookup(name string) (Object, bool) {
	val, err := intp.load(Name(name))
	return val, err == nil
}

// pop removes n objects from the operand stack and returns them.
func (intp *Interpreter) pop(op string, n int) ([]Object, error) {
	if len(intp.Stack) < n {
		return nil, intp.e(eStackunderflow, "%s: not enough arguments", op)
	}
	args := intp.Stack[len(intp.Stack)-n:]
	intp.Stack = intp.Stack[:len(intp.Stack)-n]
	return args, nil
}

// popNumbers removes n numbers from the operand stack.  On error, the
// stack is left unchanged.
func (intp *Interpreter) popNumbers(op string, n int) ([]float64, error) {
	if len(intp.Stack) < n {
		return nil, intp.e(eStackunderflow, "%s: not enough arguments", op)
	}
	res := make([]float64, n)
	for i, obj := range intp.Stack[len(intp.Stack)-n:] {
		x, ok := toFloat(obj)
		if !ok {
			return nil, intp.e(eTypecheck, "%s: needs numbers, not %T", op, obj)
		}
		res[i] = x
	}
	intp.Stack = intp.Stack[:len(intp.Stack)-n]
	return res, nil
}

func (intp *Interpreter) objectString(o Object) string {
	switch o := o.(type) {
	case nil:
		return "currentfile"
	case Boolean:
		return fmt.Sprintf("%t", o)
	case Integer:
		return fmt.Sprint(int(o))
	case Real:
		return fmt.Sprint(float64(o))
	case Name:
		return "/" + string(o)
	case Operator:
		return string(o)
	case String:
		return string(o)
	case Array:
		var ss []string
		for _, oi := range o {
			ss = append(ss, intp.objectString(oi))
		}
		return "[" + strings.Join(ss, " ") + "]"
	case Procedure:
		return "--nostringval--"
	case Dict:
		if isSameDict(o, intp.SystemDict) {
			return "*systemdict*"
		} else if isSameDict(o, intp.UserDict) {
			return "*userdict*"
		}
		return fmt.Sprintf("<Dict %d>", len(o))
	case builtin:
		return "--builtin--"
	case mark:
		return "-mark-"
	case *SaveObject:
		return fmt.Sprintf("-save %d-", o.Level)
	default:
		return fmt.Sprintf("<%T>", o)
	}
}

const (
	maxArraySize         = 65536
	maxDictSize          = 65536
	maxStringSize        = 65535
	maxDictStackDepth    = 40
	maxOperandStackDepth = 2000
	maxExecDepth         = 250
)
