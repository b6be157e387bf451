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
)

type postScriptError struct {
	tp  Name
	msg string
}

func (err *postScriptError) Error() string {
	if err.msg == "" {
		return string(err.tp)
	}
	return string(err.tp) + ": " + err.msg
}

// ErrorName returns the name of the PostScript error wrapped in err.
func ErrorName(err error) (Name, bool) {
	var psErr *postScriptError
	if errors.As(err, &psErr) {
		return psErr.tp, true
	}
	return "", false
}

func (intp *Interpreter) e(tp Name, format string, args ...interface{}) error {
	return &postScriptError{tp, fmt.Sprintf(format, args...)}
}

// These are the PostScript error names used by the interpreter.
const (
	eDictstackoverflow  Name = "dictstackoverflow"
	eDictstackunderflow Name = "dictstackunderflow"
	eInvalidaccess      Name = "invalidaccess"
	eInvalidexit        Name = "invalidexit"
	eInvalidrestore     Name = "invalidrestore"
	eIoerror            Name = "ioerror"
	eLimitcheck         Name = "limitcheck"
	eNocurrentpoint     Name = "nocurrentpoint"
	eRangecheck         Name = "rangecheck"
	eStackoverflow      Name = "stackoverflow"
	eStackunderflow     Name = "stackunderflow"
	eSyntaxerror        Name = "syntaxerror"
	eTypecheck          Name = "typecheck"
	eUndefined          Name = "undefined"
	eUndefinedfilename  Name = "undefinedfilename"
	eUndefinedresult    Name = "undefinedresult"
	eUnmatchedmark      Name = "unmatchedmark"
)

var (
	errExit = errors.New("exit")
	errStop = errors.New("stop")
)
