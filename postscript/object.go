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

// Package postscript implements the PostScript interpreter which drives the
// SVG backend.  Graphics operators keep a minimal graphics state and report
// every state change to callbacks registered by the backend.
package postscript

import (
	"fmt"
	"strings"
)

// Object is a PostScript object.
type Object interface{}

// Integer is a PostScript integer.
type Integer int

// Real is a PostScript real number.
type Real float64

// Boolean is a PostScript boolean.
type Boolean bool

// String is a PostScript string.
type String []byte

func (s String) String() string {
	return fmt.Sprintf("%q", string(s))
}

// Name is a literal PostScript name.
type Name string

func (n Name) String() string {
	return "/" + string(n)
}

// Operator is an executable PostScript name.
type Operator string

// Array is a literal PostScript array.
type Array []Object

// Procedure is an executable PostScript array.
type Procedure []Object

func (p Procedure) String() string {
	var ss []string
	ss = append(ss, "{")
	for i, o := range p {
		if i > 0 {
			ss = append(ss, " ")
		}
		ss = append(ss, fmt.Sprint(o))
	}
	ss = append(ss, "}")
	return strings.Join(ss, "")
}

// Dict is a PostScript dictionary.
type Dict map[Name]Object

func (d Dict) String() string {
	return fmt.Sprintf("<Dict %d>", len(d))
}

// SaveObject is the result of the save operator.
type SaveObject struct {
	Level int

	depth int // length of the graphics state stack at the time of save
}

type mark struct{}

var theMark Object = mark{}

type builtin func(*Interpreter) error

// toFloat converts a PostScript number to float64.
func toFloat(obj Object) (float64, bool) {
	switch x := obj.(type) {
	case Integer:
		return float64(x), true
	case Real:
		return float64(x), true
	default:
		return 0, false
	}
}
