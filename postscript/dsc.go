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
	"strconv"
	"strings"
)

// Comment is a document structuring comment like "%%BoundingBox: 0 0 10 20".
type Comment struct {
	Key   string
	Value string
}

var errNoKey = errors.New("empty DSC key")

// readStructuredComment reads a comment starting with "%%".  Continuation
// lines starting with "%%+" are appended to the value, separated by a space.
func (s *Scanner) readStructuredComment() (Comment, error) {
	s.SkipN(2)
	line, err := s.readLine()
	if err != nil {
		return Comment{}, err
	}
	for s.LookingAt("%%+") {
		s.SkipN(3)
		more, err := s.readLine()
		if err != nil {
			return Comment{}, err
		}
		line += " " + strings.TrimSpace(more)
	}

	end := strings.IndexAny(line, ": \t")
	if end == 0 || line == "" {
		return Comment{}, errNoKey
	} else if end < 0 {
		return Comment{Key: line}, nil
	}
	key, value := line[:end], line[end:]
	value = strings.TrimPrefix(value, ":")
	return Comment{Key: key, Value: strings.TrimSpace(value)}, nil
}

// Numbers parses the value of the comment as a list of numbers.
// The second return value is false if any field is not a number,
// for example for "(atend)".
func (c Comment) Numbers() ([]float64, bool) {
	fields := strings.Fields(c.Value)
	res := make([]float64, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		res[i] = x
	}
	return res, true
}

// FindComment returns the first comment with the given key.
func FindComment(comments []Comment, key string) (Comment, bool) {
	for _, c := range comments {
		if c.Key == key {
			return c, true
		}
	}
	return Comment{}, false
}
