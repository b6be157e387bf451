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
	"bufio"
	"encoding/ascii85"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Scanner splits PostScript input into tokens.  Document structuring
// comments found at the start of a line are collected in DSC.
type Scanner struct {
	Line int // 0-based
	Col  int // 0-based
	DSC  []Comment

	r      *bufio.Reader
	crSeen bool
}

// NewScanner returns a scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

// Read implements the io.Reader interface.  This is used by operators
// which read from the current file.
func (s *Scanner) Read(p []byte) (int, error) {
	for n := range p {
		b, err := s.Next()
		if err != nil {
			return n, err
		}
		p[n] = b
	}
	return len(p), nil
}

// ScanToken reads the next token.  At the end of input, io.EOF is returned.
func (s *Scanner) ScanToken() (Object, error) {
	err := s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}
	b, err := s.Peek()
	if err != nil {
		return nil, err
	}

	switch b {
	case '(':
		return s.ReadString()
	case ')':
		s.SkipByte()
		return nil, &postScriptError{eSyntaxerror, "unexpected ')'"}
	case '[', ']', '{', '}':
		s.SkipByte()
		return Operator([]byte{b}), nil
	case '/':
		s.SkipByte()
		if s.LookingAt("/") {
			s.SkipByte()
			name, err := s.readRegular()
			return immediateName(name), err
		}
		name, err := s.readRegular()
		return Name(name), err
	}

	switch next := string(s.PeekN(2)); {
	case next == "<<" || next == ">>":
		s.SkipN(2)
		return Operator(next), nil
	case next == "<~":
		return s.ReadBase85String()
	case b == '<':
		return s.ReadHexString()
	case b == '>':
		s.SkipByte()
		return nil, &postScriptError{eSyntaxerror, "unexpected '>'"}
	}

	word, err := s.readRegular()
	if err != nil {
		return nil, err
	}
	if x, ok := parseNumber(word); ok {
		return x, nil
	}
	return Operator(word), nil
}

// immediateName is a name which is looked up as soon as it is scanned.
type immediateName string

// readRegular reads a run of regular characters.
func (s *Scanner) readRegular() ([]byte, error) {
	var res []byte
	for {
		b, err := s.Peek()
		if err == io.EOF || err == nil && !isRegular(b) {
			return res, nil
		} else if err != nil {
			return nil, err
		}
		s.SkipByte()
		res = append(res, b)
	}
}

// stringEscapes maps the characters following a backslash in a string
// literal to the characters they stand for.  Characters not in the map
// stand for themselves.
var stringEscapes = map[byte]byte{
	'n': '\n',
	'r': '\r',
	't': '\t',
	'b': '\b',
	'f': '\f',
}

// ReadString reads a string enclosed in parentheses.  Line breaks inside
// the string are normalized to LF.
func (s *Scanner) ReadString() (String, error) {
	err := s.SkipRequiredByte('(')
	if err != nil {
		return nil, err
	}
	var res []byte
	depth := 1
	for {
		b, err := s.Next()
		if err != nil {
			return nil, err
		}
		switch b {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return String(res), nil
			}
		case '\r':
			s.SkipOptionalByte('\n')
			b = '\n'
		case '\\':
			b, err = s.Next()
			if err != nil {
				return nil, err
			}
			switch {
			case b == '\n':
				continue
			case b == '\r':
				s.SkipOptionalByte('\n')
				continue
			case b >= '0' && b <= '7':
				b = s.readOctal(b - '0')
			default:
				if c, ok := stringEscapes[b]; ok {
					b = c
				}
			}
		}
		res = append(res, b)
	}
}

// readOctal reads up to two more octal digits of a character code.
func (s *Scanner) readOctal(code byte) byte {
	for range 2 {
		b, err := s.Peek()
		if err != nil || b < '0' || b > '7' {
			break
		}
		s.SkipByte()
		code = code<<3 | (b - '0')
	}
	return code
}

// ReadHexString reads a string enclosed in angle brackets.
func (s *Scanner) ReadHexString() (String, error) {
	err := s.SkipRequiredByte('<')
	if err != nil {
		return nil, err
	}
	return s.readHex('>', -1)
}

// readHex decodes hexadecimal digits until the terminator byte is found or,
// if limit is non-negative, until limit bytes have been decoded.  White
// space is ignored.  An odd number of digits is padded with a zero.
func (s *Scanner) readHex(terminator byte, limit int) (String, error) {
	var digits []byte
	for limit < 0 || len(digits) < 2*limit {
		b, err := s.Next()
		if err == io.EOF && limit >= 0 {
			break
		} else if err != nil {
			return nil, err
		}
		if b == terminator {
			break
		} else if b <= ' ' {
			continue
		}
		digits = append(digits, b)
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	res := make([]byte, len(digits)/2)
	_, err := hex.Decode(res, digits)
	if err != nil {
		return nil, &postScriptError{eSyntaxerror, err.Error()}
	}
	return String(res), nil
}

// ReadBase85String reads an ASCII85-encoded string enclosed in <~ and ~>.
func (s *Scanner) ReadBase85String() (String, error) {
	for _, b := range []byte("<~") {
		err := s.SkipRequiredByte(b)
		if err != nil {
			return nil, err
		}
	}

	var enc []byte
	for {
		b, err := s.Next()
		if err != nil {
			return nil, err
		}
		if b == '~' {
			break
		}
		enc = append(enc, b)
	}
	err := s.SkipRequiredByte('>')
	if err != nil {
		return nil, err
	}

	res := make([]byte, 4*len(enc))
	n, _, err := ascii85.Decode(res, enc, true)
	if err != nil {
		return nil, &postScriptError{eSyntaxerror, "invalid base85 string: " + err.Error()}
	}
	return String(res[:n]), nil
}

// SkipWhiteSpace skips all input (including comments) until a non-whitespace
// character is found.  Structured comments are recorded in s.DSC.
func (s *Scanner) SkipWhiteSpace() error {
	for {
		b, err := s.Peek()
		if err != nil {
			return err
		}
		switch {
		case b <= ' ':
			s.SkipByte()
		case b == '%' && s.Col == 0 && s.LookingAt("%%"):
			c, err := s.readStructuredComment()
			if errors.Is(err, errNoKey) {
				continue
			} else if err != nil {
				return err
			}
			s.DSC = append(s.DSC, c)
		case b == '%':
			if _, err := s.readLine(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// readLine returns the rest of the current line, without the line
// terminator.  CR, LF and CR+LF are all recognized.
func (s *Scanner) readLine() (string, error) {
	var line []byte
	for {
		b, err := s.Next()
		if err == io.EOF {
			return string(line), nil
		} else if err != nil {
			return "", err
		}
		switch b {
		case '\n':
			return string(line), nil
		case '\r':
			s.SkipOptionalByte('\n')
			return string(line), nil
		}
		line = append(line, b)
	}
}

// LookingAt reports whether the input continues with pat.
func (s *Scanner) LookingAt(pat string) bool {
	return string(s.PeekN(len(pat))) == pat
}

// SkipByte skips a single byte of input
func (s *Scanner) SkipByte() {
	s.Next()
}

// SkipN skips n bytes which have already been peeked.
func (s *Scanner) SkipN(n int) {
	for range n {
		s.Next()
	}
}

// SkipRequiredByte consumes the next byte, which must equal expected.
func (s *Scanner) SkipRequiredByte(expected byte) error {
	seen, err := s.Next()
	if err != nil {
		return err
	}
	if seen != expected {
		return &postScriptError{eSyntaxerror, fmt.Sprintf("expected %q, got %q", expected, seen)}
	}
	return nil
}

// SkipOptionalByte consumes the next byte if it equals b.
func (s *Scanner) SkipOptionalByte(b byte) {
	if next, err := s.Peek(); err == nil && next == b {
		s.Next()
	}
}

// Peek returns the next byte without consuming it.
func (s *Scanner) Peek() (byte, error) {
	buf, err := s.r.Peek(1)
	if len(buf) == 0 {
		return 0, err
	}
	return buf[0], nil
}

// PeekN returns up to n bytes without consuming them.  Fewer bytes are
// returned at the end of input.
func (s *Scanner) PeekN(n int) []byte {
	buf, _ := s.r.Peek(n)
	return buf
}

// Next consumes and returns the next byte.  The position in s.Line and
// s.Col is updated.
func (s *Scanner) Next() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, err
	}

	switch {
	case s.crSeen && b == '\n':
		// second byte of CR+LF
	case b == '\n' || b == '\r':
		s.Line++
		s.Col = 0
	default:
		s.Col++
	}
	s.crSeen = b == '\r'
	return b, nil
}

func isRegular(b byte) bool {
	if b <= ' ' {
		return false
	}
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	default:
		return true
	}
}

// parseNumber converts a token to an Integer or a Real.  Radix numbers
// like 16#FF are supported.  The second return value is false if the token
// is not a number.
func parseNumber(word []byte) (Object, bool) {
	s := string(word)
	if x, err := strconv.ParseInt(s, 10, 0); err == nil {
		return Integer(x), true
	}
	if y, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(y, 0) && !math.IsNaN(y) {
		return Real(y), true
	}

	base, digits, found := strings.Cut(s, "#")
	if !found || len(base) == 0 || len(base) > 2 || digits == "" {
		return nil, false
	}
	b, err := strconv.Atoi(base)
	if err != nil || b < 2 || b > 36 || base[0] == '+' || base[0] == '-' {
		return nil, false
	}
	z, err := strconv.ParseInt(digits, b, 0)
	if err != nil || digits[0] == '+' || digits[0] == '-' {
		return nil, false
	}
	return Integer(z), true
}
