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

package color

import "testing"

func TestConstructors(t *testing.T) {
	cases := []struct {
		name string
		c    Color
		hex  string
	}{
		{"black", Black, "#000000"},
		{"gray", Gray(1), "#ffffff"},
		{"red", RGB(1, 0, 0), "#ff0000"},
		{"cmyk-cyan", CMYK(1, 0, 0, 0), "#00ffff"},
		{"cmyk-black", CMYK(0, 0, 0, 1), "#000000"},
		{"hsb-red", HSB(0, 1, 1), "#ff0000"},
		{"hsb-green", HSB(1.0/3, 1, 1), "#00ff00"},
		{"hsb-wrap", HSB(1, 1, 1), "#ff0000"},
		{"clamped", RGB(-1, 2, 0.5), "#00ff80"},
	}
	for _, c := range cases {
		if got := c.c.String(); got != c.hex {
			t.Errorf("%s: got %s, want %s", c.name, got, c.hex)
		}
	}
}

func TestSpace(t *testing.T) {
	if SpaceFromComponents(2) != SpaceRGB {
		t.Error("unknown component count should select RGB")
	}
	if got := SpaceCMYK.Color([]float64{0, 1, 1, 0}); got != RGB(1, 0, 0) {
		t.Errorf("got %v", got)
	}
	if got := SpaceGray.Color([]float64{0.5}); got != Gray(0.5) {
		t.Errorf("got %v", got)
	}
	if got := SpaceRGB.Color(nil); got != Black {
		t.Errorf("got %v", got)
	}
}
