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

// Package color implements the device colors used by the PostScript
// graphics operators.
//
// Colors are stored with 8 bits per RGB channel, so that two colors which
// render identically also compare equal.
package color

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an opaque RGB color.
type Color struct {
	R, G, B uint8
}

// Black is the initial color of the graphics state.
var Black = Color{}

// White is used as the default background color.
var White = Color{255, 255, 255}

// Gray returns the color for the gray level g in [0, 1].
func Gray(g float64) Color {
	v := quantize(g)
	return Color{v, v, v}
}

// RGB returns the color with the given red, green and blue components,
// each in [0, 1].
func RGB(r, g, b float64) Color {
	return Color{quantize(r), quantize(g), quantize(b)}
}

// CMYK returns the color with the given cyan, magenta, yellow and black
// components, each in [0, 1].
func CMYK(c, m, y, k float64) Color {
	return RGB((1-c)*(1-k), (1-m)*(1-k), (1-y)*(1-k))
}

// HSB returns the color with the given hue, saturation and brightness, each
// in [0, 1], as used by the PostScript sethsbcolor operator.
func HSB(h, s, b float64) Color {
	h = clamp(h)
	if h == 1 {
		h = 0
	}
	c := colorful.Hsv(h*360, clamp(s), clamp(b))
	return RGB(c.R, c.G, c.B)
}

// Components returns the red, green and blue components in [0, 1].
func (c Color) Components() (r, g, b float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// String returns the color in the #rrggbb notation used in SVG attributes.
func (c Color) String() string {
	r, g, b := c.Components()
	return colorful.Color{R: r, G: g, B: b}.Hex()
}

func quantize(x float64) uint8 {
	return uint8(math.Round(clamp(x) * 255))
}

func clamp(x float64) float64 {
	switch {
	case x < 0 || math.IsNaN(x):
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
