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

package pssvg

import (
	"math"

	"seehuhn.de/go/pssvg/color"
	"seehuhn.de/go/pssvg/pattern"
)

// State holds the graphics parameters which are not kept by the host.
// The transformation matrix and the drawing position live in [Actions].
type State struct {
	LineWidth  float64
	LineCap    int // 0 = butt, 1 = round, 2 = square
	LineJoin   int // 0 = miter, 1 = round, 2 = bevel
	MiterLimit float64

	// Dash lists the dash lengths in device space, DashOffset is the
	// phase.  An empty Dash gives solid lines.
	Dash       []float64
	DashOffset float64

	// FillAlpha and StrokeAlpha hold the constant opacity and the shape
	// opacity.  The effective opacity is the product of both.
	FillAlpha   [2]float64
	StrokeAlpha [2]float64

	// IsShapeAlpha selects which component setopacityalpha changes.
	IsShapeAlpha bool

	// BlendMode is an index into the list of blend mode names.
	BlendMode int

	// Pattern is the active fill pattern, or nil.
	Pattern *pattern.Pattern

	// PatternEnabled is set while a pattern installs its paint.  Color
	// changes made at that time keep the active pattern.
	PatternEnabled bool

	Color color.Color

	// SX, SY and Cos describe the scaling part of the PostScript CTM.
	// They are used to convert lengths from user space to device space.
	SX, SY, Cos float64
}

// DefaultState returns the graphics parameters set by initgraphics.
func DefaultState() State {
	return State{
		LineWidth:   1,
		MiterLimit:  10,
		FillAlpha:   [2]float64{1, 1},
		StrokeAlpha: [2]float64{1, 1},
		Color:       color.Black,
		SX:          1,
		SY:          1,
		Cos:         1,
	}
}

// scale converts a length from user space to device space.
func (s *State) scale(v float64) float64 {
	return v * math.Sqrt(math.Abs(s.SX*s.SY))
}

func (s *State) fillOpacity() float64 {
	return s.FillAlpha[0] * s.FillAlpha[1]
}

func (s *State) strokeOpacity() float64 {
	return s.StrokeAlpha[0] * s.StrokeAlpha[1]
}

// blendModes lists the CSS names of the PostScript blend modes, in the
// order of their index.
var blendModes = []string{
	"normal", "multiply", "screen", "overlay",
	"soft-light", "hard-light", "color-dodge", "color-burn",
	"darken", "lighten", "difference", "exclusion",
	"hue", "saturation", "color", "luminosity",
}

// blendStyle returns the style attribute value for the current blend mode,
// or "" for normal blending.
func (s *State) blendStyle() string {
	if s.BlendMode <= 0 || s.BlendMode >= len(blendModes) {
		return ""
	}
	return "mix-blend-mode:" + blendModes[s.BlendMode]
}
