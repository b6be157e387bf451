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

import "fmt"

// Space identifies a device color space by its number of components.
type Space int

// These are the supported device color spaces.
const (
	SpaceGray Space = 1
	SpaceRGB  Space = 3
	SpaceCMYK Space = 4
)

// SpaceFromComponents returns the color space with n components.
// Unknown values select RGB.
func SpaceFromComponents(n int) Space {
	switch n {
	case 1:
		return SpaceGray
	case 4:
		return SpaceCMYK
	default:
		return SpaceRGB
	}
}

// NumComponents returns the number of color components of the space.
func (s Space) NumComponents() int {
	return int(s)
}

// Color converts component values in the color space s to a Color.
// Missing components are treated as zero.
func (s Space) Color(comps []float64) Color {
	get := func(i int) float64 {
		if i < len(comps) {
			return comps[i]
		}
		return 0
	}
	switch s {
	case SpaceGray:
		return Gray(get(0))
	case SpaceCMYK:
		return CMYK(get(0), get(1), get(2), get(3))
	default:
		return RGB(get(0), get(1), get(2))
	}
}

func (s Space) String() string {
	switch s {
	case SpaceGray:
		return "DeviceGray"
	case SpaceRGB:
		return "DeviceRGB"
	case SpaceCMYK:
		return "DeviceCMYK"
	default:
		return fmt.Sprintf("Space(%d)", int(s))
	}
}
