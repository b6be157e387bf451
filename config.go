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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the settings of a conversion run.
type Config struct {
	// ComputeClipIntersections selects whether nested clipping paths are
	// intersected explicitly.  If false, nested clip paths refer to their
	// predecessor through a clip-path attribute.
	ComputeClipIntersections bool `toml:"compute_clip_intersections"`

	// ShadingSegmentSize is the number of grid cells per side used to
	// approximate a shading patch.
	ShadingSegmentSize int `toml:"shading_segment_size"`

	// ShadingSegmentOverlap enlarges the cells of a shading patch so that
	// neighbouring cells overlap.  This hides hairline gaps in some
	// renderers.
	ShadingSegmentOverlap bool `toml:"shading_segment_overlap"`

	// ShadingSimplifyDelta is the largest deviation from a straight line
	// for which a curved cell boundary is written as a line.
	ShadingSimplifyDelta float64 `toml:"shading_simplify_delta"`

	// BitmapFormat is the file format for images painted by PostScript
	// code: "png", "jpeg" or "none".
	BitmapFormat string `toml:"bitmap_format"`

	// Headers lists PostScript header files which are loaded before the
	// first page.
	Headers []string `toml:"headers"`

	// SearchPath lists the directories searched for header files and
	// included graphics.
	SearchPath []string `toml:"search_path"`

	// BBoxFormat selects how box data of the LaTeX preview package is
	// used: "preview" replaces the page bounding box by the box of the
	// preview package, "min" keeps the collected box, and "none" ignores
	// the data.  With "preview" and "min", the box is locked.
	BBoxFormat string `toml:"bbox_format"`

	// TempDir is the directory for temporary bitmap files.
	// If empty, the system default is used.
	TempDir string `toml:"temp_dir"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() *Config {
	return &Config{
		ShadingSegmentSize:   20,
		ShadingSimplifyDelta: 0.01,
		BitmapFormat:         "png",
		BBoxFormat:           "min",
	}
}

// LoadConfig reads a TOML configuration file.  Settings missing from the
// file keep their default values.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	err := dec.Decode(cfg)
	if err != nil {
		var missing *toml.StrictMissingError
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("config: unknown setting\n%s", missing.String())
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile reads the TOML configuration file with the given name.
func LoadConfigFile(name string) (*Config, error) {
	fd, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return LoadConfig(fd)
}

// Validate checks that all settings are in range.
func (c *Config) Validate() error {
	if c.ShadingSegmentSize < 1 || c.ShadingSegmentSize > 100 {
		return fmt.Errorf("%w: shading_segment_size %d not in [1, 100]",
			ErrInvalidConfig, c.ShadingSegmentSize)
	}
	if c.ShadingSimplifyDelta < 0 {
		return fmt.Errorf("%w: negative shading_simplify_delta %g",
			ErrInvalidConfig, c.ShadingSimplifyDelta)
	}
	switch c.BitmapFormat {
	case "png", "jpeg", "jpg", "none":
		// pass
	default:
		return fmt.Errorf("%w: unsupported bitmap_format %q",
			ErrInvalidConfig, c.BitmapFormat)
	}
	switch c.BBoxFormat {
	case "min", "preview", "none":
		// pass
	default:
		return fmt.Errorf("%w: unsupported bbox_format %q",
			ErrInvalidConfig, c.BBoxFormat)
	}
	return nil
}

// ErrInvalidConfig is returned by [Config.Validate] for out-of-range
// settings.
var ErrInvalidConfig = errors.New("invalid configuration")
