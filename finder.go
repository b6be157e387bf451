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
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// Finder locates the files referenced by PostScript specials.
type Finder interface {
	// Find returns the path of the file with the given name.
	// The second return value is false if the file cannot be found.
	Find(name string) (string, bool)
}

// DirFinder looks for files in a list of directories, and finally in the
// current working directory.
type DirFinder struct {
	Dirs []string
}

// NewDirFinder returns a finder which searches the given directories.
// A leading "~" in a directory name is expanded to the home directory.
func NewDirFinder(dirs ...string) *DirFinder {
	f := &DirFinder{}
	for _, dir := range dirs {
		expanded, err := homedir.Expand(dir)
		if err != nil {
			expanded = dir
		}
		f.Dirs = append(f.Dirs, expanded)
	}
	return f
}

// Find implements the [Finder] interface.
func (f *DirFinder) Find(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if filepath.IsAbs(name) {
		return name, isFile(name)
	}
	for _, dir := range f.Dirs {
		candidate := filepath.Join(dir, name)
		if isFile(candidate) {
			return candidate, true
		}
	}
	if isFile(name) {
		return name, true
	}
	return "", false
}

func isFile(name string) bool {
	fi, err := os.Stat(name)
	return err == nil && fi.Mode().IsRegular()
}
