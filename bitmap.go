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
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// bitmapWriter stores the images painted by the PostScript image operators
// in temporary files, until the image operator callback embeds them into
// the SVG output.
type bitmapWriter struct {
	format string

	// base returns the directory and file name prefix for the image
	// files of the current page.
	base func() string
}

// fileName returns the name of the file for image id.
func (w *bitmapWriter) fileName(id int) string {
	return w.base() + strconv.Itoa(id) + w.suffix()
}

func (w *bitmapWriter) suffix() string {
	if w.isJPEG() {
		return ".jpg"
	}
	return ".png"
}

func (w *bitmapWriter) isJPEG() bool {
	return w.format == "jpeg" || w.format == "jpg"
}

// mimeType returns the media type of the image files.
func (w *bitmapWriter) mimeType() string {
	if w.isJPEG() {
		return "image/jpeg"
	}
	return "image/png"
}

// WriteImage implements the [postscript.ImageSink] interface.
func (w *bitmapWriter) WriteImage(id int, img image.Image) error {
	fd, err := os.Create(w.fileName(id))
	if err != nil {
		return err
	}
	if w.isJPEG() {
		err = jpeg.Encode(fd, img, &jpeg.Options{Quality: 90})
	} else {
		err = png.Encode(fd, img)
	}
	err2 := fd.Close()
	if err == nil {
		err = err2
	}
	return err
}

// imageBase returns the prefix of the temporary image files for the
// current page.
func (h *Handler) imageBase() string {
	dir := h.cfg.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	name := filepath.Base(h.actions.SVGFilePath(h.actions.PageNumber()))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(dir, name+"-tmp-")
}
