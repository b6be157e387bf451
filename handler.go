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

// Package pssvg converts the graphics produced by PostScript specials of a
// TeX document into SVG.
//
// A [Handler] owns a PostScript interpreter.  The interpreter reports every
// graphics operator it executes to the handler, which keeps the matching
// graphics state and appends the corresponding SVG elements to the page
// provided by an [Actions] value.
package pssvg

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pssvg/bbox"
	"seehuhn.de/go/pssvg/clip"
	"seehuhn.de/go/pssvg/outline"
	"seehuhn.de/go/pssvg/pattern"
	"seehuhn.de/go/pssvg/postscript"
	"seehuhn.de/go/pssvg/svg"
)

//go:embed prologue.ps
var prologue string

// Options can be used to customize a [Handler].
// The zero value and nil both give the default settings.
type Options struct {
	// Logger receives warnings and errors.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Config holds the conversion settings.
	// If nil, DefaultConfig() is used.
	Config *Config

	// Finder is used to locate header files and included graphics.
	// If nil, a DirFinder for Config.SearchPath is used.
	Finder Finder

	// Clipper computes intersections and unions of clipping paths.
	// If nil, a clip.SlabClipper is used.
	Clipper clip.Clipper
}

type section int

const (
	sectionNone section = iota
	sectionHeaders
	sectionBody
)

// container is an element which receives output instead of the page.
type container struct {
	el        *svg.Element
	isPattern bool
}

// Handler processes PostScript specials.
type Handler struct {
	actions Actions
	intp    *postscript.Interpreter
	cfg     *Config
	log     *slog.Logger
	finder  Finder
	clipper clip.Clipper
	bitmaps *bitmapWriter

	section    section
	headerCode string
	preview    previewData

	state      State
	path       outline.Path
	clipStack  clip.Stack
	patterns   *pattern.Registry
	containers []container

	// currentPoint is set by the querypos operator.
	currentPoint vec.Vec2
	hasPoint     bool
}

// New allocates a new handler which draws onto the page described by
// actions.
func New(actions Actions, opt *Options) *Handler {
	if opt == nil {
		opt = &Options{}
	}
	h := &Handler{
		actions:  actions,
		cfg:      opt.Config,
		log:      opt.Logger,
		finder:   opt.Finder,
		clipper:  opt.Clipper,
		state:    DefaultState(),
		patterns: pattern.NewRegistry(),
	}
	if h.cfg == nil {
		h.cfg = DefaultConfig()
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	if h.finder == nil {
		h.finder = NewDirFinder(h.cfg.SearchPath...)
	}
	if h.clipper == nil {
		h.clipper = clip.SlabClipper{}
	}

	h.intp = postscript.NewInterpreter()
	h.intp.OpenFile = h.openFile
	if h.cfg.BitmapFormat != "none" {
		h.bitmaps = &bitmapWriter{format: h.cfg.BitmapFormat, base: h.imageBase}
		h.intp.Images = h.bitmaps
	}
	for name, op := range operators {
		h.intp.Register(name, op.arity, func(args []float64) error {
			return h.Dispatch(name, args)
		})
	}
	return h
}

// Interpreter returns the PostScript interpreter used by the handler.
func (h *Handler) Interpreter() *postscript.Interpreter {
	return h.intp
}

// State returns the current graphics parameters.
func (h *Handler) State() State {
	return h.state
}

type operator struct {
	arity int // -1 for a variable number of arguments
	fn    func(h *Handler, args []float64)
}

var operators map[string]operator

func init() {
	operators = map[string]operator{
		"applyscalevals":         {3, (*Handler).applyscalevals},
		"clip":                   {0, (*Handler).clip},
		"clippath":               {0, (*Handler).clippath},
		"closepath":              {0, (*Handler).closepath},
		"curveto":                {6, (*Handler).curveto},
		"eoclip":                 {0, (*Handler).eoclip},
		"eofill":                 {0, (*Handler).eofill},
		"fill":                   {0, (*Handler).fill},
		"grestore":               {0, (*Handler).grestore},
		"grestoreall":            {0, (*Handler).grestoreall},
		"gsave":                  {0, (*Handler).gsave},
		"image":                  {3, (*Handler).image},
		"initclip":               {0, (*Handler).initclip},
		"lineto":                 {2, (*Handler).lineto},
		"makepattern":            {-1, (*Handler).makepattern},
		"moveto":                 {2, (*Handler).moveto},
		"newpath":                {1, (*Handler).newpath},
		"querypos":               {2, (*Handler).querypos},
		"restore":                {1, (*Handler).restore},
		"rotate":                 {1, (*Handler).rotate},
		"save":                   {1, (*Handler).save},
		"scale":                  {2, (*Handler).scale},
		"setalphaisshape":        {1, (*Handler).setalphaisshape},
		"setblendmode":           {1, (*Handler).setblendmode},
		"setcmykcolor":           {4, (*Handler).setcmykcolor},
		"setdash":                {-1, (*Handler).setdash},
		"setfillconstantalpha":   {1, (*Handler).setfillconstantalpha},
		"setgray":                {1, (*Handler).setgray},
		"sethsbcolor":            {3, (*Handler).sethsbcolor},
		"setlinecap":             {1, (*Handler).setlinecap},
		"setlinejoin":            {1, (*Handler).setlinejoin},
		"setlinewidth":           {1, (*Handler).setlinewidth},
		"setmatrix":              {-1, (*Handler).setmatrix},
		"setmiterlimit":          {1, (*Handler).setmiterlimit},
		"setnulldevice":          {1, (*Handler).setnulldevice},
		"setopacityalpha":        {1, (*Handler).setopacityalpha},
		"setpagedevice":          {0, (*Handler).setpagedevice},
		"setpattern":             {-1, (*Handler).setpattern},
		"setrgbcolor":            {3, (*Handler).setrgbcolor},
		"setshapealpha":          {1, (*Handler).setshapealpha},
		"setstrokeconstantalpha": {1, (*Handler).setstrokeconstantalpha},
		"shfill":                 {-1, (*Handler).shfill},
		"stroke":                 {0, (*Handler).stroke},
		"translate":              {2, (*Handler).translate},
	}
}

// Dispatch executes the graphics operator name with the given arguments.
// If fewer arguments than required are given, an error is returned and
// the graphics state is not changed.
func (h *Handler) Dispatch(name string, args []float64) error {
	op, ok := operators[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperator, name)
	}
	if len(args) < op.arity {
		return fmt.Errorf("%w: %s needs %d, got %d",
			ErrTooFewArguments, name, op.arity, len(args))
	}
	op.fn(h, args)
	h.actions.Progress("ps")
	return nil
}

var (
	// ErrUnknownOperator is returned by Dispatch for unknown operators.
	ErrUnknownOperator = errors.New("unknown graphics operator")

	// ErrTooFewArguments is returned by Dispatch if an operator is
	// called with too few arguments.
	ErrTooFewArguments = errors.New("too few arguments")
)

// pushContainer redirects the output to el, until popContainer is called.
func (h *Handler) pushContainer(el *svg.Element, isPattern bool) {
	h.containers = append(h.containers, container{el: el, isPattern: isPattern})
}

func (h *Handler) popContainer() {
	if n := len(h.containers); n > 0 {
		h.containers = h.containers[:n-1]
	}
}

// target returns the element which currently receives the output,
// or nil if output goes to the page.
func (h *Handler) target() *svg.Element {
	if n := len(h.containers); n > 0 {
		return h.containers[n-1].el
	}
	return nil
}

// inPattern reports whether a pattern is being defined.
func (h *Handler) inPattern() bool {
	for _, c := range h.containers {
		if c.isPattern {
			return true
		}
	}
	return false
}

// appendNode adds el to the current output target.  When the target is the
// page, the page bounding box is enlarged to include box.
func (h *Handler) appendNode(el *svg.Element, box bbox.Box) {
	if el == nil {
		return
	}
	if c := h.target(); c != nil {
		c.Append(el)
		return
	}
	if h.actions.OutputLocked() {
		return
	}
	h.actions.Document().AppendToPage(el)
	h.actions.Embed(box)
}

// clipRef returns the value of a clip-path attribute referring to the
// clipping path with the given id.
func clipRef(id int) string {
	return fmt.Sprintf("url(#clip%d)", id)
}

// initgraphics resets the state kept by the handler.
func (h *Handler) initgraphics() {
	h.state = DefaultState()
	h.path.Clear()
	h.clipStack.Clear()
	h.containers = h.containers[:0]
}

// initialize loads the prologue and the configured header files.
// This happens once, before the first special is processed.
func (h *Handler) initialize() {
	if h.section != sectionNone {
		return
	}
	h.initgraphics()
	h.execute(prologue)
	for _, name := range h.cfg.Headers {
		h.processHeaderFile(name)
	}
	h.execute("TeXDict begin /bop{pop pop}def /eop{}def end ")
	h.section = sectionHeaders
}

func (h *Handler) processHeaderFile(name string) {
	fname, ok := h.finder.Find(name)
	if !ok {
		h.log.Warn("PostScript header file not found", "file", name)
		return
	}
	fd, err := os.Open(fname)
	if err != nil {
		h.log.Warn("cannot read PostScript header file", "file", name, "error", err)
		return
	}
	defer fd.Close()
	r := io.MultiReader(
		strings.NewReader("%%BeginProcSet: "+name+" 0 0\n"),
		fd,
		strings.NewReader("\n%%EndProcSet\n"))
	h.executeReader(r)
}

// enterBodySection starts the PostScript part of a page.  Code collected
// from header specials is executed first, on the first page only.
func (h *Handler) enterBodySection() {
	if h.section != sectionHeaders {
		return
	}
	h.section = sectionBody
	var code strings.Builder
	if h.headerCode != "" {
		code.WriteString("\nTeXDict begin @defspecial ")
		code.WriteString(h.headerCode)
		code.WriteString("\n@fedspecial end")
		h.headerCode = ""
	}
	code.WriteString("\nTeXDict begin 0 0 1000 72 72 () @start 0 0 moveto ")
	h.execute(code.String())

	// With the tightpage option of the preview package, the bop-hook
	// would read the box data from the page.  The data is taken from the
	// first special of the page instead.
	h.activatePreview()
	if !h.preview.tightpage {
		h.execute("userdict/bop-hook known{bop-hook}if\n")
	}
}

// EndPage finishes the current page.  The graphics state is reset, so that
// the next page starts afresh.  If the page carries box data of the LaTeX
// preview package, the page bounding box is set and locked.
func (h *Handler) EndPage() {
	if h.section != sectionBody {
		return
	}
	h.execute("\nend userdict/end-hook known{end-hook}if initgraphics ")
	h.initgraphics()
	h.section = sectionHeaders

	if h.applyPreviewBox() {
		return
	}
	box := *h.actions.BBox()
	if box.Valid() {
		const bp2pt = 72.27 / 72
		box.Transform(h.actions.PageTransform())
		h.log.Debug("page extents",
			"page", h.actions.PageNumber(),
			"width", box.Width()*bp2pt,
			"height", box.Height()*bp2pt)
	}
}

// Preprocess handles the header specials "!" and "header=".  It must be
// called for all header specials of the document before the first page is
// processed.
func (h *Handler) Preprocess(prefix string, r io.Reader) error {
	h.initialize()
	if h.section != sectionHeaders {
		return nil
	}
	switch prefix {
	case "!":
		code, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		h.headerCode += "\n" + string(code)
	case "header=":
		name, err := readLine(r)
		if err != nil {
			return err
		}
		h.processHeaderFile(name)
	}
	return nil
}

// Process executes a PostScript special on the current page.
func (h *Handler) Process(prefix string, r io.Reader) error {
	if prefix == "!" || prefix == "header=" {
		return nil // handled by Preprocess
	}
	h.initialize()
	h.enterBodySection()
	if h.preview.waiting {
		code, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		r = bytes.NewReader(h.preview.readExtents(code))
	}

	switch prefix {
	case `"`, "pst:":
		// literal code, isolated by a save/restore pair
		h.moveToDVIPos()
		h.execute("\n@beginspecial @setspecial ")
		h.executeAndSync(r, false)
		h.execute("\n@endspecial ")
	case "psfile=", "PSfile=", "pdffile=":
		spec, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		h.includeFile(prefix, string(spec))
	case "ps::":
		h.actions.FinishLine()
		br := bufio.NewReader(r)
		if b, _ := br.Peek(1); len(b) == 1 && b[0] == '[' {
			code := readBracketed(br)
			switch code {
			case "[begin]", "[nobreak]":
				h.moveToDVIPos()
			case "[end]":
				// no repositioning
			default:
				h.execute(code)
			}
		}
		h.executeAndSync(br, true)
	default: // "ps:" and "PST:"
		h.actions.FinishLine()
		h.moveToDVIPos()
		br := bufio.NewReader(r)
		if b, _ := br.Peek(len(plotfile)); string(b) == plotfile {
			br.Discard(len(plotfile))
			name, err := readLine(br)
			if err != nil {
				return err
			}
			h.plotFile(name)
		} else {
			h.executeAndSync(br, true)
			h.moveToDVIPos()
		}
	}
	return nil
}

const plotfile = " plotfile "

func (h *Handler) plotFile(name string) {
	fname, ok := h.finder.Find(name)
	if !ok {
		h.log.Warn("file not found in ps: plotfile", "file", name)
		return
	}
	if err := h.intp.ExecuteFile(fname); err != nil {
		h.log.Error("PostScript error", "file", name, "error", err)
	}
}

// readBracketed reads a bracketed prefix like "[begin]".  At most nine
// characters before the closing bracket are read.
func readBracketed(br *bufio.Reader) string {
	var code []byte
	for i := 0; i < 9; i++ {
		b, err := br.Peek(1)
		if err != nil || b[0] == ']' {
			break
		}
		br.ReadByte()
		code = append(code, b[0])
	}
	if b, err := br.Peek(1); err == nil && b[0] == ']' {
		br.ReadByte()
		code = append(code, ']')
	}
	return string(code)
}

// readLine returns the first whitespace-separated word of r.
func readLine(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], nil
}

// moveToDVIPos sets the PostScript current point to the host position.
func (h *Handler) moveToDVIPos() {
	h.execute(fmt.Sprintf("\n%s %s moveto ",
		svg.FormatNumber(h.actions.X()), svg.FormatNumber(h.actions.Y())))
}

// executeAndSync runs the code read from r.  Color changes made by the host
// are passed to the interpreter first.  If updatePos is set, the host
// position is moved to the PostScript current point afterwards.
func (h *Handler) executeAndSync(r io.Reader, updatePos bool) {
	if c := h.actions.Color(); c != h.state.Color {
		red, green, blue := c.Components()
		h.execute(fmt.Sprintf("%s %s %s setrgbcolor ",
			svg.FormatNumber(red), svg.FormatNumber(green), svg.FormatNumber(blue)))
	}
	h.executeReader(r)
	if updatePos {
		h.hasPoint = false
		h.execute("\nquerypos ")
		if h.hasPoint {
			h.actions.SetX(h.currentPoint.X)
			h.actions.SetY(h.currentPoint.Y)
		}
	}
}

func (h *Handler) execute(code string) {
	h.executeReader(strings.NewReader(code))
}

// executeReader runs PostScript code.  Errors are reported through the
// logger, since a broken special must not stop the conversion.
func (h *Handler) executeReader(r io.Reader) {
	err := h.intp.Execute(r)
	if err != nil {
		h.log.Error("PostScript error", "page", h.actions.PageNumber(), "error", err)
	}
}

// openFile is used by the run operator.
func (h *Handler) openFile(name string) (io.ReadCloser, error) {
	fname, ok := h.finder.Find(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, os.ErrNotExist)
	}
	return os.Open(fname)
}
