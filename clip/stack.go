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

// Package clip maintains the clipping paths of nested PostScript graphics
// states.
package clip

import "seehuhn.de/go/pssvg/outline"

// Entry is one level of the clipping stack.
type Entry struct {
	// Path is the clipping path in device space, or nil if no clipping is
	// active.  Paths are shared between entries and never modified.
	Path *outline.Path

	// ID identifies Path in the output document.  It is zero if Path is nil.
	ID int

	// SaveID is negative for entries created by gsave and holds the save
	// level for entries created by save.
	SaveID int

	// Prepended is a clipping path which has been made the current path by
	// the clippath operator and is still waiting to be painted.
	Prepended *outline.Path
}

// Stack is the clipping stack.  The zero value is an empty stack.
type Stack struct {
	entries []Entry
	maxID   int
}

// Len returns the number of entries on the stack.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Top returns the top entry, or nil if the stack is empty.
// The returned entry must not be modified.
func (s *Stack) Top() *Entry {
	if len(s.entries) == 0 {
		return nil
	}
	return &s.entries[len(s.entries)-1]
}

// Path returns the current clipping path, or nil if no clipping is active.
func (s *Stack) Path() *outline.Path {
	if top := s.Top(); top != nil {
		return top.Path
	}
	return nil
}

// TopID returns the ID of the current clipping path, or 0 if there is none.
func (s *Stack) TopID() int {
	if top := s.Top(); top != nil {
		return top.ID
	}
	return 0
}

// PrependedPath returns the pending clipping path of the top entry.
func (s *Stack) PrependedPath() *outline.Path {
	if top := s.Top(); top != nil {
		return top.Prepended
	}
	return nil
}

// PushEmpty pushes an unclipped entry.  Nothing happens if the stack is
// empty, since an empty stack already means "no clipping".
func (s *Stack) PushEmpty() {
	if len(s.entries) > 0 {
		s.entries = append(s.entries, Entry{SaveID: -1})
	}
}

// Push pushes a new entry with the given clipping path.  An empty path
// results in an unclipped entry.  The pending path of the previous top entry
// is carried over.
func (s *Stack) Push(p *outline.Path, saveID int) {
	var prepended *outline.Path
	if top := s.Top(); top != nil {
		prepended = top.Prepended
	}
	e := Entry{SaveID: saveID, Prepended: prepended}
	if !p.Empty() {
		s.maxID++
		e.Path = p.Clone()
		e.ID = s.maxID
	}
	s.entries = append(s.entries, e)
}

// Dup pushes a copy of the top entry, tagged with saveID.
// A negative saveID marks an entry created by gsave.
func (s *Stack) Dup(saveID int) {
	e := Entry{SaveID: -1}
	if top := s.Top(); top != nil {
		e = *top
	}
	e.SaveID = saveID
	s.entries = append(s.entries, e)
}

// Pop removes entries from the stack:
//   - saveID < 0 and !all (grestore): the top entry is removed if it was
//     created by gsave.
//   - saveID < 0 and all (grestoreall): entries created by gsave are removed
//     until the stack is empty or an entry created by save is on top.
//   - saveID >= 0 (restore): all entries above the one tagged with saveID
//     are removed, and then the tagged entry itself.
func (s *Stack) Pop(saveID int, all bool) {
	if len(s.entries) == 0 {
		return
	}
	if saveID < 0 {
		if s.Top().SaveID < 0 {
			s.pop()
		}
		for all && len(s.entries) > 0 && s.Top().SaveID < 0 {
			s.pop()
		}
		return
	}
	for len(s.entries) > 0 && s.Top().SaveID != saveID {
		s.pop()
	}
	if len(s.entries) > 0 {
		s.pop()
	}
}

func (s *Stack) pop() {
	s.entries[len(s.entries)-1] = Entry{}
	s.entries = s.entries[:len(s.entries)-1]
}

// Replace installs p as the clipping path of the top entry.
// If the stack is empty, a new gsave-level entry is pushed.
// The return value is false if p equals the current clipping path, in
// which case nothing changes.
func (s *Stack) Replace(p *outline.Path) bool {
	top := s.Top()
	if top == nil {
		s.Push(p, -1)
		return true
	}
	if top.Path != nil && top.Path.Equal(p) {
		return false
	}
	s.maxID++
	top.Path = p.Clone()
	top.ID = s.maxID
	return true
}

// SetPrependedPath marks the current clipping path as pending.
func (s *Stack) SetPrependedPath() {
	if top := s.Top(); top != nil {
		top.Prepended = top.Path
	}
}

// RemovePrependedPath clears the pending path of the top entry.
func (s *Stack) RemovePrependedPath() {
	if top := s.Top(); top != nil {
		top.Prepended = nil
	}
}

// Clear removes all entries.  Path IDs keep increasing, so that IDs already
// written to the output stay unique.
func (s *Stack) Clear() {
	clear(s.entries)
	s.entries = s.entries[:0]
}
