// This file is part of rspqueue.
//
// rspqueue is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// rspqueue is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with rspqueue.  If not, see <https://www.gnu.org/licenses/>.

// Package faults records the conditions that halt the engine when it is
// running in diagnostic mode.
package faults

import (
	"fmt"
	"io"
)

// Category classifies the reason for a fault.
type Category string

// List of valid Category values.
const (
	InvalidOverlay Category = "invalid overlay"
	InvalidCommand Category = "invalid command"
	CommandSize    Category = "command size"
	AckTimeout     Category = "ack timeout"
)

// Entry is a single entry in the fault log.
type Entry struct {
	Category Category

	// description of the event that triggered the fault
	Event string

	// position in shared memory of the command and the command header
	Position uint32
	Header   uint32

	// number of times this specific fault has been seen
	Count int
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s: %08x (at %08x)", e.Category, e.Event, e.Header, e.Position)
}

// Faults records the faults raised by the engine.
type Faults struct {
	// entries are keyed by position and header
	entries map[uint64]*Entry

	// all the faults in order of the first time they appear. the Count field
	// can be used to see if that entry was seen more than once
	Log []*Entry
}

// NewFaults is the preferred method of initialisation for the Faults type.
func NewFaults() Faults {
	return Faults{
		entries: make(map[uint64]*Entry),
	}
}

// Clear all entries from faults log.
func (flt *Faults) Clear() {
	clear(flt.entries)
	flt.Log = flt.Log[:0]
}

// WriteLog writes the list of faults in the order they were added.
func (flt Faults) WriteLog(w io.Writer) {
	for _, e := range flt.Log {
		fmt.Fprintln(w, e.String())
	}
}

// NewEntry adds a new entry to the list of faults and returns it.
func (flt *Faults) NewEntry(event string, category Category, position uint32, header uint32) *Entry {
	key := uint64(position)<<32 | uint64(header)

	e, found := flt.entries[key]
	if !found {
		e = &Entry{
			Category: category,
			Event:    event,
			Position: position,
			Header:   header,
		}
		flt.entries[key] = e
		flt.Log = append(flt.Log, e)
	}

	e.Count++

	return e
}
