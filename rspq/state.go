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

package rspq

// State of the engine as returned by Step().
type State int

// List of valid State values.
const (
	// the engine has run out of commands and is halted until the host
	// resumes it
	Idle State = iota
	Fetching
	Decoding
	Swapping
	Executing

	// a command is waiting for a change to the signals
	Waiting

	// a fault has been raised. the engine cannot continue
	Faulted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Decoding:
		return "decoding"
	case Swapping:
		return "swapping"
	case Executing:
		return "executing"
	case Waiting:
		return "waiting"
	case Faulted:
		return "faulted"
	}
	panic("unknown rspq.State")
}

// Suspended returns true if the state is one where the engine can make no
// progress until the host does something.
func (s State) Suspended() bool {
	return s == Idle || s == Waiting || s == Faulted
}
