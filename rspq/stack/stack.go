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

// Package stack implements the pointer stack of the engine. The stack is a
// fixed array of saved positions in shared memory. The first slots are used
// for nested calls to command lists and the last two slots hold the saved
// positions of the normal and urgent streams.
package stack

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/rspqueue/hardware/memory"
)

// MaxNesting is the number of slots available for nested calls.
const MaxNesting = 8

// Slots reserved for the saved position of each stream.
const (
	LowpriSlot  = MaxNesting
	HighpriSlot = MaxNesting + 1

	// total number of slots
	NumSlots = MaxNesting + 2
)

// Stack of saved positions. Slot indexes are masked so that a malformed slot
// in the command stream cannot cause a panic.
type Stack struct {
	slots [NumSlots]memory.Addr
}

// Reset all slots to zero.
func (stk *Stack) Reset() {
	clear(stk.slots[:])
}

// Save position to slot.
func (stk *Stack) Save(slot int, addr memory.Addr) {
	stk.slots[mask(slot)] = addr
}

// Load position from slot.
func (stk *Stack) Load(slot int) memory.Addr {
	return stk.slots[mask(slot)]
}

// Valid returns true if slot is a valid slot index.
func Valid(slot int) bool {
	return slot >= 0 && slot < NumSlots
}

func mask(slot int) int {
	if !Valid(slot) {
		return (slot & 0x7fffffff) % NumSlots
	}
	return slot
}

func (stk *Stack) String() string {
	s := strings.Builder{}
	for i, a := range stk.slots {
		switch i {
		case LowpriSlot:
			s.WriteString(fmt.Sprintf("low:%s ", a))
		case HighpriSlot:
			s.WriteString(fmt.Sprintf("high:%s", a))
		default:
			s.WriteString(fmt.Sprintf("%d:%s ", i, a))
		}
	}
	return s.String()
}
