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

// Package overlay implements the overlay descriptor store and defines the
// interface implemented by overlay modules.
//
// An overlay is a module with its own command table, code and data. Only one
// overlay is resident in local memory at any one time. Part of the data of an
// overlay is persisted state, which is written back to shared memory when the
// overlay is swapped out and which is therefore preserved between
// activations. The rest of the data is scratch memory and is reinitialised
// every time the overlay is swapped in.
//
// Handlers are not addressed by patching code in local memory. The command
// table entry of a command is given to Module.Dispatch() along with the
// decoded arguments.
package overlay

import (
	"fmt"

	"github.com/jetsetilly/rspqueue/environment"
	"github.com/jetsetilly/rspqueue/hardware/dma"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/hardware/signals"
	"github.com/jetsetilly/rspqueue/rspq/output"
	"github.com/jetsetilly/rspqueue/rspq/wire"
)

// Context is the engine as seen by a command handler. Handlers must not keep
// a reference to the Context beyond the call they were given it in.
type Context interface {
	Env() *environment.Environment
	Local() *memory.Local
	DMA() *dma.DMA
	Output() *output.Coordinator
	Signals() *signals.Register
	Vectors() *Vectors

	// advance the asynchronous devices. used by handlers that spin
	Tick()
}

// Module is implemented by every overlay.
type Module interface {
	Name() string

	// the image of the overlay. called once, when the overlay is registered
	Image() Image

	// called after the overlay has been made resident and before it is swapped
	// out. the persisted state is in local memory during both calls
	Load(ctx Context)
	Save(ctx Context)

	// dispatch the command with the handler entry given in the command table
	Dispatch(ctx Context, entry uint16, args Args) Result
}

// Args are the arguments of a command. The first words of every command are
// prefetched, regardless of the actual size of the command.
type Args struct {
	// the header is the first word
	Words [wire.PrefetchWords]uint32

	// size of the command in bytes
	Size int

	// address of the command in shared memory and in the staging buffer
	Position memory.Addr
	Staging  uint32

	// the command is being re-invoked after a previous invocation returned
	// Yield or Wait. Resume is the value in that Result
	Resumed bool
	Resume  uint32
}

func (a Args) String() string {
	return fmt.Sprintf("%08x %08x %08x %08x (%d bytes at %s)", a.Words[0], a.Words[1], a.Words[2], a.Words[3], a.Size, a.Position)
}

// Header returns the first word of the command.
func (a Args) Header() uint32 {
	return a.Words[0]
}

// Arg0 returns the argument bits in the header.
func (a Args) Arg0() uint32 {
	return wire.Arg0(a.Words[0])
}

// Word returns word n of the command. Words beyond those prefetched are read
// from the staging buffer.
func (a Args) Word(mem *memory.Local, n int) uint32 {
	if n < len(a.Words) {
		return a.Words[n]
	}
	return mem.Word(a.Staging + uint32(n*4))
}

// Status of a Result.
type Status int

// List of valid Status values.
const (
	// the command has completed
	Done Status = iota

	// the command wants to be invoked again after the arbitrator has had a
	// chance to switch stream
	Yield

	// the command wants to be invoked again after a change to the signals
	Wait
)

func (s Status) String() string {
	switch s {
	case Done:
		return "done"
	case Yield:
		return "yield"
	case Wait:
		return "wait"
	}
	panic("unknown overlay.Status")
}

// Result of a call to Module.Dispatch(). For the Yield and Wait statuses, the
// Resume value is given back to the handler when the command is re-invoked.
type Result struct {
	Status Status
	Resume uint32
}

// Vectors are the scratch vector registers. They are reset to known values
// before every command is dispatched.
type Vectors struct {
	Zero [8]uint16

	// the powers of two from 1 to 128 and from 256 to 32768
	Shift  [8]uint16
	Shift8 [8]uint16
}

// Reset vectors to their initial values.
func (v *Vectors) Reset() {
	for i := range 8 {
		v.Zero[i] = 0
		v.Shift[i] = 1 << i
		v.Shift8[i] = 1 << (i + 8)
	}
}
