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

package overlay

import (
	"fmt"

	"github.com/jetsetilly/rspqueue/curated"
	"github.com/jetsetilly/rspqueue/environment"
	"github.com/jetsetilly/rspqueue/hardware/dma"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/logger"
	"github.com/jetsetilly/rspqueue/notifications"
	"github.com/jetsetilly/rspqueue/rspq/wire"
)

// Sentinal errors returned by Store.Register().
const (
	TooManyOverlays = "overlay: too many overlays (max %d)"
	NoFreeSlots     = "overlay: %s: no free slots (%d needed)"
	NoCommands      = "overlay: %s: no commands"
	ImageTooLarge   = "overlay: %s: %s too large (%d bytes)"
	CommandTooLarge = "overlay: %s: command %d too large (%d words)"
)

// Internal is the ID of the descriptor used for the internal commands. It is
// also the value returned by CurrentResident() when no overlay is resident.
const Internal = 0

// Descriptor of a registered overlay.
type Descriptor struct {
	// index of the descriptor in the store
	ID int

	Module Module

	Code     memory.Addr
	CodeSize int
	Data     memory.Addr
	DataSize int

	// location of the persisted state in shared memory and its offset within
	// the data
	State      memory.Addr
	StateStart int
	StateSize  int

	// first slot and first command id of the overlay
	Slot        int
	CommandBase uint16
	NumCommands int
}

func (d Descriptor) String() string {
	if d.ID == Internal {
		return "internal"
	}
	return fmt.Sprintf("%s: slot %d, code %s (%d), data %s (%d), state +%03x (%d)",
		d.Module.Name(), d.Slot, d.Code, d.CodeSize, d.Data, d.DataSize, d.StateStart, d.StateSize)
}

// Store of overlay descriptors. The tables are fixed in size and are only
// added to during initialisation.
type Store struct {
	env *environment.Environment

	// maps overlay slot to descriptor index. slot zero is always the internal
	// descriptor and an unused slot has the value zero
	table       [wire.OverlaySlots]int
	descriptors [wire.MaxOverlays]Descriptor
	n           int

	resident int
	swaps    int
}

// NewStore is the preferred method of initialisation for the Store type.
func NewStore(env *environment.Environment) *Store {
	s := &Store{
		env: env,
		n:   1,
	}
	return s
}

// Register places the overlay in shared memory and adds it to the store. The
// overlay is given the first run of free slots large enough for its command
// table. Returns the first slot.
func (s *Store) Register(mod Module, arena *memory.Arena) (int, error) {
	if s.n >= len(s.descriptors) {
		return 0, curated.Errorf(TooManyOverlays, len(s.descriptors)-1)
	}

	img := mod.Image()

	if len(img.Commands) == 0 {
		return 0, curated.Errorf(NoCommands, mod.Name())
	}
	for i, c := range img.Commands {
		if c.Words() > wire.MaxCommandWords {
			return 0, curated.Errorf(CommandTooLarge, mod.Name(), i, c.Words())
		}
	}
	if img.CodeSize() > memory.OverlayCodeMax {
		return 0, curated.Errorf(ImageTooLarge, mod.Name(), "code", img.CodeSize())
	}
	if img.DataSize() > memory.OverlayDataMax {
		return 0, curated.Errorf(ImageTooLarge, mod.Name(), "data", img.DataSize())
	}

	// find a run of free slots
	need := (len(img.Commands) + wire.CommandsPerSlot - 1) / wire.CommandsPerSlot
	slot := 0
	for i := 1; i+need <= len(s.table) && slot == 0; i++ {
		free := true
		for j := i; j < i+need; j++ {
			free = free && s.table[j] == Internal
		}
		if free {
			slot = i
		}
	}
	if slot == 0 {
		return 0, curated.Errorf(NoFreeSlots, mod.Name(), need)
	}

	d := Descriptor{
		ID:          s.n,
		Module:      mod,
		CodeSize:    img.CodeSize(),
		DataSize:    img.DataSize(),
		StateStart:  img.StateStart(),
		StateSize:   img.StateSize(),
		Slot:        slot,
		CommandBase: uint16(slot * wire.CommandsPerSlot),
		NumCommands: len(img.Commands),
	}

	var err error

	d.Code, err = arena.Alloc(d.CodeSize)
	if err != nil {
		return 0, curated.Errorf("overlay: %s: %v", mod.Name(), err)
	}
	d.Data, err = arena.Alloc(d.DataSize)
	if err != nil {
		return 0, curated.Errorf("overlay: %s: %v", mod.Name(), err)
	}
	d.State = d.Data + memory.Addr(d.StateStart)

	shared := arena.Shared()
	shared.Write(d.Code, img.Code)
	shared.Write(d.Data, img.Data(d.CommandBase))

	s.descriptors[s.n] = d
	for j := slot; j < slot+need; j++ {
		s.table[j] = s.n
	}
	s.n++

	logger.Logf(s.env, "overlay", "registered %s", d)

	return slot, nil
}

// Reset the store so that no overlay is resident. Registered overlays are
// not affected.
func (s *Store) Reset() {
	s.resident = Internal
	s.swaps = 0
}

// Resolve returns the descriptor for the overlay slot. Returns false if the
// slot has not been registered, in which case the internal descriptor is
// returned.
func (s *Store) Resolve(slot int) (*Descriptor, bool) {
	idx := s.table[slot&(wire.OverlaySlots-1)]
	return &s.descriptors[idx], slot == 0 || idx != Internal
}

// CurrentResident returns the ID of the resident overlay.
func (s *Store) CurrentResident() int {
	return s.resident
}

// Resident returns the descriptor of the resident overlay.
func (s *Store) Resident() *Descriptor {
	return &s.descriptors[s.resident]
}

// Swaps returns the number of times an overlay has been swapped in.
func (s *Store) Swaps() int {
	return s.swaps
}

// Descriptors returns the registered overlays.
func (s *Store) Descriptors() []Descriptor {
	return s.descriptors[1:s.n]
}

// SwapIn makes the overlay resident. The persisted state of the outgoing
// overlay is written back to shared memory before the data of the incoming
// overlay is loaded. Transfers complete in the order they are submitted so
// the write back can be asynchronous.
func (s *Store) SwapIn(ctx Context, d *Descriptor) {
	if d.ID == s.resident || d.ID == Internal {
		return
	}

	ch := ctx.DMA()

	if s.resident != Internal {
		out := &s.descriptors[s.resident]
		out.Module.Save(ctx)
		if out.StateSize > 0 {
			ch.Transfer(dma.Request{
				Dir:    dma.Write,
				Bank:   memory.DMEM,
				Local:  memory.OverlayDataOrigin + uint32(out.StateStart),
				Remote: out.State,
				Width:  out.StateSize,
			}, dma.Async)
		}
	}

	ch.Transfer(dma.Request{
		Dir:    dma.Read,
		Bank:   memory.DMEM,
		Local:  memory.OverlayDataOrigin,
		Remote: d.Data,
		Width:  d.DataSize,
	}, dma.Async)

	ch.Transfer(dma.Request{
		Dir:    dma.Read,
		Bank:   memory.IMEM,
		Local:  memory.OverlayCodeOrigin,
		Remote: d.Code,
		Width:  d.CodeSize,
	}, dma.Sync)

	s.resident = d.ID
	s.swaps++

	d.Module.Load(ctx)

	_ = s.env.Notify(notifications.NotifyOverlaySwap)
}
