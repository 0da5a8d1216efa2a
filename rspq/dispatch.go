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

import (
	"fmt"

	"github.com/jetsetilly/rspqueue/curated"
	"github.com/jetsetilly/rspqueue/faults"
	"github.com/jetsetilly/rspqueue/hardware/dma"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/hardware/signals"
	"github.com/jetsetilly/rspqueue/logger"
	"github.com/jetsetilly/rspqueue/notifications"
	"github.com/jetsetilly/rspqueue/rspq/overlay"
	"github.com/jetsetilly/rspqueue/rspq/wire"
)

// Step dispatches at most one command and returns the state of the engine
// afterwards. Returns Idle if the engine is halted and Faulted if a fault has
// been raised.
func (e *Engine) Step() State {
	if e.fatal != nil {
		return Faulted
	}

	e.m.Tick()

	if e.m.Signals.Test(signals.Halted) {
		e.state = Idle
		return e.state
	}

	e.arbitrate()

	diagnostic := e.env.Prefs.Diagnostic.Get().(bool)

	var (
		local  uint32
		header uint32
		d      *overlay.Descriptor
		desc   wire.Descriptor
		ok     bool
	)

	for {
		if e.ptr >= memory.StagingSize {
			e.jump(e.Position())
		}
		if !e.valid {
			e.state = Fetching
			e.fetch()
		}

		e.state = Decoding

		local = memory.StagingOrigin + uint32(e.ptr)
		header = e.m.Local.Word(local)
		e.cmdPos = e.Position()
		e.cmdHeader = header

		d, ok = e.store.Resolve(wire.OverlaySlot(header))
		if !ok && diagnostic {
			return e.raise(faults.InvalidOverlay, fmt.Sprintf("overlay slot %d", wire.OverlaySlot(header)))
		}

		if d.ID == overlay.Internal {
			desc, ok = internalDescriptor(wire.CommandID(header))
		} else {
			if e.store.CurrentResident() != d.ID {
				e.state = Swapping
				e.store.SwapIn(e, d)
				logger.Logf(e.env, "rspq", "swapped in %s", d.Module.Name())
			}
			desc, ok = e.lookup(d, wire.CommandID(header))
		}

		if !ok && diagnostic {
			return e.raise(faults.InvalidCommand, fmt.Sprintf("command %02x", wire.CommandID(header)))
		}

		if desc.Words() > wire.MaxCommandWords {
			if diagnostic {
				return e.raise(faults.CommandSize, fmt.Sprintf("%d words", desc.Words()))
			}
			desc = wire.NewDescriptor(wire.MaxCommandWords, desc.Entry())
		}

		// a command that is not entirely in the staging buffer is never
		// executed. the staging buffer is refilled from the command
		if e.ptr+desc.Bytes() <= memory.StagingSize {
			break
		}
		e.stats.Refetches++
		e.jump(e.Position())
	}

	e.state = Executing

	stream := e.Stream()

	args := overlay.Args{
		Size:     desc.Bytes(),
		Position: e.cmdPos,
		Staging:  local,
	}
	for i := range args.Words {
		args.Words[i] = e.m.Local.Word(local + uint32(i*4))
	}

	if c := &e.cont[stream]; c.valid {
		if c.pos == args.Position {
			args.Resumed = true
			args.Resume = c.resume
		}
		c.valid = false
	}

	e.ptr += args.Size
	e.vec.Reset()
	e.stats.Commands++

	if e.tracer != nil {
		e.tracer.Trace(stream, wire.OverlaySlot(header), args.Position, e.m.Local.DMEM[local:local+uint32(args.Size)])
	}

	var res overlay.Result
	if d.ID == overlay.Internal {
		res = e.internal(wire.CommandID(header), args)
	} else {
		res = d.Module.Dispatch(e, desc.Entry(), args)
	}

	if e.fatal != nil {
		e.state = Faulted
		return e.state
	}

	switch res.Status {
	case overlay.Yield:
		e.stats.Yields++
		e.suspend(stream, args, res)
	case overlay.Wait:
		e.stats.Waits++
		e.suspend(stream, args, res)
		e.state = Waiting
	}

	return e.state
}

// the command will be decoded again from the beginning
func (e *Engine) suspend(stream Stream, args overlay.Args, res overlay.Result) {
	e.ptr -= args.Size
	e.cont[stream] = continuation{
		valid:  true,
		pos:    args.Position,
		resume: res.Resume,
	}
}

// lookup command in the table of the resident overlay
func (e *Engine) lookup(d *overlay.Descriptor, id uint8) (wire.Descriptor, bool) {
	base := e.m.Local.Half(memory.OverlayDataOrigin + 4)
	idx := int(id) - int(base)
	ok := idx >= 0 && idx < d.NumCommands
	desc := wire.Descriptor(e.m.Local.Half(memory.OverlayDataOrigin + wire.OverlayHeaderSize + uint32(idx*2)))
	return desc, ok
}

// jump to a new position in shared memory. the staging buffer is refilled
// before the next command is decoded
func (e *Engine) jump(addr memory.Addr) {
	e.base = addr.Aligned()
	e.ptr = addr.Misalignment()
	e.valid = false
}

// fill the staging buffer from base. the slack is filled too so that every
// command in the staging buffer can be prefetched
func (e *Engine) fetch() {
	e.m.DMA.Transfer(dma.Request{
		Dir:    dma.Read,
		Bank:   memory.DMEM,
		Local:  memory.StagingOrigin,
		Remote: e.base,
		Width:  memory.StagingSize + memory.StagingSlack,
	}, dma.Sync)
	e.valid = true
	e.stats.Fetches++
}

// raise a fault for the command being executed. the engine will not continue
// until it is reset
func (e *Engine) raise(category faults.Category, event string) State {
	entry := e.faults.NewEntry(event, category, uint32(e.cmdPos), e.cmdHeader)
	e.fatal = curated.Errorf(Fault, entry)
	e.state = Faulted
	e.m.Signals.Write(signals.SetHalt)
	e.m.Signals.Set(signals.Broke)
	logger.Log(e.env, "rspq", e.fatal)
	_ = e.env.Notify(notifications.NotifyFault)
	return e.state
}
