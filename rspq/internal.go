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
	"github.com/jetsetilly/rspqueue/hardware/dma"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/hardware/signals"
	"github.com/jetsetilly/rspqueue/logger"
	"github.com/jetsetilly/rspqueue/notifications"
	"github.com/jetsetilly/rspqueue/rspq/overlay"
	"github.com/jetsetilly/rspqueue/rspq/wire"
)

// the command table of the internal commands. there is no handler entry
// because internal commands are dispatched by id
var internalTable = func() [wire.CommandsPerSlot]wire.Descriptor {
	var t [wire.CommandsPerSlot]wire.Descriptor
	for id, words := range wire.InternalWords {
		t[id] = wire.NewDescriptor(words, uint16(id))
	}
	return t
}()

// unknown internal commands are treated as single word commands
func internalDescriptor(id uint8) (wire.Descriptor, bool) {
	if id >= wire.NumInternal {
		return wire.NewDescriptor(1, uint16(id)), false
	}
	return internalTable[id], true
}

// dispatch internal command
func (e *Engine) internal(id uint8, args overlay.Args) overlay.Result {
	switch id {
	case wire.CmdWaitNewInput:
		e.waitNewInput()

	case wire.CmdNoop:

	case wire.CmdJump:
		e.jump(memory.Addr(args.Arg0()))

	case wire.CmdCall:
		e.stack.Save(wire.OffsetSlot(args.Words[1]), e.Position())
		e.jump(memory.Addr(args.Arg0()))

	case wire.CmdRet:
		e.jump(e.stack.Load(wire.OffsetSlot(args.Arg0())))

	case wire.CmdDma:
		width, height, pitch := wire.DmaLength(args.Words[2])
		req := dma.Request{
			Dir:    dma.Read,
			Bank:   memory.DMEM,
			Local:  args.Words[1] & 0xfff,
			Remote: memory.Addr(args.Arg0()),
			Width:  width,
			Height: height,
			Pitch:  pitch,
		}
		if args.Words[1]&0x1000 != 0 {
			req.Bank = memory.IMEM
		}
		flags := args.Words[3]
		if flags&(wire.DmaFlagWrite|1<<31) != 0 {
			req.Dir = dma.Write
		}
		e.m.DMA.Transfer(req, dma.Async)
		if flags&wire.DmaWaitMask != 0 {
			e.m.DMA.WaitIdle()
		}

	case wire.CmdWriteStatus:
		e.writeStatus(args.Arg0())

	case wire.CmdSwapBuffers:
		next := e.stack.Load(wire.OffsetSlot(args.Arg0()))
		e.stack.Save(wire.OffsetSlot(args.Words[1]), e.Position())
		e.writeStatus(args.Words[2])
		e.jump(next)

	case wire.CmdTestWriteStatus:
		mask := args.Words[1]
		if e.m.Signals.Poll()&mask != 0 {
			// the DMA bits change without a signal event so the command
			// must be retried without waiting
			if mask&^wire.DmaWaitMask == 0 {
				return overlay.Result{Status: overlay.Yield}
			}
			return overlay.Result{Status: overlay.Wait}
		}
		e.writeStatus(args.Arg0())

	case wire.CmdRdpWaitIdle:
		e.out.WaitIdle(args.Arg0())

	case wire.CmdRdpSetBuffer:
		e.out.SetBuffer(memory.Addr(args.Arg0()), memory.Addr(args.Words[1]), memory.Addr(args.Words[2]))

	case wire.CmdRdpAppendBuffer:
		e.out.AppendBuffer(memory.Addr(args.Arg0()))
	}

	return overlay.Result{}
}

// the WaitNewInput command is a zero length command. the engine either halts
// or refetches the staging buffer and so decodes the command again
func (e *Engine) waitNewInput() {
	e.jump(e.Position())

	if e.m.Signals.Test(signals.More) {
		e.m.Signals.Clear(signals.More)
		return
	}

	e.m.Signals.Write(signals.SetHalt)

	// the host may have signalled more commands before the halt was set
	if e.m.Signals.Test(signals.More) {
		e.m.Signals.Write(signals.ClrHalt)
		return
	}

	e.stats.Halts++
	e.state = Idle
	_ = e.env.Notify(notifications.NotifyHalt)
}

func (e *Engine) writeStatus(w uint32) {
	running := e.m.Signals.Test(signals.HighpriRunning)

	// an interrupt is only raised once all transfers have completed
	if w&signals.SetIntr != 0 {
		e.m.DMA.WaitIdle()
	}

	e.m.Signals.Write(w)

	if running && !e.m.Signals.Test(signals.HighpriRunning) {
		logger.Logf(e.env, "rspq", "highpri finished at %s", e.Position())
		_ = e.env.Notify(notifications.NotifyHighpriEnd)
	}
}
