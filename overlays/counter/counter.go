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

// Package counter is a small overlay with a persisted accumulator. It is
// useful for checking that persisted state survives overlay swaps, that
// scratch memory does not, and for checking the behaviour of handlers that
// yield.
package counter

import (
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/rspq/overlay"
	"github.com/jetsetilly/rspqueue/rspq/wire"
)

// Command numbers of the overlay.
const (
	CmdAdd = iota
	CmdScratch
	CmdEmit
	CmdSpin
	CmdSum
	numCommands
)

// SumWords is the size of the Sum command. The header and seven values.
const SumWords = 8

var commands = [numCommands]wire.Descriptor{
	CmdAdd:     wire.NewDescriptor(1, CmdAdd),
	CmdScratch: wire.NewDescriptor(1, CmdScratch),
	CmdEmit:    wire.NewDescriptor(1, CmdEmit),
	CmdSpin:    wire.NewDescriptor(1, CmdSpin),
	CmdSum:     wire.NewDescriptor(SumWords, CmdSum),
}

// scratch memory holds one value and the command being sent to the
// rasterizer
const (
	scratchValue = 0
	scratchSend  = 8
	scratchSize  = 16
)

// Overlay implements the overlay.Module interface.
type Overlay struct {
	img overlay.Image

	loads int
	saves int
	spins int
}

// NewOverlay is the preferred method of initialisation for the Overlay type.
func NewOverlay() *Overlay {
	return &Overlay{
		img: overlay.Image{
			Code:     []byte("counter"),
			Commands: commands[:],
			State:    make([]byte, 4),
			Scratch:  scratchSize,
		},
	}
}

// Name implements the overlay.Module interface.
func (ovl *Overlay) Name() string {
	return "counter"
}

// Image implements the overlay.Module interface.
func (ovl *Overlay) Image() overlay.Image {
	return ovl.img
}

// Load implements the overlay.Module interface.
func (ovl *Overlay) Load(_ overlay.Context) {
	ovl.loads++
}

// Save implements the overlay.Module interface.
func (ovl *Overlay) Save(_ overlay.Context) {
	ovl.saves++
}

// Loads returns the number of times the overlay has been made resident.
func (ovl *Overlay) Loads() int {
	return ovl.loads
}

// Saves returns the number of times the overlay has been swapped out.
func (ovl *Overlay) Saves() int {
	return ovl.saves
}

// Spins returns the number of times the Spin command has yielded.
func (ovl *Overlay) Spins() int {
	return ovl.spins
}

func (ovl *Overlay) accumulator() uint32 {
	return memory.OverlayDataOrigin + uint32(ovl.img.StateStart())
}

func (ovl *Overlay) scratch() uint32 {
	return memory.OverlayDataOrigin + uint32(ovl.img.ScratchStart())
}

// Dispatch implements the overlay.Module interface.
func (ovl *Overlay) Dispatch(ctx overlay.Context, entry uint16, args overlay.Args) overlay.Result {
	mem := ctx.Local()
	acc := ovl.accumulator()

	switch entry {
	case CmdAdd:
		mem.SetWord(acc, mem.Word(acc)+args.Arg0())

	case CmdScratch:
		mem.SetWord(ovl.scratch()+scratchValue, args.Arg0())

	case CmdEmit:
		// the command has a zero opcode so the rasterizer ignores it
		s := ovl.scratch()
		mem.SetWord(s+scratchSend, mem.Word(acc)&0x00ffffff)
		mem.SetWord(s+scratchSend+4, mem.Word(s+scratchValue))
		ctx.Output().Send(s+scratchSend, 8)

	case CmdSpin:
		remaining := args.Arg0()
		if args.Resumed {
			remaining = args.Resume
		}
		if remaining > 0 {
			ovl.spins++
			return overlay.Result{Status: overlay.Yield, Resume: remaining - 1}
		}
		mem.SetWord(acc, mem.Word(acc)+1)

	case CmdSum:
		sum := args.Arg0()
		for i := 1; i < SumWords; i++ {
			sum += args.Word(mem, i)
		}
		mem.SetWord(acc, mem.Word(acc)+sum)
	}

	return overlay.Result{}
}
