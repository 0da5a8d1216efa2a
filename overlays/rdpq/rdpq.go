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

// Package rdpq is an overlay that generates rasterizer commands. The fill
// colour and scissor rectangle are persisted state so they survive the
// overlay being swapped out.
//
// Rectangles are clipped to the scissor rectangle before they are sent to the
// rasterizer. A rectangle that is entirely outside the scissor rectangle
// generates no commands.
package rdpq

import (
	"encoding/binary"
	"image"

	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/hardware/rdp"
	"github.com/jetsetilly/rspqueue/hardware/signals"
	"github.com/jetsetilly/rspqueue/rspq/overlay"
	"github.com/jetsetilly/rspqueue/rspq/wire"
)

// Command numbers of the overlay.
const (
	CmdSetFillColor = iota
	CmdSetScissor
	CmdFillRectangle
	CmdPassthrough
	CmdSyncFull
	numCommands
)

var commands = [numCommands]wire.Descriptor{
	CmdSetFillColor:  wire.NewDescriptor(2, CmdSetFillColor),
	CmdSetScissor:    wire.NewDescriptor(2, CmdSetScissor),
	CmdFillRectangle: wire.NewDescriptor(2, CmdFillRectangle),
	CmdPassthrough:   wire.NewDescriptor(3, CmdPassthrough),
	CmdSyncFull:      wire.NewDescriptor(1, CmdSyncFull),
}

// layout of persisted state
const (
	stateFillColor = 0
	stateScissor   = 4
	stateSize      = 12
)

// rasterizer commands are built in scratch memory before being sent
const scratchSize = 16

// Overlay implements the overlay.Module interface.
type Overlay struct {
	img overlay.Image

	// copy of the persisted state while the overlay is resident
	fillColor uint32
	scissor   image.Rectangle
}

// NewOverlay is the preferred method of initialisation for the Overlay type.
func NewOverlay() *Overlay {
	ovl := &Overlay{}

	state := make([]byte, stateSize)
	binary.BigEndian.PutUint16(state[stateScissor+4:], rdp.Width)
	binary.BigEndian.PutUint16(state[stateScissor+6:], rdp.Height)

	ovl.img = overlay.Image{
		Code:     []byte("rdpq"),
		Commands: commands[:],
		State:    state,
		Scratch:  scratchSize,
	}

	return ovl
}

// Name implements the overlay.Module interface.
func (ovl *Overlay) Name() string {
	return "rdpq"
}

// Image implements the overlay.Module interface.
func (ovl *Overlay) Image() overlay.Image {
	return ovl.img
}

func (ovl *Overlay) state() uint32 {
	return memory.OverlayDataOrigin + uint32(ovl.img.StateStart())
}

func (ovl *Overlay) scratch() uint32 {
	return memory.OverlayDataOrigin + uint32(ovl.img.ScratchStart())
}

// Load implements the overlay.Module interface.
func (ovl *Overlay) Load(ctx overlay.Context) {
	mem := ctx.Local()
	st := ovl.state()
	ovl.fillColor = mem.Word(st + stateFillColor)
	ovl.scissor = image.Rect(
		int(mem.Half(st+stateScissor)), int(mem.Half(st+stateScissor+2)),
		int(mem.Half(st+stateScissor+4)), int(mem.Half(st+stateScissor+6)),
	)
}

// Save implements the overlay.Module interface.
func (ovl *Overlay) Save(ctx overlay.Context) {
	mem := ctx.Local()
	st := ovl.state()
	mem.SetWord(st+stateFillColor, ovl.fillColor)
	mem.SetHalf(st+stateScissor, uint16(ovl.scissor.Min.X))
	mem.SetHalf(st+stateScissor+2, uint16(ovl.scissor.Min.Y))
	mem.SetHalf(st+stateScissor+4, uint16(ovl.scissor.Max.X))
	mem.SetHalf(st+stateScissor+6, uint16(ovl.scissor.Max.Y))
}

// Dispatch implements the overlay.Module interface.
func (ovl *Overlay) Dispatch(ctx overlay.Context, entry uint16, args overlay.Args) overlay.Result {
	switch entry {
	case CmdSetFillColor:
		ovl.fillColor = args.Words[1]

	case CmdSetScissor:
		ovl.scissor = rect(args).Canon()

	case CmdFillRectangle:
		r := rect(args).Canon().Intersect(ovl.scissor)
		if r.Empty() {
			break // switch
		}
		ovl.send(ctx, rdp.SetFillColor(ovl.fillColor), rdp.FillRectangle(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y))

	case CmdPassthrough:
		ovl.send(ctx, uint64(args.Words[1])<<32|uint64(args.Words[2]))

	case CmdSyncFull:
		// the signal is cleared by the rasterizer when it reaches the command
		ctx.Signals().Set(signals.RdpSyncFull)
		ovl.send(ctx, rdp.SyncFull())
		ctx.Output().MarkSyncFull()
	}

	return overlay.Result{}
}

// send up to two rasterizer commands through the scratch memory
func (ovl *Overlay) send(ctx overlay.Context, cmds ...uint64) {
	mem := ctx.Local()
	s := ovl.scratch()
	for i, c := range cmds[:min(len(cmds), scratchSize/8)] {
		mem.SetWord(s+uint32(i*8), uint32(c>>32))
		mem.SetWord(s+uint32(i*8)+4, uint32(c))
	}
	ctx.Output().Send(s, min(len(cmds), scratchSize/8)*8)
}

// coordinates are packed as two 12 bit values in the header and the second
// word
func rect(args overlay.Args) image.Rectangle {
	a := args.Arg0()
	b := args.Words[1]
	return image.Rect(int(a>>12&0xfff), int(a&0xfff), int(b>>12&0xfff), int(b&0xfff))
}

func pack(x, y int) uint32 {
	return uint32(x&0xfff)<<12 | uint32(y&0xfff)
}
