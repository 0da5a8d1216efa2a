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

// Package rdp is a model of the rasterizer that consumes the output of the
// engine. The rasterizer reads eight byte commands from shared memory between
// its current and end registers.
//
// The model understands enough commands to be useful: fill colour, scissor,
// fill rectangle and full synchronisation. Every command consumed, understood
// or not, is recorded in the command log.
package rdp

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/hardware/signals"
)

// Status bits returned by Status().
const (
	PipeBusy   uint32 = 1 << 5
	CmdBusy    uint32 = 1 << 6
	DMABusy    uint32 = 1 << 8
	EndValid   uint32 = 1 << 9
	StartValid uint32 = 1 << 10

	// all busy bits
	Busy = PipeBusy | CmdBusy | DMABusy
)

// Opcodes of the commands understood by the model.
const (
	OpSyncFull      = 0x29
	OpSetScissor    = 0x2d
	OpFillRectangle = 0x36
	OpSetFillColor  = 0x37
)

// Opcode returns the opcode of a command.
func Opcode(cmd uint64) int {
	return int(cmd>>56) & 0x3f
}

// Size of the framebuffer.
const (
	Width  = 320
	Height = 240
)

// RDP is the rasterizer. It is safe to read the command log and framebuffer
// from a goroutine other than the one ticking the rasterizer.
type RDP struct {
	crit sync.Mutex

	shared *memory.Shared
	sig    *signals.Register

	start   memory.Addr
	end     memory.Addr
	current memory.Addr

	// a pending buffer. the start register only takes effect once the
	// current buffer has been consumed and a new end has been written
	nextStart  memory.Addr
	nextEnd    memory.Addr
	startValid bool
	endValid   bool

	bytesPerTick int

	// every command consumed
	log []uint64

	fillColor color.RGBA
	scissor   image.Rectangle
	fb        *image.RGBA

	syncFulls int
}

// NewRDP is the preferred method of initialisation for the RDP type.
func NewRDP(shared *memory.Shared, sig *signals.Register, bytesPerTick int) *RDP {
	r := &RDP{
		shared: shared,
		sig:    sig,
		fb:     image.NewRGBA(image.Rect(0, 0, Width, Height)),
	}
	r.SetBytesPerTick(bytesPerTick)
	r.Reset()
	return r
}

// SetBytesPerTick changes the number of bytes consumed by each call to
// Tick(). The value is rounded up to a whole number of commands.
func (r *RDP) SetBytesPerTick(n int) {
	r.crit.Lock()
	defer r.crit.Unlock()
	r.bytesPerTick = max(8, (n+7)&^7)
}

// Reset the rasterizer to its initial state.
func (r *RDP) Reset() {
	r.crit.Lock()
	defer r.crit.Unlock()
	r.start = 0
	r.end = 0
	r.current = 0
	r.startValid = false
	r.endValid = false
	r.log = r.log[:0]
	r.fillColor = color.RGBA{}
	r.scissor = r.fb.Bounds()
	r.syncFulls = 0
	clear(r.fb.Pix)
}

func (r *RDP) String() string {
	r.crit.Lock()
	defer r.crit.Unlock()
	return fmt.Sprintf("start=%s end=%s current=%s", r.start, r.end, r.current)
}

// Status returns the status bits of the rasterizer.
func (r *RDP) Status() uint32 {
	r.crit.Lock()
	defer r.crit.Unlock()
	return r.status()
}

func (r *RDP) status() uint32 {
	var s uint32
	if r.current != r.end {
		s |= Busy
	}
	if r.startValid {
		s |= StartValid
	}
	if r.endValid {
		s |= EndValid
	}
	return s
}

// Current returns the address of the next command to be consumed.
func (r *RDP) Current() memory.Addr {
	r.crit.Lock()
	defer r.crit.Unlock()
	return r.current
}

// End returns the end register.
func (r *RDP) End() memory.Addr {
	r.crit.Lock()
	defer r.crit.Unlock()
	if r.endValid {
		return r.nextEnd
	}
	return r.end
}

// SetStart writes the start register. The write is ignored if a previous
// start is still pending.
func (r *RDP) SetStart(addr memory.Addr) {
	r.crit.Lock()
	defer r.crit.Unlock()
	if r.startValid {
		return
	}
	r.nextStart = addr
	r.startValid = true
}

// SetEnd writes the end register. If a start is pending then the range from
// the pending start to the new end becomes the next buffer. Otherwise the
// current buffer is extended.
func (r *RDP) SetEnd(addr memory.Addr) {
	r.crit.Lock()
	defer r.crit.Unlock()

	if !r.startValid {
		r.end = addr
		return
	}

	r.nextEnd = addr
	r.endValid = true
	r.switchBuffer()
}

// switch to the pending buffer if the current buffer has been consumed
func (r *RDP) switchBuffer() {
	if r.current != r.end || !r.endValid {
		return
	}
	r.start = r.nextStart
	r.current = r.nextStart
	r.end = r.nextEnd
	r.startValid = false
	r.endValid = false
}

// Tick consumes commands from shared memory.
func (r *RDP) Tick() {
	r.crit.Lock()
	defer r.crit.Unlock()

	r.switchBuffer()

	for n := 0; n < r.bytesPerTick && r.current != r.end; n += 8 {
		cmd := r.shared.ReadDoubleWord(r.current)
		r.current += 8
		r.execute(cmd)
	}

	r.switchBuffer()
}

// Drain ticks the rasterizer until there is nothing left to consume.
func (r *RDP) Drain() {
	for r.Status()&(Busy|EndValid) != 0 {
		r.Tick()
	}
}

func (r *RDP) execute(cmd uint64) {
	r.log = append(r.log, cmd)

	switch Opcode(cmd) {
	case OpSyncFull:
		r.syncFulls++
		if r.sig != nil {
			r.sig.Clear(signals.RdpSyncFull)
		}
	case OpSetFillColor:
		c := uint32(cmd)
		r.fillColor = color.RGBA{R: uint8(c >> 24), G: uint8(c >> 16), B: uint8(c >> 8), A: uint8(c)}
	case OpSetScissor:
		x0, y0, x1, y1 := coords(cmd)
		r.scissor = image.Rect(x0, y0, x1, y1).Intersect(r.fb.Bounds())
	case OpFillRectangle:
		// lower right coordinates are in the high part of the command
		x1, y1, x0, y0 := coords(cmd)
		rect := image.Rect(x0, y0, x1, y1).Intersect(r.scissor)
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				r.fb.SetRGBA(x, y, r.fillColor)
			}
		}
	}
}

// coords extracts the two pairs of 10.2 fixed point coordinates used by the
// scissor and rectangle commands.
func coords(cmd uint64) (int, int, int, int) {
	return int(cmd>>44&0xfff) >> 2, int(cmd>>32&0xfff) >> 2, int(cmd>>12&0xfff) >> 2, int(cmd&0xfff) >> 2
}

// Log returns a copy of the command log.
func (r *RDP) Log() []uint64 {
	r.crit.Lock()
	defer r.crit.Unlock()
	c := make([]uint64, len(r.log))
	copy(c, r.log)
	return c
}

// SyncFulls returns the number of full synchronisations consumed.
func (r *RDP) SyncFulls() int {
	r.crit.Lock()
	defer r.crit.Unlock()
	return r.syncFulls
}

// Framebuffer returns a copy of the framebuffer.
func (r *RDP) Framebuffer() *image.RGBA {
	r.crit.Lock()
	defer r.crit.Unlock()
	c := image.NewRGBA(r.fb.Bounds())
	copy(c.Pix, r.fb.Pix)
	return c
}
