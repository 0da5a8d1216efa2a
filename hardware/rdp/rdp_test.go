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

package rdp_test

import (
	"image/color"
	"testing"

	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/hardware/rdp"
	"github.com/jetsetilly/rspqueue/hardware/signals"
	"github.com/jetsetilly/rspqueue/test"
)

func TestCommands(t *testing.T) {
	test.ExpectEquality(t, rdp.Opcode(rdp.SyncFull()), rdp.OpSyncFull)
	test.ExpectEquality(t, rdp.Opcode(rdp.FillRectangle(0, 0, 10, 10)), rdp.OpFillRectangle)
	test.ExpectEquality(t, rdp.SetFillColor(0xff0000ff), 0x37000000ff0000ff)
}

func TestConsume(t *testing.T) {
	shared := memory.NewShared()
	sig := signals.NewRegister()
	r := rdp.NewRDP(shared, sig, 8)

	shared.WriteDoubleWord(0x1000, rdp.SetFillColor(0xff0000ff))
	shared.WriteDoubleWord(0x1008, rdp.SetScissor(0, 0, 8, 8))
	shared.WriteDoubleWord(0x1010, rdp.FillRectangle(4, 4, 16, 16))
	shared.WriteDoubleWord(0x1018, rdp.SyncFull())

	r.SetStart(0x1000)
	test.ExpectEquality(t, r.Status(), rdp.StartValid)
	r.SetEnd(0x1010)
	test.ExpectEquality(t, r.Status(), rdp.Busy)
	test.ExpectEquality(t, r.Current(), memory.Addr(0x1000))

	// eight bytes per tick
	r.Tick()
	test.ExpectEquality(t, r.Current(), memory.Addr(0x1008))
	r.Tick()
	test.ExpectEquality(t, r.Status(), uint32(0))

	// extending the current buffer
	sig.Set(signals.RdpSyncFull)
	r.SetEnd(0x1020)
	r.Drain()
	test.ExpectEquality(t, len(r.Log()), 4)
	test.ExpectEquality(t, r.SyncFulls(), 1)
	test.ExpectFailure(t, sig.Test(signals.RdpSyncFull))

	// the rectangle has been clipped by the scissor
	fb := r.Framebuffer()
	test.ExpectEquality(t, fb.RGBAAt(4, 4), color.RGBA{R: 0xff, A: 0xff})
	test.ExpectEquality(t, fb.RGBAAt(7, 7), color.RGBA{R: 0xff, A: 0xff})
	test.ExpectEquality(t, fb.RGBAAt(8, 8), color.RGBA{})
	test.ExpectEquality(t, fb.RGBAAt(3, 3), color.RGBA{})
}

func TestPendingBuffer(t *testing.T) {
	shared := memory.NewShared()
	r := rdp.NewRDP(shared, nil, 8)

	r.SetStart(0x1000)
	r.SetEnd(0x1010)

	// a new buffer while the current buffer is still being consumed
	r.SetStart(0x2000)
	r.SetEnd(0x2008)
	test.ExpectEquality(t, r.Status(), rdp.Busy|rdp.StartValid|rdp.EndValid)
	test.ExpectEquality(t, r.End(), memory.Addr(0x2008))

	// a second start is ignored while the first is pending
	r.SetStart(0x3000)

	r.Tick()
	r.Tick()
	test.ExpectEquality(t, r.Current(), memory.Addr(0x2000))
	r.Drain()
	test.ExpectEquality(t, r.Current(), memory.Addr(0x2008))
	test.ExpectEquality(t, r.Status(), uint32(0))
}
