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

package wire_test

import (
	"testing"

	"github.com/jetsetilly/rspqueue/hardware/signals"
	"github.com/jetsetilly/rspqueue/rspq/wire"
	"github.com/jetsetilly/rspqueue/test"
)

func TestHeader(t *testing.T) {
	h := wire.Header(0x52, 0x123456)
	test.ExpectEquality(t, h, 0x52123456)
	test.ExpectEquality(t, wire.CommandID(h), 0x52)
	test.ExpectEquality(t, wire.OverlaySlot(h), 5)
	test.ExpectEquality(t, wire.Arg0(h), 0x123456)

	// argument is truncated to 24 bits
	test.ExpectEquality(t, wire.Header(0x01, 0xff000001), 0x01000001)

	// commands of an overlay occupying two slots
	test.ExpectEquality(t, wire.OverlayCommand(3, 2), 0x32)
	test.ExpectEquality(t, wire.OverlaySlot(wire.Header(wire.OverlayCommand(3, 17), 0)), 4)
}

func TestDescriptor(t *testing.T) {
	d := wire.NewDescriptor(62, 0x3ff)
	test.ExpectEquality(t, d.Words(), 62)
	test.ExpectEquality(t, d.Bytes(), 248)
	test.ExpectEquality(t, d.Entry(), 0x3ff)

	d = wire.NewDescriptor(3, 0x10)
	test.ExpectEquality(t, uint16(d), 0x0c10)
}

func TestOverlayHeader(t *testing.T) {
	b := make([]byte, wire.OverlayHeaderSize)
	h := wire.OverlayHeader{StateStart: 0x20, StateSize: 0x08, CommandBase: 0x10}
	h.Put(b)
	test.ExpectEquality(t, b[1], 0x20)
	test.ExpectEquality(t, b[5], 0x10)
	test.ExpectEquality(t, wire.ReadOverlayHeader(b), h)
}

func TestInternal(t *testing.T) {
	for id, w := range wire.InternalWords {
		test.ExpectSuccess(t, w <= wire.MaxCommandWords, id)
	}

	c := wire.Call(0x1000, 2)
	test.DemandEquality(t, len(c), wire.InternalWords[wire.CmdCall])
	test.ExpectEquality(t, c[0], 0x03001000)
	test.ExpectEquality(t, c[1], 8)
	test.ExpectEquality(t, wire.OffsetSlot(c[1]), 2)

	s := wire.SwapBuffers(9, 8, signals.ClearSignals(signals.HighpriRunning))
	test.DemandEquality(t, len(s), wire.InternalWords[wire.CmdSwapBuffers])
	test.ExpectEquality(t, wire.OffsetSlot(wire.Arg0(s[0])), 9)
}

func TestDma(t *testing.T) {
	d := wire.Dma(0x2000, 0x100, 16, 2, 64, true, true)
	test.DemandEquality(t, len(d), wire.InternalWords[wire.CmdDma])
	test.ExpectEquality(t, d[3]&wire.DmaFlagWrite, wire.DmaFlagWrite)
	test.ExpectEquality(t, d[3]&wire.DmaWaitMask, wire.DmaWaitMask)

	w, h, p := wire.DmaLength(d[2])
	test.ExpectEquality(t, w, 16)
	test.ExpectEquality(t, h, 2)
	test.ExpectEquality(t, p, 64)
}
