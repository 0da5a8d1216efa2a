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

package host

import (
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/hardware/signals"
	"github.com/jetsetilly/rspqueue/rspq/wire"
)

// Noop writes a command that does nothing.
func (q *Queue) Noop() {
	q.Write(wire.Noop()...)
}

// Syncpoint writes a command that raises the syncpoint signal.
func (q *Queue) Syncpoint() {
	q.Write(wire.WriteStatus(signals.SetSignals(signals.Syncpoint))...)
}

// WriteStatus writes a command that applies the status write.
func (q *Queue) WriteStatus(w uint32) {
	q.Write(wire.WriteStatus(w)...)
}

// TestWriteStatus writes a command that waits for the bits in mask to be
// clear before applying the status write.
func (q *Queue) TestWriteStatus(w uint32, mask uint32) {
	q.Write(wire.TestWriteStatus(w, mask)...)
}

// Signal writes a command that sets the signals in mask.
func (q *Queue) Signal(mask uint32) {
	q.Write(wire.WriteStatus(signals.SetSignals(mask))...)
}

// DmaRead writes a command that copies shared memory into local memory.
func (q *Queue) DmaRead(local uint32, bank memory.Bank, remote memory.Addr, width int, wait bool) {
	q.Write(wire.Dma(remote, dmemAddr(local, bank), width, 1, width, false, wait)...)
}

// DmaWrite writes a command that copies local memory into shared memory.
func (q *Queue) DmaWrite(local uint32, bank memory.Bank, remote memory.Addr, width int, wait bool) {
	q.Write(wire.Dma(remote, dmemAddr(local, bank), width, 1, width, true, wait)...)
}

func dmemAddr(local uint32, bank memory.Bank) uint32 {
	local &= 0xfff
	if bank == memory.IMEM {
		local |= 0x1000
	}
	return local
}

// RdpWaitIdle writes a command that waits until the rasterizer status bits in
// mask are clear.
func (q *Queue) RdpWaitIdle(mask uint32) {
	q.Write(wire.RdpWaitIdle(mask)...)
}

// RdpSetBuffer writes a command that points the rasterizer at a buffer
// prepared by the host. A zero sentinel leaves the buffer to the host.
func (q *Queue) RdpSetBuffer(end memory.Addr, start memory.Addr, sentinel memory.Addr) {
	q.Write(wire.RdpSetBuffer(end, start, sentinel)...)
}

// RdpAppendBuffer writes a command that extends the rasterizer buffer.
func (q *Queue) RdpAppendBuffer(end memory.Addr) {
	q.Write(wire.RdpAppendBuffer(end)...)
}
