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

package dma_test

import (
	"testing"
	"time"

	"github.com/jetsetilly/rspqueue/hardware/dma"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/test"
)

func newDMA() (*dma.DMA, *memory.Shared, *memory.Local) {
	shared := memory.NewShared()
	local := memory.NewLocal()
	for i := 0; i < 0x100; i++ {
		shared.Write(memory.Addr(0x1000+i), []byte{byte(i)})
	}
	return dma.NewDMA(shared, local), shared, local
}

func TestAlignment(t *testing.T) {
	d, _, local := newDMA()

	// source misaligned by 3 bytes. the requested data appears 3 bytes into
	// the aligned destination
	dst := d.Transfer(dma.Request{Dir: dma.Read, Bank: memory.DMEM, Local: 0x40, Remote: 0x1003, Width: 8}, dma.Sync)
	test.ExpectEquality(t, dst, uint32(0x43))
	test.ExpectEquality(t, local.DMEM[0x43], 0x03)
	test.ExpectEquality(t, local.DMEM[0x40], 0x00)

	// the row was rounded up to cover the misalignment
	test.ExpectEquality(t, local.DMEM[0x4a], 0x0a)
	test.ExpectEquality(t, local.DMEM[0x4f], 0x0f)
	test.ExpectEquality(t, local.DMEM[0x50], 0x00)

	test.ExpectEquality(t, d.Stats().Bytes, 16)
}

func TestWrite(t *testing.T) {
	d, shared, local := newDMA()

	local.SetWord(0x80, 0xcafef00d)
	dst := d.Transfer(dma.Request{Dir: dma.Write, Bank: memory.DMEM, Local: 0x80, Remote: 0x2004, Width: 4}, dma.Sync)
	test.ExpectEquality(t, dst, uint32(0x2000))
	test.ExpectEquality(t, shared.ReadWord(0x2000), 0xcafef00d)
}

func TestQueue(t *testing.T) {
	d, shared, local := newDMA()

	test.ExpectFailure(t, d.Busy())

	d.Transfer(dma.Request{Dir: dma.Read, Bank: memory.DMEM, Local: 0x00, Remote: 0x1000, Width: 8}, dma.Async)
	test.ExpectSuccess(t, d.Busy())
	test.ExpectFailure(t, d.Full())

	// nothing has been copied yet
	test.ExpectEquality(t, local.DMEM[0x07], 0x00)

	d.Transfer(dma.Request{Dir: dma.Read, Bank: memory.DMEM, Local: 0x08, Remote: 0x1008, Width: 8}, dma.Async)
	test.ExpectSuccess(t, d.Full())

	// a third transfer completes the transfer in flight
	d.Transfer(dma.Request{Dir: dma.Read, Bank: memory.IMEM, Local: 0x00, Remote: 0x1010, Width: 8}, dma.Async)
	test.ExpectEquality(t, d.Stats().Stalls, 1)
	test.ExpectEquality(t, d.Stats().Transfers, 1)
	test.ExpectEquality(t, local.DMEM[0x07], 0x07)
	test.ExpectEquality(t, local.DMEM[0x0f], 0x00)

	d.WaitIdle()
	test.ExpectFailure(t, d.Busy())
	test.ExpectEquality(t, local.DMEM[0x0f], 0x0f)
	test.ExpectEquality(t, local.IMEM[0x07], 0x17)

	// transfers complete in order. a write back queued before a read into
	// the same local memory sees the data before it is overwritten
	local.SetWord(0x00, 0x11223344)
	d.Transfer(dma.Request{Dir: dma.Write, Bank: memory.DMEM, Local: 0x00, Remote: 0x3000, Width: 4}, dma.Async)
	d.Transfer(dma.Request{Dir: dma.Read, Bank: memory.DMEM, Local: 0x00, Remote: 0x1000, Width: 4}, dma.Sync)
	test.ExpectEquality(t, shared.ReadWord(0x3000), 0x11223344)
	test.ExpectEquality(t, local.Word(0x00), 0x00010203)
}

func TestRows(t *testing.T) {
	d, _, local := newDMA()

	// two rows of eight bytes taken from every 0x20 bytes of shared memory
	d.Transfer(dma.Request{Dir: dma.Read, Bank: memory.DMEM, Local: 0x100, Remote: 0x1000, Width: 8, Height: 2, Pitch: 0x20}, dma.Sync)
	test.ExpectEquality(t, local.DMEM[0x100], 0x00)
	test.ExpectEquality(t, local.DMEM[0x108], 0x20)
	test.ExpectEquality(t, local.DMEM[0x10f], 0x27)
}

// the busy and full bits are read by the status register from the host
// goroutine while the engine goroutine submits and completes transfers
func TestConcurrentStatus(t *testing.T) {
	d, _, _ := newDMA()

	done := make(chan bool)
	go func() {
		for i := 0; i < 1000; i++ {
			d.Transfer(dma.Request{Dir: dma.Read, Bank: memory.DMEM, Local: 0x40, Remote: 0x1000, Width: 8}, dma.Async)
			d.Transfer(dma.Request{Dir: dma.Read, Bank: memory.DMEM, Local: 0x80, Remote: 0x1008, Width: 8}, dma.Async)
			d.WaitIdle()
		}
		done <- true
	}()

	timeout := time.After(5 * time.Second)
	for running := true; running; {
		select {
		case <-done:
			running = false
		case <-timeout:
			t.Fatalf("transfers did not complete")
		default:
			_ = d.Busy()
			_ = d.Full()
		}
	}

	test.ExpectFailure(t, d.Busy())
	test.ExpectFailure(t, d.Full())
}
