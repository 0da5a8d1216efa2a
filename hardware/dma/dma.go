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

// Package dma implements the single DMA channel between shared memory and the
// local memory of the coprocessor.
//
// The channel has a submission queue two entries deep. One transfer can be
// in flight while a second is waiting. Submitting a third transfer first
// completes the transfer in flight. Transfers complete in the order they were
// submitted.
//
// Transfers are completed by Tick() or by any of the wait functions. A
// transfer reads its source at the moment it completes, not when it is
// submitted.
//
// Addresses are rounded down to the DMA granularity and row lengths are
// rounded up, taking into account any misalignment of the source address.
// Transfer() returns the address in the destination where the first
// requested source byte will be found.
package dma

import (
	"fmt"
	"sync/atomic"

	"github.com/jetsetilly/rspqueue/hardware/memory"
)

// Direction of a transfer.
type Direction int

// List of valid Direction values.
const (
	// shared memory to local memory
	Read Direction = iota

	// local memory to shared memory
	Write
)

func (d Direction) String() string {
	if d == Write {
		return "write"
	}
	return "read"
}

// Mode of a transfer.
type Mode int

// List of valid Mode values.
const (
	// Transfer() returns once the transfer has been queued
	Async Mode = iota

	// Transfer() returns once the transfer, and all transfers before it,
	// have completed
	Sync
)

// Request describes a single transfer.
type Request struct {
	Dir    Direction
	Bank   memory.Bank
	Local  uint32
	Remote memory.Addr

	// width of each row in bytes, number of rows and the distance in shared
	// memory between the start of each row. rows are packed in local memory
	Width  int
	Height int
	Pitch  int
}

func (r Request) String() string {
	return fmt.Sprintf("%s %s:%03x %s (%dx%d pitch %d)", r.Dir, r.Bank, r.Local, r.Remote, r.Width, r.Height, r.Pitch)
}

// Stats about transfers completed by the DMA channel.
type Stats struct {
	Transfers int
	Bytes     int

	// number of times a submission had to wait for the queue
	Stalls int
}

// DMA is the DMA channel.
type DMA struct {
	shared *memory.Shared
	local  *memory.Local

	// queue[0] is the transfer in flight. the number of queued transfers is
	// read by the status register from other goroutines
	queue [2]Request
	n     atomic.Int32

	stats Stats

	// row buffer. a single row can never be larger than a bank
	row [memory.DMEMSize + memory.Granularity]byte
}

// NewDMA is the preferred method of initialisation for the DMA type.
func NewDMA(shared *memory.Shared, local *memory.Local) *DMA {
	return &DMA{
		shared: shared,
		local:  local,
	}
}

// Reset discards any queued transfers and clears the statistics.
func (d *DMA) Reset() {
	d.n.Store(0)
	d.stats = Stats{}
}

// Stats returns a copy of the current statistics.
func (d *DMA) Stats() Stats {
	return d.stats
}

// Busy returns true if there is a transfer in flight.
func (d *DMA) Busy() bool {
	return d.n.Load() > 0
}

// Full returns true if a transfer is waiting behind the transfer in flight.
func (d *DMA) Full() bool {
	return int(d.n.Load()) == len(d.queue)
}

// Transfer queues a new transfer. The queue must have a free slot, which
// Transfer() ensures by waiting if necessary.
//
// Returns the address in the destination where the first requested byte of
// the source will be found. For Read transfers this is an address in local
// memory and for Write transfers an address in shared memory.
func (d *DMA) Transfer(req Request, mode Mode) uint32 {
	if req.Height < 1 {
		req.Height = 1
	}

	var src, dst uint32
	if req.Dir == Read {
		src = uint32(req.Remote)
		dst = req.Local
	} else {
		src = req.Local
		dst = uint32(req.Remote)
	}

	d.WaitReady()
	n := d.n.Load()
	d.queue[n] = req
	d.n.Store(n + 1)

	if mode == Sync {
		d.WaitIdle()
	}

	return (dst &^ (memory.Granularity - 1)) + (src & (memory.Granularity - 1))
}

// WaitReady waits until there is a free slot in the queue.
func (d *DMA) WaitReady() {
	if d.Full() {
		d.stats.Stalls++
		d.Tick()
	}
}

// WaitIdle waits until all queued transfers have completed.
func (d *DMA) WaitIdle() {
	for d.Busy() {
		d.Tick()
	}
}

// Tick completes the transfer in flight, if there is one.
func (d *DMA) Tick() {
	n := d.n.Load()
	if n == 0 {
		return
	}

	d.execute(d.queue[0])
	d.queue[0] = d.queue[1]
	d.n.Store(n - 1)
}

func (d *DMA) execute(req Request) {
	bank := d.local.Bank(req.Bank)
	bankMask := uint32(len(bank) - 1)

	var misalign int
	if req.Dir == Read {
		misalign = req.Remote.Misalignment()
	} else {
		misalign = int(req.Local & (memory.Granularity - 1))
	}

	// length of each row including the misalignment, rounded up
	rowLen := (req.Width + misalign + memory.Granularity - 1) &^ (memory.Granularity - 1)

	remote := req.Remote.Aligned()
	local := req.Local &^ (memory.Granularity - 1)

	row := d.row[:min(rowLen, len(d.row))]
	for y := 0; y < req.Height; y++ {
		r := remote + memory.Addr(y*req.Pitch)
		l := local + uint32(y*rowLen)

		switch req.Dir {
		case Read:
			d.shared.Read(r, row)
			for i := range row {
				bank[(l+uint32(i))&bankMask] = row[i]
			}
		case Write:
			for i := range row {
				row[i] = bank[(l+uint32(i))&bankMask]
			}
			d.shared.Write(r, row)
		}

		d.stats.Bytes += rowLen
	}

	d.stats.Transfers++
}
