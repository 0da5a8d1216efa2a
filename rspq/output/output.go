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

// Package output coordinates the output of the engine to the rasterizer.
//
// Commands generated by overlays are written into one of two alternating
// regions of shared memory. When the write cursor would pass the sentinel of
// the current region the coordinator switches to the other region. The host
// can also point the rasterizer at its own buffers with SetBuffer().
//
// A full synchronisation sent to the rasterizer blocks further appends until
// the region containing it has been consumed. This happens the next time the
// rasterizer is pointed at a new buffer.
package output

import (
	"context"
	"fmt"
	"time"

	"github.com/jetsetilly/rspqueue/environment"
	"github.com/jetsetilly/rspqueue/faults"
	"github.com/jetsetilly/rspqueue/hardware"
	"github.com/jetsetilly/rspqueue/hardware/dma"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/hardware/rdp"
	"github.com/jetsetilly/rspqueue/hardware/signals"
	"github.com/jetsetilly/rspqueue/logger"
	"github.com/jetsetilly/rspqueue/notifications"
)

// MaxRasterizerCommand is the size in bytes of the largest rasterizer
// command. The sentinel of an alternating region is this many bytes before
// the end of the region.
const MaxRasterizerCommand = 176

// FaultHandler is called when the coordinator detects a fault.
type FaultHandler func(category faults.Category, event string)

// Coordinator of the output buffers.
type Coordinator struct {
	env *environment.Environment
	m   *hardware.Machine

	// the two alternating regions and the index of the region in use
	regions [2]memory.Addr
	size    int
	idx     int

	// write cursor and sentinel. a zero sentinel forces a switch of region
	// on the next send
	current  memory.Addr
	sentinel memory.Addr

	// a full synchronisation has been sent and the region containing it has
	// not been consumed
	syncFull bool

	fault FaultHandler

	switches int
}

// NewCoordinator is the preferred method of initialisation for the
// Coordinator type.
func NewCoordinator(env *environment.Environment, m *hardware.Machine) *Coordinator {
	return &Coordinator{
		env: env,
		m:   m,
	}
}

func (c *Coordinator) String() string {
	return fmt.Sprintf("region %d: current=%s sentinel=%s syncfull=%v", c.idx, c.current, c.sentinel, c.syncFull)
}

// SetFaultHandler sets the function called when a fault is detected.
func (c *Coordinator) SetFaultHandler(f FaultHandler) {
	c.fault = f
}

// Init sets the two alternating regions. Both regions must be size bytes
// long. The first send after Init() will use the first region.
func (c *Coordinator) Init(region0 memory.Addr, region1 memory.Addr, size int) {
	c.regions = [2]memory.Addr{region0, region1}
	c.size = size
	c.idx = 1
	c.current = 0
	c.sentinel = 0
	c.syncFull = false
	c.switches = 0
}

// Reset returns the coordinator to the state after Init(), keeping the
// regions.
func (c *Coordinator) Reset() {
	c.Init(c.regions[0], c.regions[1], c.size)
}

// SyncFull returns true if a full synchronisation is outstanding.
func (c *Coordinator) SyncFull() bool {
	return c.syncFull
}

// Switches returns the number of times the coordinator has switched region.
func (c *Coordinator) Switches() int {
	return c.switches
}

// SetBuffer points the rasterizer at a new buffer. If a full synchronisation
// is outstanding the rasterizer is first allowed to consume everything that
// has been issued.
//
// A non-zero sentinel makes the new buffer the target of commands sent by
// overlays, starting at end. A zero sentinel means the buffer belongs to the
// host and the next send will switch to the other alternating region.
func (c *Coordinator) SetBuffer(end memory.Addr, start memory.Addr, sentinel memory.Addr) {
	if c.syncFull {
		c.drain()
		c.syncFull = false
	}

	// the rasterizer only accepts a new start once the previous start has
	// been taken
	for c.m.RDP.Status()&rdp.StartValid != 0 {
		c.m.Tick()
	}
	c.m.RDP.SetStart(start)

	c.sentinel = sentinel
	if sentinel != 0 {
		c.current = end
	}

	c.AppendBuffer(end)
}

// AppendBuffer extends the buffer being consumed by the rasterizer. Ignored
// if a full synchronisation is outstanding.
func (c *Coordinator) AppendBuffer(end memory.Addr) {
	if c.syncFull {
		return
	}
	c.m.RDP.SetEnd(end)
}

// WaitIdle waits until the rasterizer status bits in mask are clear. A zero
// mask returns immediately.
func (c *Coordinator) WaitIdle(mask uint32) {
	if mask == 0 {
		return
	}
	for c.m.RDP.Status()&mask != 0 {
		c.m.Tick()
	}
}

// Send n bytes of rasterizer commands from DMEM to the current region and
// append them to the rasterizer buffer. The local address must be aligned to
// the DMA granularity.
func (c *Coordinator) Send(local uint32, n int) {
	if c.sentinel == 0 || c.current+memory.Addr(n) > c.sentinel {
		c.switchRegion()
	}

	c.m.DMA.Transfer(dma.Request{
		Dir:    dma.Write,
		Bank:   memory.DMEM,
		Local:  local,
		Remote: c.current,
		Width:  n,
	}, dma.Sync)

	c.current += memory.Addr(n)
	c.AppendBuffer(c.current)
}

// MarkSyncFull is called after a full synchronisation has been sent. Appends
// are ignored and the next send switches region.
func (c *Coordinator) MarkSyncFull() {
	c.syncFull = true
	c.sentinel = 0
}

func (c *Coordinator) switchRegion() {
	c.idx ^= 1
	c.switches++
	start := c.regions[c.idx]
	c.SetBuffer(start, start, start+memory.Addr(c.size-MaxRasterizerCommand))
	logger.Logf(c.env, "output", "switched to region %d (%s)", c.idx, start)
}

// drain lets the rasterizer consume everything issued so far. in diagnostic
// mode the host must then acknowledge the full synchronisation
func (c *Coordinator) drain() {
	for c.m.RDP.Status()&(rdp.Busy|rdp.EndValid) != 0 {
		c.m.Tick()
	}

	if !c.env.Prefs.Diagnostic.Get().(bool) {
		return
	}

	_ = c.env.Notify(notifications.NotifySyncFullAck)

	timeout := time.Duration(c.env.Prefs.AckTimeout.Get().(int)) * time.Millisecond
	if !c.m.Signals.WaitFor(context.Background(), signals.Ack, timeout) {
		logger.Log(c.env, "output", "no acknowledgement of full synchronisation")
		if c.fault != nil {
			c.fault(faults.AckTimeout, "no acknowledgement of full synchronisation")
		}
		return
	}
	c.m.Signals.Clear(signals.Ack)
}
