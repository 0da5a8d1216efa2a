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

// Package hardware brings together the simulated devices that the engine
// runs on: shared memory, the local memory of the coprocessor, the DMA
// channel, the status register and the rasterizer.
//
// The DMA channel and the rasterizer run asynchronously to the engine. In the
// simulation they are advanced by calls to Tick(), which the engine makes at
// every point where real hardware would be polled.
package hardware

import (
	"github.com/jetsetilly/rspqueue/environment"
	"github.com/jetsetilly/rspqueue/hardware/dma"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/hardware/rdp"
	"github.com/jetsetilly/rspqueue/hardware/signals"
	"github.com/jetsetilly/rspqueue/prefs"
)

// Machine is the collection of simulated devices.
type Machine struct {
	env *environment.Environment

	Shared  *memory.Shared
	Local   *memory.Local
	DMA     *dma.DMA
	Signals *signals.Register
	RDP     *rdp.RDP
}

// NewMachine is the preferred method of initialisation for the Machine type.
func NewMachine(env *environment.Environment) *Machine {
	m := &Machine{
		env:     env,
		Shared:  memory.NewShared(),
		Local:   memory.NewLocal(),
		Signals: signals.NewRegister(),
	}

	m.DMA = dma.NewDMA(m.Shared, m.Local)
	m.RDP = rdp.NewRDP(m.Shared, m.Signals, env.Prefs.RasterizerBytesPerTick.Get().(int))

	m.Signals.AttachDevice(func() uint32 {
		var s uint32
		if m.DMA.Busy() {
			s |= signals.DMABusy
		}
		if m.DMA.Full() {
			s |= signals.DMAFull
		}
		return s
	})

	env.Prefs.RasterizerBytesPerTick.SetHookPost(func(v prefs.Value) error {
		m.RDP.SetBytesPerTick(v.(int))
		return nil
	})

	return m
}

// Reset all devices. Shared memory is not cleared.
func (m *Machine) Reset() {
	m.Local.Reset()
	m.DMA.Reset()
	m.Signals.Reset()
	m.RDP.Reset()
}

// Tick advances the asynchronous devices.
func (m *Machine) Tick() {
	m.DMA.Tick()
	m.RDP.Tick()
}
