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

package counter

import (
	"github.com/jetsetilly/rspqueue/host"
	"github.com/jetsetilly/rspqueue/rspq/wire"
)

// Commands writes counter commands to a queue.
type Commands struct {
	q    *host.Queue
	slot int
}

// NewCommands is the preferred method of initialisation for the Commands
// type. The slot is the overlay slot returned when the overlay was
// registered.
func NewCommands(q *host.Queue, slot int) *Commands {
	return &Commands{
		q:    q,
		slot: slot,
	}
}

func (c *Commands) header(cmd int, arg0 uint32) uint32 {
	return wire.Header(wire.OverlayCommand(c.slot, cmd), arg0)
}

// Add n to the accumulator.
func (c *Commands) Add(n uint32) {
	c.q.Write(c.header(CmdAdd, n))
}

// Scratch stores n in scratch memory.
func (c *Commands) Scratch(n uint32) {
	c.q.Write(c.header(CmdScratch, n))
}

// Emit sends the accumulator and the value in scratch memory to the
// rasterizer as an ignored command.
func (c *Commands) Emit() {
	c.q.Write(c.header(CmdEmit, 0))
}

// Spin yields n times before adding one to the accumulator.
func (c *Commands) Spin(n uint32) {
	c.q.Write(c.header(CmdSpin, n))
}

// Sum adds a base value and seven more values to the accumulator.
func (c *Commands) Sum(base uint32, values [SumWords - 1]uint32) {
	words := [SumWords]uint32{c.header(CmdSum, base)}
	copy(words[1:], values[:])
	c.q.Write(words[:]...)
}
