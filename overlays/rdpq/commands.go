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

package rdpq

import (
	"github.com/jetsetilly/rspqueue/host"
	"github.com/jetsetilly/rspqueue/rspq/wire"
)

// Commands writes rdpq commands to a queue.
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

// SetFillColor sets the colour used by FillRectangle(). The colour is packed
// as RGBA8888.
func (c *Commands) SetFillColor(rgba uint32) {
	c.q.Write(c.header(CmdSetFillColor, 0), rgba)
}

// SetScissor sets the clipping rectangle.
func (c *Commands) SetScissor(x0, y0, x1, y1 int) {
	c.q.Write(c.header(CmdSetScissor, pack(x0, y0)), pack(x1, y1))
}

// FillRectangle fills a rectangle with the fill colour. The rectangle
// includes the top left pixel but not the bottom right pixel.
func (c *Commands) FillRectangle(x0, y0, x1, y1 int) {
	c.q.Write(c.header(CmdFillRectangle, pack(x0, y0)), pack(x1, y1))
}

// Passthrough sends a raw rasterizer command.
func (c *Commands) Passthrough(cmd uint64) {
	c.q.Write(c.header(CmdPassthrough, 0), uint32(cmd>>32), uint32(cmd))
}

// SyncFull sends a full synchronisation to the rasterizer.
func (c *Commands) SyncFull() {
	c.q.Write(c.header(CmdSyncFull, 0))
}
