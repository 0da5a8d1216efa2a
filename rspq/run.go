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

package rspq

import (
	"context"
	"time"

	"github.com/jetsetilly/rspqueue/hardware/rdp"
	"github.com/jetsetilly/rspqueue/hardware/signals"
)

// RunUntilHalt steps the engine until it is suspended. Returns the state that
// suspended the engine. Useful when the host and the engine are running in
// the same goroutine.
func (e *Engine) RunUntilHalt() State {
	for {
		st := e.Step()
		if st.Suspended() {
			return st
		}
	}
}

// Run the engine until the context is done or a fault is raised. When the
// engine is suspended Run() blocks until the signals register changes, or
// until the halt timeout expires.
//
// Returns nil if the context was cancelled.
func (e *Engine) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		// a change to the signals made by the host while the engine is
		// stepping wakes the wait below immediately
		gen := e.m.Signals.Generation()

		switch e.Step() {
		case Faulted:
			return e.fatal
		case Idle:
			// the rasterizer only advances when the engine ticks
			if e.m.RDP.Status()&(rdp.Busy|rdp.EndValid) != 0 {
				continue // for loop
			}
			e.m.Signals.WaitSince(ctx, gen, e.haltTimeout())
		case Waiting:
			e.m.Signals.WaitSince(ctx, gen, e.haltTimeout())
		}
	}
	return nil
}

// Resume the engine after it has halted. The host would normally resume the
// engine with a status write that also signals more commands.
func (e *Engine) Resume() error {
	if e.fatal != nil {
		return e.fatal
	}
	e.m.Signals.Write(signals.ClrHalt | signals.ClrBroke)
	return nil
}

func (e *Engine) haltTimeout() time.Duration {
	return time.Duration(e.env.Prefs.HaltTimeout.Get().(int)) * time.Millisecond
}
