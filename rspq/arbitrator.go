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
	"github.com/jetsetilly/rspqueue/hardware/signals"
	"github.com/jetsetilly/rspqueue/logger"
	"github.com/jetsetilly/rspqueue/notifications"
	"github.com/jetsetilly/rspqueue/rspq/stack"
)

// arbitrate switches to the urgent stream if the host has requested it and it
// is not already running. the position of the normal stream is saved and will
// be returned to by a SwapBuffers command at the end of the urgent stream.
//
// a command that yielded has already backed up the position to the start of
// the command so it will be decoded again when the normal stream resumes.
func (e *Engine) arbitrate() {
	st := e.m.Signals.Poll()
	if st&signals.HighpriRequested == 0 || st&signals.HighpriRunning != 0 {
		return
	}

	e.m.Signals.Write(signals.ClearSignals(signals.HighpriRequested) | signals.SetSignals(signals.HighpriRunning))
	e.stack.Save(stack.LowpriSlot, e.Position())
	e.jump(e.stack.Load(stack.HighpriSlot))
	e.stats.Preemptions++

	logger.Logf(e.env, "rspq", "highpri requested. lowpri saved at %s", e.stack.Load(stack.LowpriSlot))
	_ = e.env.Notify(notifications.NotifyHighpriStart)
}
