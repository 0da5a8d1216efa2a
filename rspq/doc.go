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

// Package rspq is the command queue engine. It reads commands written by the
// host into command buffers in shared memory and dispatches them to the
// internal command handlers or to the handlers of registered overlays.
//
// Commands are read through a small staging buffer in local memory, which is
// filled by DMA. A command is never executed if it is not entirely in the
// staging buffer. Instead the staging buffer is refilled starting at the
// command's position in shared memory.
//
// There are two streams of commands: the normal (lowpri) stream and the
// urgent (highpri) stream. Between every command the engine checks whether the
// host has requested the urgent stream. If so the position of the normal
// stream is saved in the pointer stack and the urgent stream is resumed from
// its saved position. The urgent stream returns to the normal stream with the
// SwapBuffers command.
//
// A handler can return a Yield or Wait result instead of completing. The
// command is then re-invoked later, from the same position, with the resume
// value the handler returned. In the meantime the urgent stream might have
// run.
//
// The engine is driven by calling Step(), RunUntilHalt() or Run(). All
// devices are advanced by the engine, so a single goroutine running the
// engine and writing commands gives reproducible results. Run() can be used
// in its own goroutine, in which case the host communicates with the engine
// only through shared memory and the signals register.
package rspq
