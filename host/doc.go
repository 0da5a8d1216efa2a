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

// Package host is the producer side of the command queue. It writes commands
// into the command buffers in shared memory and signals the engine through
// the signals register.
//
// Each of the two streams has two command buffers. When a buffer is full the
// queue waits for the engine to finish with the other buffer and then
// terminates the full buffer with a status write and a jump to the other
// buffer. The status write tells the host that the engine has finished with
// the buffer.
//
// The header word of a command is always written last so that the engine
// never sees a partially written command. A buffer is cleared before it is
// used. An unwritten command is therefore a zero word, which the engine
// decodes as the WaitNewInput command.
//
// Commands can also be recorded into a Block, which can be called any number
// of times from either stream. Blocks can call other blocks.
//
// Functions that need to wait for the engine call the resume function if one
// has been set with SetResume(). This allows the host and the engine to run in
// the same goroutine. Otherwise the engine is assumed to be running in its own
// goroutine.
package host
