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

package host

import (
	"context"
	"fmt"
	"time"

	"github.com/jetsetilly/rspqueue/curated"
	"github.com/jetsetilly/rspqueue/environment"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/hardware/signals"
	"github.com/jetsetilly/rspqueue/logger"
	"github.com/jetsetilly/rspqueue/rspq/stack"
	"github.com/jetsetilly/rspqueue/rspq/wire"
)

// Sentinal errors returned by the host package.
const (
	BufferTooSmall = "host: %s buffer too small (%d words)"
	BufferAlloc    = "host: %v"
	BlockNesting   = "host: block nesting too deep (%d)"
	BlockOpen      = "host: block already being recorded"
	BlockNotOpen   = "host: no block being recorded"
)

// number of words at the end of a buffer reserved for the status write and
// jump that terminate it
const terminatorWords = 2

// how long to wait for a signal change when there is no resume function
const spinTimeout = 10 * time.Millisecond

// a stream of commands written into one of two buffers
type stream struct {
	name string

	bufs  [2]memory.Addr
	words int

	// current buffer and write offset in words
	idx int
	cur int

	// signal set by the engine when it has finished with a buffer
	bufdone uint32

	switches int
}

func (s *stream) position() memory.Addr {
	return s.bufs[s.idx] + memory.Addr(s.cur*4)
}

func (s *stream) String() string {
	return fmt.Sprintf("%s: buffer %d (%s) +%d", s.name, s.idx, s.bufs[s.idx], s.cur*4)
}

// Queue is the host side of the command queue.
type Queue struct {
	env    *environment.Environment
	shared *memory.Shared
	sig    *signals.Register
	arena  *memory.Arena

	lowpri  stream
	highpri stream
	active  *stream

	// the block being recorded
	block *Block

	resume func()
}

// NewQueue is the preferred method of initialisation for the Queue type. The
// command buffers are allocated from the arena.
func NewQueue(env *environment.Environment, shared *memory.Shared, sig *signals.Register, arena *memory.Arena) (*Queue, error) {
	q := &Queue{
		env:    env,
		shared: shared,
		sig:    sig,
		arena:  arena,
		lowpri: stream{
			name:    "lowpri",
			words:   env.Prefs.LowpriBufferWords.Get().(int),
			bufdone: signals.BufDoneLow,
		},
		highpri: stream{
			name:    "highpri",
			words:   env.Prefs.HighpriBufferWords.Get().(int),
			bufdone: signals.BufDoneHigh,
		},
	}

	for _, s := range []*stream{&q.lowpri, &q.highpri} {
		if s.words < wire.MaxCommandWords+terminatorWords {
			return nil, curated.Errorf(BufferTooSmall, s.name, s.words)
		}
		for i := range s.bufs {
			var err error
			s.bufs[i], err = arena.Alloc(s.words * 4)
			if err != nil {
				return nil, curated.Errorf(BufferAlloc, err)
			}
		}
	}

	q.active = &q.lowpri

	// the second buffer of each stream is free
	sig.Set(signals.BufDoneLow | signals.BufDoneHigh)

	return q, nil
}

func (q *Queue) String() string {
	return fmt.Sprintf("%s, %s", &q.lowpri, &q.highpri)
}

// Start returns the addresses the engine should be reset with.
func (q *Queue) Start() (lowpri memory.Addr, highpri memory.Addr) {
	return q.lowpri.bufs[0], q.highpri.bufs[0]
}

// SetResume sets the function called by the queue when it is waiting for the
// engine. The function would normally run the engine until it halts.
func (q *Queue) SetResume(resume func()) {
	q.resume = resume
}

// Position returns the address of the next command written to the active
// stream.
func (q *Queue) Position() memory.Addr {
	return q.active.position()
}

// Switches returns the number of buffer switches for the lowpri and highpri
// streams.
func (q *Queue) Switches() (lowpri int, highpri int) {
	return q.lowpri.switches, q.highpri.switches
}

// Write a command. The first word is the header and is written last.
func (q *Queue) Write(words ...uint32) {
	if len(words) == 0 {
		return
	}

	if q.block != nil {
		q.block.write(q, words)
		return
	}

	s := q.active
	if s.cur+len(words) > s.words-terminatorWords {
		q.nextBuffer(s)
	}

	q.writeCommand(s.position(), words)
	s.cur += len(words)
}

func (q *Queue) writeCommand(addr memory.Addr, words []uint32) {
	for i := len(words) - 1; i >= 0; i-- {
		q.shared.WriteWord(addr+memory.Addr(i*4), words[i])
	}
}

// switch to the other buffer of the stream. the engine must have finished
// with the other buffer
func (q *Queue) nextBuffer(s *stream) {
	q.until(func() bool {
		return q.sig.Test(s.bufdone)
	})
	q.sig.Clear(s.bufdone)

	prev := s.position()

	s.idx ^= 1
	s.cur = 0
	s.switches++
	q.shared.Fill(s.bufs[s.idx], s.words*4, 0)

	// the jump is written before the status write so that the engine sees
	// both at the same time
	q.writeCommand(prev+4, wire.Jump(s.bufs[s.idx]))
	q.writeCommand(prev, wire.WriteStatus(signals.SetSignals(s.bufdone)))
	q.Flush()

	logger.Logf(q.env, "host", "%s switched to buffer %d", s.name, s.idx)
}

// Flush tells the engine there are new commands. The engine is woken if it
// has halted.
func (q *Queue) Flush() {
	q.sig.Write(signals.SetSignals(signals.More) | signals.ClrHalt | signals.ClrBroke)
}

// until flushes and spins until cond is true. the generation is taken
// after the flush so that a change made by the engine in response to the
// flush is not missed
func (q *Queue) until(cond func() bool) {
	for !cond() {
		q.Flush()
		gen := q.sig.Generation()
		if cond() {
			return
		}
		q.spin(gen)
	}
}

func (q *Queue) spin(gen uint64) {
	if q.resume != nil {
		q.resume()
		return
	}
	q.sig.WaitSince(context.Background(), gen, spinTimeout)
}

// HighpriBegin starts writing commands to the urgent stream and requests the
// engine switch to it.
func (q *Queue) HighpriBegin() {
	q.active = &q.highpri
	q.sig.Write(signals.SetSignals(signals.HighpriRequested|signals.More) | signals.ClrHalt | signals.ClrBroke)
}

// HighpriEnd ends the urgent stream. The engine will return to the normal
// stream once it reaches the end of the urgent commands.
func (q *Queue) HighpriEnd() {
	q.Write(wire.SwapBuffers(stack.LowpriSlot, stack.HighpriSlot, signals.ClearSignals(signals.HighpriRunning))...)
	q.Flush()
	q.active = &q.lowpri
}

// HighpriSync waits until the urgent stream has been run.
func (q *Queue) HighpriSync() {
	q.until(func() bool {
		return q.sig.Poll()&(signals.HighpriRequested|signals.HighpriRunning) == 0
	})
}

// Wait until the engine has executed every command written so far.
func (q *Queue) Wait() {
	q.Syncpoint()
	q.until(func() bool {
		return q.sig.Test(signals.Syncpoint)
	})
	q.sig.Clear(signals.Syncpoint)
}
