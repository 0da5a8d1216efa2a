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
	"fmt"

	"github.com/jetsetilly/rspqueue/curated"
	"github.com/jetsetilly/rspqueue/environment"
	"github.com/jetsetilly/rspqueue/faults"
	"github.com/jetsetilly/rspqueue/hardware"
	"github.com/jetsetilly/rspqueue/hardware/dma"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/hardware/signals"
	"github.com/jetsetilly/rspqueue/rspq/output"
	"github.com/jetsetilly/rspqueue/rspq/overlay"
	"github.com/jetsetilly/rspqueue/rspq/stack"
)

// Stream identifies the normal or urgent command stream.
type Stream int

// List of valid Stream values.
const (
	Lowpri Stream = iota
	Highpri
	numStreams
)

func (s Stream) String() string {
	if s == Highpri {
		return "highpri"
	}
	return "lowpri"
}

// Tracer is notified of every command dispatched by the engine. The command
// slice is only valid for the duration of the call.
type Tracer interface {
	Trace(stream Stream, slot int, pos memory.Addr, cmd []byte)
}

// Stats about the engine since the last reset.
type Stats struct {
	Commands     int
	Fetches      int
	Refetches    int
	OverlaySwaps int
	Preemptions  int
	Yields       int
	Waits        int
	Halts        int
}

func (s Stats) String() string {
	return fmt.Sprintf("commands=%d fetches=%d refetches=%d swaps=%d preemptions=%d yields=%d waits=%d halts=%d",
		s.Commands, s.Fetches, s.Refetches, s.OverlaySwaps, s.Preemptions, s.Yields, s.Waits, s.Halts)
}

// a command that returned Yield or Wait and the value to resume it with
type continuation struct {
	valid  bool
	pos    memory.Addr
	resume uint32
}

// Engine is the command queue engine.
type Engine struct {
	env *environment.Environment
	m   *hardware.Machine

	store *overlay.Store
	stack stack.Stack
	out   *output.Coordinator
	vec   overlay.Vectors

	faults faults.Faults

	// the fault that stopped the engine
	fatal error

	tracer Tracer

	// the staging buffer holds shared memory from base. ptr is the read
	// offset in the staging buffer
	base  memory.Addr
	ptr   int
	valid bool

	// position and header of the command being executed
	cmdPos    memory.Addr
	cmdHeader uint32

	cont [numStreams]continuation

	state State
	stats Stats
}

// NewEngine is the preferred method of initialisation for the Engine type.
// The two output regions are allocated from the arena. Overlays should be
// registered with Register() before the engine is Reset().
func NewEngine(env *environment.Environment, m *hardware.Machine, arena *memory.Arena) (*Engine, error) {
	e := &Engine{
		env:    env,
		m:      m,
		store:  overlay.NewStore(env),
		out:    output.NewCoordinator(env, m),
		faults: faults.NewFaults(),
	}

	size := env.Prefs.OutputRegionSize.Get().(int)
	if size <= output.MaxRasterizerCommand {
		return nil, curated.Errorf(OutputRegion, fmt.Sprintf("too small (%d bytes)", size))
	}

	var regions [2]memory.Addr
	for i := range regions {
		var err error
		regions[i], err = arena.Alloc(size)
		if err != nil {
			return nil, curated.Errorf(OutputRegion, err)
		}
	}
	e.out.Init(regions[0], regions[1], size)

	e.out.SetFaultHandler(func(category faults.Category, event string) {
		e.raise(category, event)
	})

	e.vec.Reset()

	return e, nil
}

// Register an overlay. Returns the first overlay slot assigned to the
// overlay. Must not be called after Reset().
func (e *Engine) Register(mod overlay.Module, arena *memory.Arena) (int, error) {
	slot, err := e.store.Register(mod, arena)
	if err != nil {
		return 0, curated.Errorf(RegisterOverlay, err)
	}
	return slot, nil
}

// Reset the engine. The normal stream will start at lowpri and the first
// switch to the urgent stream will start at highpri.
func (e *Engine) Reset(lowpri memory.Addr, highpri memory.Addr) {
	e.stack.Reset()
	e.stack.Save(stack.LowpriSlot, lowpri)
	e.stack.Save(stack.HighpriSlot, highpri)
	e.store.Reset()
	e.out.Reset()
	e.m.DMA.Reset()
	e.faults.Clear()
	e.fatal = nil
	e.cont = [numStreams]continuation{}
	e.stats = Stats{}
	e.state = Idle
	e.vec.Reset()
	e.m.Signals.Write(signals.ClrHalt | signals.ClrBroke |
		signals.ClearSignals(signals.HighpriRunning|signals.HighpriRequested))
	e.jump(lowpri)
}

func (e *Engine) String() string {
	return fmt.Sprintf("%s %s at %s [%s]", e.state, e.Stream(), e.Position(), e.m.Signals)
}

// SetTracer sets the tracer. A nil value removes the tracer.
func (e *Engine) SetTracer(t Tracer) {
	e.tracer = t
}

// Stream returns the stream currently being executed.
func (e *Engine) Stream() Stream {
	if e.m.Signals.Test(signals.HighpriRunning) {
		return Highpri
	}
	return Lowpri
}

// Position returns the address in shared memory of the next command.
func (e *Engine) Position() memory.Addr {
	return e.base + memory.Addr(e.ptr)
}

// State returns the most recent state of the engine.
func (e *Engine) State() State {
	return e.state
}

// Stats returns the engine statistics.
func (e *Engine) Stats() Stats {
	s := e.stats
	s.OverlaySwaps = e.store.Swaps()
	return s
}

// Faults returns the fault log.
func (e *Engine) Faults() *faults.Faults {
	return &e.faults
}

// Err returns the fault that stopped the engine. Returns nil if the engine
// has not faulted.
func (e *Engine) Err() error {
	return e.fatal
}

// Overlays returns the overlay store.
func (e *Engine) Overlays() *overlay.Store {
	return e.store
}

// Stack returns the pointer stack.
func (e *Engine) Stack() *stack.Stack {
	return &e.stack
}

// Machine returns the simulated hardware the engine is running on.
func (e *Engine) Machine() *hardware.Machine {
	return e.m
}

// Env implements the overlay.Context interface.
func (e *Engine) Env() *environment.Environment {
	return e.env
}

// Local implements the overlay.Context interface.
func (e *Engine) Local() *memory.Local {
	return e.m.Local
}

// DMA implements the overlay.Context interface.
func (e *Engine) DMA() *dma.DMA {
	return e.m.DMA
}

// Output implements the overlay.Context interface.
func (e *Engine) Output() *output.Coordinator {
	return e.out
}

// Signals implements the overlay.Context interface.
func (e *Engine) Signals() *signals.Register {
	return e.m.Signals
}

// Vectors implements the overlay.Context interface.
func (e *Engine) Vectors() *overlay.Vectors {
	return &e.vec
}

// Tick implements the overlay.Context interface.
func (e *Engine) Tick() {
	e.m.Tick()
}
