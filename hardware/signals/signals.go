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

// Package signals implements the status register shared by the host and the
// engine. The register holds a small number of flags and eight general
// purpose signal bits.
//
// The register is safe for concurrent use. Every change to the register is
// broadcast to every goroutine blocked in Wait() or WaitSince(), so that a
// goroutine can block until something changes rather than spinning on
// Poll(). Each change also advances the register's generation number.
package signals

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Status bits of the register, as returned by Poll().
const (
	Halted      uint32 = 1 << 0
	Broke       uint32 = 1 << 1
	DMABusy     uint32 = 1 << 2
	DMAFull     uint32 = 1 << 3
	IOBusy      uint32 = 1 << 4
	SingleStep  uint32 = 1 << 5
	IntrOnBreak uint32 = 1 << 6
	Sig0        uint32 = 1 << 7
)

// Sig returns the status bit for signal n.
func Sig(n int) uint32 {
	return Sig0 << n
}

// Use of the eight signal bits.
var (
	// host acknowledgement. diagnostic mode only
	Ack = Sig(0)

	// a full synchronisation has been sent to the rasterizer and has not yet
	// been processed
	RdpSyncFull = Sig(1)

	// available to the host to mark points in the command stream
	Syncpoint = Sig(2)

	// the urgent stream is being executed
	HighpriRunning = Sig(3)

	// the host has requested a switch to the urgent stream
	HighpriRequested = Sig(4)

	// the engine has finished with a command buffer of the urgent or normal
	// stream
	BufDoneHigh = Sig(5)
	BufDoneLow  = Sig(6)

	// the host has written more commands
	More = Sig(7)
)

// Bits of a status write. Each flag and signal has a separate clear and set
// bit. A write with neither bit set leaves the status bit unchanged.
const (
	ClrHalt      uint32 = 1 << 0
	SetHalt      uint32 = 1 << 1
	ClrBroke     uint32 = 1 << 2
	ClrIntr      uint32 = 1 << 3
	SetIntr      uint32 = 1 << 4
	ClrSStep     uint32 = 1 << 5
	SetSStep     uint32 = 1 << 6
	ClrIntbreak  uint32 = 1 << 7
	SetIntbreak  uint32 = 1 << 8
	clrSigOrigin        = 9
)

// ClearSignals returns the status write that clears the signals in mask.
func ClearSignals(mask uint32) uint32 {
	var w uint32
	for n := 0; n < 8; n++ {
		if mask&Sig(n) != 0 {
			w |= 1 << (clrSigOrigin + 2*n)
		}
	}
	return w
}

// SetSignals returns the status write that sets the signals in mask.
func SetSignals(mask uint32) uint32 {
	var w uint32
	for n := 0; n < 8; n++ {
		if mask&Sig(n) != 0 {
			w |= 1 << (clrSigOrigin + 1 + 2*n)
		}
	}
	return w
}

// Register is the status register.
type Register struct {
	bits atomic.Uint32

	// number of interrupts raised by status writes with SetIntr
	interrupts atomic.Uint32

	// every change increases the generation and closes the changed channel,
	// if there is one. the channel is created on demand by a waiter
	mu      sync.Mutex
	gen     uint64
	changed chan struct{}

	// the device function supplies status bits owned by other devices. the
	// DMA busy and full bits for example
	device func() uint32
}

// NewRegister is the preferred method of initialisation for the Register type.
func NewRegister() *Register {
	return &Register{}
}

// AttachDevice sets the function that supplies status bits owned by another
// device. It should be called during initialisation only.
func (reg *Register) AttachDevice(device func() uint32) {
	reg.device = device
}

func (reg *Register) String() string {
	s := strings.Builder{}
	v := reg.Poll()
	for n := 7; n >= 0; n-- {
		if v&Sig(n) != 0 {
			s.WriteString(fmt.Sprintf("%d", n))
		} else {
			s.WriteString("-")
		}
	}
	if v&Halted != 0 {
		s.WriteString(" halted")
	}
	return s.String()
}

// Reset clears all status bits.
func (reg *Register) Reset() {
	reg.bits.Store(0)
	reg.interrupts.Store(0)
	reg.notify()
}

func (reg *Register) notify() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.gen++
	if reg.changed != nil {
		close(reg.changed)
		reg.changed = nil
	}
}

// Generation returns a number that changes every time the register changes.
// Used with WaitSince() to wait for a change without missing one that
// happens between testing the register and waiting.
func (reg *Register) Generation() uint64 {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.gen
}

// Poll returns the current status without blocking.
func (reg *Register) Poll() uint32 {
	v := reg.bits.Load()
	if reg.device != nil {
		v |= reg.device()
	}
	return v
}

// Test returns true if all bits in mask are set.
func (reg *Register) Test(mask uint32) bool {
	return reg.Poll()&mask == mask
}

// Interrupts returns the number of interrupts raised by status writes.
func (reg *Register) Interrupts() int {
	return int(reg.interrupts.Load())
}

// Set the status bits in mask.
func (reg *Register) Set(mask uint32) {
	reg.bits.Or(mask)
	reg.notify()
}

// Clear the status bits in mask.
func (reg *Register) Clear(mask uint32) {
	reg.bits.And(^mask)
	reg.notify()
}

// Write applies a status write. Clear and set bits are as defined by the
// Clr* and Set* constants and by ClearSignals() and SetSignals().
func (reg *Register) Write(w uint32) {
	var set, clr uint32

	if w&ClrHalt != 0 {
		clr |= Halted
	}
	if w&SetHalt != 0 {
		set |= Halted
	}
	if w&ClrBroke != 0 {
		clr |= Broke
	}
	if w&ClrSStep != 0 {
		clr |= SingleStep
	}
	if w&SetSStep != 0 {
		set |= SingleStep
	}
	if w&ClrIntbreak != 0 {
		clr |= IntrOnBreak
	}
	if w&SetIntbreak != 0 {
		set |= IntrOnBreak
	}

	for n := 0; n < 8; n++ {
		if w&(1<<(clrSigOrigin+2*n)) != 0 {
			clr |= Sig(n)
		}
		if w&(1<<(clrSigOrigin+1+2*n)) != 0 {
			set |= Sig(n)
		}
	}

	for {
		old := reg.bits.Load()
		if reg.bits.CompareAndSwap(old, (old&^clr)|set) {
			break // for loop
		}
	}

	if w&SetIntr != 0 {
		reg.interrupts.Add(1)
	}

	reg.notify()
}

// Wait blocks until the register changes, the timeout expires or the context
// is done. Returns true if the register changed. Only changes that happen
// after the call are seen.
func (reg *Register) Wait(ctx context.Context, timeout time.Duration) bool {
	return reg.WaitSince(ctx, reg.Generation(), timeout)
}

// WaitSince is like Wait() but returns immediately if the register has
// changed since the generation was taken.
func (reg *Register) WaitSince(ctx context.Context, gen uint64, timeout time.Duration) bool {
	reg.mu.Lock()
	if reg.gen != gen {
		reg.mu.Unlock()
		return true
	}
	if reg.changed == nil {
		reg.changed = make(chan struct{})
	}
	changed := reg.changed
	reg.mu.Unlock()

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-changed:
		return true
	case <-ctx.Done():
	case <-t.C:
	}

	return false
}

// WaitFor blocks until all bits in mask are set, the timeout expires or the
// context is done. Returns true if the bits are set.
func (reg *Register) WaitFor(ctx context.Context, mask uint32, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		gen := reg.Generation()
		if reg.Test(mask) {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 || ctx.Err() != nil {
			return false
		}
		reg.WaitSince(ctx, gen, remaining)
	}
}
