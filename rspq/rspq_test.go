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

package rspq_test

import (
	"context"
	"testing"
	"time"

	"github.com/jetsetilly/rspqueue/curated"
	"github.com/jetsetilly/rspqueue/environment"
	"github.com/jetsetilly/rspqueue/faults"
	"github.com/jetsetilly/rspqueue/hardware"
	"github.com/jetsetilly/rspqueue/hardware/dma"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/hardware/rdp"
	"github.com/jetsetilly/rspqueue/hardware/signals"
	"github.com/jetsetilly/rspqueue/host"
	"github.com/jetsetilly/rspqueue/notifications"
	"github.com/jetsetilly/rspqueue/overlays/counter"
	"github.com/jetsetilly/rspqueue/overlays/rdpq"
	"github.com/jetsetilly/rspqueue/preferences"
	"github.com/jetsetilly/rspqueue/random"
	"github.com/jetsetilly/rspqueue/rspq"
	"github.com/jetsetilly/rspqueue/rspq/wire"
	"github.com/jetsetilly/rspqueue/test"
	"github.com/spf13/afero"
)

type notices []notifications.Notice

func (n *notices) Notify(notice notifications.Notice) error {
	*n = append(*n, notice)
	return nil
}

func (n notices) count(notice notifications.Notice) int {
	var c int
	for _, v := range n {
		if v == notice {
			c++
		}
	}
	return c
}

type trace struct {
	streams   []rspq.Stream
	slots     []int
	positions []memory.Addr
}

func (tr *trace) Trace(stream rspq.Stream, slot int, pos memory.Addr, _ []byte) {
	tr.streams = append(tr.streams, stream)
	tr.slots = append(tr.slots, slot)
	tr.positions = append(tr.positions, pos)
}

type harness struct {
	env *environment.Environment
	m   *hardware.Machine
	eng *rspq.Engine
	q   *host.Queue

	notices notices

	cnt     *counter.Overlay
	cntSlot int
	cntCmds *counter.Commands

	rdpqCmds *rdpq.Commands
}

func newHarness(t *testing.T, setup func(p *preferences.Preferences)) *harness {
	t.Helper()

	h := &harness{}

	fs := afero.NewMemMapFs()
	prefs, err := preferences.NewPreferences(fs)
	test.DemandSuccess(t, err)
	prefs.AckTimeout.Set(1)
	prefs.HaltTimeout.Set(5)
	if setup != nil {
		setup(prefs)
	}

	h.env, err = environment.NewEnvironment(fs, environment.MainEngine, prefs, &h.notices)
	test.DemandSuccess(t, err)

	h.m = hardware.NewMachine(h.env)
	arena := memory.NewArena(h.m.Shared, 0x1000, memory.SharedSize)

	h.eng, err = rspq.NewEngine(h.env, h.m, arena)
	test.DemandSuccess(t, err)

	h.cnt = counter.NewOverlay()
	h.cntSlot, err = h.eng.Register(h.cnt, arena)
	test.DemandSuccess(t, err)

	rdpqSlot, err := h.eng.Register(rdpq.NewOverlay(), arena)
	test.DemandSuccess(t, err)

	h.q, err = host.NewQueue(h.env, h.m.Shared, h.m.Signals, arena)
	test.DemandSuccess(t, err)

	h.cntCmds = counter.NewCommands(h.q, h.cntSlot)
	h.rdpqCmds = rdpq.NewCommands(h.q, rdpqSlot)

	h.eng.Reset(h.q.Start())
	h.q.SetResume(func() {
		h.eng.RunUntilHalt()
	})

	return h
}

// the accumulator of the counter overlay is in local memory if the overlay
// is resident
func (h *harness) accumulator() uint32 {
	d, _ := h.eng.Overlays().Resolve(h.cntSlot)
	if h.eng.Overlays().CurrentResident() == d.ID {
		return h.m.Local.Word(memory.OverlayDataOrigin + uint32(d.StateStart))
	}
	return h.m.Shared.ReadWord(d.State)
}

func TestHalt(t *testing.T) {
	h := newHarness(t, nil)

	h.q.Noop()
	h.q.Noop()
	h.q.Wait()

	test.ExpectEquality(t, h.eng.State(), rspq.Idle)
	test.ExpectSuccess(t, h.m.Signals.Test(signals.Halted))
	test.ExpectEquality(t, h.eng.Stats().Commands, 5)
	test.ExpectInequality(t, h.notices.count(notifications.NotifyHalt), 0)

	// a halted engine does nothing until it is resumed
	test.ExpectEquality(t, h.eng.Step(), rspq.Idle)
	test.ExpectEquality(t, h.eng.Stats().Commands, 5)

	h.cntCmds.Add(3)
	h.q.Wait()
	test.ExpectEquality(t, h.accumulator(), uint32(3))
}

func TestRandomStream(t *testing.T) {
	h := newHarness(t, nil)
	rnd := random.NewRandom(h.q)
	rnd.ZeroSeed = true

	var expected uint32
	for i := 0; i < 200; i++ {
		n := uint32(rnd.Intn(100))
		switch rnd.Intn(10) {
		case 0:
			h.q.HighpriBegin()
			h.cntCmds.Add(n)
			h.q.HighpriEnd()
			h.q.HighpriSync()

			// move the lowpri position on
			h.q.Noop()
		case 1:
			h.q.Noop()
			continue
		default:
			h.cntCmds.Add(n)
		}
		expected += n
	}
	h.q.Wait()

	test.ExpectEquality(t, h.accumulator(), expected)
	test.ExpectEquality(t, h.eng.State(), rspq.Idle)
}

func TestTruncatedCommand(t *testing.T) {
	h := newHarness(t, nil)
	tr := &trace{}
	h.eng.SetTracer(tr)

	lowpri, _ := h.q.Start()

	// the sum command starts 16 bytes before the end of the staging buffer
	n := (memory.StagingSize - 16) / 4
	for i := 0; i < n; i++ {
		h.q.Noop()
	}
	h.cntCmds.Sum(1, [counter.SumWords - 1]uint32{2, 3, 4, 5, 6, 7, 8})
	h.q.Wait()

	test.ExpectEquality(t, h.accumulator(), uint32(36))
	test.ExpectEquality(t, h.eng.Stats().Refetches, 1)

	// the command was dispatched once, from its true position
	test.DemandEquality(t, len(tr.positions) > n, true)
	test.ExpectEquality(t, tr.positions[n], lowpri+memory.Addr(n*4))
	test.ExpectEquality(t, tr.slots[n], h.cntSlot)
}

// commands must give the same output wherever they fall in the staging buffer
func TestChunking(t *testing.T) {
	var expected []uint64

	for k := 0; k < 12; k++ {
		h := newHarness(t, nil)

		for i := 0; i < k; i++ {
			h.q.Noop()
		}

		for i := 0; i < 10; i++ {
			h.rdpqCmds.SetFillColor(0xff000000 | uint32(i))
			h.rdpqCmds.FillRectangle(i, i, i+10, i+10)
			h.cntCmds.Sum(uint32(i), [counter.SumWords - 1]uint32{1, 1, 1, 1, 1, 1, 1})
			h.cntCmds.Scratch(uint32(i))
			h.cntCmds.Emit()
		}
		h.q.Wait()
		h.m.RDP.Drain()

		log := h.m.RDP.Log()
		if k == 0 {
			expected = log
			test.ExpectEquality(t, len(expected), 30)
			continue // for loop
		}

		if !test.ExpectEquality(t, len(log), len(expected), k) {
			continue // for loop
		}
		for i := range log {
			test.ExpectEquality(t, log[i], expected[i], k, i)
		}
	}
}

func TestOverlaySwap(t *testing.T) {
	h := newHarness(t, nil)

	h.cntCmds.Add(5)
	h.cntCmds.Scratch(7)
	h.cntCmds.Emit()
	h.rdpqCmds.SetFillColor(0x11223344)
	h.cntCmds.Add(3)
	h.cntCmds.Emit()
	h.q.Wait()
	h.m.RDP.Drain()

	test.ExpectEquality(t, h.accumulator(), uint32(8))
	test.ExpectEquality(t, h.eng.Stats().OverlaySwaps, 3)
	test.ExpectEquality(t, h.cnt.Loads(), 2)
	test.ExpectEquality(t, h.cnt.Saves(), 1)

	// the scratch value did not survive the swap
	log := h.m.RDP.Log()
	test.DemandEquality(t, len(log), 2)
	test.ExpectEquality(t, log[0], uint64(5)<<32|7)
	test.ExpectEquality(t, log[1], uint64(8)<<32)

	// the fill colour survived being swapped out
	h.rdpqCmds.FillRectangle(0, 0, 2, 2)
	h.q.Wait()
	h.m.RDP.Drain()
	test.ExpectEquality(t, h.m.RDP.Framebuffer().RGBAAt(1, 1).B, uint8(0x33))
}

func TestPreemption(t *testing.T) {
	h := newHarness(t, nil)
	tr := &trace{}
	h.eng.SetTracer(tr)

	lowpri, _ := h.q.Start()

	h.cntCmds.Spin(3)
	h.q.Flush()

	// the spin command yields and will be decoded again
	h.eng.Step()
	test.ExpectEquality(t, h.cnt.Spins(), 1)
	test.ExpectEquality(t, h.eng.Position(), lowpri)

	h.q.HighpriBegin()
	h.cntCmds.Add(100)
	h.cntCmds.Emit()
	h.q.HighpriEnd()

	h.cntCmds.Emit()
	h.q.Wait()
	h.m.RDP.Drain()

	test.ExpectEquality(t, h.eng.Stats().Preemptions, 1)
	test.ExpectEquality(t, h.eng.Stats().Yields, 3)
	test.ExpectEquality(t, h.cnt.Spins(), 3)
	test.ExpectEquality(t, h.accumulator(), uint32(101))
	test.ExpectFailure(t, h.m.Signals.Test(signals.HighpriRunning))
	test.ExpectEquality(t, h.notices.count(notifications.NotifyHighpriStart), 1)
	test.ExpectEquality(t, h.notices.count(notifications.NotifyHighpriEnd), 1)

	// the urgent stream ran before the spin completed
	log := h.m.RDP.Log()
	test.DemandEquality(t, len(log), 2)
	test.ExpectEquality(t, uint32(log[0]>>32), uint32(100))
	test.ExpectEquality(t, uint32(log[1]>>32), uint32(101))

	// every dispatch of the spin command was at the same position
	for i, p := range tr.positions {
		if tr.streams[i] == rspq.Lowpri && tr.slots[i] == h.cntSlot && i < 5 {
			test.ExpectEquality(t, p, lowpri, i)
		}
	}

	// a second urgent stream continues from where the first ended
	h.q.HighpriBegin()
	h.cntCmds.Add(1000)
	h.q.HighpriEnd()
	h.q.HighpriSync()
	test.ExpectEquality(t, h.accumulator(), uint32(1101))
	test.ExpectEquality(t, h.eng.Stats().Preemptions, 2)
}

func TestBlocks(t *testing.T) {
	h := newHarness(t, nil)

	test.DemandSuccess(t, h.q.BlockBegin())
	h.cntCmds.Add(2)
	inner, err := h.q.BlockEnd()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, inner.Nesting(), 0)

	test.DemandSuccess(t, h.q.BlockBegin())
	test.ExpectSuccess(t, h.q.RunBlock(inner))
	h.cntCmds.Add(10)
	outer, err := h.q.BlockEnd()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, outer.Nesting(), 1)

	test.ExpectSuccess(t, h.q.RunBlock(inner))
	test.ExpectSuccess(t, h.q.RunBlock(inner))
	test.ExpectSuccess(t, h.q.RunBlock(outer))
	h.cntCmds.Add(100)
	h.q.Wait()

	test.ExpectEquality(t, h.accumulator(), uint32(116))

	_, err = h.q.BlockEnd()
	test.ExpectSuccess(t, curated.Is(err, host.BlockNotOpen))
}

func TestLongBlock(t *testing.T) {
	h := newHarness(t, nil)

	test.DemandSuccess(t, h.q.BlockBegin())
	for i := 0; i < host.BlockChunkWords*2; i++ {
		h.cntCmds.Add(1)
	}
	b, err := h.q.BlockEnd()
	test.DemandSuccess(t, err)

	test.ExpectSuccess(t, h.q.RunBlock(b))
	h.q.Wait()
	test.ExpectEquality(t, h.accumulator(), uint32(host.BlockChunkWords*2))
}

func TestBufferSwitch(t *testing.T) {
	h := newHarness(t, func(p *preferences.Preferences) {
		p.LowpriBufferWords.Set(wire.MaxCommandWords + 2)
	})

	for i := 0; i < 500; i++ {
		h.cntCmds.Add(1)
	}
	h.q.Wait()

	test.ExpectEquality(t, h.accumulator(), uint32(500))
	lowpri, _ := h.q.Switches()
	test.ExpectEquality(t, lowpri, 500/wire.MaxCommandWords)
}

func TestTestWriteStatus(t *testing.T) {
	h := newHarness(t, nil)

	// the buffer done signal is set by the queue when it is created
	h.q.TestWriteStatus(signals.SetSignals(signals.Ack), signals.BufDoneHigh)
	h.q.Flush()

	test.ExpectEquality(t, h.eng.RunUntilHalt(), rspq.Waiting)
	test.ExpectEquality(t, h.eng.Stats().Waits, 1)
	test.ExpectFailure(t, h.m.Signals.Test(signals.Ack))

	h.m.Signals.Clear(signals.BufDoneHigh)
	test.ExpectEquality(t, h.eng.RunUntilHalt(), rspq.Idle)
	test.ExpectSuccess(t, h.m.Signals.Test(signals.Ack))
}

func TestDma(t *testing.T) {
	h := newHarness(t, nil)

	src := memory.Addr(0xf0003)
	h.m.Shared.Write(src, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	// the data lands in local memory offset by the misalignment of the source
	h.q.DmaRead(0x800, memory.DMEM, src, 8, true)
	h.q.Wait()
	test.ExpectEquality(t, h.m.Local.DMEM[0x803], byte(1))
	test.ExpectEquality(t, h.m.Local.DMEM[0x80a], byte(8))

	// and the same correction applies when writing back
	h.q.DmaWrite(0x803, memory.DMEM, 0xf1000, 8, true)
	h.q.Wait()
	b := make([]byte, 8)
	h.m.Shared.Read(0xf1003, b)
	test.ExpectEquality(t, b[0], byte(1))
	test.ExpectEquality(t, b[7], byte(8))
}

func TestRasterizerBuffer(t *testing.T) {
	h := newHarness(t, nil)

	buf := memory.Addr(0xf0000)
	h.m.Shared.WriteDoubleWord(buf, rdp.SetFillColor(0x000000ff))
	h.m.Shared.WriteDoubleWord(buf+8, rdp.FillRectangle(0, 0, 4, 4))

	h.q.RdpSetBuffer(buf+8, buf, 0)
	h.q.RdpAppendBuffer(buf + 16)
	h.q.RdpWaitIdle(rdp.Busy)
	h.q.Wait()

	test.ExpectEquality(t, len(h.m.RDP.Log()), 2)
	test.ExpectEquality(t, h.m.RDP.Framebuffer().RGBAAt(3, 3).A, uint8(0xff))

	// overlay output goes to the alternating regions after a host buffer
	h.rdpqCmds.SetScissor(0, 0, 8, 8)
	h.rdpqCmds.FillRectangle(4, 4, 100, 100)
	h.rdpqCmds.SyncFull()
	h.rdpqCmds.Passthrough(rdp.SetFillColor(0xffffffff))
	h.q.Wait()
	h.m.RDP.Drain()

	log := h.m.RDP.Log()
	test.DemandEquality(t, len(log), 6)
	test.ExpectEquality(t, log[3], rdp.FillRectangle(4, 4, 8, 8))
	test.ExpectEquality(t, rdp.Opcode(log[4]), rdp.OpSyncFull)
	test.ExpectEquality(t, log[5], rdp.SetFillColor(0xffffffff))
	test.ExpectEquality(t, h.m.RDP.SyncFulls(), 1)
	test.ExpectEquality(t, h.eng.Output().Switches(), 2)
}

func TestDiagnosticFaults(t *testing.T) {
	for _, c := range []struct {
		header   uint32
		category faults.Category
	}{
		{header: wire.Header(0x90, 0), category: faults.InvalidOverlay},
		{header: wire.Header(0x0c, 0), category: faults.InvalidCommand},
		{header: wire.Header(wire.OverlayCommand(1, 9), 0), category: faults.InvalidCommand},
	} {
		h := newHarness(t, func(p *preferences.Preferences) {
			p.Diagnostic.Set(true)
		})
		lowpri, _ := h.q.Start()

		h.q.Noop()
		h.q.Write(c.header)
		h.q.Flush()

		test.ExpectEquality(t, h.eng.RunUntilHalt(), rspq.Faulted)
		test.ExpectSuccess(t, curated.Is(h.eng.Err(), rspq.Fault))
		test.DemandEquality(t, len(h.eng.Faults().Log), 1)

		entry := h.eng.Faults().Log[0]
		test.ExpectEquality(t, entry.Category, c.category)
		test.ExpectEquality(t, entry.Position, uint32(lowpri)+4)
		test.ExpectEquality(t, entry.Header, c.header)
		test.ExpectEquality(t, h.notices.count(notifications.NotifyFault), 1)

		// the engine cannot continue
		test.ExpectEquality(t, h.eng.Step(), rspq.Faulted)
		test.ExpectFailure(t, h.eng.Resume())
	}
}

func TestUncheckedFaults(t *testing.T) {
	h := newHarness(t, nil)

	// invalid commands are not checked and are skipped
	h.q.Write(wire.Header(0x90, 0))
	h.q.Write(wire.Header(0x0c, 0))
	h.cntCmds.Add(4)
	h.q.Wait()

	test.ExpectEquality(t, h.accumulator(), uint32(4))
	test.ExpectSuccess(t, h.eng.Err())
}

func TestAckTimeout(t *testing.T) {
	h := newHarness(t, func(p *preferences.Preferences) {
		p.Diagnostic.Set(true)
	})

	h.rdpqCmds.SyncFull()
	h.rdpqCmds.FillRectangle(0, 0, 1, 1)
	h.q.Flush()

	test.ExpectEquality(t, h.eng.RunUntilHalt(), rspq.Faulted)
	test.DemandEquality(t, len(h.eng.Faults().Log), 1)
	test.ExpectEquality(t, h.eng.Faults().Log[0].Category, faults.AckTimeout)
	test.ExpectEquality(t, h.notices.count(notifications.NotifySyncFullAck), 1)
}

func TestRun(t *testing.T) {
	h := newHarness(t, nil)
	h.q.SetResume(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- h.eng.Run(ctx)
	}()

	for i := 0; i < 100; i++ {
		h.cntCmds.Add(1)
	}
	h.q.Wait()

	cancel()
	select {
	case err := <-done:
		test.ExpectSuccess(t, err)
	case <-time.After(time.Second):
		t.Fatalf("engine did not stop")
	}

	test.ExpectEquality(t, h.accumulator(), uint32(100))
}

// the engine running on its own goroutine is woken by every host flush. a
// long halt timeout means a missed wake would stall each round
func TestRunWakesOnFlush(t *testing.T) {
	h := newHarness(t, func(p *preferences.Preferences) {
		p.HaltTimeout.Set(10000)
	})
	h.q.SetResume(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- h.eng.Run(ctx)
	}()

	start := time.Now()
	for i := 0; i < 20; i++ {
		h.cntCmds.Add(1)
		h.q.Wait()
	}
	elapsed := time.Since(start)

	cancel()
	select {
	case err := <-done:
		test.ExpectSuccess(t, err)
	case <-time.After(15 * time.Second):
		t.Fatalf("engine did not stop")
	}

	test.ExpectEquality(t, h.accumulator(), uint32(20))
	test.ExpectSuccess(t, elapsed < 5*time.Second)
}

func TestResetOutput(t *testing.T) {
	h := newHarness(t, nil)

	h.rdpqCmds.FillRectangle(0, 0, 4, 4)
	h.rdpqCmds.SyncFull()
	h.q.Wait()
	test.ExpectSuccess(t, h.eng.Output().SyncFull())
	test.ExpectInequality(t, h.eng.Output().Switches(), 0)

	// a transfer left in the queue is discarded by the reset
	h.m.DMA.Transfer(dma.Request{Dir: dma.Read, Bank: memory.DMEM, Local: 0x800, Remote: 0x1000, Width: 8}, dma.Async)
	test.ExpectSuccess(t, h.m.DMA.Busy())

	h.eng.Reset(h.q.Start())
	test.ExpectFailure(t, h.eng.Output().SyncFull())
	test.ExpectEquality(t, h.eng.Output().Switches(), 0)
	test.ExpectFailure(t, h.m.DMA.Busy())
}
