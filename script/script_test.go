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

package script_test

import (
	"testing"

	"github.com/jetsetilly/rspqueue/curated"
	"github.com/jetsetilly/rspqueue/environment"
	"github.com/jetsetilly/rspqueue/hardware"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/host"
	"github.com/jetsetilly/rspqueue/overlays/counter"
	"github.com/jetsetilly/rspqueue/overlays/rdpq"
	"github.com/jetsetilly/rspqueue/rspq"
	"github.com/jetsetilly/rspqueue/script"
	"github.com/jetsetilly/rspqueue/test"
	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
)

func newScript(t *testing.T, fs afero.Fs) (*script.Script, *rspq.Engine, *hardware.Machine) {
	t.Helper()

	env, err := environment.NewEnvironment(fs, environment.MainEngine, nil, nil)
	test.DemandSuccess(t, err)

	m := hardware.NewMachine(env)
	arena := memory.NewArena(m.Shared, 0x1000, memory.SharedSize)

	eng, err := rspq.NewEngine(env, m, arena)
	test.DemandSuccess(t, err)
	cntSlot, err := eng.Register(counter.NewOverlay(), arena)
	test.DemandSuccess(t, err)
	rdpqSlot, err := eng.Register(rdpq.NewOverlay(), arena)
	test.DemandSuccess(t, err)

	q, err := host.NewQueue(env, m.Shared, m.Signals, arena)
	test.DemandSuccess(t, err)
	eng.Reset(q.Start())
	q.SetResume(func() {
		eng.RunUntilHalt()
	})

	scr := script.NewScript(env, q, eng, rdpq.NewCommands(q, rdpqSlot), counter.NewCommands(q, cntSlot))
	t.Cleanup(scr.Close)

	return scr, eng, m
}

func TestScript(t *testing.T) {
	fs := afero.NewMemMapFs()
	test.DemandSuccess(t, afero.WriteFile(fs, "test.lua", []byte(`
rdp_color(0xff0000ff)
rdp_scissor(0, 0, 16, 16)
rdp_fill(8, 8, 32, 32)

block_begin()
counter_add(3)
b = block_end()
run_block(b)
run_block(b)

highpri_begin()
counter_add(10)
highpri_end()

-- a raw noop command
write(0x01000000)
counter_emit()
wait()
`), 0644))

	scr, eng, m := newScript(t, fs)
	test.DemandSuccess(t, scr.Load(fs, "test.lua"))
	m.RDP.Drain()

	test.ExpectEquality(t, m.RDP.Framebuffer().RGBAAt(10, 10).R, uint8(0xff))
	test.ExpectEquality(t, m.RDP.Framebuffer().RGBAAt(20, 20).R, uint8(0x00))

	log := m.RDP.Log()
	test.DemandEquality(t, len(log), 3)
	test.ExpectEquality(t, uint32(log[2]>>32), uint32(16))
	test.ExpectEquality(t, eng.Stats().Preemptions, 1)
}

func TestRun(t *testing.T) {
	scr, _, _ := newScript(t, afero.NewMemMapFs())
	test.ExpectSuccess(t, scr.Run(`
counter_add(1)
state = run()
assert(state == "idle")
`))
}

func TestRand(t *testing.T) {
	src := `
a = rand(1000)
counter_add(1)
b = rand(1000)
assert(a >= 0 and a < 1000)
assert(b >= 0 and b < 1000)
assert(rand(1) == 0)
`

	// with the zero seed two fresh queues produce the same numbers at the
	// same positions
	var vals [2][2]lua.LValue
	for i := range vals {
		scr, _, _ := newScript(t, afero.NewMemMapFs())
		scr.SetZeroSeed(true)
		test.DemandSuccess(t, scr.Run(src))
		vals[i] = [2]lua.LValue{scr.L.GetGlobal("a"), scr.L.GetGlobal("b")}
	}
	test.ExpectEquality(t, vals[0][0], vals[1][0])
	test.ExpectEquality(t, vals[0][1], vals[1][1])

	scr, _, _ := newScript(t, afero.NewMemMapFs())
	err := scr.Run("rand(0)")
	test.ExpectSuccess(t, curated.Is(err, script.RunError))
}

func TestErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	scr, _, _ := newScript(t, fs)

	err := scr.Load(fs, "missing.lua")
	test.ExpectSuccess(t, curated.Is(err, script.LoadError))

	err = scr.Run("run_block(1)")
	test.ExpectSuccess(t, curated.Is(err, script.RunError))

	err = scr.Run("block_end()")
	test.ExpectSuccess(t, curated.Is(err, script.RunError))
}
