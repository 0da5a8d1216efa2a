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

// Package script runs Lua scripts that write commands to the queue. It is
// a convenient way of producing command streams for the engine without
// writing Go.
//
// The following functions are available to scripts:
//
//	write(w0, w1, ...)           write a raw command. the first word is the header
//	noop()                       write a noop command
//	flush()                      tell the engine there are new commands
//	wait()                       wait until the engine has run every command
//	run()                        run the engine until it halts. returns the state
//	highpri_begin()              start writing to the urgent stream
//	highpri_end()                end the urgent stream
//	block_begin()                start recording a block
//	block_end()                  end recording. returns the block
//	run_block(b)                 call a block
//	rdp_color(rgba)              set the fill colour
//	rdp_scissor(x0, y0, x1, y1)  set the scissor rectangle
//	rdp_fill(x0, y0, x1, y1)     fill a rectangle
//	rdp_sync_full()              full synchronisation of the rasterizer
//	counter_add(n)               add to the counter
//	counter_emit()               emit the counter to the rasterizer
//	rand(n)                      number in the range [0, n) for the current
//	                             queue position
//
// Output from the Lua print() function is sent to the logger.
package script

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/rspqueue/curated"
	"github.com/jetsetilly/rspqueue/environment"
	"github.com/jetsetilly/rspqueue/host"
	"github.com/jetsetilly/rspqueue/logger"
	"github.com/jetsetilly/rspqueue/overlays/counter"
	"github.com/jetsetilly/rspqueue/overlays/rdpq"
	"github.com/jetsetilly/rspqueue/random"
	"github.com/jetsetilly/rspqueue/rspq"
	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
)

// Sentinal errors returned by the script package.
const (
	LoadError = "script: %s: %v"
	RunError  = "script: %v"
)

// Script is a Lua state with the queue functions installed.
type Script struct {
	env *environment.Environment
	L   *lua.LState

	q    *host.Queue
	eng  *rspq.Engine
	rdpq *rdpq.Commands
	cnt  *counter.Commands
	rnd  *random.Random
}

// NewScript is the preferred method of initialisation for the Script type.
// Close() should be called when the script is no longer required.
func NewScript(env *environment.Environment, q *host.Queue, eng *rspq.Engine, rdpqCmds *rdpq.Commands, cntCmds *counter.Commands) *Script {
	scr := &Script{
		env:  env,
		L:    lua.NewState(),
		q:    q,
		eng:  eng,
		rdpq: rdpqCmds,
		cnt:  cntCmds,
		rnd:  random.NewRandom(q),
	}

	for name, fn := range map[string]lua.LGFunction{
		"write":         scr.write,
		"noop":          scr.noop,
		"flush":         scr.flush,
		"wait":          scr.wait,
		"run":           scr.run,
		"highpri_begin": scr.highpriBegin,
		"highpri_end":   scr.highpriEnd,
		"block_begin":   scr.blockBegin,
		"block_end":     scr.blockEnd,
		"run_block":     scr.runBlock,
		"rdp_color":     scr.rdpColor,
		"rdp_scissor":   scr.rdpScissor,
		"rdp_fill":      scr.rdpFill,
		"rdp_sync_full": scr.rdpSyncFull,
		"counter_add":   scr.counterAdd,
		"counter_emit":  scr.counterEmit,
		"rand":          scr.rand,
		"print":         scr.print,
	} {
		scr.L.SetGlobal(name, scr.L.NewFunction(fn))
	}

	return scr
}

// SetZeroSeed makes the rand() function produce the same sequence on every
// run.
func (scr *Script) SetZeroSeed(zero bool) {
	scr.rnd.ZeroSeed = zero
}

// Close the Lua state.
func (scr *Script) Close() {
	scr.L.Close()
}

// Load runs the script in the named file.
func (scr *Script) Load(fs afero.Fs, path string) error {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return curated.Errorf(LoadError, path, err)
	}
	if err := scr.L.DoString(string(b)); err != nil {
		return curated.Errorf(LoadError, path, err)
	}
	return nil
}

// Run the script in the string.
func (scr *Script) Run(src string) error {
	if err := scr.L.DoString(src); err != nil {
		return curated.Errorf(RunError, err)
	}
	return nil
}

func checkWord(L *lua.LState, n int) uint32 {
	return uint32(int64(L.CheckNumber(n)))
}

func (scr *Script) write(L *lua.LState) int {
	n := L.GetTop()
	if n == 0 {
		L.ArgError(1, "header expected")
		return 0
	}
	words := make([]uint32, n)
	for i := range words {
		words[i] = checkWord(L, i+1)
	}
	scr.q.Write(words...)
	return 0
}

func (scr *Script) noop(_ *lua.LState) int {
	scr.q.Noop()
	return 0
}

func (scr *Script) flush(_ *lua.LState) int {
	scr.q.Flush()
	return 0
}

func (scr *Script) wait(_ *lua.LState) int {
	scr.q.Wait()
	return 0
}

func (scr *Script) run(L *lua.LState) int {
	scr.q.Flush()
	L.Push(lua.LString(scr.eng.RunUntilHalt().String()))
	return 1
}

func (scr *Script) highpriBegin(_ *lua.LState) int {
	scr.q.HighpriBegin()
	return 0
}

func (scr *Script) highpriEnd(_ *lua.LState) int {
	scr.q.HighpriEnd()
	return 0
}

func (scr *Script) blockBegin(L *lua.LState) int {
	if err := scr.q.BlockBegin(); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (scr *Script) blockEnd(L *lua.LState) int {
	b, err := scr.q.BlockEnd()
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	ud := L.NewUserData()
	ud.Value = b
	L.Push(ud)
	return 1
}

func (scr *Script) runBlock(L *lua.LState) int {
	ud := L.CheckUserData(1)
	b, ok := ud.Value.(*host.Block)
	if !ok {
		L.ArgError(1, "block expected")
		return 0
	}
	if err := scr.q.RunBlock(b); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (scr *Script) rdpColor(L *lua.LState) int {
	scr.rdpq.SetFillColor(checkWord(L, 1))
	return 0
}

func (scr *Script) rdpScissor(L *lua.LState) int {
	scr.rdpq.SetScissor(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4))
	return 0
}

func (scr *Script) rdpFill(L *lua.LState) int {
	scr.rdpq.FillRectangle(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4))
	return 0
}

func (scr *Script) rdpSyncFull(_ *lua.LState) int {
	scr.rdpq.SyncFull()
	return 0
}

func (scr *Script) counterAdd(L *lua.LState) int {
	scr.cnt.Add(checkWord(L, 1))
	return 0
}

func (scr *Script) counterEmit(_ *lua.LState) int {
	scr.cnt.Emit()
	return 0
}

func (scr *Script) rand(L *lua.LState) int {
	n := L.CheckInt(1)
	if n < 1 {
		L.ArgError(1, "positive number expected")
		return 0
	}
	L.Push(lua.LNumber(scr.rnd.Intn(n)))
	return 1
}

func (scr *Script) print(L *lua.LState) int {
	s := make([]string, L.GetTop())
	for i := range s {
		s[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	logger.Log(scr.env, "script", strings.Join(s, " "))
	return 0
}

func (scr *Script) String() string {
	return fmt.Sprintf("lua script (%d on stack)", scr.L.GetTop())
}
