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

package main

import (
	"fmt"
	"image"
	"io"

	"github.com/jetsetilly/rspqueue/digest"
	"github.com/jetsetilly/rspqueue/environment"
	"github.com/jetsetilly/rspqueue/hardware"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/host"
	"github.com/jetsetilly/rspqueue/logger"
	"github.com/jetsetilly/rspqueue/overlays/counter"
	"github.com/jetsetilly/rspqueue/overlays/rdpq"
	"github.com/jetsetilly/rspqueue/prefs"
	"github.com/jetsetilly/rspqueue/rspq"
	"github.com/jetsetilly/rspqueue/rspq/overlay"
	"github.com/jetsetilly/rspqueue/script"
	"github.com/spf13/afero"
	"golang.org/x/image/bmp"
)

// start of the memory given over to the arena. the area below is left for
// command streams written directly by scripts
const arenaOrigin = memory.Addr(0x1000)

// session is a complete set of simulated hardware, an engine with the
// standard overlays, a host queue and a script state.
type session struct {
	env *environment.Environment
	m   *hardware.Machine
	eng *rspq.Engine
	q   *host.Queue
	scr *script.Script
}

// newSession creates a new session. The prefs string is a list of key::value
// pairs that override the values in the preferences file.
func newSession(fs afero.Fs, diagnostic bool, prefsOverride string) (*session, error) {
	prefs.PushCommandLineStack(prefsOverride)
	defer func() {
		if unused := prefs.PopCommandLineStack(); unused != "" {
			logger.Logf(logger.Allow, "main", "unused preferences: %s", unused)
		}
	}()

	env, err := environment.NewEnvironment(fs, environment.MainEngine, nil, nil)
	if err != nil {
		return nil, err
	}
	if diagnostic {
		if err := env.Prefs.Diagnostic.Set(true); err != nil {
			return nil, err
		}
	}

	m := hardware.NewMachine(env)
	arena := memory.NewArena(m.Shared, arenaOrigin, memory.SharedSize)

	eng, err := rspq.NewEngine(env, m, arena)
	if err != nil {
		return nil, err
	}

	rdpqSlot, err := eng.Register(rdpq.NewOverlay(), arena)
	if err != nil {
		return nil, err
	}
	cntSlot, err := eng.Register(counter.NewOverlay(), arena)
	if err != nil {
		return nil, err
	}

	q, err := host.NewQueue(env, m.Shared, m.Signals, arena)
	if err != nil {
		return nil, err
	}
	eng.Reset(q.Start())

	ses := &session{
		env: env,
		m:   m,
		eng: eng,
		q:   q,
	}
	ses.scr = script.NewScript(env, q, eng, rdpq.NewCommands(q, rdpqSlot), counter.NewCommands(q, cntSlot))

	return ses, nil
}

// synchronous sessions run the engine whenever the host needs it to make
// progress.
func (ses *session) synchronous() {
	ses.q.SetResume(func() {
		ses.eng.RunUntilHalt()
	})
}

func (ses *session) close() {
	ses.scr.Close()
}

// finish runs every outstanding command and then drains the rasterizer.
func (ses *session) finish() error {
	ses.q.Wait()
	ses.m.RDP.Drain()
	return ses.eng.Err()
}

func (ses *session) summary(output io.Writer) {
	fmt.Fprintln(output, ses.eng.Stats())
	lo, hi := ses.q.Switches()
	fmt.Fprintf(output, "buffer switches: lowpri=%d highpri=%d\n", lo, hi)
	fmt.Fprintf(output, "rasterizer: %d commands, %d full syncs\n", len(ses.m.RDP.Log()), ses.m.RDP.SyncFulls())
	fmt.Fprintf(output, "framebuffer: %s\n", ses.framebufferHash())
}

func (ses *session) framebufferHash() string {
	dig := digest.NewFramebuffer()
	dig.Snapshot(ses.m.RDP.Framebuffer())
	return dig.Hash()
}

// writeFramebuffer saves the rasterizer framebuffer as a BMP file.
func (ses *session) writeFramebuffer(fs afero.Fs, path string) error {
	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var img image.Image = ses.m.RDP.Framebuffer()
	if err := bmp.Encode(f, img); err != nil {
		return fmt.Errorf("bmp: %w", err)
	}

	return nil
}

// snapshot is the part of the engine state shown by the DUMP mode. the
// simulated memories are not included.
type snapshot struct {
	Stream   string
	Position string
	State    string
	Signals  string
	Stack    string
	Digest   string
	Stats    rspq.Stats
	Overlays []overlay.Descriptor
}

func (ses *session) snapshot() *snapshot {
	return &snapshot{
		Stream:   ses.eng.Stream().String(),
		Position: ses.eng.Position().String(),
		State:    ses.eng.State().String(),
		Signals:  ses.m.Signals.String(),
		Stack:    ses.eng.Stack().String(),
		Digest:   ses.framebufferHash(),
		Stats:    ses.eng.Stats(),
		Overlays: ses.eng.Overlays().Descriptors(),
	}
}
