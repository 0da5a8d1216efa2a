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

package monitor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/rspq"
)

// Console is the terminal the monitor runs in. The Terminal type satisfies
// the interface.
type Console interface {
	Geometry() Geometry
	CBreakMode()
	CanonicalMode()
	Suspend()
}

// Monitor single steps an engine in response to key presses.
type Monitor struct {
	eng *rspq.Engine
	con Console
	out io.Writer

	// the tracer in place before the monitor was attached. trace events
	// are forwarded to it
	next rspq.Tracer

	// description of the most recently dispatched command
	last string

	status  lipgloss.Style
	label   lipgloss.Style
	idle    lipgloss.Style
	waiting lipgloss.Style
	faulted lipgloss.Style
	running lipgloss.Style
}

// NewMonitor attaches a new monitor to the engine. Trace events are forwarded
// to the next tracer, which can be nil. The console can also be nil, in
// which case the monitor will not change terminal modes.
func NewMonitor(eng *rspq.Engine, con Console, out io.Writer, next rspq.Tracer) *Monitor {
	mon := &Monitor{
		eng:     eng,
		con:     con,
		out:     out,
		next:    next,
		status:  lipgloss.NewStyle().Background(lipgloss.Color("236")).Padding(0, 1),
		label:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		idle:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		waiting: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		faulted: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		running: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
	eng.SetTracer(mon)
	return mon
}

// Trace implements the rspq.Tracer interface.
func (mon *Monitor) Trace(stream rspq.Stream, slot int, pos memory.Addr, cmd []byte) {
	var s strings.Builder
	fmt.Fprintf(&s, "%s %s slot %d:", stream, pos, slot)
	for i := 0; i+4 <= len(cmd); i += 4 {
		fmt.Fprintf(&s, " %02x%02x%02x%02x", cmd[i], cmd[i+1], cmd[i+2], cmd[i+3])
	}
	mon.last = s.String()

	if mon.next != nil {
		mon.next.Trace(stream, slot, pos, cmd)
	}
}

// Last returns a description of the most recently dispatched command.
func (mon *Monitor) Last() string {
	return mon.last
}

func (mon *Monitor) stateStyle(state rspq.State) lipgloss.Style {
	switch state {
	case rspq.Idle:
		return mon.idle
	case rspq.Waiting:
		return mon.waiting
	case rspq.Faulted:
		return mon.faulted
	}
	return mon.running
}

// Status returns the status line for the current engine state.
func (mon *Monitor) Status() string {
	st := mon.eng.Stats()
	state := mon.eng.State()

	line := fmt.Sprintf("%s %s %s %s %s %s",
		mon.label.Render(mon.eng.Stream().String()),
		mon.eng.Position(),
		mon.stateStyle(state).Render(state.String()),
		mon.label.Render("cmds"),
		fmt.Sprint(st.Commands),
		fmt.Sprintf("swaps %d preempt %d", st.OverlaySwaps, st.Preemptions),
	)

	style := mon.status
	if mon.con != nil {
		if g := mon.con.Geometry(); g.Cols > 0 {
			style = style.MaxWidth(g.Cols)
		}
	}

	return style.Render(line)
}

func (mon *Monitor) help() {
	fmt.Fprintln(mon.out, "space/return: step   c: continue   r: resume   s: stats")
	fmt.Fprintln(mon.out, "f: faults   o: overlays   ?: help   q: quit")
}

// Handle a single key press. Returns false if the key was a request to quit.
func (mon *Monitor) Handle(key byte) bool {
	switch key {
	case ' ', KeyCarriageReturn, KeyLineFeed:
		mon.last = ""
		mon.eng.Step()
		if mon.last != "" {
			fmt.Fprintln(mon.out, mon.last)
		}
	case 'c':
		n := mon.eng.Stats().Commands
		mon.eng.RunUntilHalt()
		fmt.Fprintf(mon.out, "ran %d commands\n", mon.eng.Stats().Commands-n)
	case 'r':
		if err := mon.eng.Resume(); err != nil {
			fmt.Fprintln(mon.out, mon.faulted.Render(err.Error()))
		}
	case 's':
		fmt.Fprintln(mon.out, mon.eng.Stats())
	case 'f':
		mon.eng.Faults().WriteLog(mon.out)
	case 'o':
		for _, d := range mon.eng.Overlays().Descriptors() {
			fmt.Fprintln(mon.out, d)
		}
	case '?':
		mon.help()
		return true
	case 'q', KeyEsc, KeyInterrupt:
		return false
	case KeySuspend:
		if mon.con != nil {
			mon.con.Suspend()
		}
	default:
		return true
	}

	fmt.Fprintln(mon.out, mon.Status())
	return true
}

// Loop reads key presses from the input until the context is cancelled, the
// input is exhausted or a quit key is pressed.
func (mon *Monitor) Loop(ctx context.Context, input io.Reader) error {
	if mon.con != nil {
		mon.con.CBreakMode()
		defer mon.con.CanonicalMode()
	}

	mon.help()
	fmt.Fprintln(mon.out, mon.Status())

	b := make([]byte, 1)
	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := input.Read(b)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("monitor: %w", err)
		}
		if n == 0 {
			continue
		}

		if !mon.Handle(b[0]) {
			return nil
		}
	}
}
