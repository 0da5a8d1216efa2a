//go:build !windows

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
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// Geometry is the size of the output terminal in characters.
type Geometry struct {
	Rows int
	Cols int
}

// Terminal wraps the termios attributes of a posix terminal. The terminal is
// put into cbreak mode while the monitor is reading keys and restored to
// canonical mode afterwards.
type Terminal struct {
	input  *os.File
	output *os.File

	canAttr    unix.Termios
	cbreakAttr unix.Termios

	// sig/ack channels to control signal handler
	terminateSig chan bool
	terminateAck chan bool

	// geometry is updated by the signal handler
	mu       sync.Mutex
	geometry Geometry
}

// NewTerminal is the preferred method of initialisation for the Terminal
// type. CleanUp() should be called when the terminal is no longer needed.
func NewTerminal(input, output *os.File) (*Terminal, error) {
	if input == nil {
		return nil, fmt.Errorf("terminal requires an input file")
	}
	if output == nil {
		return nil, fmt.Errorf("terminal requires an output file")
	}

	pt := &Terminal{
		input:        input,
		output:       output,
		terminateSig: make(chan bool),
		terminateAck: make(chan bool),
	}

	if err := termios.Tcgetattr(pt.input.Fd(), &pt.canAttr); err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	pt.cbreakAttr = pt.canAttr
	termios.Cfmakecbreak(&pt.cbreakAttr)

	_ = pt.updateGeometry()

	go func() {
		sigwinch := make(chan os.Signal, 1)
		signal.Notify(sigwinch, syscall.SIGWINCH)
		defer func() {
			signal.Stop(sigwinch)
			pt.terminateAck <- true
		}()

		for {
			select {
			case <-sigwinch:
				_ = pt.updateGeometry()
			case <-pt.terminateSig:
				return
			}
		}
	}()

	return pt, nil
}

// CleanUp restores canonical mode and stops the signal handler.
func (pt *Terminal) CleanUp() {
	pt.CanonicalMode()
	pt.terminateSig <- true
	<-pt.terminateAck
}

func (pt *Terminal) updateGeometry() error {
	ws, err := unix.IoctlGetWinsize(int(pt.output.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return err
	}

	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.geometry = Geometry{Rows: int(ws.Row), Cols: int(ws.Col)}

	return nil
}

// Geometry returns the most recent dimensions of the output terminal.
func (pt *Terminal) Geometry() Geometry {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.geometry
}

// CanonicalMode puts terminal into normal, everyday canonical mode.
func (pt *Terminal) CanonicalMode() {
	_ = termios.Tcsetattr(pt.input.Fd(), termios.TCSANOW, &pt.canAttr)
}

// CBreakMode puts terminal into cbreak mode.
func (pt *Terminal) CBreakMode() {
	_ = termios.Tcsetattr(pt.input.Fd(), termios.TCSANOW, &pt.cbreakAttr)
}

// Flush makes sure the terminal's input buffer is empty.
func (pt *Terminal) Flush() error {
	return termios.Tcflush(pt.input.Fd(), termios.TCIFLUSH)
}

// Suspend sends the stop signal to the parent process.
func (pt *Terminal) Suspend() {
	pt.CanonicalMode()
	if p, err := os.FindProcess(os.Getppid()); err == nil {
		_ = p.Signal(syscall.SIGTSTP)
	}
	pt.CBreakMode()
}
