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
)

// Geometry is the size of the output terminal in characters.
type Geometry struct {
	Rows int
	Cols int
}

// Terminal is not supported on windows.
type Terminal struct{}

// NewTerminal always fails on windows.
func NewTerminal(input, output *os.File) (*Terminal, error) {
	return nil, fmt.Errorf("terminal: cbreak mode is not available on windows")
}

func (pt *Terminal) CleanUp()           {}
func (pt *Terminal) Geometry() Geometry { return Geometry{} }
func (pt *Terminal) CanonicalMode()     {}
func (pt *Terminal) CBreakMode()        {}
func (pt *Terminal) Flush() error       { return nil }
func (pt *Terminal) Suspend()           {}
