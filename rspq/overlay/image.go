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

package overlay

import (
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/rspq/wire"
)

// Image is the code and data of an overlay as it is placed in shared memory.
//
// The data of an overlay is laid out as the overlay header, the command table,
// the persisted state and the scratch memory. The state starts on a DMA
// boundary so that it can be written back on its own.
type Image struct {
	Code     []byte
	Commands []wire.Descriptor

	// initial contents of the persisted state
	State []byte

	// number of bytes of scratch memory
	Scratch int
}

// StateStart returns the offset of the persisted state in the data.
func (img Image) StateStart() int {
	return align(wire.OverlayHeaderSize + 2*len(img.Commands))
}

// StateSize returns the size of the persisted state, rounded up to the DMA
// granularity.
func (img Image) StateSize() int {
	return align(len(img.State))
}

// ScratchStart returns the offset of the scratch memory in the data.
func (img Image) ScratchStart() int {
	return img.StateStart() + img.StateSize()
}

// DataSize returns the size of the data.
func (img Image) DataSize() int {
	return img.ScratchStart() + align(img.Scratch)
}

// CodeSize returns the size of the code.
func (img Image) CodeSize() int {
	return align(len(img.Code))
}

// Data returns the data as it should be placed in shared memory.
func (img Image) Data(commandBase uint16) []byte {
	b := make([]byte, img.DataSize())

	wire.OverlayHeader{
		StateStart:  uint16(img.StateStart()),
		StateSize:   uint16(img.StateSize()),
		CommandBase: commandBase,
	}.Put(b)

	for i, d := range img.Commands {
		o := wire.OverlayHeaderSize + 2*i
		b[o] = byte(d >> 8)
		b[o+1] = byte(d)
	}

	copy(b[img.StateStart():], img.State)

	return b
}

func align(n int) int {
	return (n + memory.Granularity - 1) &^ (memory.Granularity - 1)
}
