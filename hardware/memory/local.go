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

package memory

import "encoding/binary"

// Bank identifies one of the two banks of local memory.
type Bank int

// List of valid Bank values.
const (
	DMEM Bank = iota
	IMEM
)

func (b Bank) String() string {
	switch b {
	case DMEM:
		return "DMEM"
	case IMEM:
		return "IMEM"
	}
	return "undefined bank"
}

// Local memory of the coprocessor. Local memory is only ever accessed by the
// engine goroutine and so there is no locking.
//
// Addresses are masked to the size of the bank. An out of range address is
// therefore never a panic, it is simply the wrong data.
type Local struct {
	DMEM [DMEMSize]byte
	IMEM [IMEMSize]byte
}

// NewLocal is the preferred method of initialisation for the Local type.
func NewLocal() *Local {
	return &Local{}
}

// Reset clears both banks.
func (mem *Local) Reset() {
	clear(mem.DMEM[:])
	clear(mem.IMEM[:])
}

// Bank returns the bank as a slice.
func (mem *Local) Bank(b Bank) []byte {
	if b == IMEM {
		return mem.IMEM[:]
	}
	return mem.DMEM[:]
}

// Word returns the 32bit value at address in DMEM.
func (mem *Local) Word(addr uint32) uint32 {
	var b [4]byte
	mem.Read(addr, b[:])
	return binary.BigEndian.Uint32(b[:])
}

// SetWord writes the 32bit value to address in DMEM.
func (mem *Local) SetWord(addr uint32, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	mem.Write(addr, b[:])
}

// Half returns the 16bit value at address in DMEM.
func (mem *Local) Half(addr uint32) uint16 {
	var b [2]byte
	mem.Read(addr, b[:])
	return binary.BigEndian.Uint16(b[:])
}

// SetHalf writes the 16bit value to address in DMEM.
func (mem *Local) SetHalf(addr uint32, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	mem.Write(addr, b[:])
}

// Read fills p from address in DMEM. Reads wrap at the end of the bank.
func (mem *Local) Read(addr uint32, p []byte) {
	for i := range p {
		p[i] = mem.DMEM[(addr+uint32(i))&(DMEMSize-1)]
	}
}

// Write p to address in DMEM. Writes wrap at the end of the bank.
func (mem *Local) Write(addr uint32, p []byte) {
	for i := range p {
		mem.DMEM[(addr+uint32(i))&(DMEMSize-1)] = p[i]
	}
}
