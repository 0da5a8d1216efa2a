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

import (
	"encoding/binary"
	"sync"
)

// Shared memory. The host and the engine run in different goroutines and
// both access shared memory so all accesses take the bus lock.
type Shared struct {
	bus  sync.Mutex
	data []byte
}

// NewShared is the preferred method of initialisation for the Shared type.
func NewShared() *Shared {
	return &Shared{
		data: make([]byte, SharedSize),
	}
}

// mask address to the size of shared memory
func (mem *Shared) mask(addr Addr) int {
	return int(addr) & (SharedSize - 1)
}

// Read fills p with the data at address. Reads wrap around at the top of
// shared memory.
func (mem *Shared) Read(addr Addr, p []byte) {
	mem.bus.Lock()
	defer mem.bus.Unlock()
	mem.read(addr, p)
}

func (mem *Shared) read(addr Addr, p []byte) {
	a := mem.mask(addr)
	n := copy(p, mem.data[a:])
	if n < len(p) {
		copy(p[n:], mem.data)
	}
}

// Write p to address. Writes wrap around at the top of shared memory.
func (mem *Shared) Write(addr Addr, p []byte) {
	mem.bus.Lock()
	defer mem.bus.Unlock()
	mem.write(addr, p)
}

func (mem *Shared) write(addr Addr, p []byte) {
	a := mem.mask(addr)
	n := copy(mem.data[a:], p)
	if n < len(p) {
		copy(mem.data, p[n:])
	}
}

// ReadWord returns the 32bit value at address.
func (mem *Shared) ReadWord(addr Addr) uint32 {
	var b [4]byte
	mem.Read(addr, b[:])
	return binary.BigEndian.Uint32(b[:])
}

// WriteWord writes the 32bit value to address.
func (mem *Shared) WriteWord(addr Addr, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	mem.Write(addr, b[:])
}

// ReadDoubleWord returns the 64bit value at address.
func (mem *Shared) ReadDoubleWord(addr Addr) uint64 {
	var b [8]byte
	mem.Read(addr, b[:])
	return binary.BigEndian.Uint64(b[:])
}

// WriteDoubleWord writes the 64bit value to address.
func (mem *Shared) WriteDoubleWord(addr Addr, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	mem.Write(addr, b[:])
}

// Fill n bytes from address with value v.
func (mem *Shared) Fill(addr Addr, n int, v byte) {
	mem.bus.Lock()
	defer mem.bus.Unlock()
	for i := 0; i < n; i++ {
		mem.data[mem.mask(addr+Addr(i))] = v
	}
}

// Borrow gives the provided function the bus lock and access to the region
// of shared memory starting at address. The function is given less than n
// bytes if the region would wrap around the top of shared memory.
func (mem *Shared) Borrow(addr Addr, n int, f func([]byte)) {
	mem.bus.Lock()
	defer mem.bus.Unlock()
	a := mem.mask(addr)
	end := min(a+n, len(mem.data))
	f(mem.data[a:end])
}
