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

import "github.com/jetsetilly/rspqueue/curated"

// Sentinal error returned by Arena.Alloc().
const ErrArenaExhausted = "arena: exhausted (%d bytes requested)"

// Arena places buffers and overlay images in shared memory. It is only used
// during initialisation. There is no mechanism to free an allocation.
type Arena struct {
	mem  *Shared
	next Addr
	end  Addr
}

// NewArena is the preferred method of initialisation for the Arena type. The
// arena covers shared memory from origin up to but not including end.
func NewArena(mem *Shared, origin Addr, end Addr) *Arena {
	return &Arena{
		mem:  mem,
		next: (origin + Granularity - 1).Aligned(),
		end:  end,
	}
}

// Alloc returns the address of n bytes of cleared shared memory. The address
// is aligned to the DMA granularity.
func (ar *Arena) Alloc(n int) (Addr, error) {
	if n < 0 || ar.next+Addr(n) > ar.end {
		return 0, curated.Errorf(ErrArenaExhausted, n)
	}
	a := ar.next
	ar.next = (ar.next + Addr(n) + Granularity - 1).Aligned()
	ar.mem.Fill(a, n, 0)
	return a, nil
}

// Remaining returns the number of unallocated bytes in the arena.
func (ar *Arena) Remaining() int {
	if ar.next >= ar.end {
		return 0
	}
	return int(ar.end - ar.next)
}

// Shared returns the memory the arena allocates from.
func (ar *Arena) Shared() *Shared {
	return ar.mem
}
