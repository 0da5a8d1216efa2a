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

import "fmt"

// Addr is an address in shared memory.
type Addr uint32

func (a Addr) String() string {
	return fmt.Sprintf("%06x", uint32(a))
}

// Aligned returns the address rounded down to the DMA granularity.
func (a Addr) Aligned() Addr {
	return a &^ (Granularity - 1)
}

// Misalignment returns the number of bytes the address is beyond the DMA
// granularity.
func (a Addr) Misalignment() int {
	return int(a & (Granularity - 1))
}

// Size of memory areas.
const (
	SharedSize = 0x100000
	DMEMSize   = 0x1000
	IMEMSize   = 0x1000
)

// Granularity of DMA transfers. Addresses and lengths of transfers are
// rounded to this value.
const Granularity = 8

// Layout of local memory.
const (
	// the staging buffer receives chunks of the command stream. the slack
	// allows the first 16 bytes of a command to be read at any position in
	// the staging buffer
	StagingOrigin = 0x000
	StagingSize   = 0x100
	StagingSlack  = 0x010

	// overlay data, including the descriptor table and the persisted state,
	// is loaded at this address in DMEM
	OverlayDataOrigin = 0x200
	OverlayDataMax    = DMEMSize - OverlayDataOrigin

	// overlay code is loaded at this address in IMEM
	OverlayCodeOrigin = 0x400
	OverlayCodeMax    = IMEMSize - OverlayCodeOrigin
)
