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

package memory_test

import (
	"testing"

	"github.com/jetsetilly/rspqueue/curated"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/test"
)

func TestShared(t *testing.T) {
	mem := memory.NewShared()

	mem.WriteWord(0x1000, 0x01020304)
	test.ExpectEquality(t, mem.ReadWord(0x1000), 0x01020304)

	b := make([]byte, 4)
	mem.Read(0x1001, b)
	test.ExpectEquality(t, b[0], 0x02)
	test.ExpectEquality(t, b[2], 0x04)

	// writes wrap at the top of shared memory
	mem.WriteWord(memory.SharedSize-2, 0xaabbccdd)
	test.ExpectEquality(t, mem.ReadWord(memory.SharedSize-2), 0xaabbccdd)
	test.ExpectEquality(t, mem.ReadWord(0)>>16, 0xccdd)

	mem.WriteDoubleWord(0x2000, 0x1122334455667788)
	test.ExpectEquality(t, mem.ReadDoubleWord(0x2000), 0x1122334455667788)

	mem.Fill(0x2000, 8, 0)
	test.ExpectEquality(t, mem.ReadDoubleWord(0x2000), 0)
}

func TestLocal(t *testing.T) {
	mem := memory.NewLocal()

	mem.SetWord(0x10, 0xdeadbeef)
	test.ExpectEquality(t, mem.Word(0x10), 0xdeadbeef)
	test.ExpectEquality(t, mem.Half(0x12), 0xbeef)

	// out of range addresses wrap rather than panic
	mem.SetHalf(memory.DMEMSize+4, 0x1234)
	test.ExpectEquality(t, mem.Half(4), 0x1234)

	mem.Reset()
	test.ExpectEquality(t, mem.Word(0x10), 0)
}

func TestAddr(t *testing.T) {
	a := memory.Addr(0x1005)
	test.ExpectEquality(t, a.Aligned(), memory.Addr(0x1000))
	test.ExpectEquality(t, a.Misalignment(), 5)
	test.ExpectEquality(t, a.String(), "001005")
}

func TestArena(t *testing.T) {
	mem := memory.NewShared()
	mem.Fill(0x100, 0x100, 0xff)

	ar := memory.NewArena(mem, 0x101, 0x200)

	a, err := ar.Alloc(5)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, a, memory.Addr(0x108))
	test.ExpectEquality(t, mem.ReadWord(a), 0)

	b, err := ar.Alloc(8)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b, memory.Addr(0x110))

	_, err = ar.Alloc(0x1000)
	test.ExpectSuccess(t, curated.Is(err, memory.ErrArenaExhausted))
	test.ExpectEquality(t, ar.Remaining(), 0xe8)
}
