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

package stack_test

import (
	"testing"

	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/rspq/stack"
	"github.com/jetsetilly/rspqueue/test"
)

func TestStack(t *testing.T) {
	var stk stack.Stack

	stk.Save(0, 0x1000)
	stk.Save(stack.LowpriSlot, 0x2000)
	stk.Save(stack.HighpriSlot, 0x3000)
	test.ExpectEquality(t, stk.Load(0), memory.Addr(0x1000))
	test.ExpectEquality(t, stk.Load(stack.LowpriSlot), memory.Addr(0x2000))
	test.ExpectEquality(t, stk.Load(stack.HighpriSlot), memory.Addr(0x3000))

	// out of range slots are masked
	test.ExpectFailure(t, stack.Valid(stack.NumSlots))
	stk.Save(stack.NumSlots+1, 0x4000)
	test.ExpectEquality(t, stk.Load(1), memory.Addr(0x4000))
	stk.Save(-1, 0x5000)

	stk.Reset()
	test.ExpectEquality(t, stk.Load(stack.HighpriSlot), memory.Addr(0))
}
