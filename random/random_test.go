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

package random_test

import (
	"testing"

	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/random"
	"github.com/jetsetilly/rspqueue/test"
)

type stream struct {
	pos memory.Addr
}

func (s *stream) Position() memory.Addr {
	return s.pos
}

func TestRandom(t *testing.T) {
	sa := &stream{pos: 0x1000}
	sb := &stream{pos: 0x1000}
	a := random.NewRandom(sa)
	b := random.NewRandom(sb)
	a.ZeroSeed = true
	b.ZeroSeed = true

	for i := 1; i < 256; i++ {
		test.ExpectEquality(t, a.Intn(i), b.Intn(i))
		sa.pos += 4
		sb.pos += 4
	}

	// the same position produces the same number
	test.ExpectEquality(t, a.Intn(1000), a.Intn(1000))
}
