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

// Package random produces random numbers that depend on a position in the
// command stream. The same position always produces the same number for the
// same base seed, so command streams generated with the package can be
// recreated exactly.
package random

import (
	"math/rand"
	"time"

	"github.com/jetsetilly/rspqueue/hardware/memory"
)

var baseSeed int64

func init() {
	baseSeed = int64(time.Now().Nanosecond())
}

// Position is implemented by types that have a position in a command stream.
// The host queue and the engine both implement it.
type Position interface {
	Position() memory.Addr
}

// Random numbers keyed by a stream position.
type Random struct {
	pos Position

	// use zero seed rather than the random base seed. random numbers will be
	// the same on every run
	ZeroSeed bool
}

// NewRandom is the preferred method of initialisation for the Random type.
func NewRandom(pos Position) *Random {
	return &Random{
		pos: pos,
	}
}

func (rnd *Random) rand() *rand.Rand {
	seed := int64(rnd.pos.Position())
	if !rnd.ZeroSeed {
		seed += baseSeed
	}
	return rand.New(rand.NewSource(seed))
}

// Intn returns a number in the range [0, n) for the current position.
func (rnd *Random) Intn(n int) int {
	return rnd.rand().Intn(n)
}
