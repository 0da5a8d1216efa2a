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

package faults_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/rspqueue/faults"
	"github.com/jetsetilly/rspqueue/test"
)

func TestFaults(t *testing.T) {
	flt := faults.NewFaults()

	flt.NewEntry("unregistered overlay", faults.InvalidOverlay, 0x1000, 0x50000000)
	e := flt.NewEntry("unregistered overlay", faults.InvalidOverlay, 0x1000, 0x50000000)
	test.ExpectEquality(t, e.Count, 2)
	test.ExpectEquality(t, len(flt.Log), 1)

	flt.NewEntry("command out of range", faults.InvalidCommand, 0x1004, 0x0f000000)
	test.ExpectEquality(t, len(flt.Log), 2)

	w := &strings.Builder{}
	flt.WriteLog(w)
	test.ExpectEquality(t, w.String(), "invalid overlay: unregistered overlay: 50000000 (at 00001000)\n"+
		"invalid command: command out of range: 0f000000 (at 00001004)\n")

	flt.Clear()
	test.ExpectEquality(t, len(flt.Log), 0)
}
