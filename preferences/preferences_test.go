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

package preferences_test

import (
	"testing"

	"github.com/jetsetilly/rspqueue/preferences"
	"github.com/jetsetilly/rspqueue/test"
	"github.com/spf13/afero"
)

func TestPreferences(t *testing.T) {
	fs := afero.NewMemMapFs()

	p, err := preferences.NewPreferences(fs)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.Diagnostic.Get().(bool), false)
	test.ExpectEquality(t, p.LowpriBufferWords.Get().(int), 0x200)

	test.ExpectSuccess(t, p.Diagnostic.Set(true))
	test.ExpectSuccess(t, p.OutputRegionSize.Set(0x800))
	test.ExpectSuccess(t, p.Save())

	// a second instance on the same filesystem sees the saved values
	q, err := preferences.NewPreferences(fs)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, q.Diagnostic.Get().(bool), true)
	test.ExpectEquality(t, q.OutputRegionSize.Get().(int), 0x800)

	q.SetDefaults()
	test.ExpectEquality(t, q.Diagnostic.Get().(bool), false)
}
