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

package environment_test

import (
	"testing"

	"github.com/jetsetilly/rspqueue/environment"
	"github.com/jetsetilly/rspqueue/notifications"
	"github.com/jetsetilly/rspqueue/test"
	"github.com/spf13/afero"
)

type notices []notifications.Notice

func (n *notices) Notify(notice notifications.Notice) error {
	*n = append(*n, notice)
	return nil
}

func TestEnvironment(t *testing.T) {
	var n notices

	env, err := environment.NewEnvironment(afero.NewMemMapFs(), environment.MainEngine, nil, &n)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, env.AllowLogging())

	test.ExpectSuccess(t, env.Notify(notifications.NotifyHalt))
	test.DemandEquality(t, len(n), 1)
	test.ExpectEquality(t, n[0], notifications.NotifyHalt)

	cmp, err := environment.NewEnvironment(afero.NewMemMapFs(), "comparison", env.Prefs, nil)
	test.DemandSuccess(t, err)
	test.ExpectFailure(t, cmp.AllowLogging())
	test.ExpectSuccess(t, cmp.Notify(notifications.NotifyHalt))
	test.ExpectSuccess(t, cmp.Prefs == env.Prefs)
}
