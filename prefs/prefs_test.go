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

package prefs_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/rspqueue/curated"
	"github.com/jetsetilly/rspqueue/prefs"
	"github.com/jetsetilly/rspqueue/test"
	"github.com/spf13/afero"
)

func TestTypes(t *testing.T) {
	var b prefs.Bool
	test.ExpectEquality(t, b.Get().(bool), false)
	test.ExpectSuccess(t, b.Set("TRUE"))
	test.ExpectEquality(t, b.Get().(bool), true)
	test.ExpectFailure(t, b.Set(10))

	var i prefs.Int
	test.ExpectSuccess(t, i.Set("0x200"))
	test.ExpectEquality(t, i.Get().(int), 0x200)
	test.ExpectFailure(t, i.Set("foo"))

	var f prefs.Float
	test.ExpectSuccess(t, f.Set(1))
	test.ExpectEquality(t, f.String(), "1.000")

	var s prefs.String
	test.ExpectSuccess(t, s.Set("lowpri"))
	test.ExpectEquality(t, s.String(), "lowpri")
	test.ExpectSuccess(t, s.Reset())
	test.ExpectEquality(t, s.String(), "")
}

func TestHooks(t *testing.T) {
	var i prefs.Int
	var post int
	i.SetHookPost(func(v prefs.Value) error {
		post = v.(int)
		return nil
	})
	test.ExpectSuccess(t, i.Set(64))
	test.ExpectEquality(t, post, 64)
}

func TestDisk(t *testing.T) {
	fs := afero.NewMemMapFs()

	var diag prefs.Bool
	var words prefs.Int

	dsk, err := prefs.NewDisk(fs, prefs.DefaultPrefsFile)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, dsk.Add("rspq.diagnostic", &diag))
	test.ExpectSuccess(t, dsk.Add("host.lowpriBufferWords", &words))
	test.ExpectSuccess(t, curated.Is(dsk.Add("rspq.diagnostic", &diag), prefs.DuplicateKey))

	// missing file
	err = dsk.Load()
	test.ExpectSuccess(t, curated.Is(err, prefs.NoPrefsFile))

	// a key owned by another disk instance must survive a save
	test.DemandSuccess(t, afero.WriteFile(fs, prefs.DefaultPrefsFile, []byte("other.key: \"abc\"\n"), 0o644))

	test.ExpectSuccess(t, diag.Set(true))
	test.ExpectSuccess(t, words.Set(0x100))
	test.ExpectSuccess(t, dsk.Save())

	b, err := afero.ReadFile(fs, prefs.DefaultPrefsFile)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(string(b), "other.key"))
	test.ExpectSuccess(t, strings.Contains(string(b), "rspq.diagnostic"))

	test.ExpectSuccess(t, dsk.Reset())
	test.ExpectEquality(t, diag.Get().(bool), false)

	test.ExpectSuccess(t, dsk.Load())
	test.ExpectEquality(t, diag.Get().(bool), true)
	test.ExpectEquality(t, words.Get().(int), 0x100)
}

func TestCommandLine(t *testing.T) {
	fs := afero.NewMemMapFs()

	var diag prefs.Bool
	dsk, _ := prefs.NewDisk(fs, prefs.DefaultPrefsFile)
	test.ExpectSuccess(t, dsk.Add("rspq.diagnostic", &diag))

	prefs.PushCommandLineStack("rspq.diagnostic::true; rdp.bytesPerTick::8")
	err := dsk.Load()
	test.ExpectSuccess(t, curated.Is(err, prefs.NoPrefsFile))
	test.ExpectEquality(t, diag.Get().(bool), true)

	// unused entries are returned by the pop
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "rdp.bytesPerTick::8")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "")
}
