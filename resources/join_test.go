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

package resources_test

import (
	"path/filepath"
	"testing"

	"github.com/jetsetilly/rspqueue/resources"
	"github.com/jetsetilly/rspqueue/test"
	"github.com/spf13/afero"
)

func TestJoinPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	test.DemandSuccess(t, fs.Mkdir(".rspqueue", 0o700))

	p, err := resources.JoinPath(fs, "traces", "run.pcap")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p, filepath.Join(".rspqueue", "traces", "run.pcap"))

	// directory has been created but not the file
	_, err = fs.Stat(filepath.Join(".rspqueue", "traces"))
	test.ExpectSuccess(t, err)
	_, err = fs.Stat(p)
	test.ExpectFailure(t, err)

	// base path is not prepended twice
	q, err := resources.JoinPath(fs, p)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, q, p)
}
