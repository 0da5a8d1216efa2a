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

package prefs

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jetsetilly/rspqueue/curated"
	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"
)

// DefaultPrefsFile is the default filename of the global preferences file.
const DefaultPrefsFile = "preferences.yaml"

// Sentinal error patterns.
const (
	NoPrefsFile    = "prefs: no prefs file (%s)"
	DuplicateKey   = "prefs: duplicate key (%s)"
	InvalidPrefs   = "prefs: invalid prefs file (%s): %v"
	WritePrefsFile = "prefs: cannot write prefs file (%s): %v"
)

// Disk represents preference values as stored on disk.
type Disk struct {
	fs      afero.Fs
	path    string
	entries map[string]pref
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(fs afero.Fs, path string) (*Disk, error) {
	return &Disk{
		fs:      fs,
		path:    path,
		entries: make(map[string]pref),
	}, nil
}

// Add preference value to list of values to store/load from Disk. The key
// value is used to identify the value in the file.
func (dsk *Disk) Add(key string, p pref) error {
	if _, ok := dsk.entries[key]; ok {
		return curated.Errorf(DuplicateKey, key)
	}
	dsk.entries[key] = p
	return nil
}

func (dsk *Disk) String() string {
	keys := make([]string, 0, len(dsk.entries))
	for k := range dsk.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := strings.Builder{}
	for _, k := range keys {
		s.WriteString(fmt.Sprintf("%s :: %s\n", k, dsk.entries[k]))
	}
	return s.String()
}

// Reset all entries to their zero values.
func (dsk *Disk) Reset() error {
	for _, p := range dsk.entries {
		if err := p.Reset(); err != nil {
			return err
		}
	}
	return nil
}

// read the yaml file into a flat key/value map.
func (dsk *Disk) read() (map[string]string, error) {
	b, err := afero.ReadFile(dsk.fs, dsk.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, curated.Errorf(NoPrefsFile, dsk.path)
		}
		return nil, curated.Errorf(InvalidPrefs, dsk.path, err)
	}

	m := make(map[string]string)
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, curated.Errorf(InvalidPrefs, dsk.path, err)
	}

	return m, nil
}

// Load preference values from disk. Values not in the file keep their
// current value. Any matching command line overrides are applied after the
// file has been read, even if the file is missing. In that case the
// NoPrefsFile error is still returned.
func (dsk *Disk) Load() error {
	m, loadErr := dsk.read()
	if loadErr != nil && !curated.Is(loadErr, NoPrefsFile) {
		return loadErr
	}

	for k, v := range m {
		if p, ok := dsk.entries[k]; ok {
			if err := p.Set(v); err != nil {
				return curated.Errorf(InvalidPrefs, dsk.path, err)
			}
		}
	}

	for k, p := range dsk.entries {
		if v, ok := getCommandLinePref(k); ok {
			if err := p.Set(v); err != nil {
				return err
			}
		}
	}

	return loadErr
}

// Save current preference values to disk. Entries already in the file that
// are not handled by this Disk instance are preserved.
func (dsk *Disk) Save() error {
	m, err := dsk.read()
	if err != nil {
		if !curated.Is(err, NoPrefsFile) {
			return err
		}
		m = make(map[string]string)
	}

	for k, p := range dsk.entries {
		m[k] = p.String()
	}

	b, err := yaml.Marshal(m)
	if err != nil {
		return curated.Errorf(WritePrefsFile, dsk.path, err)
	}

	if err := afero.WriteFile(dsk.fs, dsk.path, b, 0o644); err != nil {
		return curated.Errorf(WritePrefsFile, dsk.path, err)
	}

	return nil
}
