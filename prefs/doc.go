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

// Package prefs facilitates the storage of preferential values in the
// application. The Bool, Int, Float and String types wrap the Go type of the
// same name. Each type is safe for concurrent reading and writing and can
// run hook functions just before and just after the value is changed.
//
// Values are associated with a key and a Disk instance. The Disk type loads
// and saves the keyed values to a yaml file. Keys not known to the Disk
// instance are preserved when saving so more than one Disk instance can share
// the same file.
//
//	var dsk *prefs.Disk
//	var diagnostic prefs.Bool
//
//	dsk, err = prefs.NewDisk(fs, "preferences.yaml")
//	err = dsk.Add("rspq.diagnostic", &diagnostic)
//	err = dsk.Load()
//
// Values can also be overridden from the command line with the
// PushCommandLineStack() function. The string is a list of key::value pairs
// separated by semicolons. Overrides are applied by Disk.Load() and are
// consumed once applied.
package prefs
