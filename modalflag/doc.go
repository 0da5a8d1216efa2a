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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides a convenient method of handling program modes (and
// sub-modes) and allows different flags for each mode.
//
// At its simplest it can be used as a replacement for the flag package, with
// some differences. Instantiate a Modes struct, point it to the command line
// arguments, add flags and then call Parse():
//
//	md := Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	diagnostic := md.AddBool("diagnostic", false, "halt on invalid commands")
//	p, err := md.Parse()
//
// The ParseResult returned by Parse() should be checked. ParseHelp means that
// a help message has already been printed and ParseError means that err is
// not nil.
//
// Modes are added with AddSubModes(). The first mode in the list is the
// default mode. After Parse(), the selected mode is returned by Mode():
//
//	md.AddSubModes("RUN", "STEP", "TRACE", "DUMP")
//	p, _ := md.Parse()
//	switch md.Mode() {
//	case "RUN":
//		...
//	}
//
// A mode can have its own flags and sub-modes. Call NewMode() after the
// first Parse() and add flags and sub-modes again. The next call to Parse()
// will continue from where the previous call left off. The sequence of modes
// encountered is returned by Path().
//
// Mode names are case insensitive.
package modalflag
