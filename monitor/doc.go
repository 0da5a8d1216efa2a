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

// Package monitor is an interactive front end for single stepping the
// engine. Each key press is handled as it is typed, which requires the
// terminal to be in cbreak mode, and a status line is printed after every
// action.
//
// The keys recognised by the monitor are:
//
//	space, return   step a single command
//	c               continue until the engine halts
//	r               resume a halted engine
//	s               print the engine stats
//	f               print the fault log
//	o               list the registered overlays
//	?               print the list of keys
//	q, esc, ctrl-c  quit
//	ctrl-z          suspend the process
package monitor
