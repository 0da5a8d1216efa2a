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

// Package logger is the central log for the application. Entries are added
// with Log() and Logf() and can be written out with Write() or Tail(). The
// number of entries is bounded and adjacent duplicate entries are collapsed
// into a single entry with a repeat count.
//
// Every call takes a Permission. The engine's Environment type implements the
// Permission interface so that secondary engine instances (used for
// comparison runs, for example) can be prevented from cluttering the log.
package logger
