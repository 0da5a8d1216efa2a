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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The Expect functions report a failed expectation with t.Errorf() and allow
// the test to continue. The Demand functions report with t.Fatalf() and
// should be used when the value being tested is needed by the rest of the
// test. For example, testing that the lengths of two slices are equal before
// iterating over them in unison.
//
// ExpectSuccess() and ExpectFailure() test for success under generic
// conditions. A bool is successful when it is true and an error is
// successful when it is nil. The untyped nil value is considered a success,
// because that is how the error type works.
//
// The Writer type implements the io.Writer interface and should be used to
// capture output. The Writer.Compare() function can then be used to test for
// equality.
package test
