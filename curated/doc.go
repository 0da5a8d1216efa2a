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

// Package curated is a helper package for the plain Go language error type.
// Curated errors are created with the Errorf() function. The pattern string
// given to Errorf() is kept and used by Is() and Has() to identify the kind
// of error without resorting to string comparisons of the formatted
// message.
//
// Patterns are usually exported as string constants by the package that
// raises the error:
//
//	const ErrArenaExhausted = "arena: exhausted (%d bytes requested)"
//
//	if curated.Is(err, memory.ErrArenaExhausted) {
//		...
//	}
//
// Error messages are normalised by removing adjacent duplicate parts of the
// message chain. Curated errors implement Unwrap() so that wrapped values
// are visible to errors.Is() and errors.As() from the standard library.
package curated
