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

// Package digest creates fingerprints of the rasterizer output. Fingerprints
// are chained so that a digest represents every snapshot taken since the
// last reset and not only the most recent one.
package digest

// Digest implementations compute a hash of the data they have seen.
type Digest interface {
	Hash() string
	ResetDigest()
}
