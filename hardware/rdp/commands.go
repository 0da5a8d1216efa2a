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

package rdp

// SyncFull returns the full synchronisation command.
func SyncFull() uint64 {
	return uint64(OpSyncFull) << 56
}

// SetFillColor returns the command that sets the fill colour. The colour is
// packed as RGBA8888.
func SetFillColor(rgba uint32) uint64 {
	return uint64(OpSetFillColor)<<56 | uint64(rgba)
}

// SetScissor returns the command that sets the scissor rectangle. Pixel
// coordinates are converted to 10.2 fixed point.
func SetScissor(x0, y0, x1, y1 int) uint64 {
	return uint64(OpSetScissor)<<56 | pack(x0, y0, x1, y1)
}

// FillRectangle returns the command that fills a rectangle with the fill
// colour. The rectangle includes the top left pixel but not the bottom right
// pixel.
func FillRectangle(x0, y0, x1, y1 int) uint64 {
	return uint64(OpFillRectangle)<<56 | pack(x1, y1, x0, y0)
}

func pack(a, b, c, d int) uint64 {
	f := func(v int) uint64 {
		return uint64(v<<2) & 0xfff
	}
	return f(a)<<44 | f(b)<<32 | f(c)<<12 | f(d)
}
