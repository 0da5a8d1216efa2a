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

// Package memory implements the two kinds of memory visible to the engine.
//
// Shared memory is the large memory that the host writes commands into and
// that the rasterizer reads its commands from. It is accessed by more than
// one goroutine and so every access is arbitrated by a bus lock.
//
// Local memory is the small, fixed sized memory of the coprocessor. It is
// divided into two banks, DMEM for data and IMEM for code. The only way to
// move data between shared memory and local memory is with the DMA package.
//
// All multi-byte values are big-endian.
package memory
