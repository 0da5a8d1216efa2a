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

package digest

import (
	"crypto/sha1"
	"fmt"
	"image"
)

// Framebuffer is a chained digest of framebuffer snapshots.
type Framebuffer struct {
	digest    [sha1.Size]byte
	pixels    []byte
	snapshots int
}

// NewFramebuffer is the preferred method of initialisation for the
// Framebuffer type.
func NewFramebuffer() *Framebuffer {
	return &Framebuffer{}
}

// Hash implements the Digest interface.
func (dig *Framebuffer) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the Digest interface.
func (dig *Framebuffer) ResetDigest() {
	clear(dig.digest[:])
	dig.snapshots = 0
}

// Snapshots returns the number of calls to Snapshot() since the last reset.
func (dig *Framebuffer) Snapshots() int {
	return dig.snapshots
}

// Snapshot adds the current contents of the image to the digest.
func (dig *Framebuffer) Snapshot(img *image.RGBA) {
	b := img.Bounds()
	l := len(dig.digest) + b.Dx()*b.Dy()*4
	if cap(dig.pixels) < l {
		dig.pixels = make([]byte, l)
	}
	dig.pixels = dig.pixels[:l]

	// chain fingerprints by copying the value of the last fingerprint
	// to the head of the pixel data
	i := copy(dig.pixels, dig.digest[:])

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		i += copy(dig.pixels[i:], row[:b.Dx()*4])
	}

	dig.digest = sha1.Sum(dig.pixels)
	dig.snapshots++
}
