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

// Package wire defines the binary format of the command stream and of the
// overlay tables. Producers and the engine must agree on these formats bit
// for bit.
//
// A command is a sequence of 32bit big-endian words. The first word is the
// header. The top byte of the header is the command id and the top nibble of
// the command id selects the overlay. The remaining 24 bits of the header are
// the first argument of the command.
//
// Command id zero, in the internal overlay, waits for new input. Command
// buffers are cleared to zero before use so unwritten parts of a buffer
// always decode as a wait.
package wire

import (
	"encoding/binary"
	"fmt"
)

// MaxCommandWords is the largest command, including the header.
const MaxCommandWords = 62

// PrefetchWords is the number of words read for every command regardless of
// its size.
const PrefetchWords = 4

// OverlaySlots is the number of overlay slots. Each slot covers 16 command
// ids. An overlay with more than 16 commands occupies consecutive slots.
const OverlaySlots = 16

// CommandsPerSlot is the number of command ids covered by an overlay slot.
const CommandsPerSlot = 16

// MaxOverlays is the number of overlays that can be registered, including the
// internal overlay.
const MaxOverlays = 8

// CommandID returns the command id of a header.
func CommandID(header uint32) uint8 {
	return uint8(header >> 24)
}

// OverlaySlot returns the overlay slot of a header.
func OverlaySlot(header uint32) int {
	return int(header >> 28)
}

// Arg0 returns the argument contained in the header.
func Arg0(header uint32) uint32 {
	return header & 0x00ffffff
}

// Header returns a command header for the command id and argument.
func Header(id uint8, arg0 uint32) uint32 {
	return uint32(id)<<24 | arg0&0x00ffffff
}

// OverlayCommand returns the command id of command n of the overlay that was
// registered at slot. Overlays with more than CommandsPerSlot commands occupy
// consecutive slots.
func OverlayCommand(slot int, n int) uint8 {
	return uint8(slot*CommandsPerSlot + n)
}

// Descriptor is an entry in the command table of an overlay. The top six bits
// are the size of the command in words and the bottom ten bits identify the
// handler.
type Descriptor uint16

// NewDescriptor packs a command size, in words, and a handler entry.
func NewDescriptor(words int, entry uint16) Descriptor {
	return Descriptor(uint16(words&0x3f)<<10 | entry&0x3ff)
}

// Words returns the size of the command in words.
func (d Descriptor) Words() int {
	return int(d >> 10)
}

// Bytes returns the size of the command in bytes.
func (d Descriptor) Bytes() int {
	return d.Words() * 4
}

// Entry returns the handler entry of the command.
func (d Descriptor) Entry() uint16 {
	return uint16(d) & 0x3ff
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%d words, entry %03x", d.Words(), d.Entry())
}

// OverlayHeaderSize is the size of the overlay header in bytes. The
// descriptor table follows immediately.
const OverlayHeaderSize = 8

// OverlayHeader is found at the start of the data of every overlay.
type OverlayHeader struct {
	// offset and size of the persisted state within the overlay data
	StateStart uint16
	StateSize  uint16

	// first command id of the overlay
	CommandBase uint16

	Reserved uint16
}

// Put the header into the first OverlayHeaderSize bytes of b.
func (h OverlayHeader) Put(b []byte) {
	binary.BigEndian.PutUint16(b[0:], h.StateStart)
	binary.BigEndian.PutUint16(b[2:], h.StateSize)
	binary.BigEndian.PutUint16(b[4:], h.CommandBase)
	binary.BigEndian.PutUint16(b[6:], h.Reserved)
}

// ReadOverlayHeader from the first OverlayHeaderSize bytes of b.
func ReadOverlayHeader(b []byte) OverlayHeader {
	return OverlayHeader{
		StateStart:  binary.BigEndian.Uint16(b[0:]),
		StateSize:   binary.BigEndian.Uint16(b[2:]),
		CommandBase: binary.BigEndian.Uint16(b[4:]),
		Reserved:    binary.BigEndian.Uint16(b[6:]),
	}
}
