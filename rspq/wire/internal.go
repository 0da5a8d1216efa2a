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

package wire

import (
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/hardware/signals"
)

// Command ids of the internal overlay.
const (
	CmdWaitNewInput    uint8 = 0x00
	CmdNoop            uint8 = 0x01
	CmdJump            uint8 = 0x02
	CmdCall            uint8 = 0x03
	CmdRet             uint8 = 0x04
	CmdDma             uint8 = 0x05
	CmdWriteStatus     uint8 = 0x06
	CmdSwapBuffers     uint8 = 0x07
	CmdTestWriteStatus uint8 = 0x08
	CmdRdpWaitIdle     uint8 = 0x09
	CmdRdpSetBuffer    uint8 = 0x0a
	CmdRdpAppendBuffer uint8 = 0x0b

	// number of internal commands
	NumInternal = 0x0c
)

// InternalWords is the size in words of every internal command. The wait
// command has a size of zero because it never advances the read position.
var InternalWords = [NumInternal]int{
	CmdWaitNewInput:    0,
	CmdNoop:            1,
	CmdJump:            1,
	CmdCall:            2,
	CmdRet:             1,
	CmdDma:             4,
	CmdWriteStatus:     1,
	CmdSwapBuffers:     3,
	CmdTestWriteStatus: 2,
	CmdRdpWaitIdle:     1,
	CmdRdpSetBuffer:    3,
	CmdRdpAppendBuffer: 1,
}

// Flags for the DMA command.
const (
	DmaFlagWrite uint32 = 0x8000
	DmaWaitMask         = signals.DMABusy | signals.DMAFull
)

// SlotOffset converts a pointer stack slot to its wire representation, which
// is the byte offset of the slot.
func SlotOffset(slot int) uint32 {
	return uint32(slot) << 2
}

// OffsetSlot converts the wire representation of a pointer stack slot to a
// slot index.
func OffsetSlot(offset uint32) int {
	return int(offset >> 2)
}

// Noop command.
func Noop() []uint32 {
	return []uint32{Header(CmdNoop, 0)}
}

// Jump to address.
func Jump(addr memory.Addr) []uint32 {
	return []uint32{Header(CmdJump, uint32(addr))}
}

// Call the command list at address. The return position is saved in the
// pointer stack slot.
func Call(addr memory.Addr, slot int) []uint32 {
	return []uint32{Header(CmdCall, uint32(addr)), SlotOffset(slot)}
}

// Ret returns to the position saved in the pointer stack slot.
func Ret(slot int) []uint32 {
	return []uint32{Header(CmdRet, SlotOffset(slot))}
}

// Dma transfers between shared memory and DMEM. Width and pitch are in bytes.
// If wait is true the engine waits for the transfer to complete.
func Dma(addr memory.Addr, dmem uint32, width int, height int, pitch int, write bool, wait bool) []uint32 {
	height = max(height, 1)
	skip := max(pitch-width, 0)
	length := uint32(width-1)&0xfff | uint32(height-1)<<12&0xff000 | uint32(skip)<<20

	var flags uint32
	if write {
		flags |= DmaFlagWrite
	}
	if wait {
		flags |= DmaWaitMask
	}

	return []uint32{Header(CmdDma, uint32(addr)), dmem, length, flags}
}

// DmaLength decodes the length word of the DMA command.
func DmaLength(length uint32) (width int, height int, pitch int) {
	width = int(length&0xfff) + 1
	height = int(length>>12&0xff) + 1
	pitch = width + int(length>>20)
	return width, height, pitch
}

// WriteStatus applies a status write. See the signals package for the
// format of a status write.
func WriteStatus(w uint32) []uint32 {
	return []uint32{Header(CmdWriteStatus, w)}
}

// SwapBuffers saves the current position in one pointer stack slot and jumps
// to the position saved in another. The status write is applied first.
func SwapBuffers(newSlot int, saveSlot int, w uint32) []uint32 {
	return []uint32{Header(CmdSwapBuffers, SlotOffset(newSlot)), SlotOffset(saveSlot), w}
}

// TestWriteStatus waits until all the status bits in mask are clear and then
// applies the status write.
func TestWriteStatus(w uint32, mask uint32) []uint32 {
	return []uint32{Header(CmdTestWriteStatus, w), mask}
}

// RdpWaitIdle waits until the rasterizer status bits in mask are clear.
func RdpWaitIdle(mask uint32) []uint32 {
	return []uint32{Header(CmdRdpWaitIdle, mask)}
}

// RdpSetBuffer points the rasterizer at a new buffer. A sentinel of zero
// means the buffer is not used for commands generated by the engine.
func RdpSetBuffer(end memory.Addr, start memory.Addr, sentinel memory.Addr) []uint32 {
	return []uint32{Header(CmdRdpSetBuffer, uint32(end)), uint32(start), uint32(sentinel)}
}

// RdpAppendBuffer extends the buffer being consumed by the rasterizer.
func RdpAppendBuffer(end memory.Addr) []uint32 {
	return []uint32{Header(CmdRdpAppendBuffer, uint32(end))}
}
