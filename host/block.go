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

package host

import (
	"fmt"

	"github.com/jetsetilly/rspqueue/curated"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/rspq/stack"
	"github.com/jetsetilly/rspqueue/rspq/wire"
)

// BlockChunkWords is the size of each chunk of memory allocated to a block. A
// block that outgrows a chunk continues in a new chunk.
const BlockChunkWords = 0x100

// Block is a recorded list of commands.
type Block struct {
	start memory.Addr

	// current chunk and the write offset in words
	chunk memory.Addr
	cur   int

	// blocks that call no other blocks have a nesting level of zero. the
	// nesting level is also the slot of the pointer stack used to return
	// from the block
	nesting int

	words int
	err   error
}

func (b *Block) String() string {
	return fmt.Sprintf("block at %s (%d words, nesting %d)", b.start, b.words, b.nesting)
}

// Start returns the address of the first command in the block.
func (b *Block) Start() memory.Addr {
	return b.start
}

// Nesting returns the nesting level of the block.
func (b *Block) Nesting() int {
	return b.nesting
}

func (b *Block) write(q *Queue, words []uint32) {
	if b.err != nil {
		return
	}

	// one word is reserved for the jump to the next chunk
	if b.cur+len(words) > BlockChunkWords-1 {
		next, err := q.arena.Alloc(BlockChunkWords * 4)
		if err != nil {
			b.err = curated.Errorf(BufferAlloc, err)
			return
		}
		q.writeCommand(b.chunk+memory.Addr(b.cur*4), wire.Jump(next))
		b.chunk = next
		b.cur = 0
	}

	q.writeCommand(b.chunk+memory.Addr(b.cur*4), words)
	b.cur += len(words)
	b.words += len(words)
}

// BlockBegin starts recording commands into a new block. Commands written
// with Write() are added to the block until BlockEnd() is called.
func (q *Queue) BlockBegin() error {
	if q.block != nil {
		return curated.Errorf(BlockOpen)
	}

	a, err := q.arena.Alloc(BlockChunkWords * 4)
	if err != nil {
		return curated.Errorf(BufferAlloc, err)
	}

	q.block = &Block{
		start: a,
		chunk: a,
	}

	return nil
}

// BlockEnd stops recording and returns the block.
func (q *Queue) BlockEnd() (*Block, error) {
	if q.block == nil {
		return nil, curated.Errorf(BlockNotOpen)
	}

	b := q.block
	b.write(q, wire.Ret(b.nesting))
	q.block = nil

	if b.err != nil {
		return nil, b.err
	}

	return b, nil
}

// RunBlock writes a command that calls the block. If a block is being recorded
// then the call is added to that block.
func (q *Queue) RunBlock(b *Block) error {
	if q.block != nil {
		n := max(q.block.nesting, b.nesting+1)
		if n >= stack.MaxNesting {
			return curated.Errorf(BlockNesting, n)
		}
		q.block.nesting = n
	}

	q.Write(wire.Call(b.start, b.nesting)...)
	return nil
}
