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

// Package trace captures the commands dispatched by the engine to a pcap file.
// Each dispatched command is one packet. The packet starts with a short
// header giving the stream, the overlay slot and the position of the command
// in shared memory, followed by the command itself.
//
// The pcap link type is the first of the user link types so that the capture
// can be inspected with standard tools. Timestamps are a count of commands,
// one microsecond per command, so that captures of the same command stream
// are identical.
package trace

import (
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/jetsetilly/rspqueue/curated"
	"github.com/jetsetilly/rspqueue/hardware/memory"
	"github.com/jetsetilly/rspqueue/rspq"
	"github.com/jetsetilly/rspqueue/rspq/wire"
)

// LinkType of the capture. LINKTYPE_USER0.
const LinkType = layers.LinkType(147)

// size of the packet header
const headerSize = 8

// largest packet
const snapLen = headerSize + wire.MaxCommandWords*4

// Sentinal errors returned by the trace package.
const (
	WriteError    = "trace: %v"
	ReadError     = "trace: %v"
	ShortPacket   = "trace: short packet (%d bytes)"
	WrongLinkType = "trace: wrong link type (%v)"
)

// Writer implements the rspq.Tracer interface.
type Writer struct {
	w *pcapgo.Writer

	packet [snapLen]byte
	count  int

	// first write error. subsequent commands are not written
	err error
}

// NewWriter is the preferred method of initialisation for the Writer type.
// The pcap file header is written immediately.
func NewWriter(w io.Writer) (*Writer, error) {
	tw := &Writer{
		w: pcapgo.NewWriter(w),
	}
	if err := tw.w.WriteFileHeader(snapLen, LinkType); err != nil {
		return nil, curated.Errorf(WriteError, err)
	}
	return tw, nil
}

// Trace implements the rspq.Tracer interface.
func (tw *Writer) Trace(stream rspq.Stream, slot int, pos memory.Addr, cmd []byte) {
	if tw.err != nil {
		return
	}

	tw.packet[0] = byte(stream)
	tw.packet[1] = byte(slot)
	tw.packet[2] = 0
	tw.packet[3] = 0
	binary.BigEndian.PutUint32(tw.packet[4:], uint32(pos))
	n := headerSize + copy(tw.packet[headerSize:], cmd)

	ci := gopacket.CaptureInfo{
		Timestamp:     time.Unix(0, 0).Add(time.Duration(tw.count) * time.Microsecond).UTC(),
		CaptureLength: n,
		Length:        n,
	}

	if err := tw.w.WritePacket(ci, tw.packet[:n]); err != nil {
		tw.err = curated.Errorf(WriteError, err)
		return
	}

	tw.count++
}

// Count returns the number of commands written.
func (tw *Writer) Count() int {
	return tw.count
}

// Err returns the first error encountered while writing.
func (tw *Writer) Err() error {
	return tw.err
}

// Record is a single traced command.
type Record struct {
	Stream   rspq.Stream
	Slot     int
	Position memory.Addr
	Command  []byte
}

// Header returns the command header of the record.
func (r Record) Header() uint32 {
	if len(r.Command) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(r.Command)
}

// Decode a packet.
func Decode(data []byte) (Record, error) {
	if len(data) < headerSize {
		return Record{}, curated.Errorf(ShortPacket, len(data))
	}
	return Record{
		Stream:   rspq.Stream(data[0]),
		Slot:     int(data[1]),
		Position: memory.Addr(binary.BigEndian.Uint32(data[4:])),
		Command:  append([]byte{}, data[headerSize:]...),
	}, nil
}

// ReadAll returns every record in a capture.
func ReadAll(r io.Reader) ([]Record, error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, curated.Errorf(ReadError, err)
	}
	if pr.LinkType() != LinkType {
		return nil, curated.Errorf(WrongLinkType, pr.LinkType())
	}

	var records []Record
	for {
		data, _, err := pr.ReadPacketData()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return records, curated.Errorf(ReadError, err)
		}
		rec, err := Decode(data)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}
