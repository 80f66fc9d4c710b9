// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"fmt"
	"math"

	"tuner/internal/tuner"
)

/*
UDP Packet Structure (BigEndian)

+---------------------------------------------------------------------------+
| Field          | Data Type | Size (Bytes) | Description                    |
|----------------|-----------|--------------|--------------------------------|
| Sequence       | uint32    | 4            | Monotonically increasing       |
| Timestamp      | int64     | 8            | Nanoseconds since epoch        |
| State          | uint8     | 1            | tuner.TuningState              |
| Note Index     | int16     | 2            | MIDI-style note number         |
| Frequency      | float32   | 4            | Smoothed frequency in Hz       |
| Cents          | float32   | 4            | Smoothed cents offset          |
| Needle         | float32   | 4            | Needle angle in degrees        |
+---------------------------------------------------------------------------+
*/

// PacketSize is the encoded length of a Packet.
const PacketSize = 4 + 8 + 1 + 2 + 4 + 4 + 4

// Packet is one decoded UDP datagram.
type Packet struct {
	Sequence    uint32
	Timestamp   int64
	State       tuner.TuningState
	NoteIndex   int16
	Frequency   float32
	Cents       float32
	NeedleAngle float32
}

// AppendPacket encodes p onto dst.
func AppendPacket(dst []byte, p Packet) []byte {
	dst = binary.BigEndian.AppendUint32(dst, p.Sequence)
	dst = binary.BigEndian.AppendUint64(dst, uint64(p.Timestamp))
	dst = append(dst, byte(p.State))
	dst = binary.BigEndian.AppendUint16(dst, uint16(p.NoteIndex))
	dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(p.Frequency))
	dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(p.Cents))
	dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(p.NeedleAngle))
	return dst
}

// ParsePacket decodes a datagram produced by AppendPacket.
func ParsePacket(b []byte) (Packet, error) {
	if len(b) != PacketSize {
		return Packet{}, fmt.Errorf("invalid packet length %d, want %d", len(b), PacketSize)
	}
	return Packet{
		Sequence:    binary.BigEndian.Uint32(b[0:4]),
		Timestamp:   int64(binary.BigEndian.Uint64(b[4:12])),
		State:       tuner.TuningState(b[12]),
		NoteIndex:   int16(binary.BigEndian.Uint16(b[13:15])),
		Frequency:   math.Float32frombits(binary.BigEndian.Uint32(b[15:19])),
		Cents:       math.Float32frombits(binary.BigEndian.Uint32(b[19:23])),
		NeedleAngle: math.Float32frombits(binary.BigEndian.Uint32(b[23:27])),
	}, nil
}

// packetFromReading fills the reading fields of a Packet.
func packetFromReading(seq uint32, ts int64, r tuner.Reading) Packet {
	return Packet{
		Sequence:    seq,
		Timestamp:   ts,
		State:       r.State,
		NoteIndex:   int16(r.NoteIndex),
		Frequency:   float32(r.Frequency),
		Cents:       float32(r.Cents),
		NeedleAngle: float32(r.NeedleAngle),
	}
}
