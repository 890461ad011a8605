// Package rcon implements the Source remote console protocol over TCP.
package rcon

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Packet type codes from the Source RCON protocol.
const (
	typeAuth          = 3
	typeAuthResponse  = 2
	typeExecCommand   = 2
	typeResponseValue = 0
)

const (
	// maxPacketSize bounds a single inbound packet body.
	maxPacketSize = 4096
	// packetHeaderSize covers the id and type fields, not the size prefix.
	packetHeaderSize = 10
)

// packet is a single RCON frame.
type packet struct {
	ID   int32
	Type int32
	Body string
}

// encode serializes the packet with its little-endian size prefix and the
// two trailing null bytes the protocol requires.
func (p packet) encode() []byte {
	size := int32(packetHeaderSize + len(p.Body))
	buf := make([]byte, 4+size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(size))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.ID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.Type))
	copy(buf[12:], p.Body)
	return buf
}

// readPacket reads one complete frame from r.
func readPacket(r io.Reader) (packet, error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return packet{}, fmt.Errorf("reading packet size: %w", err)
	}
	size := int32(binary.LittleEndian.Uint32(sizeBuf[:]))
	if size < packetHeaderSize || size > maxPacketSize {
		return packet{}, fmt.Errorf("invalid packet size %d", size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return packet{}, fmt.Errorf("reading packet body: %w", err)
	}

	p := packet{
		ID:   int32(binary.LittleEndian.Uint32(body[0:4])),
		Type: int32(binary.LittleEndian.Uint32(body[4:8])),
	}
	// Strip the two trailing null bytes
	p.Body = string(body[8 : size-2])
	return p, nil
}
