package rcon

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketRoundTrip(t *testing.T) {
	p := packet{ID: 7, Type: typeExecCommand, Body: "ListPlayers"}
	buf := bytes.NewReader(p.encode())

	got, err := readPacket(buf)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPacketEncode(t *testing.T) {
	p := packet{ID: 1, Type: typeAuth, Body: "hunter2"}
	raw := p.encode()

	// size prefix covers id + type + body + two null terminators
	size := binary.LittleEndian.Uint32(raw[0:4])
	assert.Equal(t, uint32(len("hunter2")+10), size)
	assert.Equal(t, byte(0), raw[len(raw)-1])
	assert.Equal(t, byte(0), raw[len(raw)-2])
}

func TestReadPacketRejectsBadSize(t *testing.T) {
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], 2)
	_, err := readPacket(bytes.NewReader(raw[:]))
	assert.Error(t, err)

	binary.LittleEndian.PutUint32(raw[:], maxPacketSize+1)
	_, err = readPacket(bytes.NewReader(raw[:]))
	assert.Error(t, err)
}
