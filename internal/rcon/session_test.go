package rcon

import (
	"context"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer speaks just enough of the protocol to exercise the client.
type fakeServer struct {
	listener net.Listener
	password string
}

func newFakeServer(t *testing.T, password string) *fakeServer {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	srv := &fakeServer{listener: listener, password: password}
	go srv.serve()
	return srv
}

func (f *fakeServer) hostPort(t *testing.T) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(f.listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func (f *fakeServer) serve() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeServer) handle(conn net.Conn) {
	defer conn.Close()
	for {
		p, err := readPacket(conn)
		if err != nil {
			return
		}
		switch p.Type {
		case typeAuth:
			id := p.ID
			if p.Body != f.password {
				id = -1
			}
			conn.Write(packet{ID: id, Type: typeAuthResponse}.encode())
		case typeExecCommand:
			conn.Write(packet{ID: p.ID, Type: typeResponseValue, Body: "echo: " + p.Body}.encode())
		}
	}
}

func TestSession(t *testing.T) {
	t.Run("authenticates and executes", func(t *testing.T) {
		srv := newFakeServer(t, "hunter2")
		host, port := srv.hostPort(t)

		session, err := Dial(context.Background(), host, port, "hunter2")
		require.NoError(t, err)
		defer session.Close()

		out, err := session.Execute("ListPlayers")
		require.NoError(t, err)
		assert.Equal(t, "echo: ListPlayers", out)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		srv := newFakeServer(t, "hunter2")
		host, port := srv.hostPort(t)

		_, err := Dial(context.Background(), host, port, "wrong")
		assert.ErrorIs(t, err, ErrAuthFailed)
	})

	t.Run("execute after close errors", func(t *testing.T) {
		srv := newFakeServer(t, "hunter2")
		host, port := srv.hostPort(t)

		session, err := Dial(context.Background(), host, port, "hunter2")
		require.NoError(t, err)
		require.NoError(t, session.Close())
		require.NoError(t, session.Close())

		_, err = session.Execute("SaveWorld")
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("dial failure surfaces the address", func(t *testing.T) {
		_, err := Dial(context.Background(), "127.0.0.1", 1, "pw")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "127.0.0.1:1"))
	})
}
