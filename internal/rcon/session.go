package rcon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// ErrAuthFailed is returned when the server rejects the RCON password.
var ErrAuthFailed = errors.New("rcon authentication failed")

// ErrClosed is returned when a command is sent on a closed session.
var ErrClosed = errors.New("rcon session closed")

const (
	dialTimeout  = 5 * time.Second
	ioTimeout    = 10 * time.Second
	authPacketID = 1
)

// Session is an authenticated RCON connection to a single game server.
// It is not safe for concurrent use.
type Session struct {
	conn   net.Conn
	nextID int32
	closed bool
}

// Dial connects to the server at host:port and authenticates with password.
func Dial(ctx context.Context, host string, port int, password string) (*Session, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	var d net.Dialer
	d.Timeout = dialTimeout
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}

	s := &Session{conn: conn, nextID: authPacketID}
	if err := s.authenticate(password); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// authenticate performs the auth handshake. The server answers with an
// auth response carrying the request id on success, or -1 on rejection.
// Some servers send an empty response value packet first.
func (s *Session) authenticate(password string) error {
	id := s.nextID
	s.nextID++

	if err := s.write(packet{ID: id, Type: typeAuth, Body: password}); err != nil {
		return err
	}

	for {
		resp, err := s.read()
		if err != nil {
			return err
		}
		if resp.Type != typeAuthResponse {
			continue
		}
		if resp.ID == -1 {
			return ErrAuthFailed
		}
		if resp.ID != id {
			return fmt.Errorf("auth response id mismatch: got %d, want %d", resp.ID, id)
		}
		return nil
	}
}

// Execute sends a console command and returns the server's reply.
func (s *Session) Execute(command string) (string, error) {
	if s.closed {
		return "", ErrClosed
	}

	id := s.nextID
	s.nextID++

	if err := s.write(packet{ID: id, Type: typeExecCommand, Body: command}); err != nil {
		return "", err
	}

	for {
		resp, err := s.read()
		if err != nil {
			return "", err
		}
		if resp.Type == typeResponseValue && resp.ID == id {
			return resp.Body, nil
		}
	}
}

// Close terminates the connection. Close is idempotent.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

func (s *Session) write(p packet) error {
	s.conn.SetWriteDeadline(time.Now().Add(ioTimeout))
	if _, err := s.conn.Write(p.encode()); err != nil {
		return fmt.Errorf("writing packet: %w", err)
	}
	return nil
}

func (s *Session) read() (packet, error) {
	s.conn.SetReadDeadline(time.Now().Add(ioTimeout))
	return readPacket(s.conn)
}
