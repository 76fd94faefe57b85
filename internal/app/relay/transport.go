/*
Package relay contains the core logic of the chat relay.

This file defines the Transport abstraction, a line-oriented byte stream over which
one session speaks the protocol. Two implementations exist: raw TCP (newline-framed)
and WebSocket (one text frame per line). A Transport is read and written by exactly
one goroutine each; write serialization is the session write pump's job.
*/
package relay

import (
	"bufio"
	"io"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// wsWriteWait is the timeout for a single WebSocket frame write.
const wsWriteWait = 10 * time.Second

// Transport carries protocol lines for one session.
type Transport interface {
	// ReadLine blocks until the next inbound line, stripped of its terminator.
	// It returns io.EOF when the peer closed the stream.
	ReadLine() (string, error)

	// WriteLine sends one outbound line. Callers must not invoke it concurrently.
	WriteLine(line string) error

	// RemoteAddr returns the peer's network address for logging and rate limiting.
	RemoteAddr() string

	// Close tears the underlying stream down. Safe to call more than once.
	Close() error
}

// tcpTransport frames lines over a net.Conn with a bufio.Scanner.
type tcpTransport struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

// NewTCPTransport wraps a net.Conn into a newline-framed Transport.
// Inbound lines longer than maxLineBytes fail the read and close the session.
func NewTCPTransport(conn net.Conn, maxLineBytes int) Transport {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)

	return &tcpTransport{
		conn:    conn,
		scanner: scanner,
	}
}

func (t *tcpTransport) ReadLine() (string, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return t.scanner.Text(), nil
}

func (t *tcpTransport) WriteLine(line string) error {
	_, err := t.conn.Write([]byte(line + "\n"))
	return err
}

func (t *tcpTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}

// wsTransport frames lines as WebSocket text messages.
type wsTransport struct {
	conn *websocket.Conn
}

// NewWebSocketTransport wraps an upgraded WebSocket connection into a Transport
// speaking the same line protocol as TCP clients: one text frame per line.
func NewWebSocketTransport(conn *websocket.Conn, maxLineBytes int) Transport {
	conn.SetReadLimit(int64(maxLineBytes))

	return &wsTransport{conn: conn}
}

func (t *wsTransport) ReadLine() (string, error) {
	for {
		msgType, payload, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return "", io.EOF
			}
			return "", err
		}

		if msgType != websocket.TextMessage {
			continue
		}

		return string(payload), nil
	}
}

func (t *wsTransport) WriteLine(line string) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return t.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (t *wsTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}
