package relay

import (
	"io"
	"sync"
)

// stubTransport is an in-memory Transport for unit tests. Inbound lines are fed
// through in; everything the session writes lands on out.
type stubTransport struct {
	in  chan string
	out chan string

	closeOnce sync.Once
	closed    chan struct{}
}

func newStubTransport() *stubTransport {
	return &stubTransport{
		in:     make(chan string, 16),
		out:    make(chan string, 64),
		closed: make(chan struct{}),
	}
}

func (t *stubTransport) ReadLine() (string, error) {
	select {
	case line := <-t.in:
		return line, nil
	case <-t.closed:
		return "", io.EOF
	}
}

func (t *stubTransport) WriteLine(line string) error {
	select {
	case t.out <- line:
		return nil
	case <-t.closed:
		return io.ErrClosedPipe
	}
}

func (t *stubTransport) RemoteAddr() string {
	return "stub:0"
}

func (t *stubTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closed)
	})
	return nil
}

// newNamedSession builds a session that is already past negotiation and listed
// in the directory under the given name. Its write pump runs so deliveries
// show up on the stub transport's outbox.
func newNamedSession(name string, roster *Roster, directory *Directory, router *Router) *Session {
	s := NewSession(newStubTransport(), roster, directory, router, 8)
	s.name = name
	s.state.Store(int32(StateActive))
	roster.TryRegister(name)
	directory.Insert(s, name)
	go s.writePump()
	return s
}
