package transport

import (
	"errors"
	"net"
	"sync"

	"github.com/google/uuid"
)

// MockListener is an in-process transport backed by net.Pipe, used by tests
// that want a real Connection without binding a real socket.
type MockListener struct {
	mu       sync.Mutex
	pending  chan Stream
	closed   bool
	closedCh chan struct{}
}

// NewMockListener creates a mock transport. Dial connects a new client-side
// pipe half; the server-side half is delivered to the next Accept call.
func NewMockListener() *MockListener {
	return &MockListener{
		pending:  make(chan Stream, 16),
		closedCh: make(chan struct{}),
	}
}

// Dial creates a new in-process connection and queues its server half for
// Accept. It returns the client half.
func (m *MockListener) Dial() (Stream, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, errors.New("transport: mock listener closed")
	}
	m.mu.Unlock()

	client, server := net.Pipe()

	select {
	case m.pending <- server:
		return client, nil
	case <-m.closedCh:
		_ = client.Close()
		_ = server.Close()
		return nil, errors.New("transport: mock listener closed")
	}
}

// Accept implements Listener.
func (m *MockListener) Accept() (Stream, string, error) {
	select {
	case s := <-m.pending:
		return s, "mock-" + uuid.NewString(), nil
	case <-m.closedCh:
		return nil, "", errors.New("transport: mock listener closed")
	}
}

// Close implements Listener.
func (m *MockListener) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.closedCh)
	return nil
}

// Addr implements Listener.
func (m *MockListener) Addr() Address { return NewMockAddress() }
