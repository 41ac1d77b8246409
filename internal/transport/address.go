// Package transport provides a unified handle over the byte-stream
// transports Tendermint may use to reach this server: TCP, Unix-domain
// sockets, and an in-process mock used by tests.
package transport

import (
	"fmt"
)

// Kind identifies which concrete transport an Address names.
type Kind int

const (
	// KindTCP is a host:port TCP address.
	KindTCP Kind = iota
	// KindUDS is a filesystem-path Unix-domain socket.
	KindUDS
	// KindMock is the in-process test transport; Path/TCP fields are unused.
	KindMock
)

// Address is a tagged union over the transports the library can bind to.
type Address struct {
	Kind Kind
	// TCP holds a "host:port" pair when Kind == KindTCP.
	TCP string
	// Path holds a filesystem path when Kind == KindUDS.
	Path string
}

// NewTCPAddress builds a TCP Address.
func NewTCPAddress(hostPort string) Address {
	return Address{Kind: KindTCP, TCP: hostPort}
}

// NewUnixAddress builds a Unix-domain socket Address.
func NewUnixAddress(path string) Address {
	return Address{Kind: KindUDS, Path: path}
}

// NewMockAddress builds the Address used by the in-process mock transport.
func NewMockAddress() Address {
	return Address{Kind: KindMock}
}

// String renders a human-readable form of the address, suitable for logging.
func (a Address) String() string {
	switch a.Kind {
	case KindTCP:
		return fmt.Sprintf("tcp://%s", a.TCP)
	case KindUDS:
		return fmt.Sprintf("unix://%s", a.Path)
	case KindMock:
		return "mock://"
	default:
		return "unknown://"
	}
}

// network/address pair consumed by net.Listen.
func (a Address) netDial() (network, address string, err error) {
	switch a.Kind {
	case KindTCP:
		return "tcp", a.TCP, nil
	case KindUDS:
		return "unix", a.Path, nil
	default:
		return "", "", fmt.Errorf("transport: address kind %d has no net.Listen form", a.Kind)
	}
}
