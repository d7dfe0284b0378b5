package transport

import (
	"net"
)

// Bind opens a TCP listening socket on the address. A zero port picks a free one.
func Bind(addr string) (*net.TCPListener, error) {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	return net.ListenTCP("tcp", tcpaddr)
}

// Port returns the port the listener is bound to, or 0 if it isn't a TCP one.
func Port(ln net.Listener) int {
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}

	return 0
}
