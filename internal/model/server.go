package model

import (
	"context"
	"net"
)

// SecurityLayer opens the listener the admin API is served on.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a long-running network endpoint of the process.
type Server interface {
	Start(securityLayer SecurityLayer) error
	// Stop drains in-flight calls until ctx is done.
	Stop(ctx context.Context) error
	Address() string
}
