package types

import (
	"fmt"
	"net"
	"strconv"
)

// ListenAddr is a host:port address to listen on. The host may be empty to
// listen on all interfaces, and a bare number is a port.
type ListenAddr struct {
	Host string
	Port int
}

func (a *ListenAddr) Set(raw string) error {
	if raw == "" {
		*a = ListenAddr{}
		return nil
	}

	host, port := "", raw
	if _, err := strconv.Atoi(raw); err != nil {
		host, port, err = net.SplitHostPort(raw)
		if err != nil {
			return err
		}
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("port %q must be a number between 0 and 65535", port)
	}
	a.Host = host
	a.Port = n
	return nil
}

func (a *ListenAddr) String() string {
	if a == nil || (a.Host == "" && a.Port == 0) {
		return ""
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

func (a *ListenAddr) Type() string {
	return "address"
}

// Empty returns true when no address was set.
func (a ListenAddr) Empty() bool {
	return a.Host == "" && a.Port == 0
}
