package nets

import (
	"net"

	"github.com/reusee/tvk/logs"
	"github.com/reusee/tvk/tvkconfigs"
	"golang.org/x/net/netutil"
)

// Listen opens a tcp listener accepting at most the configured number of connections at once.
type Listen func(addr string) (net.Listener, error)

func (Module) Listen(
	maxConns tvkconfigs.ConsoleMaxConns,
	logger logs.Logger,
) Listen {
	return func(addr string) (net.Listener, error) {
		return LimitedListen(addr, int(maxConns), logger)
	}
}

func LimitedListen(addr string, max int, logger logs.Logger) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	logger.Info("listen",
		"addr", ln.Addr().String(),
		"max conns", max,
	)
	return netutil.LimitListener(ln, max), nil
}
