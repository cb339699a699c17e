package consoles

import (
	"context"

	"github.com/reusee/dscope"
	"github.com/reusee/tvk/bridges"
	"github.com/reusee/tvk/debugs"
	"github.com/reusee/tvk/logs"
	"github.com/reusee/tvk/nets"
	"github.com/reusee/tvk/tvkconfigs"
)

type Module struct {
	dscope.Module
	Bridges bridges.Module
	Nets    nets.Module
	Debugs  debugs.Module
}

func (Module) Server(
	bridge *bridges.Bridge,
	logger logs.Logger,
	newCall logs.NewCall,
) *Server {
	return NewServer(bridge, logger, newCall)
}

// ListenAndServe serves the console on the configured address until ctx is done.
type ListenAndServe func(ctx context.Context) error

func (Module) ListenAndServe(
	server *Server,
	listen nets.Listen,
	addr tvkconfigs.ConsoleAddr,
) ListenAndServe {
	return func(ctx context.Context) error {
		ln, err := listen(string(addr))
		if err != nil {
			return err
		}
		return server.Serve(ctx, ln)
	}
}
