package storages

import (
	"context"
	"errors"

	"github.com/reusee/dscope"
	"github.com/reusee/tvk/bridges"
	"github.com/reusee/tvk/logs"
	"github.com/reusee/tvk/tvkconfigs"
)

type Module struct {
	dscope.Module
	Bridges bridges.Module
}

var ErrNoJournal = errors.New("journal path not configured")

// OpenBridgeJournal opens the configured journal and attaches it to the bridge ledger.
type OpenBridgeJournal func(ctx context.Context) (*Journal, error)

func (Module) OpenBridgeJournal(
	path tvkconfigs.JournalPath,
	logger logs.Logger,
	bridge *bridges.Bridge,
) OpenBridgeJournal {
	return func(ctx context.Context) (*Journal, error) {
		if path == "" {
			return nil, ErrNoJournal
		}
		j, err := OpenJournal(ctx, string(path), logger)
		if err != nil {
			return nil, err
		}
		bridge.Ledger().Observe(j.Observe)
		return j, nil
	}
}
