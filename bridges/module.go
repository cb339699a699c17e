package bridges

import (
	"github.com/reusee/dscope"
	"github.com/reusee/tvk/logs"
	"github.com/reusee/tvk/tvkconfigs"
)

type Module struct {
	dscope.Module
	Configs tvkconfigs.Module
}

func (Module) Bridge(
	logger logs.Logger,
	maxParams tvkconfigs.MaxParams,
	reentryException tvkconfigs.ReentryException,
	enabled tvkconfigs.ProvenanceEnabled,
) *Bridge {
	b := New(logger, int(maxParams))
	b.ledger.SetReentryException(bool(reentryException))
	b.ledger.SetEnabled(bool(enabled))
	return b
}
