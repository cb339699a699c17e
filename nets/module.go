package nets

import (
	"github.com/reusee/dscope"
	"github.com/reusee/tvk/logs"
	"github.com/reusee/tvk/tvkconfigs"
)

type Module struct {
	dscope.Module
	Configs tvkconfigs.Module
	Logs    logs.Module
}
