package tvkconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/tvk/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
