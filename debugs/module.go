package debugs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/tvk/bridges"
)

type Module struct {
	dscope.Module
	Bridges bridges.Module
}
