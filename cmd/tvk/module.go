package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/tvk/consoles"
	"github.com/reusee/tvk/debugs"
	"github.com/reusee/tvk/scenes"
	"github.com/reusee/tvk/storages"
)

type Module struct {
	dscope.Module
	Scenes   scenes.Module
	Storages storages.Module
	Debugs   debugs.Module
	Consoles consoles.Module
}
