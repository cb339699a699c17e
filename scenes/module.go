package scenes

import (
	"github.com/reusee/dscope"
	"github.com/reusee/tvk/bridges"
)

type Module struct {
	dscope.Module
	Bridges bridges.Module
}

// Scene is registered into the bridge when first requested.
func (Module) Scene(
	bridge *bridges.Bridge,
) *Scene {
	scene := New()
	if err := scene.Register(bridge); err != nil {
		panic(err)
	}
	return scene
}
