package debugs

import (
	"context"
	"maps"
	"slices"

	"github.com/reusee/tvk/bridges"
	"github.com/reusee/tvk/logs"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Tap opens a starlark REPL on stdin with globals in scope.
type Tap func(ctx context.Context, what string, globals map[string]any)

func (Module) Tap(
	logger logs.Logger,
) Tap {
	return func(ctx context.Context, what string, globals map[string]any) {
		names := slices.Sorted(maps.Keys(globals))
		logger.InfoContext(ctx, "tap: "+what,
			"globals", names,
		)
		defer func() {
			logger.InfoContext(ctx, "tap end: "+what)
		}()

		mappings := make(starlark.StringDict, len(globals))
		for name, value := range globals {
			mappings[name] = toStarlarkValue(value)
		}

		thread := &starlark.Thread{
			Name: what,
		}
		repl.REPLOptions(&syntax.FileOptions{
			Set:             true,
			While:           true,
			TopLevelControl: true,
		}, thread, mappings)
	}
}

// TapBridge opens the REPL with the inspector globals.
type TapBridge func(ctx context.Context)

func (Module) TapBridge(
	tap Tap,
	bridge *bridges.Bridge,
) TapBridge {
	return func(ctx context.Context) {
		globals := make(map[string]any)
		for name, value := range Globals(bridge) {
			globals[name] = value
		}
		tap(ctx, "bridge", globals)
	}
}
