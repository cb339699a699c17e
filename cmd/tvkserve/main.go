package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/reusee/dscope"
	"github.com/reusee/tvk/bridges"
	"github.com/reusee/tvk/cmds"
	"github.com/reusee/tvk/consoles"
	"github.com/reusee/tvk/logs"
	"github.com/reusee/tvk/modes"
	"github.com/reusee/tvk/scenes"
	"github.com/reusee/tvk/storages"
	"github.com/reusee/tvk/tvkconfigs"
)

type Module struct {
	dscope.Module
	Scenes   scenes.Module
	Storages storages.Module
	Consoles consoles.Module
}

func main() {
	cmds.Execute(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dscope.New(
		new(Module),
		modes.ForProduction(),
	).Call(func(
		logger logs.Logger,
		newCall logs.NewCall,
		bridge *bridges.Bridge,
		_ *scenes.Scene,
		preload tvkconfigs.Preload,
		openJournal storages.OpenBridgeJournal,
		listenAndServe consoles.ListenAndServe,
	) {
		defer bridge.Close()

		journal, err := openJournal(ctx)
		if err == nil {
			defer journal.Close()
		} else if !errors.Is(err, storages.ErrNoJournal) {
			logger.Error("journal", "error", err)
			return
		}

		for _, path := range preload {
			ctx, _ := newCall(ctx, "preload "+path)
			if err := bridge.ExecFile(ctx, path); err != nil {
				logger.ErrorContext(ctx, "preload", "path", path, "error", err)
				return
			}
		}

		if err := listenAndServe(ctx); err != nil {
			logger.Error("serve", "error", err)
			return
		}
		logger.Info("shutdown")
	})
}
