package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/tvk/bridges"
	"github.com/reusee/tvk/cmds"
	"github.com/reusee/tvk/configs"
	"github.com/reusee/tvk/consoles"
	"github.com/reusee/tvk/debugs"
	"github.com/reusee/tvk/logs"
	"github.com/reusee/tvk/modes"
	"github.com/reusee/tvk/nets"
	"github.com/reusee/tvk/scenes"
	"github.com/reusee/tvk/storages"
	"github.com/reusee/tvk/tvkconfigs"
	"golang.org/x/term"
)

var (
	runFiles = cmds.Collect[string]("run", "execute a lua file")
	chunks   = cmds.Collect[string]("exec", "execute a lua chunk")
	inspects = cmds.Collect[string]("inspect", "evaluate a starlark expression against the bridge")

	replaySession = cmds.Var[string]("replay", "replay a journaled session, or last")
	remoteAddr    = cmds.Var[string]("remote", "send run and exec to a console server")

	showHistory   = cmds.Switch("history", "print the undo history")
	showSessions  = cmds.Switch("sessions", "list journaled sessions")
	showFunctions = cmds.Switch("functions", "list registered functions")
	showConfig    = cmds.Switch("config", "print effective configuration")
	doTap         = cmds.Switch("tap", "open a starlark inspector")
	doREPL        = cmds.Switch("repl", "open an interactive lua prompt")
)

func init() {
	cmds.Define("describe", cmds.Func(func(name string) {
		describeNames = append(describeNames, name)
	}).Desc("print the documentation and signature of a registered function"))
}

var describeNames []string

func main() {
	cmds.Execute(os.Args[1:])
	ctx := context.Background()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)

	if *showConfig {
		for _, value := range configs.Values(scope) {
			fmt.Printf("%s\t%v\n", value.ConfigKey(), value)
		}
		return
	}

	if *remoteAddr != "" {
		scope.Call(func(
			dialer nets.Dialer,
			logger logs.Logger,
		) {
			if err := runRemote(ctx, dialer, *remoteAddr); err != nil {
				logger.Error("remote", "error", err)
				os.Exit(1)
			}
		})
		return
	}

	scope.Call(func(
		logger logs.Logger,
		newCall logs.NewCall,
		bridge *bridges.Bridge,
		_ *scenes.Scene,
		preload tvkconfigs.Preload,
		openJournal storages.OpenBridgeJournal,
		tapBridge debugs.TapBridge,
		repl consoles.REPL,
	) {
		defer bridge.Close()
		if err := run(ctx, logger, newCall, bridge, preload, openJournal, tapBridge, repl); err != nil {
			logger.Error("tvk", "error", err)
			os.Exit(1)
		}
	})
}

func run(
	ctx context.Context,
	logger logs.Logger,
	newCall logs.NewCall,
	bridge *bridges.Bridge,
	preload tvkconfigs.Preload,
	openJournal storages.OpenBridgeJournal,
	tapBridge debugs.TapBridge,
	repl consoles.REPL,
) error {

	journal, err := openJournal(ctx)
	if errors.Is(err, storages.ErrNoJournal) {
		if *replaySession != "" || *showSessions {
			return err
		}
		journal = nil
	} else if err != nil {
		return err
	}
	if journal != nil {
		defer journal.Close()
	}

	for _, path := range preload {
		ctx, _ := newCall(ctx, "preload "+path)
		if err := bridge.ExecFile(ctx, path); err != nil {
			return logs.WrapCall(ctx, fmt.Errorf("preload %s: %w", path, err))
		}
	}

	if *showSessions {
		sessions, err := journal.Sessions(ctx)
		if err != nil {
			return err
		}
		for _, session := range sessions {
			fmt.Printf("%s\t%s\t%d\n", session.ID, session.Started.Format("2006-01-02 15:04:05"), session.Events)
		}
	}

	if *replaySession != "" {
		session := *replaySession
		if session == "last" {
			session, err = journal.LastSession(ctx)
			if err != nil {
				return err
			}
		}
		ctx, _ := newCall(ctx, "replay "+session)
		if err := journal.Replay(ctx, session, bridge); err != nil {
			return logs.WrapCall(ctx, err)
		}
	}

	for _, path := range *runFiles {
		ctx, _ := newCall(ctx, "run "+path)
		if err := bridge.ExecFile(ctx, path); err != nil {
			return logs.WrapCall(ctx, fmt.Errorf("run %s: %w", path, err))
		}
	}

	for _, chunk := range *chunks {
		ctx, _ := newCall(ctx, "exec")
		if err := bridge.Exec(ctx, chunk); err != nil {
			return logs.WrapCall(ctx, err)
		}
	}

	if len(*runFiles) == 0 && len(*chunks) == 0 && !term.IsTerminal(int(os.Stdin.Fd())) {
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		ctx, _ := newCall(ctx, "stdin")
		if err := bridge.Exec(ctx, string(src)); err != nil {
			return logs.WrapCall(ctx, err)
		}
	}

	if *doREPL {
		if err := repl(ctx); err != nil {
			return err
		}
	}

	if *showFunctions {
		for _, name := range bridge.Functions() {
			fmt.Println(name)
		}
	}

	for _, name := range describeNames {
		doc, signature, err := bridge.Describe(name)
		if err != nil {
			return err
		}
		if doc != "" {
			fmt.Println(doc)
		}
		for _, line := range signature {
			fmt.Println("  " + line)
		}
	}

	for _, expr := range *inspects {
		ret, err := debugs.Eval(bridge, expr)
		if err != nil {
			return err
		}
		fmt.Println(ret)
	}

	if *showHistory {
		if err := bridge.WriteHistory(os.Stdout); err != nil {
			return err
		}
	}

	if *doTap {
		tapBridge(ctx)
	}

	if journal != nil {
		if err := journal.Err(); err != nil {
			logger.Warn("journal incomplete", "error", err)
		}
	}

	return nil
}

// runRemote sends exec chunks and run files to a console server.
func runRemote(ctx context.Context, dialer nets.Dialer, addr string) error {
	client, err := consoles.Dial(ctx, dialer, addr)
	if err != nil {
		return err
	}
	defer client.Close()
	for _, path := range *runFiles {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := consoles.ExecLines(ctx, client, string(content)); err != nil {
			return fmt.Errorf("run %s: %w", path, err)
		}
	}
	for _, chunk := range *chunks {
		if err := consoles.ExecLines(ctx, client, chunk); err != nil {
			return err
		}
	}
	return nil
}
