package consoles

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/reusee/tvk/bridges"
	"github.com/reusee/tvk/debugs"
	"github.com/reusee/tvk/logs"
)

// REPL reads Lua chunks from the terminal until EOF or /quit.
type REPL func(ctx context.Context) error

func (Module) REPL(
	server *Server,
	bridge *bridges.Bridge,
	logger logs.Logger,
	tapBridge debugs.TapBridge,
) REPL {
	return func(ctx context.Context) error {
		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)

		historyPath, err := replHistoryPath()
		if err != nil {
			logger.Warn("get history path error", "err", err)
		} else if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if historyPath == "" {
				return
			}
			if err := os.MkdirAll(filepath.Dir(historyPath), 0755); err != nil {
				logger.Warn("create history dir error", "err", err)
				return
			}
			f, err := os.Create(historyPath)
			if err != nil {
				logger.Warn("create history file error", "err", err)
				return
			}
			line.WriteHistory(f)
			f.Close()
		}()

		for {
			input, err := line.Prompt("lua> ")
			if err != nil {
				switch err {
				case io.EOF, liner.ErrPromptAborted:
					return nil
				}
				return err
			}
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			line.AppendHistory(input)

			switch input {

			case "/quit", "/exit":
				return nil

			case "/undo":
				err = bridge.Undo()

			case "/redo":
				err = bridge.Redo()

			case "/history":
				err = bridge.WriteHistory(os.Stdout)

			case "/tap":
				tapBridge(ctx)

			default:
				err = server.Exec(ctx, input)

			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
		}
	}
}

func replHistoryPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tvk", "lua-history"), nil
}
