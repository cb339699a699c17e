package logs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/tvk/modes"
)

func TestHandler(t *testing.T) {
	dscope.New(new(Module), modes.ForTest(t)).Call(func(
		logger Logger,
	) {
		logger.Info("test", "hello", "world!")
	})
}

func TestNewCall(t *testing.T) {
	level.Set(slog.LevelDebug)
	defer level.Set(slog.LevelInfo)

	buf := new(bytes.Buffer)
	dscope.New(new(Module), modes.ForTest(t)).Fork(
		func() Writer {
			return buf
		},
	).Call(func(
		newCall NewCall,
		logger Logger,
	) {
		ctx := context.Background()
		ctx1, call1 := newCall(ctx, "exec")
		ctx2, call2 := newCall(ctx1, "replay")
		logger.InfoContext(ctx2, "inside")

		lines := strings.Split(buf.String(), "\n")
		if !strings.Contains(lines[0], "logs.call="+string(call1)) {
			t.Fatalf("got %v", lines[0])
		}
		if !strings.Contains(lines[1], "logs.call="+string(call2)) {
			t.Fatalf("got %v", lines[1])
		}
		if !strings.Contains(lines[1], "parent="+string(call1)) {
			t.Fatalf("got %v", lines[1])
		}
		if !strings.Contains(lines[2], "logs.call="+string(call2)) {
			t.Fatalf("got %v", lines[2])
		}

		err := WrapCall(ctx2, errors.New("foo"))
		if !strings.Contains(err.Error(), string(call2)) {
			t.Fatalf("got %v", err)
		}
		if WrapCall(context.Background(), nil) != nil {
			t.Fatal()
		}
	})
}

func TestLoggerWith(t *testing.T) {
	buf := new(bytes.Buffer)
	dscope.New(new(Module), modes.ForTest(t)).Fork(
		func() Writer {
			return buf
		},
	).Call(func(
		logger Logger,
		newCall NewCall,
	) {
		ctx, call := newCall(context.Background(), "exec")
		logger.With("function", "set_i1").InfoContext(ctx, "logged")
		if !strings.Contains(buf.String(), "logs.call="+string(call)) {
			t.Fatalf("got %v", buf.String())
		}
	})
}

func TestToJournalKey(t *testing.T) {
	for in, want := range map[string]string{
		"logs.call": "LOGS_CALL",
		"max conns": "MAX_CONNS",
		"Error2":    "ERROR2",
		"über":      "_BER",
	} {
		if got := toJournalKey(in); got != want {
			t.Fatalf("%s: got %s", in, got)
		}
	}
}
