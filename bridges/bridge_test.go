package bridges

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/tvk/configs"
	"github.com/reusee/tvk/faults"
	"github.com/reusee/tvk/modes"
)

func newTestBridge(t *testing.T) *Bridge {
	var b *Bridge
	dscope.New(
		new(Module),
		modes.ForTest(t),
	).Fork(
		dscope.Provide(configs.NewLoader(nil, "")),
	).Call(func(
		bridge *Bridge,
	) {
		b = bridge
	})
	t.Cleanup(b.Close)
	return b
}

type ints struct {
	i1, i2 int
}

func registerInts(t *testing.T, b *Bridge) *ints {
	state := new(ints)
	if err := b.Register("set_i1", func(v int) {
		state.i1 = v
	}, Defaults(0)); err != nil {
		t.Fatal(err)
	}
	if err := b.Register("set_i2", func(v int) {
		state.i2 = v
	}, Defaults(0)); err != nil {
		t.Fatal(err)
	}
	return state
}

func mustExec(t *testing.T, b *Bridge, src string) {
	t.Helper()
	if err := b.Exec(context.Background(), src); err != nil {
		t.Fatal(err)
	}
}

func TestEndToEnd(t *testing.T) {
	b := newTestBridge(t)
	state := registerInts(t, b)

	mustExec(t, b, `
		set_i1(1)
		set_i1(2)
		set_i2(10)
	`)
	if state.i1 != 2 || state.i2 != 10 || b.Ledger().Cursor() != 3 {
		t.Fatalf("got %+v %d", state, b.Ledger().Cursor())
	}

	mustExec(t, b, `provenance.undo()`)
	if state.i2 != 0 || b.Ledger().Cursor() != 2 {
		t.Fatalf("got %+v %d", state, b.Ledger().Cursor())
	}

	mustExec(t, b, `provenance.undo()`)
	if state.i1 != 1 || b.Ledger().Cursor() != 1 {
		t.Fatalf("got %+v %d", state, b.Ledger().Cursor())
	}

	mustExec(t, b, `provenance.redo()`)
	if state.i1 != 2 || b.Ledger().Cursor() != 2 {
		t.Fatalf("got %+v %d", state, b.Ledger().Cursor())
	}

	mustExec(t, b, `set_i1(42)`)
	err := b.Exec(context.Background(), `provenance.redo()`)
	if !errors.Is(err, faults.ErrInvalidRedo) {
		t.Fatalf("got %v", err)
	}
	if state.i1 != 42 || state.i2 != 0 {
		t.Fatalf("got %+v", state)
	}
	if b.Ledger().Len() != 3 || b.Ledger().Cursor() != 3 {
		t.Fatalf("got %d %d", b.Ledger().Len(), b.Ledger().Cursor())
	}
}

func TestEndToEndFromNative(t *testing.T) {
	b := newTestBridge(t)
	state := registerInts(t, b)

	for _, c := range []struct {
		name string
		v    any
	}{
		{"set_i1", 1}, {"set_i1", int64(2)}, {"set_i2", uint8(10)},
	} {
		if _, err := b.Invoke(c.name, c.v); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := b.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := b.Redo(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Invoke("set_i1", 42); err != nil {
		t.Fatal(err)
	}
	if err := b.Redo(); !errors.Is(err, faults.ErrInvalidRedo) {
		t.Fatalf("got %v", err)
	}
	if state.i1 != 42 || state.i2 != 0 {
		t.Fatalf("got %+v", state)
	}
}

func TestUndoAtBottom(t *testing.T) {
	b := newTestBridge(t)
	registerInts(t, b)
	err := b.Exec(context.Background(), `provenance.undo()`)
	if !errors.Is(err, faults.ErrInvalidUndo) {
		t.Fatalf("got %v", err)
	}
	if b.Ledger().Cursor() != 0 {
		t.Fatal()
	}
}

func TestLastExecFollowsReplay(t *testing.T) {
	b := newTestBridge(t)
	registerInts(t, b)
	mustExec(t, b, `set_i1(1) set_i1(2)`)
	mustExec(t, b, `provenance.undo()`)
	last, err := b.LastExec("set_i1")
	if err != nil {
		t.Fatal(err)
	}
	if last[0] != 1 {
		t.Fatalf("got %v", last)
	}
	mustExec(t, b, `provenance.redo()`)
	last, _ = b.LastExec("set_i1")
	if last[0] != 2 {
		t.Fatalf("got %v", last)
	}
}

func TestErrorsCrossLua(t *testing.T) {
	b := newTestBridge(t)
	registerInts(t, b)

	err := b.Exec(context.Background(), `set_i1("1")`)
	if !errors.Is(err, faults.ErrMarshalType) {
		t.Fatalf("got %v", err)
	}
	var e *faults.Error
	if !errors.As(err, &e) || e.Subject != "set_i1 argument 1" {
		t.Fatalf("got %v", err)
	}

	err = b.Exec(context.Background(), `set_i1(1, 2)`)
	if !errors.Is(err, faults.ErrArity) {
		t.Fatalf("got %v", err)
	}
	if b.Ledger().Len() != 0 {
		t.Fatal("failed calls must not be recorded")
	}

	// pcall sees the message through __tostring
	mustExec(t, b, `
		local ok, err = pcall(set_i1)
		assert(not ok)
		msg = tostring(err)
	`)
	if msg := b.L.GetGlobal("msg").String(); !strings.Contains(msg, "arity: set_i1: expecting 1 arguments, got 0") {
		t.Fatalf("got %s", msg)
	}

	// references kept by scripts fail cleanly after unregistering
	mustExec(t, b, `saved = set_i2`)
	if err := b.Unregister("set_i2"); err != nil {
		t.Fatal(err)
	}
	err = b.Exec(context.Background(), `saved(1)`)
	if !errors.Is(err, faults.ErrUnknownFunction) {
		t.Fatalf("got %v", err)
	}
	if _, err := b.Invoke("set_i2", 1); !errors.Is(err, faults.ErrUnknownFunction) {
		t.Fatalf("got %v", err)
	}
}

func TestNativeErrorPassesThrough(t *testing.T) {
	b := newTestBridge(t)
	errFoo := errors.New("foo")
	if err := b.Register("fail", func() error {
		return errFoo
	}); err != nil {
		t.Fatal(err)
	}
	if err := b.Register("half", func(v float64) (float64, error) {
		return v / 2, nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := b.Exec(context.Background(), `fail()`); !errors.Is(err, errFoo) {
		t.Fatalf("got %v", err)
	}
	mustExec(t, b, `r = half(5)`)
	if r := b.L.GetGlobal("r").String(); r != "2.5" {
		t.Fatalf("got %s", r)
	}
	if b.Ledger().Len() != 1 {
		t.Fatalf("got %d", b.Ledger().Len())
	}
}

func TestReentry(t *testing.T) {
	b := newTestBridge(t)
	state := registerInts(t, b)
	if err := b.Register("outer", func(v int) error {
		_, err := b.Invoke("set_i1", v)
		return err
	}, Defaults(0)); err != nil {
		t.Fatal(err)
	}

	err := b.Exec(context.Background(), `outer(5)`)
	if !errors.Is(err, faults.ErrReentry) {
		t.Fatalf("got %v", err)
	}
	if state.i1 != 0 {
		t.Fatal("nested body should not run")
	}
	if b.Ledger().Len() != 0 {
		t.Fatalf("got %d", b.Ledger().Len())
	}

	mustExec(t, b, `
		provenance.enableReentryException(false)
		outer(5)
	`)
	if state.i1 != 5 {
		t.Fatalf("got %d", state.i1)
	}
	records := b.Ledger().Records()
	if len(records) != 1 || records[0].Name != "outer" {
		t.Fatalf("got %+v", records)
	}
	// the nested call still refreshes its last executed parameters
	if last, _ := b.LastExec("set_i1"); last[0] != 5 {
		t.Fatalf("got %v", last)
	}
}

func TestNestedChunk(t *testing.T) {
	b := newTestBridge(t)
	registerInts(t, b)
	if err := b.Register("run", func(src string) error {
		return b.Exec(context.Background(), src)
	}); err != nil {
		t.Fatal(err)
	}
	err := b.Exec(context.Background(), `run("set_i1(3)")`)
	if !errors.Is(err, faults.ErrReentry) {
		t.Fatalf("got %v", err)
	}
	// undo from inside a call is refused
	err = b.Exec(context.Background(), `run("provenance.undo()")`)
	if !errors.Is(err, faults.ErrInvalidUndo) || !errors.Is(err, faults.ErrReentry) {
		t.Fatalf("got %v", err)
	}
}

func TestNoChange(t *testing.T) {
	b := newTestBridge(t)
	current := 0
	if err := b.Register("set", func(v int) error {
		if v == current {
			return ErrNoChange
		}
		current = v
		return nil
	}, Defaults(0)); err != nil {
		t.Fatal(err)
	}
	mustExec(t, b, `set(1) set(1) set(1)`)
	if b.Ledger().Len() != 1 {
		t.Fatalf("got %d", b.Ledger().Len())
	}
	mustExec(t, b, `set(2)`)
	records := b.Ledger().Records()
	if records[1].Undo[0] != 1 {
		t.Fatalf("got %+v", records[1])
	}
}

func TestExemptAndDisabled(t *testing.T) {
	b := newTestBridge(t)
	registerInts(t, b)
	if err := b.SetExempt("set_i2", true); err != nil {
		t.Fatal(err)
	}
	mustExec(t, b, `set_i2(3) set_i1(1)`)
	if b.Ledger().Len() != 1 {
		t.Fatalf("got %d", b.Ledger().Len())
	}
	if last, _ := b.LastExec("set_i2"); last[0] != 3 {
		t.Fatalf("got %v", last)
	}

	mustExec(t, b, `
		provenance.enable(false)
		set_i1(2)
	`)
	if b.Ledger().Len() != 0 || b.Ledger().Enabled() {
		t.Fatal("disabling should clear and stop recording")
	}
	if last, _ := b.LastExec("set_i1"); last[0] != 2 {
		t.Fatalf("got %v", last)
	}

	mustExec(t, b, `
		provenance.enable(true)
		set_i1(3)
		assert(provenance.size() == 1)
		assert(provenance.cursor() == 1)
		provenance.clear()
		assert(provenance.size() == 0)
	`)
	if err := b.SetExempt("nope", true); !errors.Is(err, faults.ErrUnknownFunction) {
		t.Fatalf("got %v", err)
	}
}

func TestUndoFailureKeepsCursor(t *testing.T) {
	b := newTestBridge(t)
	registerInts(t, b)
	mustExec(t, b, `set_i1(1) set_i2(2)`)
	if err := b.Unregister("set_i2"); err != nil {
		t.Fatal(err)
	}
	err := b.Undo()
	if !errors.Is(err, faults.ErrInvalidUndo) || !errors.Is(err, faults.ErrUnknownFunction) {
		t.Fatalf("got %v", err)
	}
	if b.Ledger().Cursor() != 2 {
		t.Fatalf("got %d", b.Ledger().Cursor())
	}
}

func TestSequenceTruncation(t *testing.T) {
	b := newTestBridge(t)
	var got []int
	if err := b.Register("set_list", func(vs []int) {
		got = vs
	}); err != nil {
		t.Fatal(err)
	}
	mustExec(t, b, `set_list({[1] = 10, [3] = 30})`)
	if len(got) != 1 || got[0] != 10 {
		t.Fatalf("got %v", got)
	}
}

func TestContextCancel(t *testing.T) {
	b := newTestBridge(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*20)
	defer cancel()
	err := b.Exec(ctx, `while true do end`)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v", err)
	}
	// the state stays usable
	mustExec(t, b, `x = 1`)
}

func TestSnapshotsAreCopies(t *testing.T) {
	b := newTestBridge(t)
	var kept []int
	if err := b.Register("set_xs", func(xs []int) {
		kept = xs
	}); err != nil {
		t.Fatal(err)
	}

	xs := []int{1, 2}
	if _, err := b.Invoke("set_xs", xs); err != nil {
		t.Fatal(err)
	}
	xs[0] = 99
	if r := b.Ledger().Records()[0]; fmt.Sprint(r.Redo) != "[[1 2]]" {
		t.Fatalf("got %v", r.Redo)
	}
	last, err := b.LastExec("set_xs")
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(last) != "[[1 2]]" {
		t.Fatalf("got %v", last)
	}

	// the body keeps what undo handed it; changing it leaves history alone
	mustExec(t, b, `set_xs({3})`)
	if err := b.Undo(); err != nil {
		t.Fatal(err)
	}
	kept[0] = 42
	if err := b.Redo(); err != nil {
		t.Fatal(err)
	}
	if err := b.Undo(); err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(kept) != "[1 2]" {
		t.Fatalf("got %v", kept)
	}
}
