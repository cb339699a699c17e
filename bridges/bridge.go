package bridges

import (
	"context"
	"errors"

	"github.com/reusee/tvk/instances"
	"github.com/reusee/tvk/ledgers"
	"github.com/reusee/tvk/logs"
	"github.com/reusee/tvk/marshals"
	lua "github.com/yuin/gopher-lua"
)

// Bridge exposes native functions to a Lua state and records their calls for undo and redo.
// A Bridge is not safe for concurrent use; every call runs on the goroutine driving the Lua state.
type Bridge struct {
	L         *lua.LState
	logger    logs.Logger
	bindings  *marshals.Set
	instances *instances.Registry
	ledger    *ledgers.Ledger
	functions map[string]*Function
	maxParams int
	// methods registered for each exposed object
	methods map[instances.Handle][]string
}

var _ ledgers.Replayer = new(Bridge)

func New(logger logs.Logger, maxParams int) *Bridge {
	b := &Bridge{
		L:         lua.NewState(),
		logger:    logger,
		instances: instances.NewRegistry(),
		functions: make(map[string]*Function),
		maxParams: maxParams,
		methods:   make(map[instances.Handle][]string),
	}
	b.bindings = marshals.NewSet(marshals.HandleBinding(b.instances))
	b.ledger = ledgers.New(b)
	b.ledger.Observe(b.logEvent)

	errorMetatable := b.L.NewTypeMetatable(errorTypeName)
	errorMetatable.RawSetString("__tostring", b.L.NewFunction(func(L *lua.LState) int {
		ud := L.CheckUserData(1)
		if err, ok := ud.Value.(error); ok {
			L.Push(lua.LString(err.Error()))
		} else {
			L.Push(lua.LString("error"))
		}
		return 1
	}))
	b.L.SetGlobal(marshals.InstancesTable, b.L.NewTable())

	b.registerBuiltins()
	return b
}

func (b *Bridge) Close() {
	b.L.Close()
}

func (b *Bridge) Ledger() *ledgers.Ledger {
	return b.ledger
}

func (b *Bridge) Instances() *instances.Registry {
	return b.instances
}

// Exec runs a Lua chunk. Errors raised by registered functions are returned as they were produced.
func (b *Bridge) Exec(ctx context.Context, src string) error {
	return b.exec(ctx, func() error {
		return b.L.DoString(src)
	})
}

func (b *Bridge) ExecFile(ctx context.Context, path string) error {
	return b.exec(ctx, func() error {
		return b.L.DoFile(path)
	})
}

func (b *Bridge) exec(ctx context.Context, fn func() error) error {
	// chunks may nest when a native body runs script code
	prev := b.L.Context()
	b.L.SetContext(ctx)
	defer func() {
		if prev != nil {
			b.L.SetContext(prev)
		} else {
			b.L.RemoveContext()
		}
	}()
	if err := fn(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return unwrapLuaError(err)
	}
	return nil
}

func (b *Bridge) context() context.Context {
	if ctx := b.L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

const errorTypeName = "tvk.error"

// raise aborts the running Lua function with err as a userdata value, so Exec can return err itself.
func (b *Bridge) raise(L *lua.LState, err error) {
	ud := L.NewUserData()
	ud.Value = err
	L.SetMetatable(ud, L.GetTypeMetatable(errorTypeName))
	L.Error(ud, 1)
}

func unwrapLuaError(err error) error {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		if ud, ok := apiErr.Object.(*lua.LUserData); ok {
			if e, ok := ud.Value.(error); ok {
				return e
			}
		}
	}
	return err
}

func (b *Bridge) Undo() error {
	return b.ledger.Undo()
}

func (b *Bridge) Redo() error {
	return b.ledger.Redo()
}

func (b *Bridge) Clear() {
	b.ledger.Clear()
}

func (b *Bridge) logEvent(ev ledgers.Event) {
	ctx := b.context()
	switch ev.Kind {
	case ledgers.EventLogged:
		b.logger.DebugContext(ctx, "provenance",
			"function", ev.Record.Name,
			"cursor", ev.Cursor,
		)
	case ledgers.EventUndone, ledgers.EventRedone:
		b.logger.InfoContext(ctx, ev.Kind.String(),
			"function", ev.Record.Name,
			"cursor", ev.Cursor,
		)
	case ledgers.EventCleared:
		b.logger.InfoContext(ctx, "provenance cleared")
	}
}
