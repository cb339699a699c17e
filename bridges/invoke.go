package bridges

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/reusee/tvk/faults"
	"github.com/reusee/tvk/ledgers"
	"github.com/reusee/tvk/marshals"
	lua "github.com/yuin/gopher-lua"
)

// luaFunction is the script side of a registered function.
// The entry is looked up on every call, so stale references fail cleanly after Unregister.
func (b *Bridge) luaFunction(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		f, ok := b.functions[name]
		if !ok {
			b.raise(L, faults.New(faults.KindUnknownFunction, name, "not registered"))
		}

		first := 1
		n := L.GetTop()
		if f.self != nil && n > 0 && L.Get(1) == f.self {
			// method called with a colon; obj.M(obj) must be written obj:M(obj)
			first = 2
			n--
		}
		if n != len(f.params) {
			b.raise(L, faults.New(faults.KindArity, name, "expecting %d arguments, got %d", len(f.params), n))
		}

		args := make([]reflect.Value, n)
		for i, binding := range f.params {
			v, err := marshals.Get(L, binding, first+i)
			if err != nil {
				b.raise(L, faults.WithSubject(err, fmt.Sprintf("%s argument %d", name, i+1)))
			}
			args[i] = v
		}

		ret, err := b.call(b.context(), f, args)
		if err != nil {
			b.raise(L, err)
		}
		if f.result == nil {
			return 0
		}
		marshals.Push(L, f.result, ret)
		return 1
	}
}

// Invoke calls a registered function from native code, exactly as a script call would.
// Arguments are converted to the parameter types with marshals.Coerce.
func (b *Bridge) Invoke(name string, args ...any) (any, error) {
	f, ok := b.functions[name]
	if !ok {
		return nil, faults.New(faults.KindUnknownFunction, name, "not registered")
	}
	if len(args) != len(f.params) {
		return nil, faults.New(faults.KindArity, name, "expecting %d arguments, got %d", len(f.params), len(args))
	}
	values := make([]reflect.Value, len(args))
	for i, arg := range args {
		v, err := marshals.Coerce(arg, f.params[i].Type())
		if err != nil {
			return nil, faults.WithSubject(err, fmt.Sprintf("%s argument %d", name, i+1))
		}
		values[i] = v
	}
	ret, err := b.call(b.context(), f, values)
	if err != nil {
		return nil, err
	}
	if !ret.IsValid() {
		return nil, nil
	}
	return ret.Interface(), nil
}

// Replay re-issues a recorded call for the ledger.
func (b *Bridge) Replay(name string, params []any) error {
	_, err := b.Invoke(name, params...)
	return err
}

// call runs the native body between the ledger's Begin and Commit.
func (b *Bridge) call(ctx context.Context, f *Function, args []reflect.Value) (reflect.Value, error) {
	var call *ledgers.Call
	if !f.exempt {
		c, err := b.ledger.Begin(f.name)
		if err != nil {
			b.logger.WarnContext(ctx, "nested call rejected",
				"function", f.name,
			)
			return reflect.Value{}, err
		}
		call = c
	}
	committed := false
	defer func() {
		if call != nil && !committed {
			call.Abort()
		}
	}()

	used := make([]reflect.Value, len(args))
	for i, arg := range args {
		used[i] = marshals.Detach(arg)
	}
	ret, err := f.run(args)
	if errors.Is(err, ErrNoChange) {
		return ret, nil
	} else if err != nil {
		return reflect.Value{}, err
	}

	if call != nil {
		call.Commit(values(f.lastExec), values(used), f.irreversible)
		committed = true
	}
	f.lastExec = used
	return ret, nil
}

func (f *Function) run(args []reflect.Value) (ret reflect.Value, err error) {
	outs := f.fn.Call(args)
	if f.result != nil {
		ret = outs[0]
	}
	if f.returnsError {
		if e := outs[len(outs)-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
	}
	return
}

func values(vs []reflect.Value) []any {
	ret := make([]any, len(vs))
	for i, v := range vs {
		ret[i] = marshals.Detach(v).Interface()
	}
	return ret
}
