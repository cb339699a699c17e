package debugs

import (
	"fmt"
	"strings"

	"github.com/reusee/tvk/bridges"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Globals exposes the bridge state to starlark.
func Globals(b *bridges.Bridge) starlark.StringDict {
	return starlark.StringDict{

		"history": starlark.NewBuiltin("history", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			cursor := b.Ledger().Cursor()
			records := b.Ledger().Records()
			list := make([]starlark.Value, 0, len(records))
			for i, record := range records {
				d := starlark.NewDict(5)
				d.SetKey(starlark.String("name"), starlark.String(record.Name))
				d.SetKey(starlark.String("undo"), toStarlarkValue(record.Undo))
				d.SetKey(starlark.String("redo"), toStarlarkValue(record.Redo))
				d.SetKey(starlark.String("irreversible"), starlark.Bool(record.Irreversible))
				d.SetKey(starlark.String("current"), starlark.Bool(i == cursor-1))
				list = append(list, d)
			}
			return starlark.NewList(list), nil
		}),

		"functions": starlark.NewBuiltin("functions", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			return toStarlarkValue(b.Functions()), nil
		}),

		"describe": starlark.NewBuiltin("describe", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var name string
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &name); err != nil {
				return nil, err
			}
			doc, signature, err := b.Describe(name)
			if err != nil {
				return nil, err
			}
			lines := append([]string{doc}, signature...)
			return starlark.String(strings.Join(lines, "\n")), nil
		}),

		"undo": starlark.NewBuiltin("undo", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			return starlark.None, b.Undo()
		}),

		"redo": starlark.NewBuiltin("redo", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			return starlark.None, b.Redo()
		}),

		"cursor": starlark.NewBuiltin("cursor", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			return starlark.MakeInt(b.Ledger().Cursor()), nil
		}),
	}
}

// Eval evaluates a starlark expression against the bridge and returns its printed form.
func Eval(b *bridges.Bridge, src string) (string, error) {
	thread := &starlark.Thread{
		Name: "inspect",
	}
	v, err := starlark.EvalOptions(&syntax.FileOptions{}, thread, "<inspect>", src, Globals(b))
	if err != nil {
		return "", fmt.Errorf("inspect: %w", err)
	}
	if s, ok := v.(starlark.String); ok {
		return string(s), nil
	}
	return v.String(), nil
}
