package marshals

import (
	"reflect"

	"github.com/reusee/tvk/faults"
	lua "github.com/yuin/gopher-lua"
)

// Binding converts values of one native type to and from Lua values.
type Binding interface {
	Type() reflect.Type
	Describe() string
	Default() reflect.Value
	FromLua(L *lua.LState, lv lua.LValue) (reflect.Value, error)
	ToLua(L *lua.LState, v reflect.Value) lua.LValue
	Format(v reflect.Value) string
}

// Get reads the value at stack position pos.
func Get(L *lua.LState, b Binding, pos int) (reflect.Value, error) {
	return b.FromLua(L, L.Get(pos))
}

// Push pushes v on top of the stack.
func Push(L *lua.LState, b Binding, v reflect.Value) {
	L.Push(b.ToLua(L, v))
}

func mismatch(b Binding, lv lua.LValue) error {
	return faults.New(faults.KindMarshalType, "", "expecting %s, got %s", b.Describe(), lv.Type().String())
}
