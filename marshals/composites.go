package marshals

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/reusee/tvk/faults"
	lua "github.com/yuin/gopher-lua"
)

// Table passes a Lua table through to native code untouched.
type Table struct {
	*lua.LTable
}

var tableType = reflect.TypeFor[Table]()

type tableBinding struct{}

var _ Binding = tableBinding{}

func (tableBinding) Type() reflect.Type {
	return tableType
}

func (tableBinding) Describe() string {
	return "LuaTable"
}

func (tableBinding) Default() reflect.Value {
	return reflect.ValueOf(Table{})
}

func (b tableBinding) FromLua(L *lua.LState, lv lua.LValue) (reflect.Value, error) {
	t, ok := lv.(*lua.LTable)
	if !ok {
		return reflect.Value{}, mismatch(b, lv)
	}
	return reflect.ValueOf(Table{LTable: t}), nil
}

func (tableBinding) ToLua(L *lua.LState, v reflect.Value) lua.LValue {
	t := v.Interface().(Table)
	if t.LTable == nil {
		return lua.LNil
	}
	return t.LTable
}

func (tableBinding) Format(v reflect.Value) string {
	t := v.Interface().(Table)
	if t.LTable == nil {
		return "nil"
	}
	return fmt.Sprintf("table(%d)", t.Len())
}

// sequenceBinding maps slices to tables keyed 1..n.
type sequenceBinding struct {
	t    reflect.Type
	elem Binding
}

var _ Binding = sequenceBinding{}

func (b sequenceBinding) Type() reflect.Type {
	return b.t
}

func (b sequenceBinding) Describe() string {
	return "[]" + b.elem.Describe()
}

func (b sequenceBinding) Default() reflect.Value {
	return reflect.MakeSlice(b.t, 0, 0)
}

// FromLua stops at the first missing key; a sparse table yields its contiguous prefix.
func (b sequenceBinding) FromLua(L *lua.LState, lv lua.LValue) (reflect.Value, error) {
	tbl, ok := lv.(*lua.LTable)
	if !ok {
		return reflect.Value{}, mismatch(b, lv)
	}
	ret := reflect.MakeSlice(b.t, 0, tbl.Len())
	for i := 1; ; i++ {
		elem := tbl.RawGet(lua.LNumber(i))
		if elem == lua.LNil {
			break
		}
		v, err := b.elem.FromLua(L, elem)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		ret = reflect.Append(ret, v)
	}
	return ret, nil
}

func (b sequenceBinding) ToLua(L *lua.LState, v reflect.Value) lua.LValue {
	tbl := L.NewTable()
	for i := range v.Len() {
		tbl.RawSetInt(i+1, b.elem.ToLua(L, v.Index(i)))
	}
	return tbl
}

func (b sequenceBinding) Format(v reflect.Value) string {
	var sb strings.Builder
	sb.WriteString("{")
	for i := range v.Len() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.elem.Format(v.Index(i)))
	}
	sb.WriteString("}")
	return sb.String()
}

// pointerBinding carries native pointers through Lua as userdata.
type pointerBinding struct {
	t reflect.Type
}

var _ Binding = pointerBinding{}

func (b pointerBinding) Type() reflect.Type {
	return b.t
}

func (b pointerBinding) Describe() string {
	return b.t.String()
}

func (b pointerBinding) Default() reflect.Value {
	return reflect.Zero(b.t)
}

func (b pointerBinding) FromLua(L *lua.LState, lv lua.LValue) (reflect.Value, error) {
	if lv == lua.LNil {
		return reflect.Zero(b.t), nil
	}
	ud, ok := lv.(*lua.LUserData)
	if !ok {
		return reflect.Value{}, mismatch(b, lv)
	}
	v := reflect.ValueOf(ud.Value)
	if !v.IsValid() || v.Type() != b.t {
		return reflect.Value{}, faults.New(faults.KindMarshalType, "", "expecting userdata of %s, got %T", b.t, ud.Value)
	}
	return v, nil
}

func (b pointerBinding) ToLua(L *lua.LState, v reflect.Value) lua.LValue {
	if v.IsNil() {
		return lua.LNil
	}
	ud := L.NewUserData()
	ud.Value = v.Interface()
	return ud
}

func (b pointerBinding) Format(v reflect.Value) string {
	if v.IsNil() {
		return "nil"
	}
	return "userdata(" + b.t.String() + ")"
}
