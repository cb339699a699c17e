package marshals

import (
	"reflect"

	"github.com/reusee/tvk/faults"
	"github.com/reusee/tvk/instances"
	lua "github.com/yuin/gopher-lua"
)

const (
	// InstancesTable is the global table holding one table per live instance.
	InstancesTable = "_instances"
	// MarkerField flags the empty table standing in for a missing instance.
	MarkerField = "_DefaultInstance_"
	// IDField holds the instance id in an instance table's metatable.
	IDField = "_instanceID_"
)

var handleType = reflect.TypeFor[instances.Handle]()

type handleBinding struct {
	registry *instances.Registry
}

var _ Binding = handleBinding{}

// HandleBinding resolves instance tables against registry.
func HandleBinding(registry *instances.Registry) Binding {
	return handleBinding{
		registry: registry,
	}
}

func (handleBinding) Type() reflect.Type {
	return handleType
}

func (handleBinding) Describe() string {
	return "LuaClass"
}

func (handleBinding) Default() reflect.Value {
	return reflect.ValueOf(instances.Sentinel)
}

func (b handleBinding) FromLua(L *lua.LState, lv lua.LValue) (reflect.Value, error) {
	if lv == lua.LNil {
		return reflect.ValueOf(instances.Sentinel), nil
	}
	tbl, ok := lv.(*lua.LTable)
	if !ok {
		return reflect.Value{}, mismatch(b, lv)
	}
	if tbl.RawGetString(MarkerField) != lua.LNil {
		return reflect.ValueOf(instances.Sentinel), nil
	}
	mt, ok := L.GetMetatable(tbl).(*lua.LTable)
	if !ok {
		return reflect.Value{}, faults.New(faults.KindMarshalType, "", "table is not a class instance")
	}
	id, ok := mt.RawGetString(IDField).(lua.LNumber)
	if !ok {
		return reflect.Value{}, faults.New(faults.KindMarshalType, "", "table is not a class instance")
	}
	return reflect.ValueOf(b.registry.Canonical(instances.Handle(id))), nil
}

func (b handleBinding) ToLua(L *lua.LState, v reflect.Value) lua.LValue {
	h := instances.Handle(v.Int())
	if b.registry.Live(h) {
		if root, ok := L.GetGlobal(InstancesTable).(*lua.LTable); ok {
			if tbl, ok := root.RawGetString(h.String()).(*lua.LTable); ok {
				return tbl
			}
		}
	}
	return MarkerTable(L)
}

func (handleBinding) Format(v reflect.Value) string {
	h := instances.Handle(v.Int())
	if h == instances.Sentinel {
		return "nil"
	}
	return InstancesTable + "." + h.String()
}

// MarkerTable builds the empty stand-in for a missing instance.
func MarkerTable(L *lua.LState) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString(MarkerField, lua.LTrue)
	return tbl
}
