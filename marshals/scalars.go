package marshals

import (
	"math"
	"reflect"
	"strconv"

	"github.com/reusee/tvk/faults"
	lua "github.com/yuin/gopher-lua"
)

// typeName uses the declared name for named types, so enums describe as themselves.
func typeName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.String()
	}
	return t.Kind().String()
}

type boolBinding struct {
	t reflect.Type
}

var _ Binding = boolBinding{}

func (b boolBinding) Type() reflect.Type {
	return b.t
}

func (b boolBinding) Describe() string {
	return typeName(b.t)
}

func (b boolBinding) Default() reflect.Value {
	return reflect.Zero(b.t)
}

func (b boolBinding) FromLua(L *lua.LState, lv lua.LValue) (reflect.Value, error) {
	v, ok := lv.(lua.LBool)
	if !ok {
		return reflect.Value{}, mismatch(b, lv)
	}
	ret := reflect.New(b.t).Elem()
	ret.SetBool(bool(v))
	return ret, nil
}

func (b boolBinding) ToLua(L *lua.LState, v reflect.Value) lua.LValue {
	return lua.LBool(v.Bool())
}

func (b boolBinding) Format(v reflect.Value) string {
	return strconv.FormatBool(v.Bool())
}

type intBinding struct {
	t reflect.Type
}

var _ Binding = intBinding{}

func (b intBinding) Type() reflect.Type {
	return b.t
}

func (b intBinding) Describe() string {
	return typeName(b.t)
}

func (b intBinding) Default() reflect.Value {
	return reflect.Zero(b.t)
}

func (b intBinding) FromLua(L *lua.LState, lv lua.LValue) (reflect.Value, error) {
	n, ok := lv.(lua.LNumber)
	if !ok {
		return reflect.Value{}, mismatch(b, lv)
	}
	f := math.Trunc(float64(n))
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return reflect.Value{}, faults.New(faults.KindMarshalType, "", "%v out of range for %s", n, b.Describe())
	}
	ret := reflect.New(b.t).Elem()
	i := int64(f)
	if ret.OverflowInt(i) {
		return reflect.Value{}, faults.New(faults.KindMarshalType, "", "%v out of range for %s", n, b.Describe())
	}
	ret.SetInt(i)
	return ret, nil
}

func (b intBinding) ToLua(L *lua.LState, v reflect.Value) lua.LValue {
	return lua.LNumber(v.Int())
}

func (b intBinding) Format(v reflect.Value) string {
	return strconv.FormatInt(v.Int(), 10)
}

type uintBinding struct {
	t reflect.Type
}

var _ Binding = uintBinding{}

func (b uintBinding) Type() reflect.Type {
	return b.t
}

func (b uintBinding) Describe() string {
	if b.t.Name() != "" && b.t.PkgPath() != "" {
		return b.t.String()
	}
	return "unsigned " + b.t.Kind().String()[1:]
}

func (b uintBinding) Default() reflect.Value {
	return reflect.Zero(b.t)
}

func (b uintBinding) FromLua(L *lua.LState, lv lua.LValue) (reflect.Value, error) {
	n, ok := lv.(lua.LNumber)
	if !ok {
		return reflect.Value{}, mismatch(b, lv)
	}
	f := math.Trunc(float64(n))
	if math.IsNaN(f) || f < 0 || f >= math.MaxUint64 {
		return reflect.Value{}, faults.New(faults.KindMarshalType, "", "%v out of range for %s", n, b.Describe())
	}
	ret := reflect.New(b.t).Elem()
	u := uint64(f)
	if ret.OverflowUint(u) {
		return reflect.Value{}, faults.New(faults.KindMarshalType, "", "%v out of range for %s", n, b.Describe())
	}
	ret.SetUint(u)
	return ret, nil
}

func (b uintBinding) ToLua(L *lua.LState, v reflect.Value) lua.LValue {
	return lua.LNumber(v.Uint())
}

func (b uintBinding) Format(v reflect.Value) string {
	return strconv.FormatUint(v.Uint(), 10)
}

type floatBinding struct {
	t reflect.Type
}

var _ Binding = floatBinding{}

func (b floatBinding) Type() reflect.Type {
	return b.t
}

func (b floatBinding) Describe() string {
	if b.t.Name() != "" && b.t.PkgPath() != "" {
		return b.t.String()
	}
	if b.t.Kind() == reflect.Float32 {
		return "float"
	}
	return "double"
}

func (b floatBinding) Default() reflect.Value {
	return reflect.Zero(b.t)
}

func (b floatBinding) FromLua(L *lua.LState, lv lua.LValue) (reflect.Value, error) {
	n, ok := lv.(lua.LNumber)
	if !ok {
		return reflect.Value{}, mismatch(b, lv)
	}
	ret := reflect.New(b.t).Elem()
	ret.SetFloat(float64(n))
	return ret, nil
}

func (b floatBinding) ToLua(L *lua.LState, v reflect.Value) lua.LValue {
	return lua.LNumber(v.Float())
}

func (b floatBinding) Format(v reflect.Value) string {
	return strconv.FormatFloat(v.Float(), 'g', -1, b.t.Bits())
}

type stringBinding struct {
	t reflect.Type
}

var _ Binding = stringBinding{}

func (b stringBinding) Type() reflect.Type {
	return b.t
}

func (b stringBinding) Describe() string {
	return typeName(b.t)
}

func (b stringBinding) Default() reflect.Value {
	return reflect.Zero(b.t)
}

func (b stringBinding) FromLua(L *lua.LState, lv lua.LValue) (reflect.Value, error) {
	s, ok := lv.(lua.LString)
	if !ok {
		return reflect.Value{}, mismatch(b, lv)
	}
	ret := reflect.New(b.t).Elem()
	ret.SetString(string(s))
	return ret, nil
}

func (b stringBinding) ToLua(L *lua.LState, v reflect.Value) lua.LValue {
	return lua.LString(v.String())
}

func (b stringBinding) Format(v reflect.Value) string {
	return strconv.Quote(v.String())
}
