package marshals

import (
	"errors"
	"reflect"
	"testing"

	"github.com/reusee/tvk/faults"
	"github.com/reusee/tvk/instances"
	lua "github.com/yuin/gopher-lua"
)

type testArea int

func bindingFor[T any](t *testing.T, set *Set) Binding {
	t.Helper()
	b, err := set.For(reflect.TypeFor[T]())
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestScalarRoundTrip(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	set := NewSet()

	cases := []struct {
		name  string
		value any
		desc  string
		str   string
	}{
		{"int", 42, "int", "42"},
		{"int8", int8(-3), "int8", "-3"},
		{"uint", uint(7), "unsigned int", "7"},
		{"uint32", uint32(9), "unsigned int32", "9"},
		{"float32", float32(1.5), "float", "1.5"},
		{"float64", -5.25, "double", "-5.25"},
		{"bool", true, "bool", "true"},
		{"string", "Test", "string", `"Test"`},
		{"enum", testArea(2), "marshals.testArea", "2"},
		{"slice", []int{1, 2, 3}, "[]int", "{1, 2, 3}"},
		{"nested", [][]string{{"a"}, {"b", "c"}}, "[][]string", `{{"a"}, {"b", "c"}}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := reflect.ValueOf(c.value)
			b, err := set.For(v.Type())
			if err != nil {
				t.Fatal(err)
			}
			if d := b.Describe(); d != c.desc {
				t.Fatalf("got %s", d)
			}
			if s := b.Format(v); s != c.str {
				t.Fatalf("got %s", s)
			}
			Push(L, b, v)
			got, err := Get(L, b, -1)
			if err != nil {
				t.Fatal(err)
			}
			L.Pop(1)
			if !reflect.DeepEqual(got.Interface(), c.value) {
				t.Fatalf("got %#v", got.Interface())
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	set := NewSet()
	if v := bindingFor[int](t, set).Default().Interface(); v != 0 {
		t.Fatalf("got %v", v)
	}
	if v := bindingFor[string](t, set).Default().Interface(); v != "" {
		t.Fatalf("got %v", v)
	}
	if v := bindingFor[[]float64](t, set).Default(); v.Len() != 0 {
		t.Fatalf("got %v", v)
	}
}

func TestRejectWrongDynamicType(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	set := NewSet()

	cases := []struct {
		name string
		b    Binding
		lv   lua.LValue
	}{
		{"string as int", bindingFor[int](t, set), lua.LString("1")},
		{"number as string", bindingFor[string](t, set), lua.LNumber(1)},
		{"nil as bool", bindingFor[bool](t, set), lua.LNil},
		{"number as bool", bindingFor[bool](t, set), lua.LNumber(1)},
		{"number as sequence", bindingFor[[]int](t, set), lua.LNumber(1)},
		{"negative unsigned", bindingFor[uint](t, set), lua.LNumber(-1)},
		{"int8 overflow", bindingFor[int8](t, set), lua.LNumber(300)},
		{"string as table", bindingFor[Table](t, set), lua.LString("x")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.b.FromLua(L, c.lv)
			if !errors.Is(err, faults.ErrMarshalType) {
				t.Fatalf("got %v", err)
			}
		})
	}
}

func TestNumericNarrowing(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	v, err := bindingFor[int](t, NewSet()).FromLua(L, lua.LNumber(2.9))
	if err != nil {
		t.Fatal(err)
	}
	if v.Int() != 2 {
		t.Fatalf("got %v", v)
	}
	v, err = bindingFor[float32](t, NewSet()).FromLua(L, lua.LNumber(3))
	if err != nil {
		t.Fatal(err)
	}
	if v.Float() != 3 {
		t.Fatalf("got %v", v)
	}
}

func TestSequenceTruncatesAtGap(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	if err := L.DoString(`
		sparse = {[1] = 10, [3] = 30}
		reversed = {}
		reversed[2] = 2
		reversed[1] = 1
		bad = {1, "two", 3}
	`); err != nil {
		t.Fatal(err)
	}
	b := bindingFor[[]int](t, NewSet())

	v, err := b.FromLua(L, L.GetGlobal("sparse"))
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Interface().([]int); !reflect.DeepEqual(got, []int{10}) {
		t.Fatalf("got %v", got)
	}

	v, err = b.FromLua(L, L.GetGlobal("reversed"))
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Interface().([]int); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("got %v", got)
	}

	_, err = b.FromLua(L, L.GetGlobal("bad"))
	if !errors.Is(err, faults.ErrMarshalType) {
		t.Fatalf("got %v", err)
	}
}

func TestTablePassThrough(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	if err := L.DoString(`t = {a = 1}`); err != nil {
		t.Fatal(err)
	}
	b := bindingFor[Table](t, NewSet())
	v, err := b.FromLua(L, L.GetGlobal("t"))
	if err != nil {
		t.Fatal(err)
	}
	if b.ToLua(L, v) != L.GetGlobal("t") {
		t.Fatal("should be the same table")
	}
	if b.ToLua(L, b.Default()) != lua.LNil {
		t.Fatal()
	}
}

func TestPointerUserData(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	type payload struct{ n int }
	b := bindingFor[*payload](t, NewSet())

	p := &payload{n: 3}
	lv := b.ToLua(L, reflect.ValueOf(p))
	v, err := b.FromLua(L, lv)
	if err != nil {
		t.Fatal(err)
	}
	if v.Interface().(*payload) != p {
		t.Fatal()
	}

	other := L.NewUserData()
	other.Value = "not a payload"
	if _, err := b.FromLua(L, other); !errors.Is(err, faults.ErrMarshalType) {
		t.Fatalf("got %v", err)
	}

	v, err = b.FromLua(L, lua.LNil)
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsNil() {
		t.Fatal()
	}
}

func TestUnsupportedType(t *testing.T) {
	_, err := NewSet().For(reflect.TypeFor[map[string]int]())
	if !errors.Is(err, faults.ErrUnsupportedType) {
		t.Fatalf("got %v", err)
	}
	_, err = NewSet().For(reflect.TypeFor[[]chan int]())
	if !errors.Is(err, faults.ErrUnsupportedType) {
		t.Fatalf("got %v", err)
	}
}

func TestHandleBinding(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	registry := instances.NewRegistry()
	set := NewSet(HandleBinding(registry))
	b := bindingFor[instances.Handle](t, set)

	h := registry.Register("obj")
	root := L.NewTable()
	L.SetGlobal(InstancesTable, root)
	inst := L.NewTable()
	mt := L.NewTable()
	mt.RawSetString(IDField, lua.LNumber(h))
	L.SetMetatable(inst, mt)
	root.RawSetString(h.String(), inst)

	if lv := b.ToLua(L, reflect.ValueOf(h)); lv != inst {
		t.Fatalf("got %v", lv)
	}
	v, err := b.FromLua(L, inst)
	if err != nil {
		t.Fatal(err)
	}
	if v.Interface().(instances.Handle) != h {
		t.Fatalf("got %v", v)
	}

	// nil reads as the sentinel
	v, err = b.FromLua(L, lua.LNil)
	if err != nil {
		t.Fatal(err)
	}
	if v.Interface().(instances.Handle) != instances.Sentinel {
		t.Fatal()
	}

	// a retired instance reads as the sentinel and writes as a marker table
	registry.Retire(h)
	v, err = b.FromLua(L, inst)
	if err != nil {
		t.Fatal(err)
	}
	if v.Interface().(instances.Handle) != instances.Sentinel {
		t.Fatal()
	}
	marker, ok := b.ToLua(L, reflect.ValueOf(h)).(*lua.LTable)
	if !ok || marker.RawGetString(MarkerField) != lua.LTrue {
		t.Fatalf("got %v", marker)
	}
	v, err = b.FromLua(L, marker)
	if err != nil {
		t.Fatal(err)
	}
	if v.Interface().(instances.Handle) != instances.Sentinel {
		t.Fatal()
	}

	// plain tables are not instances
	if _, err := b.FromLua(L, L.NewTable()); !errors.Is(err, faults.ErrMarshalType) {
		t.Fatalf("got %v", err)
	}
}
