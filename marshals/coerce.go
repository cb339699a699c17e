package marshals

import (
	"math"
	"reflect"

	"github.com/reusee/tvk/faults"
)

// Coerce converts a native value to t with the same strictness as the Lua side:
// numbers convert between numeric kinds (truncating toward zero, failing on
// overflow), slices convert element-wise, and nothing converts between strings,
// numbers and bools.
func Coerce(v any, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Interface:
			return out, nil
		}
		if t == tableType || t == handleType {
			return out, nil
		}
		return reflect.Value{}, faults.New(faults.KindMarshalType, "", "expecting %s, got nil", t)
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		out.Set(Detach(rv))
		return out, nil
	}

	switch {

	case isNumeric(rv.Kind()) && isNumeric(t.Kind()):
		if err := setNumber(out, rv); err != nil {
			return reflect.Value{}, err
		}
		return out, nil

	case rv.Kind() == reflect.Bool && t.Kind() == reflect.Bool:
		out.SetBool(rv.Bool())
		return out, nil

	case rv.Kind() == reflect.String && t.Kind() == reflect.String:
		out.SetString(rv.String())
		return out, nil

	case rv.Kind() == reflect.Slice && t.Kind() == reflect.Slice:
		out = reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := range rv.Len() {
			elem, err := Coerce(rv.Index(i).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, faults.New(faults.KindMarshalType, "", "element %d: %s", i+1, err.(*faults.Error).Detail)
			}
			out.Index(i).Set(elem)
		}
		return out, nil

	}

	return reflect.Value{}, faults.New(faults.KindMarshalType, "", "expecting %s, got %T", t, v)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func setNumber(out, rv reflect.Value) error {
	var f float64
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(rv.Int())
		if out.CanInt() {
			if out.OverflowInt(rv.Int()) {
				return overflow(out, rv)
			}
			out.SetInt(rv.Int())
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f = float64(rv.Uint())
		if out.CanUint() {
			if out.OverflowUint(rv.Uint()) {
				return overflow(out, rv)
			}
			out.SetUint(rv.Uint())
			return nil
		}
	default:
		f = rv.Float()
	}

	switch out.Kind() {
	case reflect.Float32, reflect.Float64:
		if out.OverflowFloat(f) {
			return overflow(out, rv)
		}
		out.SetFloat(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = math.Trunc(f)
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 || out.OverflowInt(int64(f)) {
			return overflow(out, rv)
		}
		out.SetInt(int64(f))
	default:
		f = math.Trunc(f)
		if math.IsNaN(f) || f < 0 || f >= math.MaxUint64 || out.OverflowUint(uint64(f)) {
			return overflow(out, rv)
		}
		out.SetUint(uint64(f))
	}
	return nil
}

func overflow(out, rv reflect.Value) error {
	return faults.New(faults.KindMarshalType, "", "%v overflows %s", rv.Interface(), out.Type())
}

// Detach copies slices, nested ones included, so the result shares no memory with v.
// Other values are returned as is.
func Detach(v reflect.Value) reflect.Value {
	if v.Kind() != reflect.Slice || v.IsNil() {
		return v
	}
	out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
	for i := range v.Len() {
		out.Index(i).Set(Detach(v.Index(i)))
	}
	return out
}
