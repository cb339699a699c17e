package marshals

import (
	"reflect"

	"github.com/reusee/tvk/faults"
)

// Set selects bindings by static type.
// Explicitly added bindings take precedence over the built-in kinds.
type Set struct {
	bindings map[reflect.Type]Binding
}

func NewSet(bindings ...Binding) *Set {
	s := &Set{
		bindings: make(map[reflect.Type]Binding),
	}
	for _, b := range bindings {
		s.Add(b)
	}
	return s
}

func (s *Set) Add(b Binding) {
	s.bindings[b.Type()] = b
}

func (s *Set) For(t reflect.Type) (Binding, error) {
	if b, ok := s.bindings[t]; ok {
		return b, nil
	}
	if t == tableType {
		return tableBinding{}, nil
	}

	switch t.Kind() {

	case reflect.Bool:
		return boolBinding{t: t}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intBinding{t: t}, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return uintBinding{t: t}, nil

	case reflect.Float32, reflect.Float64:
		return floatBinding{t: t}, nil

	case reflect.String:
		return stringBinding{t: t}, nil

	case reflect.Slice:
		elem, err := s.For(t.Elem())
		if err != nil {
			return nil, err
		}
		return sequenceBinding{
			t:    t,
			elem: elem,
		}, nil

	case reflect.Pointer:
		return pointerBinding{t: t}, nil

	}

	return nil, faults.New(faults.KindUnsupportedType, t.String(), "no binding for kind %s", t.Kind())
}
