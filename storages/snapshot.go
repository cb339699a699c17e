package storages

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("cbor enc mode: %w", err))
	}
	encMode = em
}

// snapshot is the stored form of a parameter list.
// Values that only make sense inside one Lua state are stored as nil and listed in Opaque.
type snapshot struct {
	Values []any `cbor:"1,keyasint"`
	Opaque []int `cbor:"2,keyasint,omitempty"`
}

func encodeParams(params []any) ([]byte, error) {
	if params == nil {
		return nil, nil
	}
	s := snapshot{
		Values: make([]any, len(params)),
	}
	for i, param := range params {
		if param == nil || portable(reflect.TypeOf(param)) {
			s.Values[i] = param
		} else {
			s.Opaque = append(s.Opaque, i)
		}
	}
	return encMode.Marshal(s)
}

func decodeParams(data []byte) (values []any, opaque []int, err error) {
	if len(data) == 0 {
		return nil, nil, nil
	}
	var s snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, nil, fmt.Errorf("decode params: %w", err)
	}
	if s.Values == nil {
		s.Values = []any{}
	}
	return s.Values, s.Opaque, nil
}

func portable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice:
		return portable(t.Elem())
	}
	return false
}
