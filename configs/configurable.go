package configs

import (
	"cmp"
	"reflect"
	"slices"

	"github.com/reusee/dscope"
)

// Configurable is implemented by typed config values provided in a scope.
type Configurable interface {
	ConfigKey() string
}

var configurableType = reflect.TypeFor[Configurable]()

// Values resolves every Configurable type defined in scope, ordered by key.
func Values(scope dscope.Scope) []Configurable {
	var types []reflect.Type
	for t := range scope.AllTypes() {
		if t.Kind() != reflect.Interface && t.Implements(configurableType) {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		return nil
	}

	var ret []Configurable
	fn := reflect.MakeFunc(
		reflect.FuncOf(types, nil, false),
		func(args []reflect.Value) []reflect.Value {
			for _, arg := range args {
				ret = append(ret, arg.Interface().(Configurable))
			}
			return nil
		},
	)
	scope.Call(fn.Interface())

	slices.SortFunc(ret, func(a, b Configurable) int {
		return cmp.Compare(a.ConfigKey(), b.ConfigKey())
	})
	return ret
}
