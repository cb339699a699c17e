package configs

import (
	"errors"
	"fmt"
	"iter"
)

// First returns the value at path in the most specific file, or the zero value.
// Invalid files and undecodable values panic; configs are read while building scopes.
func First[T any](loader Loader, path string) (ret T) {
	err := loader.AssignFirst(path, &ret)
	if errors.Is(err, ErrValueNotFound) {
		return
	}
	if err != nil {
		panic(fmt.Errorf("config %s: %w", path, err))
	}
	return
}

// All yields the value at path from every file that sets it.
func All[T any](loader Loader, path string) iter.Seq[T] {
	return func(yield func(T) bool) {
		for value, err := range loader.IterCueValues(path) {
			if err != nil {
				panic(fmt.Errorf("config %s: %w", path, err))
			}
			var v T
			if err := value.Decode(&v); err != nil {
				panic(fmt.Errorf("config %s in %s: %w", path, value.Pos().Filename(), err))
			}
			if !yield(v) {
				return
			}
		}
	}
}
