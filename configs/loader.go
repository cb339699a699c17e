package configs

import (
	"fmt"
	"iter"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Loader reads CUE files on first use. Each file is validated on its own
// against the schema, and lookups visit files in the order given.
type Loader struct {
	roots func() ([]root, error)
}

type root struct {
	path  string
	value cue.Value
}

func NewLoader(paths []string, schema string) Loader {
	return Loader{
		roots: sync.OnceValues(func() ([]root, error) {
			return load(paths, schema)
		}),
	}
}

func load(paths []string, schemaSrc string) ([]root, error) {
	ctx := cuecontext.New()

	var schema cue.Value
	if schemaSrc != "" {
		schema = ctx.CompileString("close({"+schemaSrc+"})", cue.Filename("schema.cue"))
		if err := schema.Err(); err != nil {
			return nil, fmt.Errorf("compile schema: %w", err)
		}
	}

	roots := make([]root, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		value := ctx.CompileBytes(content, cue.Filename(path))
		if err := value.Err(); err != nil {
			return nil, fmt.Errorf("compile %s: %w", path, err)
		}
		if schema.Exists() {
			if err := schema.Unify(value).Validate(); err != nil {
				return nil, fmt.Errorf("validate %s: %w", path, err)
			}
		}
		roots = append(roots, root{
			path:  path,
			value: value,
		})
	}
	return roots, nil
}

// IterCueValues yields the value at path from every file defining it.
// A load failure is yielded once as the only item.
func (l Loader) IterCueValues(path string) iter.Seq2[*cue.Value, error] {
	return func(yield func(*cue.Value, error) bool) {
		roots, err := l.roots()
		if err != nil {
			yield(nil, err)
			return
		}
		cuePath := cue.ParsePath(path)
		for _, r := range roots {
			value := r.value.LookupPath(cuePath)
			if !value.Exists() || value.Err() != nil {
				continue
			}
			if !yield(&value, nil) {
				return
			}
		}
	}
}

// Paths lists the loaded files.
func (l Loader) Paths() ([]string, error) {
	roots, err := l.roots()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(roots))
	for _, r := range roots {
		paths = append(paths, r.path)
	}
	return paths, nil
}

// AssignFirst decodes the first value found at path into target.
func (l Loader) AssignFirst(path string, target any) error {
	for value, err := range l.IterCueValues(path) {
		if err != nil {
			return err
		}
		if err := value.Decode(target); err != nil {
			return fmt.Errorf("decode %s in %s: %w", path, value.Pos().Filename(), err)
		}
		return nil
	}
	return ErrValueNotFound
}
