package bridges

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/reusee/tvk/faults"
	"github.com/reusee/tvk/marshals"
	lua "github.com/yuin/gopher-lua"
)

// ErrNoChange is returned by a native function that did nothing.
// The call succeeds, but leaves no provenance record and keeps the last executed parameters.
var ErrNoChange = errors.New("no change")

// Function is one registered entry.
type Function struct {
	name         string
	doc          string
	fn           reflect.Value
	params       []marshals.Binding
	result       marshals.Binding
	returnsError bool
	defaults     []reflect.Value
	lastExec     []reflect.Value
	exempt       bool
	irreversible bool
	// self is the instance table of a method, which may be passed as a leading argument
	self *lua.LTable
}

type Option func(*options)

type options struct {
	doc          string
	defaults     []any
	exempt       bool
	irreversible bool
}

func Doc(doc string) Option {
	return func(o *options) {
		o.doc = doc
	}
}

// Defaults sets the initial parameter values, one per parameter.
func Defaults(values ...any) Option {
	return func(o *options) {
		o.defaults = values
	}
}

// Exempt keeps calls of the function out of the provenance ledger.
func Exempt() Option {
	return func(o *options) {
		o.exempt = true
	}
}

// Irreversible records calls without an undo snapshot. Undoing such a record does nothing.
func Irreversible() Option {
	return func(o *options) {
		o.irreversible = true
	}
}

var errorType = reflect.TypeFor[error]()

// Register exposes fn under name. Dotted names live in nested tables.
// fn may return nothing, a value, an error, or a value and an error.
func (b *Bridge) Register(name string, fn any, opts ...Option) error {
	if _, ok := b.functions[name]; ok {
		return faults.New(faults.KindDuplicateName, name, "already registered")
	}
	f, err := b.newFunction(name, fn, opts)
	if err != nil {
		return err
	}
	if err := b.install(name, b.L.NewFunction(b.luaFunction(name))); err != nil {
		return err
	}
	b.functions[name] = f
	b.logger.Debug("register",
		"function", name,
		"signature", f.Signature(),
	)
	return nil
}

func (b *Bridge) mustRegister(name string, fn any, opts ...Option) {
	if err := b.Register(name, fn, opts...); err != nil {
		panic(err)
	}
}

func (b *Bridge) newFunction(name string, fn any, opts []Option) (*Function, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	fnValue := reflect.ValueOf(fn)
	if fnValue.Kind() != reflect.Func || fnValue.IsNil() {
		return nil, faults.New(faults.KindUnsupportedType, name, "%T is not a function", fn)
	}
	t := fnValue.Type()
	if t.IsVariadic() {
		return nil, faults.New(faults.KindUnsupportedType, name, "variadic functions are not supported")
	}
	if t.NumIn() > b.maxParams {
		return nil, faults.New(faults.KindSignatureTooLarge, name, "%d parameters, at most %d", t.NumIn(), b.maxParams)
	}

	f := &Function{
		name:         name,
		doc:          o.doc,
		fn:           fnValue,
		exempt:       o.exempt,
		irreversible: o.irreversible,
	}

	for i := range t.NumIn() {
		binding, err := b.bindings.For(t.In(i))
		if err != nil {
			return nil, faults.WithSubject(err, fmt.Sprintf("%s parameter %d", name, i+1))
		}
		f.params = append(f.params, binding)
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) == errorType {
			f.returnsError = true
		} else {
			binding, err := b.bindings.For(t.Out(0))
			if err != nil {
				return nil, faults.WithSubject(err, name+" result")
			}
			f.result = binding
		}
	case 2:
		if t.Out(1) != errorType {
			return nil, faults.New(faults.KindUnsupportedType, name, "second result must be error")
		}
		binding, err := b.bindings.For(t.Out(0))
		if err != nil {
			return nil, faults.WithSubject(err, name+" result")
		}
		f.result = binding
		f.returnsError = true
	default:
		return nil, faults.New(faults.KindUnsupportedType, name, "at most two results")
	}

	if err := f.setDefaults(o.defaults); err != nil {
		return nil, err
	}
	return f, nil
}

// setDefaults resets both the defaults and the last executed parameters.
func (f *Function) setDefaults(values []any) error {
	defaults := make([]reflect.Value, len(f.params))
	if values == nil {
		for i, binding := range f.params {
			defaults[i] = binding.Default()
		}
	} else {
		if len(values) != len(f.params) {
			return faults.New(faults.KindArity, f.name, "%d defaults for %d parameters", len(values), len(f.params))
		}
		for i, binding := range f.params {
			v, err := marshals.Coerce(values[i], binding.Type())
			if err != nil {
				return faults.WithSubject(err, fmt.Sprintf("%s default %d", f.name, i+1))
			}
			defaults[i] = v
		}
	}
	f.defaults = defaults
	f.lastExec = slices.Clone(defaults)
	return nil
}

func (f *Function) Name() string {
	return f.name
}

func (f *Function) Doc() string {
	return f.doc
}

func (f *Function) Exempt() bool {
	return f.exempt
}

// Signature renders the function like a C declaration, e.g. "void set_i1(int)".
func (f *Function) Signature() string {
	var b strings.Builder
	if f.result != nil {
		b.WriteString(f.result.Describe())
	} else {
		b.WriteString("void")
	}
	b.WriteString(" ")
	b.WriteString(f.name)
	b.WriteString("(")
	for i, binding := range f.params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(binding.Describe())
	}
	b.WriteString(")")
	return b.String()
}

// format renders a call of f with values, e.g. `set_s1("Test")`.
func (f *Function) format(values []reflect.Value) string {
	var b strings.Builder
	b.WriteString(f.name)
	b.WriteString("(")
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.params[i].Format(v))
	}
	b.WriteString(")")
	return b.String()
}

// install stores lv under a dotted name, creating intermediate tables.
func (b *Bridge) install(name string, lv lua.LValue) error {
	parts := strings.Split(name, ".")
	if slices.Contains(parts, "") {
		return faults.New(faults.KindUnknownFunction, name, "invalid name")
	}
	tbl := b.L.G.Global
	for _, part := range parts[:len(parts)-1] {
		switch next := tbl.RawGetString(part).(type) {
		case *lua.LTable:
			tbl = next
		case *lua.LNilType:
			created := b.L.NewTable()
			tbl.RawSetString(part, created)
			tbl = created
		default:
			return faults.New(faults.KindDuplicateName, name, "%s is a %s, not a table", part, next.Type())
		}
	}
	tbl.RawSetString(parts[len(parts)-1], lv)
	return nil
}

// uninstall removes the value under name. Intermediate tables are kept.
func (b *Bridge) uninstall(name string) {
	parts := strings.Split(name, ".")
	tbl := b.L.G.Global
	for _, part := range parts[:len(parts)-1] {
		next, ok := tbl.RawGetString(part).(*lua.LTable)
		if !ok {
			return
		}
		tbl = next
	}
	tbl.RawSetString(parts[len(parts)-1], lua.LNil)
}
