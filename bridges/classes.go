package bridges

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/reusee/tvk/faults"
	"github.com/reusee/tvk/instances"
	"github.com/reusee/tvk/marshals"
	lua "github.com/yuin/gopher-lua"
)

var handleType = reflect.TypeFor[instances.Handle]()

// RegisterClass exposes ctor as name.new. ctor returns a pointer, optionally with an error.
// Every object it creates gets its exported methods registered as functions of its instance table.
// Construction itself is not recorded for undo; observers see it as a note.
func (b *Bridge) RegisterClass(name string, ctor any, doc string) error {
	ctorValue := reflect.ValueOf(ctor)
	if ctorValue.Kind() != reflect.Func || ctorValue.IsNil() {
		return faults.New(faults.KindUnsupportedType, name, "%T is not a constructor", ctor)
	}
	t := ctorValue.Type()
	if t.IsVariadic() {
		return faults.New(faults.KindUnsupportedType, name, "variadic constructors are not supported")
	}
	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return faults.New(faults.KindUnsupportedType, name, "constructor must return a pointer and optionally an error")
	}
	if t.Out(0).Kind() != reflect.Pointer {
		return faults.New(faults.KindUnsupportedType, name, "constructor returns %s, not a pointer", t.Out(0))
	}

	ins := make([]reflect.Type, t.NumIn())
	for i := range ins {
		ins[i] = t.In(i)
	}
	newFunc := reflect.MakeFunc(
		reflect.FuncOf(ins, []reflect.Type{handleType, errorType}, false),
		func(args []reflect.Value) []reflect.Value {
			outs := ctorValue.Call(args)
			if len(outs) == 2 && !outs[1].IsNil() {
				return handleResult(instances.Sentinel, outs[1].Interface().(error))
			}
			h, err := b.Expose(outs[0].Interface())
			if err == nil {
				b.ledger.Note(name+".new", values(args))
			}
			return handleResult(h, err)
		},
	)

	return b.Register(name+".new", newFunc.Interface(),
		Doc(doc),
		Exempt(),
	)
}

func handleResult(h instances.Handle, err error) []reflect.Value {
	errValue := reflect.Zero(errorType)
	if err != nil {
		errValue = reflect.ValueOf(&err).Elem()
	}
	return []reflect.Value{reflect.ValueOf(h), errValue}
}

// Expose registers obj as an instance and returns its handle.
// Methods with parameter types no binding supports are left out.
// Readers, methods taking nothing and returning a value, are not recorded for undo.
func (b *Bridge) Expose(obj any) (instances.Handle, error) {
	v := reflect.ValueOf(obj)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return instances.Sentinel, nil
	}

	h := b.instances.Register(obj)
	root, ok := b.L.GetGlobal(marshals.InstancesTable).(*lua.LTable)
	if !ok {
		root = b.L.NewTable()
		b.L.SetGlobal(marshals.InstancesTable, root)
	}
	tbl := b.L.NewTable()
	mt := b.L.NewTable()
	mt.RawSetString(marshals.IDField, lua.LNumber(h))
	b.L.SetMetatable(tbl, mt)
	root.RawSetString(h.String(), tbl)

	typeName := v.Type().String()
	if v.Kind() == reflect.Pointer {
		typeName = v.Type().Elem().Name()
	}
	var names []string
	for i := range v.NumMethod() {
		method := v.Type().Method(i)
		name := marshals.InstancesTable + "." + h.String() + "." + method.Name
		opts := []Option{
			Doc(typeName + "." + method.Name),
		}
		if isReader(v.Method(i).Type()) {
			opts = append(opts, Exempt())
		}
		err := b.Register(name, v.Method(i).Interface(), opts...)
		if errors.Is(err, faults.ErrUnsupportedType) || errors.Is(err, faults.ErrSignatureTooLarge) {
			b.logger.Debug("method not exposed",
				"type", typeName,
				"method", method.Name,
				"error", err,
			)
			continue
		} else if err != nil {
			b.methods[h] = names
			b.retire(h)
			return instances.Sentinel, fmt.Errorf("expose %s: %w", typeName, err)
		}
		b.functions[name].self = tbl
		names = append(names, name)
	}
	b.methods[h] = names

	b.logger.Debug("expose",
		"type", typeName,
		"handle", h.String(),
		"methods", len(names),
	)
	return h, nil
}

func isReader(t reflect.Type) bool {
	return t.NumIn() == 0 && t.NumOut() > 0 && t.Out(0) != errorType
}

// Instance returns the object behind h, nil for the sentinel and deleted objects.
func (b *Bridge) Instance(h instances.Handle) (any, error) {
	return b.instances.Resolve(h)
}

func (b *Bridge) retire(h instances.Handle) {
	for _, name := range b.methods[h] {
		delete(b.functions, name)
		b.uninstall(name)
	}
	delete(b.methods, h)
	if root, ok := b.L.GetGlobal(marshals.InstancesTable).(*lua.LTable); ok {
		root.RawSetString(h.String(), lua.LNil)
	}
	b.instances.Retire(h)
	b.logger.Debug("retire", "handle", h.String())
}
