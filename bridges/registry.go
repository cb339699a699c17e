package bridges

import (
	"slices"
	"strings"

	"github.com/reusee/tvk/faults"
	"github.com/reusee/tvk/instances"
	"github.com/reusee/tvk/marshals"
)

func (b *Bridge) function(name string) (*Function, error) {
	f, ok := b.functions[name]
	if !ok {
		return nil, faults.New(faults.KindUnknownFunction, name, "not registered")
	}
	return f, nil
}

func (b *Bridge) SetExempt(name string, exempt bool) error {
	f, err := b.function(name)
	if err != nil {
		return err
	}
	f.exempt = exempt
	return nil
}

// Unregister removes the function. Existing ledger records naming it fail to replay.
func (b *Bridge) Unregister(name string) error {
	if _, err := b.function(name); err != nil {
		return err
	}
	delete(b.functions, name)
	b.uninstall(name)
	b.logger.Debug("unregister", "function", name)
	return nil
}

// SetDefaults replaces the defaults and resets the last executed parameters to them.
func (b *Bridge) SetDefaults(name string, values ...any) error {
	f, err := b.function(name)
	if err != nil {
		return err
	}
	if values == nil {
		values = []any{}
	}
	return f.setDefaults(values)
}

func (b *Bridge) Defaults(name string) ([]any, error) {
	f, err := b.function(name)
	if err != nil {
		return nil, err
	}
	return values(f.defaults), nil
}

// LastExec returns the parameters of the most recent successful call,
// whether direct or replayed by undo or redo.
func (b *Bridge) LastExec(name string) ([]any, error) {
	f, err := b.function(name)
	if err != nil {
		return nil, err
	}
	return values(f.lastExec), nil
}

// Functions lists registered names in order.
func (b *Bridge) Functions() []string {
	names := make([]string, 0, len(b.functions))
	for name := range b.functions {
		if strings.HasPrefix(name, marshals.InstancesTable+".") {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Describe returns the doc string and the signature lines of a function.
func (b *Bridge) Describe(name string) (doc string, signature []string, err error) {
	f, err := b.function(name)
	if err != nil {
		return "", nil, err
	}
	signature = []string{
		f.Signature(),
		"default: " + f.format(f.defaults),
		"last exec: " + f.format(f.lastExec),
	}
	if f.exempt {
		signature = append(signature, "not recorded for undo")
	} else if f.irreversible {
		signature = append(signature, "cannot be undone")
	}
	return f.doc, signature, nil
}

func (b *Bridge) help(name string) (string, error) {
	doc, signature, err := b.Describe(name)
	if err != nil {
		return "", err
	}
	lines := signature
	if doc != "" {
		lines = append([]string{doc}, lines...)
	}
	return strings.Join(lines, "\n"), nil
}

func (b *Bridge) registerBuiltins() {
	b.mustRegister("provenance.undo", b.Undo,
		Doc("Undo the last recorded call."),
		Exempt(),
	)
	b.mustRegister("provenance.redo", b.Redo,
		Doc("Redo the last undone call."),
		Exempt(),
	)
	b.mustRegister("provenance.enable", b.ledger.SetEnabled,
		Doc("Turn recording on or off. Turning it off discards the history."),
		Defaults(true),
		Exempt(),
	)
	b.mustRegister("provenance.clear", b.ledger.Clear,
		Doc("Discard the history."),
		Exempt(),
	)
	b.mustRegister("provenance.enableReentryException", b.ledger.SetReentryException,
		Doc("Raise an error when a registered function calls another one."),
		Defaults(true),
		Exempt(),
	)
	b.mustRegister("provenance.cursor", b.ledger.Cursor,
		Doc("Number of calls that can be undone."),
		Exempt(),
	)
	b.mustRegister("provenance.size", b.ledger.Len,
		Doc("Number of recorded calls."),
		Exempt(),
	)
	b.mustRegister("help", b.help,
		Doc("Describe a registered function."),
		Exempt(),
	)
	b.mustRegister("deleteClass", b.deleteClass,
		Doc("Delete a class instance. Deletion cannot be undone."),
		Irreversible(),
	)
}

func (b *Bridge) deleteClass(h instances.Handle) error {
	if !b.instances.Live(h) {
		return ErrNoChange
	}
	b.retire(h)
	return nil
}
