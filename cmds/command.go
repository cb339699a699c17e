package cmds

import (
	"fmt"
	"reflect"
)

// Command is a word on the command line: a function consuming the following
// words as arguments, or a set of sub commands made visible once it is seen.
type Command struct {
	Func        reflect.Value
	Subs        map[string]*Command
	Description string
	Aliases     []string
}

func (c *Command) Desc(desc string) *Command {
	c.Description = desc
	return c
}

func (c *Command) Alias(names ...string) *Command {
	c.Aliases = append(c.Aliases, names...)
	return c
}

// Func wraps fn as a command. Parameter types are checked here so a bad
// definition fails at init instead of when the word is used.
func Func(fn any) *Command {
	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()
	if fnType.Kind() != reflect.Func {
		panic(fmt.Errorf("command must be a function, got %T", fn))
	}
	if fnType.IsVariadic() {
		panic(fmt.Errorf("variadic command %T, use a trailing []string", fn))
	}

	for i := range fnType.NumIn() {
		t := fnType.In(i)
		if t == stringsType && i == fnType.NumIn()-1 {
			continue
		}
		if !parsable(t) {
			panic(fmt.Errorf("command %T: cannot parse argument %d of type %v", fn, i+1, t))
		}
	}

	switch fnType.NumOut() {
	case 0:
	case 1:
		if fnType.Out(0) != errorType {
			panic(fmt.Errorf("command %T: result must be error", fn))
		}
	default:
		panic(fmt.Errorf("command %T: at most one result", fn))
	}

	return &Command{
		Func: fnValue,
	}
}

func Sub(subs map[string]*Command) *Command {
	return &Command{
		Subs: subs,
	}
}
