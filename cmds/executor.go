package cmds

import (
	"fmt"
	"maps"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Executor struct {
	commands map[string]*Command
}

func NewExecutor() *Executor {
	ret := &Executor{
		commands: make(map[string]*Command),
	}
	ret.Define("-h", Func(func() {
		ret.PrintUsage()
		os.Exit(0)
	}).
		Desc("print this usage").
		Alias("help", "-help", "--help"))
	return ret
}

// Define panics on a name or alias already taken.
func (p *Executor) Define(name string, command *Command) {
	for _, name := range append([]string{name}, command.Aliases...) {
		if _, ok := p.commands[name]; ok {
			panic(fmt.Errorf("duplicated command %s", name))
		}
		p.commands[name] = command
	}
}

var (
	errorType    = reflect.TypeFor[error]()
	stringsType  = reflect.TypeFor[[]string]()
	durationType = reflect.TypeFor[time.Duration]()
)

// Execute runs the words in args from left to right.
func (p *Executor) Execute(args []string) error {
	commands := p.commands
	for len(args) > 0 {
		name := strings.TrimSpace(args[0])
		args = args[1:]

		command, ok := commands[name]
		if !ok {
			return fmt.Errorf("unknown command: %s", name)
		}

		if command.Func.IsValid() {
			var err error
			args, err = call(command.Func, args)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}

		if len(command.Subs) > 0 {
			commands = maps.Clone(commands)
			for subname, sub := range command.Subs {
				if _, ok := commands[subname]; ok {
					return fmt.Errorf("duplicated sub command: %s %s", name, subname)
				}
				commands[subname] = sub
			}
		}
	}
	return nil
}

func (p *Executor) MustExecute(args []string) {
	if err := p.Execute(args); err != nil {
		panic(err)
	}
}

// call consumes the arguments of fn from args and returns the rest.
func call(fn reflect.Value, args []string) ([]string, error) {
	fnType := fn.Type()
	callArgs := make([]reflect.Value, 0, fnType.NumIn())
	for i := range fnType.NumIn() {
		t := fnType.In(i)

		if t == stringsType && i == fnType.NumIn()-1 {
			// the last []string parameter takes all remaining words
			callArgs = append(callArgs, reflect.ValueOf(slices.Clone(args)))
			args = nil
			break
		}

		optional := t.Kind() == reflect.Pointer
		if optional {
			t = t.Elem()
		}
		if len(args) == 0 {
			if !optional {
				return nil, fmt.Errorf("expecting argument, got nothing")
			}
			// missing optional arguments are zero
			callArgs = append(callArgs, reflect.New(t))
			continue
		}

		value, err := parse(t, args[0])
		if err != nil {
			return nil, err
		}
		args = args[1:]
		if optional {
			ptr := reflect.New(t)
			ptr.Elem().Set(value)
			value = ptr
		}
		callArgs = append(callArgs, value)
	}

	rets := fn.Call(callArgs)
	if len(rets) > 0 && !rets[0].IsNil() {
		return nil, rets[0].Interface().(error)
	}
	return args, nil
}

func parsable(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func parse(t reflect.Type, str string) (reflect.Value, error) {
	ret := reflect.New(t).Elem()
	var err error
	switch t.Kind() {

	case reflect.Bool:
		var v bool
		if v, err = parseBool(str); err == nil {
			ret.SetBool(v)
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if t == durationType {
			var d time.Duration
			if d, err = time.ParseDuration(str); err != nil {
				return ret, fmt.Errorf("convert %s to duration: %w", str, err)
			}
			ret.SetInt(int64(d))
			break
		}
		var v int64
		if v, err = strconv.ParseInt(str, 10, t.Bits()); err != nil {
			return ret, fmt.Errorf("convert %s to int: %w", str, err)
		}
		ret.SetInt(v)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var v uint64
		if v, err = strconv.ParseUint(str, 10, t.Bits()); err != nil {
			return ret, fmt.Errorf("convert %s to unsigned int: %w", str, err)
		}
		ret.SetUint(v)

	case reflect.Float32, reflect.Float64:
		var v float64
		if v, err = strconv.ParseFloat(str, t.Bits()); err != nil {
			return ret, fmt.Errorf("convert %s to float: %w", str, err)
		}
		ret.SetFloat(v)

	case reflect.String:
		ret.SetString(str)

	default:
		err = fmt.Errorf("unsupported type: %v", t)
	}
	return ret, err
}

func parseBool(str string) (bool, error) {
	switch strings.ToLower(str) {
	case "true", "t", "yes", "y", "on", "1":
		return true, nil
	case "false", "f", "no", "n", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("convert %s to bool: unknown value", str)
}
