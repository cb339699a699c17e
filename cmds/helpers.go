package cmds

import "fmt"

// Var defines `name <value>` and `name.` which resets the value.
func Var[T any](name string, desc string) *T {
	value := new(T)
	Define(name, Func(func(v T) {
		*value = v
	}).Desc(desc))
	Define(name+".", Func(func() {
		var zero T
		*value = zero
	}).Desc(fmt.Sprintf("reset %s", name)))
	return value
}

// Switch defines `name` turning the value on and `!name` turning it off.
func Switch(name string, desc string) *bool {
	value := new(bool)
	Define(name, Func(func() {
		*value = true
	}).Desc(desc))
	Define("!"+name, Func(func() {
		*value = false
	}).Desc(fmt.Sprintf("undo %s", name)))
	return value
}

// Collect defines `name <value>`, appending on each use.
func Collect[T any](name string, desc string) *[]T {
	values := new([]T)
	Define(name, Func(func(v T) {
		*values = append(*values, v)
	}).Desc(desc))
	return values
}
