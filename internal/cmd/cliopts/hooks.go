package cliopts

import (
	"reflect"
)

// FromString is implemented by option types that parse their own value, like
// the flag values in internal/cmd/types. The same interface is accepted by
// spf13/pflag, which allows us to use the same type for command line flags,
// env vars, and config files.
type FromString interface {
	Set(string) error
}

// fromString returns the FromString of value, if its type or a pointer to
// its type implements it.
func fromString(value reflect.Value) (FromString, bool) {
	if v, ok := value.Interface().(FromString); ok {
		return v, true
	}
	if value.CanAddr() {
		v, ok := value.Addr().Interface().(FromString)
		return v, ok
	}
	return nil, false
}

// hookSetFromString allows any complex type that implements FromString to
// set its value from a string in the yaml file.
func hookSetFromString(from reflect.Value, to reflect.Value) (interface{}, error) {
	source := from.Interface()
	s, ok := source.(string)
	if !ok {
		return source, nil
	}

	v, ok := fromString(to)
	if !ok {
		return source, nil
	}
	err := v.Set(s)
	return to.Interface(), err
}
