package cliopts

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
	"github.com/mitchellh/reflectwalk"
	"github.com/spf13/pflag"

	"github.com/dataway/truenas-cert-sync/internal"
)

// loadFromEnv sets fields from variables named like PREFIX_SYNC_CERT_NAME.
func loadFromEnv(target interface{}, prefix string) error {
	walker := &flatSourceWalker{
		source:          envWithPrefix(prefix, os.Environ()),
		location:        []string{prefix},
		fieldNameFormat: strcase.ToScreamingSnake,
		fieldSeparator:  "_",
		describe: func(key string) string {
			return key
		},
	}
	return reflectwalk.Walk(target, walker)
}

// loadFromFlags sets fields from the flags that were set on the command
// line, named like --sync-cert-name.
func loadFromFlags(target interface{}, flags *pflag.FlagSet) error {
	source := map[string]string{}
	flags.Visit(func(flag *pflag.Flag) {
		source[flag.Name] = flag.Value.String()
	})

	walker := &flatSourceWalker{
		source:          source,
		fieldNameFormat: strcase.ToKebab,
		fieldSeparator:  "-",
		describe: func(key string) string {
			return "--" + key
		},
	}
	return reflectwalk.Walk(target, walker)
}

// flatSourceWalker sets the fields of a struct from a flat map of keys, where
// the key of a nested field is the key of each parent struct joined by
// fieldSeparator.
type flatSourceWalker struct {
	location        []string
	source          map[string]string
	fieldNameFormat func(string) string
	fieldSeparator  string
	// describe returns the name of key as the user would write it.
	describe func(key string) string
}

func (w *flatSourceWalker) Enter(reflectwalk.Location) error {
	return nil
}

func (w *flatSourceWalker) Exit(loc reflectwalk.Location) error {
	if loc == reflectwalk.Struct && len(w.location) > 0 {
		w.location = w.location[:len(w.location)-1]
	}
	return nil
}

func (w *flatSourceWalker) Struct(value reflect.Value) error {
	if !value.CanAddr() {
		// a struct held by value in an interface can not be set
		return nil
	}

	typ := value.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}

		key := w.key(field)
		raw, ok := w.source[key]
		if !ok {
			continue
		}
		if err := setField(value.Field(i), raw); err != nil {
			return &internal.ConfigError{
				Field:   w.describe(key),
				Message: fmt.Sprintf("is not valid: %v", err),
			}
		}
	}
	return nil
}

func (w *flatSourceWalker) StructField(field reflect.StructField, value reflect.Value) error {
	switch {
	case !field.IsExported():
		return reflectwalk.SkipEntry
	case value.Kind() == reflect.Ptr && value.IsNil():
		return reflectwalk.SkipEntry
	}

	if _, ok := fromString(value); ok {
		// set as a single value by Struct
		return reflectwalk.SkipEntry
	}

	if value.Kind() == reflect.Struct || isPtrToStruct(value) {
		if field.Anonymous { // embedded struct
			w.location = append(w.location, "")
			return nil
		}
		w.location = append(w.location, w.fieldName(field))
	}
	return nil
}

func (w *flatSourceWalker) fieldName(field reflect.StructField) string {
	if name := field.Tag.Get(fieldTagName); name != "" {
		return name
	}
	return w.fieldNameFormat(field.Name)
}

func (w *flatSourceWalker) key(field reflect.StructField) string {
	var parts []string
	for _, part := range w.location {
		if part == "" { // skip empty part for embedded struct
			continue
		}
		parts = append(parts, part)
	}
	parts = append(parts, w.fieldName(field))
	return strings.Join(parts, w.fieldSeparator)
}

// setField sets value from raw, using FromString when the type implements
// it, or a weakly typed decode for strings, numbers, and booleans.
func setField(value reflect.Value, raw string) error {
	if v, ok := fromString(value); ok {
		return v.Set(raw)
	}

	target := reflect.New(value.Type())
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target.Interface(),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return err
	}
	value.Set(target.Elem())
	return nil
}

func isPtrToStruct(value reflect.Value) bool {
	return value.Kind() == reflect.Ptr && value.Elem().Kind() == reflect.Struct
}

// envWithPrefix converts an environment variable slice to a map of key/value
// pairs, keeping only the keys that start with prefix.
func envWithPrefix(prefix string, env []string) map[string]string {
	result := map[string]string{}
	for _, raw := range env {
		key, value := getParts(raw)
		if strings.HasPrefix(key, prefix+"_") {
			result[key] = value
		}
	}
	return result
}

func getParts(raw string) (string, string) {
	if raw == "" {
		return "", ""
	}
	// Environment variables on windows can begin with =
	// http://blogs.msdn.com/b/oldnewthing/archive/2010/05/06/10008132.aspx
	parts := strings.SplitN(raw[1:], "=", 2)
	key := raw[:1] + parts[0]
	if len(parts) == 1 {
		return key, ""
	}
	return key, parts[1]
}
