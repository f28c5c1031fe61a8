package types

import (
	"errors"
	"io/fs"
	"os"
	"strings"
)

// StringOrFile is a pflag.Value for secrets that may be given either
// literally, or as the path to a file that contains the value. When the value
// is a readable file, the trimmed content of the file is used.
type StringOrFile string

func (s *StringOrFile) String() string {
	if s == nil {
		return ""
	}
	return string(*s)
}

func (s *StringOrFile) Set(raw string) error {
	content, err := os.ReadFile(raw)
	var pathErr *fs.PathError
	switch {
	case errors.As(err, &pathErr):
		*s = StringOrFile(raw)
		return nil
	case err != nil:
		return err
	}
	*s = StringOrFile(strings.TrimSpace(string(content)))
	return nil
}

func (s *StringOrFile) Type() string {
	return "string-or-file"
}
