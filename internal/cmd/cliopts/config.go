// Package cliopts loads the options of the sync process from a yaml file,
// environment variables, and command line flags.
package cliopts

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"
)

type Options struct {
	// Filename of a yaml file. When Filename is empty the file named by the
	// EnvPrefix_CONFIG_FILE environment variable is used, if it is set.
	Filename  string
	EnvPrefix string
	Flags     *pflag.FlagSet
}

// Load configuration into target. Configuration may come from multiple sources.
//
// To set default values, apply them to target before calling Load.
// Configuration is loaded in the following order:
//  1. from a yaml file identified by opts.Filename
//  2. from environment variables that start with opts.EnvPrefix
//  3. from command line flags in opts.Flags
//
// Values are matched to the fields in target by convention. To override the
// convention use the 'config' struct field tag to specify a different name.
//
// For example, the field target.Sync.CertName would be set from:
//
//	// YAML
//	{"sync": {"certName": "value"}}
//	// environment variable
//	PREFIX_SYNC_CERT_NAME=value
//	// command line flag
//	flags.String("sync-cert-name", ...)
//
// Only flags that were set on the command line are used, so that the default
// value of a flag never replaces a value from the file or environment.
//
// A value from the environment or a flag that can not be decoded is reported
// as an *internal.ConfigError naming the variable or flag.
func Load(target interface{}, opts Options) error {
	opts.EnvPrefix = strings.ToUpper(opts.EnvPrefix)
	if opts.Filename == "" && opts.EnvPrefix != "" {
		opts.Filename = os.Getenv(opts.EnvPrefix + "_CONFIG_FILE")
	}

	if opts.Filename != "" {
		if err := loadFromFile(target, opts.Filename); err != nil {
			return err
		}
	}
	if opts.EnvPrefix != "" {
		if err := loadFromEnv(target, opts.EnvPrefix); err != nil {
			return err
		}
	}
	if opts.Flags != nil {
		if err := loadFromFlags(target, opts.Flags); err != nil {
			return err
		}
	}
	return nil
}

func loadFromFile(target interface{}, filename string) error {
	fh, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer fh.Close()

	var raw map[string]interface{}
	if err := yaml.NewDecoder(fh).Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode yaml from %s: %w", filename, err)
	}

	cfg := DecodeConfig(target)
	decoder, err := mapstructure.NewDecoder(&cfg)
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode from %s: %w", filename, err)
	}
	return nil
}

const fieldTagName = "config"

// DecodeConfig returns the DecoderConfig used to decode the yaml file. Keys
// match field names without regard to case.
func DecodeConfig(target interface{}) mapstructure.DecoderConfig {
	return mapstructure.DecoderConfig{
		Squash:     true,
		Result:     target,
		TagName:    fieldTagName,
		DecodeHook: hookSetFromString,
	}
}
