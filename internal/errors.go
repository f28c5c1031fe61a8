package internal

import (
	"fmt"
)

// ConfigError is returned when a required setting is missing, or when settings
// that are mutually exclusive are used together. It is always reported before
// any connection to the appliance is attempted.
type ConfigError struct {
	// Field is the name of the setting, as the user would write it (ex: TRUENAS_URL).
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Message
	}
	return fmt.Sprintf("invalid configuration: %v %v", e.Field, e.Message)
}
