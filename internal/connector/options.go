package connector

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/iancoleman/strcase"

	"github.com/dataway/truenas-cert-sync/internal"
	"github.com/dataway/truenas-cert-sync/internal/cmd/types"
	"github.com/dataway/truenas-cert-sync/internal/credentials"
	"github.com/dataway/truenas-cert-sync/internal/jobs"
	"github.com/dataway/truenas-cert-sync/internal/watch"
)

// EnvPrefix is the prefix of every environment variable that configures the
// sync process.
const EnvPrefix = "TRUENAS"

type Options struct {
	// URL of the appliance. See api.BaseURL for the accepted forms.
	URL string `validate:"required"`

	Apikey   types.StringOrFile
	Username string
	Password types.StringOrFile

	Sync credentials.Options

	SkipTLSVerify bool
	// TrustedCertificate is a PEM encoded CA certificate, or a path to one,
	// used to verify the appliance. Setting it turns on verification.
	TrustedCertificate types.StringOrFile

	WatchInterval   types.Duration
	JobPollInterval types.Duration

	MetricsAddr types.ListenAddr
	SentryDSN   string `validate:"omitempty,url"`
	LogFile     string

	Oneshot bool
	Force   bool
}

func DefaultOptions() Options {
	return Options{
		// the appliance ships with a self-signed certificate, which is the
		// certificate this tool replaces
		SkipTLSVerify:   true,
		WatchInterval:   types.Duration(watch.DefaultInterval),
		JobPollInterval: types.Duration(jobs.DefaultPollInterval),
	}
}

// Validate returns a *internal.ConfigError for the first problem found in
// the options.
func (o Options) Validate() error {
	if err := validator.New().Struct(o); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return configErrorFromField(fieldErrs[0])
		}
		return fmt.Errorf("validate options: %w", err)
	}

	apikey := o.Apikey != ""
	userpass := o.Username != "" || o.Password != ""
	switch {
	case apikey && userpass:
		return &internal.ConfigError{
			Field:   envName("Apikey"),
			Message: fmt.Sprintf("must not be set together with %v or %v", envName("Username"), envName("Password")),
		}
	case !apikey && (o.Username == "" || o.Password == ""):
		return &internal.ConfigError{
			Message: fmt.Sprintf("either %v or both %v and %v must be set", envName("Apikey"), envName("Username"), envName("Password")),
		}
	}

	if time.Duration(o.WatchInterval) <= 0 {
		return &internal.ConfigError{Field: envName("WatchInterval"), Message: "must be greater than zero"}
	}
	if time.Duration(o.JobPollInterval) <= 0 {
		return &internal.ConfigError{Field: envName("JobPollInterval"), Message: "must be greater than zero"}
	}
	return nil
}

func configErrorFromField(fieldErr validator.FieldError) *internal.ConfigError {
	// Namespace is Options.Sync.CA, the first part is the type name
	parts := strings.Split(fieldErr.Namespace(), ".")
	field := envName(parts[1:]...)

	switch fieldErr.Tag() {
	case "required":
		return &internal.ConfigError{Field: field, Message: "is required"}
	case "url":
		return &internal.ConfigError{Field: field, Message: "must be a URL"}
	default:
		return &internal.ConfigError{Field: field, Message: fmt.Sprintf("failed the %q check", fieldErr.Tag())}
	}
}

// envName returns the name of the environment variable for the field at path.
func envName(path ...string) string {
	parts := []string{EnvPrefix}
	for _, name := range path {
		parts = append(parts, strcase.ToScreamingSnake(name))
	}
	return strings.Join(parts, "_")
}
