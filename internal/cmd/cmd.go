// Package cmd is the command line interface of truenas-cert-sync.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dataway/truenas-cert-sync/internal/cmd/cliopts"
	"github.com/dataway/truenas-cert-sync/internal/connector"
	"github.com/dataway/truenas-cert-sync/internal/logging"
)

// Run the main CLI command with the given args. The args should not contain
// the name of the binary (ex: os.Args[1:]).
func Run(ctx context.Context, args ...string) error {
	cli := newCLI(ctx)
	cmd := NewRootCmd(cli)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// runConnector is a shim for testing
var runConnector = connector.Run

// options are the settings of the root command.
type options struct {
	connector.Options
	LogLevel string
}

func defaultOptions() options {
	return options{
		Options:  connector.DefaultOptions(),
		LogLevel: "info",
	}
}

func NewRootCmd(cli *CLI) *cobra.Command {
	var configFilename string

	rootCmd := &cobra.Command{
		Use:   "truenas-cert-sync",
		Short: "Keep the TLS certificate of a TrueNAS appliance in sync with local files",
		Long: `Install a CA certificate, a certificate, and its private key on a TrueNAS
appliance, and make the certificate the one served by the web UI.

The files are read again whenever they change, and the appliance is updated
when the certificate no longer matches. Every flag may also be set with an
environment variable (ex: --sync-cert is TRUENAS_SYNC_CERT).`,
		Args:              NoArgs,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := defaultOptions()
			err := cliopts.Load(&opts, cliopts.Options{
				Filename:  configFilename,
				EnvPrefix: connector.EnvPrefix,
				Flags:     cmd.Flags(),
			})
			if err != nil {
				return err
			}
			if err := logging.SetLevel(opts.LogLevel); err != nil {
				return err
			}

			if opts.LogFile != "" {
				closer := logging.UseFileLogger(opts.LogFile)
				defer closer.Close()
			}
			return runConnector(cmd.Context(), opts.Options)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&configFilename, "config-file", "f", "", "Path to a yaml config file (env TRUENAS_CONFIG_FILE)")
	flags.String("url", "", "URL or hostname of the TrueNAS appliance")
	flags.String("apikey", "", "API key, or the path to a file that contains it")
	flags.String("username", "", "Username, used when no API key is set")
	flags.String("password", "", "Password, or the path to a file that contains it")
	flags.String("sync-ca", "", "Path to the PEM encoded CA certificate")
	flags.String("sync-cert", "", "Path to the PEM encoded certificate")
	flags.String("sync-key", "", "Path to the PEM encoded private key")
	flags.String("sync-ca-name", "", "Name of the CA on the appliance (default: sanitised common name)")
	flags.String("sync-cert-name", "", "Name of the certificate on the appliance (default: sanitised common name)")
	flags.Bool("skip-tls-verify", true, "Skip verifying the TLS certificate of the appliance")
	flags.String("trusted-certificate", "", "PEM encoded CA certificate, or a path to one, used to verify the appliance")
	flags.String("watch-interval", "", "How often to check the files for changes (default 1m)")
	flags.String("job-poll-interval", "", "How often to check the state of a job on the appliance (default 1s)")
	flags.String("metrics-addr", "", "Address to serve prometheus metrics on (ex: :9090)")
	flags.String("sentry-dsn", "", "Sentry DSN used to report sync failures")
	flags.String("log-file", "", "Also write JSON logs to this file")
	flags.Bool("oneshot", false, "Sync once and exit")
	flags.Bool("force", false, "Replace the certificate even when it is already up to date")

	flags.String("log-level", "info", "Minimum level of logs to show [error, warn, info, debug]")

	rootCmd.PersistentFlags().Bool("help", false, "Display help")

	rootCmd.AddCommand(newVersionCmd(cli))
	return rootCmd
}
