package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/dataway/truenas-cert-sync/internal"
)

func newVersionCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the version",
		Args:  NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.Output("%v", internal.FullVersion())
			if internal.Commit != "" {
				cli.Output("commit: %v", internal.Commit)
			}
			if internal.Date != "" {
				cli.Output("built: %v", internal.Date)
			}
			cli.Output("%v/%v %v", runtime.GOOS, runtime.GOARCH, runtime.Version())
			return nil
		},
	}
}
