package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/bayan/pkg/core/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, version.String())
			fmt.Fprintf(out, "  Server:        %s\n", version.ComponentVersion("server"))
			fmt.Fprintf(out, "  Wire protocol: %s\n", version.WireProtocol)
		},
	}
}
