package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"proteomorphic/src/internal/system"
)

func newVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the current version, commit hash, build date and runtime.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Version:  %s\n", info.Version)
			fmt.Fprintf(w, "Commit:   %s\n", info.Commit)
			fmt.Fprintf(w, "Built:    %s\n", info.Date)
			fmt.Fprintf(w, "Runtime:  %s\n", system.GetInfo())
			return nil
		},
	}
}
