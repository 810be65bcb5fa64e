package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewCmdRoot creates a new root command
func NewCmdRoot(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "canary",
		Short: "Canary, the self-monitoring health probe agent",
		Long: "Canary is a monitoring agent that probes the health of its own runtime.\n" +
			"The probe results are exposed via an API.",
		Version:      version,
		SilenceUsage: true,
	}
	return rootCmd
}

// Execute adds all child commands to the root command
// and executes the cmd tree
func Execute(version string) {
	cmd := NewCmdRoot(version)
	cmd.AddCommand(NewCmdRun(version))
	cmd.AddCommand(NewCmdHealthz())
	cmd.AddCommand(NewCmdGenDocs(cmd))

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
