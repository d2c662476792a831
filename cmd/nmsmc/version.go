package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at link time with -X main.version=...
var version = "dev"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the nmsmc version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "nmsmc %s\n", version)
			return nil
		},
	}
}
