package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nmsmc/internal/deps"
	"nmsmc/internal/services"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check that the external tools and directories are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckSystem(cfg)
			missing := deps.Missing(statuses)

			if jsonOutput {
				if err := writeJSON(cmd, statuses); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(statuses))
				for _, s := range statuses {
					state := "ok"
					if !s.Available {
						state = "missing"
						if s.Optional {
							state = "optional"
						}
					}
					rows = append(rows, []string{s.Name, state, s.Command, s.Detail})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"Dependency", "Status", "Command / Path", "Detail"},
					rows,
					nil,
				))
			}

			if len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, m := range missing {
					names = append(names, m.Name)
				}
				return services.Wrap(services.ErrConfiguration, "deps", "", "unavailable: "+strings.Join(names, ", "), nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print statuses as JSON")
	return cmd
}
