package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"nmsmc/internal/definition"
	"nmsmc/internal/services"
)

func newPlanCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "plan <definition...>",
		Short:       "Parse definitions and print the resulting plan without building",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := definition.ParseFiles(args)
			if err != nil {
				return services.Wrap(services.ErrValidation, "parse", "", "definition rejected", err)
			}
			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"plan":  plan,
					"stats": plan.Stats(),
				})
			}

			out := cmd.OutOrStdout()
			if len(plan.Containers) == 0 {
				fmt.Fprintln(out, "No output archives declared")
				return nil
			}

			var rows [][]string
			for _, c := range plan.Containers {
				for _, a := range c.Archives {
					for _, d := range a.Documents {
						assignments := 0
						for _, e := range d.Edits {
							assignments += len(e.Assignments)
						}
						rows = append(rows, []string{
							c.Output,
							a.Source,
							d.ID,
							strconv.Itoa(len(d.Edits)),
							strconv.Itoa(assignments),
						})
					}
				}
				for _, extra := range c.ExtraFiles {
					rows = append(rows, []string{c.Output, "(extra file)", extra, "", ""})
				}
			}
			fmt.Fprint(out, renderTable(
				[]string{"Output", "Archive", "Document", "Edits", "Assignments"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))

			stats := plan.Stats()
			fmt.Fprintf(out, "%d output(s), %d archive(s), %d document(s), %d edit(s), %d assignment(s), %d extra file(s)\n",
				stats.Containers, stats.Archives, stats.Documents, stats.Edits, stats.Assignments, stats.ExtraFiles)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the plan as JSON")
	return cmd
}
