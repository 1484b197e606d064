package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List presets.",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := setup(cmd)
		if err != nil {
			return err
		}
		table := conf.PresetTable()
		out := cmd.OutOrStdout()
		for _, name := range table.Names() {
			_, phases, err := table.Lookup(name)
			if err != nil {
				return report(err)
			}
			parts := make([]string, 0, len(phases))
			for _, p := range phases {
				s := fmt.Sprintf("%s %v", p.Name, p.Duration)
				if p.Alert {
					s += " (alert)"
				}
				parts = append(parts, s)
			}
			fmt.Fprintf(out, "%-10s %s\n", name, strings.Join(parts, ", "))
		}
		return nil
	},
}
