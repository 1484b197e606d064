package main

import (
	"github.com/spf13/cobra"

	"github.com/fixkme/mapletimer/errs"
	"github.com/fixkme/mapletimer/framework/config"
	"github.com/fixkme/mapletimer/timer"
)

var countdownCmd = &cobra.Command{
	Use:   "countdown <duration>",
	Short: "Count down once and exit after the alert.",
	Long: "countdown runs a single alerting timer. The duration is seconds " +
		"(\"90\", \"1.5\") or a Go duration (\"2m20s\").",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := setup(cmd)
		if err != nil {
			return err
		}
		d, err := config.ParseDuration(args[0])
		if err != nil {
			return report(errs.InvalidDuration.Wrap(err))
		}
		if d <= 0 {
			return report(errs.InvalidDuration.Printf("%v", d))
		}
		phases := []timer.Phase{{Name: "Countdown", Duration: d.D(), Alert: true}}
		return report(runTimer(conf, phases, false))
	},
}
