package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fixkme/mapletimer/errs"
	"github.com/fixkme/mapletimer/framework/core"
	"github.com/fixkme/mapletimer/notify"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Play alerts published by other instances over redis.",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := setup(cmd)
		if err != nil {
			return err
		}
		if conf.RedisAddr == "" {
			return report(errs.Config.Printf("listen needs redis_addr"))
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sound, err := notify.NewAsync(notify.NewSound(core.NewPlayer(&conf.SoundConfig, os.Stdout)), 0, 0)
		if err != nil {
			return report(err)
		}
		defer sound.Close()
		return report(core.Listen(ctx, &conf.RedisConfig, notify.Multi{notify.Log{}, sound}))
	},
}
