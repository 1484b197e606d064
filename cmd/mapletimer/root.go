package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/fixkme/mapletimer/errs"
	"github.com/fixkme/mapletimer/framework/app"
	"github.com/fixkme/mapletimer/framework/config"
	"github.com/fixkme/mapletimer/framework/core"
	"github.com/fixkme/mapletimer/mlog"
	"github.com/fixkme/mapletimer/timer"
)

var (
	configFile string
	envFile    string
	logLevel   string
	soundFile  string
	mute       bool
	presetName string
	statusAddr string
)

var rootCmd = &cobra.Command{
	Use:   "mapletimer",
	Short: "Farming/pickup countdown with an audio alert.",
	Long: "mapletimer runs a repeating cycle of timed phases (by default " +
		"Farming 140s then Pickup 25s) and plays a sound when an alerting " +
		"phase ends.",
	Version:       config.Default().AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := setup(cmd)
		if err != nil {
			return err
		}
		name, phases, err := conf.Resolve()
		if err != nil {
			return report(err)
		}
		mlog.Infof("run %s: %v", name, phases)
		return report(runTimer(conf, phases, conf.Repeat))
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file (.yaml, .yml or .json)")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file, skipped when missing")
	pf.StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, notice, warn, error, fatal")
	pf.StringVar(&soundFile, "sound", "", "mp3 file played on alert, terminal bell when empty")
	pf.BoolVar(&mute, "mute", false, "no sound")

	f := rootCmd.Flags()
	f.StringVarP(&presetName, "preset", "p", "", "preset name or unique prefix")
	f.StringVar(&statusAddr, "status-addr", "", "serve the status line over tcp on this address")

	rootCmd.AddCommand(countdownCmd, presetsCmd, listenCmd)
}

// setup 读配置, 用命令行覆盖, 然后初始化日志
func setup(cmd *cobra.Command) (*config.AppConfig, error) {
	conf, err := config.LoadConfig(configFile, envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		conf.LogLevel = logLevel
	}
	if flags.Changed("sound") {
		conf.SoundFile = soundFile
	}
	if flags.Changed("mute") {
		conf.Mute = mute
	}
	if flags.Changed("preset") {
		conf.Preset = presetName
		conf.Phases = nil
	}
	if flags.Changed("status-addr") {
		conf.StatusAddr = statusAddr
	}
	if err = conf.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, err
	}
	if err = setupLog(conf); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, err
	}
	mlog.Infof("mapletimer %s", conf.AppVersion)
	mlog.Debugf("config: %s", conf.JsonFormat())
	return conf, nil
}

func setupLog(conf *config.AppConfig) error {
	level, _ := mlog.ParseLevel(conf.LogLevel)
	if conf.IsDebug && level < mlog.DebugLevel {
		level = mlog.DebugLevel
	}
	if conf.LogPath == "" {
		if err := mlog.UseStdLogger(level); err != nil {
			return err
		}
		atexit.Register(mlog.Sync)
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	if err := mlog.UseDefaultLogger(ctx, wg, conf.LogPath, conf.LogName, level, conf.LogStdOut); err != nil {
		cancel()
		return err
	}
	atexit.Register(func() {
		cancel()
		wg.Wait()
	})
	return nil
}

func report(err error) error {
	if err != nil {
		mlog.Errorf("[%d] %v", errs.CodeOf(err), err)
	}
	return err
}

// runTimer 跑到收到信号, 不循环时跑完自动退出
func runTimer(conf *config.AppConfig, phases []timer.Phase, repeat bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	notifier, err := core.NewNotifier(ctx, conf, os.Stdout)
	cancel()
	if err != nil {
		return err
	}

	a := app.DefaultApp()
	err = core.InitTimerModule("timer", &core.TimerOptions{
		Phases:       phases,
		Repeat:       repeat,
		AlertHold:    conf.AlertHold.D(),
		TickInterval: conf.TickInterval.D(),
		Notifier:     notifier,
		OnFinish:     a.Stop,
	})
	if err != nil {
		notifier.Close()
		return err
	}
	mods := []app.Module{core.Timer}
	if conf.StatusAddr != "" {
		core.InitStatusModule("status", conf.StatusAddr, core.Timer.HandleCommand)
		mods = append(mods, core.Status)
	}
	return a.Run(mods...)
}
