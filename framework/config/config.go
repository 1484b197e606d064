package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fixkme/mapletimer/errs"
	"github.com/fixkme/mapletimer/mlog"
	"github.com/fixkme/mapletimer/timer"
)

var Config *AppConfig

// MinTickInterval 时间轮一格的时长, tick间隔不能再小
const MinTickInterval = 20 * time.Millisecond

type AppConfig struct {
	AppVersion  string `json:"app_version" yaml:"app_version"`
	TimerConfig `json:",inline" yaml:",inline"`
	SoundConfig `json:",inline" yaml:",inline"`
	LogConfig   `json:",inline" yaml:",inline"`
	RedisConfig `json:",inline" yaml:",inline"`
	StatusAddr  string `json:"status_addr" yaml:"status_addr"` // 状态查询监听地址, 如tcp://127.0.0.1:7140, 空则不开
	IsDebug     bool   `json:"is_debug" yaml:"is_debug"`
}

type PhaseConfig struct {
	Name     string   `json:"name" yaml:"name"`
	Duration Duration `json:"duration" yaml:"duration"`
	Alert    bool     `json:"alert" yaml:"alert"`
}

type TimerConfig struct {
	Preset       string                   `json:"preset" yaml:"preset"`   //预设名, 支持唯一前缀
	Phases       []PhaseConfig            `json:"phases" yaml:"phases"`   //自定义各段, 非空时忽略preset
	Presets      map[string][]PhaseConfig `json:"presets" yaml:"presets"` //自定义预设
	Repeat       bool                     `json:"repeat" yaml:"repeat"`
	TickInterval Duration                 `json:"tick_interval" yaml:"tick_interval"`
	AlertHold    Duration                 `json:"alert_hold" yaml:"alert_hold"` //提醒后告警状态保持时长
}

type SoundConfig struct {
	SoundFile string  `json:"sound_file" yaml:"sound_file"` //mp3文件, 空则响铃
	Volume    float64 `json:"volume" yaml:"volume"`         //音量, 0为原始音量, 以2为底
	Mute      bool    `json:"mute" yaml:"mute"`
}

type LogConfig struct {
	LogPath   string `json:"log_path" yaml:"log_path"`
	LogName   string `json:"log_name" yaml:"log_name"`
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogStdOut bool   `json:"log_std_out" yaml:"log_std_out"`
}

type RedisConfig struct {
	RedisMode       string `json:"redis_mode" yaml:"redis_mode"`
	RedisAddr       string `json:"redis_addr" yaml:"redis_addr"` // 多个地址用,隔开, 空则不发布
	RedisMasterName string `json:"redis_master_name" yaml:"redis_master_name"`
	RedisPassword   string `json:"redis_password" yaml:"redis_password"`
	RedisDB         int    `json:"redis_db" yaml:"redis_db"`
	RedisChannel    string `json:"redis_channel" yaml:"redis_channel"`
}

func Default() *AppConfig {
	return &AppConfig{
		AppVersion: "1.3",
		TimerConfig: TimerConfig{
			Preset:       timer.DefaultPreset,
			Repeat:       true,
			TickInterval: Duration(100 * time.Millisecond),
			AlertHold:    Duration(2 * time.Second),
		},
		LogConfig: LogConfig{
			LogName:   "mapletimer",
			LogLevel:  "info",
			LogStdOut: true,
		},
		RedisConfig: RedisConfig{
			RedisMode:    "single",
			RedisChannel: "mapletimer:alerts",
		},
	}
}

// LoadConfig 默认值 -> 配置文件 -> .env -> 环境变量, 最后校验
func LoadConfig(configFile string, envFiles ...string) (*AppConfig, error) {
	conf := Default()
	if len(configFile) > 0 {
		if err := loadConfigFromFile(conf, configFile); err != nil {
			return nil, errs.Config.Wrap(err)
		}
	}
	if err := loadDotEnv(envFiles...); err != nil {
		return nil, errs.Config.Wrap(err)
	}
	if err := LoadConfigFromEnv(conf); err != nil {
		return nil, errs.Config.Wrap(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	Config = conf
	return conf, nil
}

func loadConfigFromFile(conf *AppConfig, configFile string) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, conf)
	case ".json":
		err = json.Unmarshal(data, conf)
	default:
		return fmt.Errorf("unknown config format %s", configFile)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", configFile, err)
	}
	return nil
}

func (conf *AppConfig) Validate() error {
	if conf.TickInterval.D() < MinTickInterval {
		return errs.Config.Printf("tick_interval %v below %v", conf.TickInterval, MinTickInterval)
	}
	if conf.AlertHold < 0 {
		return errs.Config.Printf("alert_hold %v is negative", conf.AlertHold)
	}
	if conf.Volume < -10 || conf.Volume > 10 {
		return errs.Config.Printf("volume %v out of range [-10, 10]", conf.Volume)
	}
	if _, ok := mlog.ParseLevel(conf.LogLevel); !ok {
		return errs.Config.Printf("log_level %q", conf.LogLevel)
	}
	switch conf.RedisMode {
	case "", "single", "sentinel", "cluster":
	default:
		return errs.Config.Printf("redis_mode %q", conf.RedisMode)
	}
	if err := validatePhases("phases", conf.Phases); err != nil {
		return err
	}
	for name, phases := range conf.Presets {
		if len(phases) == 0 {
			return errs.Config.Printf("preset %q has no phases", name)
		}
		if err := validatePhases("preset "+name, phases); err != nil {
			return err
		}
	}
	return nil
}

func validatePhases(where string, phases []PhaseConfig) error {
	for i, p := range phases {
		if p.Duration <= 0 {
			return errs.Config.Wrap(errs.InvalidDuration.Printf("%s[%d] %q: %v", where, i, p.Name, p.Duration))
		}
	}
	return nil
}

func toPhases(pcs []PhaseConfig) []timer.Phase {
	phases := make([]timer.Phase, 0, len(pcs))
	for i, p := range pcs {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("Phase%d", i+1)
		}
		phases = append(phases, timer.Phase{Name: name, Duration: p.Duration.D(), Alert: p.Alert})
	}
	return phases
}

// PresetTable 内置预设加上配置里的
func (conf *TimerConfig) PresetTable() *timer.Presets {
	custom := make(map[string][]timer.Phase, len(conf.Presets))
	for name, pcs := range conf.Presets {
		custom[name] = toPhases(pcs)
	}
	return timer.NewPresets(custom)
}

// Resolve 得到要跑的各段, 自定义phases优先, 否则查预设
func (conf *TimerConfig) Resolve() (string, []timer.Phase, error) {
	if len(conf.Phases) > 0 {
		return "custom", toPhases(conf.Phases), nil
	}
	return conf.PresetTable().Lookup(conf.Preset)
}

func (conf *AppConfig) JsonFormat() string {
	if conf == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(conf, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
