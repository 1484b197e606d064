package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const EnvPrefix = "MAPLETIMER_"

// loadDotEnv 读.env文件到环境变量, 不覆盖已有的; 文件不存在跳过
func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

type envSetter func(conf *AppConfig, v string) error

func setString(f func(*AppConfig) *string) envSetter {
	return func(conf *AppConfig, v string) error {
		*f(conf) = v
		return nil
	}
}

func setBool(f func(*AppConfig) *bool) envSetter {
	return func(conf *AppConfig, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*f(conf) = b
		return nil
	}
}

func setDuration(f func(*AppConfig) *Duration) envSetter {
	return func(conf *AppConfig, v string) error {
		d, err := ParseDuration(v)
		if err != nil {
			return err
		}
		*f(conf) = d
		return nil
	}
}

var envSetters = map[string]envSetter{
	"PRESET":         setString(func(c *AppConfig) *string { return &c.Preset }),
	"REPEAT":         setBool(func(c *AppConfig) *bool { return &c.Repeat }),
	"TICK_INTERVAL":  setDuration(func(c *AppConfig) *Duration { return &c.TickInterval }),
	"ALERT_HOLD":     setDuration(func(c *AppConfig) *Duration { return &c.AlertHold }),
	"SOUND_FILE":     setString(func(c *AppConfig) *string { return &c.SoundFile }),
	"MUTE":           setBool(func(c *AppConfig) *bool { return &c.Mute }),
	"LOG_PATH":       setString(func(c *AppConfig) *string { return &c.LogPath }),
	"LOG_LEVEL":      setString(func(c *AppConfig) *string { return &c.LogLevel }),
	"LOG_STD_OUT":    setBool(func(c *AppConfig) *bool { return &c.LogStdOut }),
	"REDIS_MODE":     setString(func(c *AppConfig) *string { return &c.RedisMode }),
	"REDIS_ADDR":     setString(func(c *AppConfig) *string { return &c.RedisAddr }),
	"REDIS_PASSWORD": setString(func(c *AppConfig) *string { return &c.RedisPassword }),
	"REDIS_CHANNEL":  setString(func(c *AppConfig) *string { return &c.RedisChannel }),
	"STATUS_ADDR":    setString(func(c *AppConfig) *string { return &c.StatusAddr }),
	"IS_DEBUG":       setBool(func(c *AppConfig) *bool { return &c.IsDebug }),
	"VOLUME": func(c *AppConfig, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.Volume = f
		return nil
	},
	"REDIS_DB": func(c *AppConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.RedisDB = n
		return nil
	},
}

// LoadConfigFromEnv 用MAPLETIMER_前缀的环境变量覆盖配置
func LoadConfigFromEnv(conf *AppConfig) error {
	for key, set := range envSetters {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		if err := set(conf, v); err != nil {
			return fmt.Errorf("%s%s=%q: %w", EnvPrefix, key, v, err)
		}
	}
	return nil
}
