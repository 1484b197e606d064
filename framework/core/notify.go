package core

import (
	"context"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/fixkme/mapletimer/audio"
	"github.com/fixkme/mapletimer/framework/config"
	"github.com/fixkme/mapletimer/mlog"
	"github.com/fixkme/mapletimer/notify"
	"github.com/fixkme/mapletimer/timer"
)

// NewPlayer 静音 -> 不响; 配了mp3 -> mp3, 失败时响铃; 否则响铃
func NewPlayer(conf *config.SoundConfig, bellOut io.Writer) audio.Player {
	bell := audio.NewBell(bellOut)
	if conf.Mute {
		return audio.Silent
	}
	if conf.SoundFile == "" {
		return bell
	}
	mp3 := audio.NewMP3Player(conf.SoundFile, conf.Volume)
	if err := mp3.Load(); err != nil {
		mlog.Warnf("sound %s unavailable, use bell: %v", conf.SoundFile, err)
		return bell
	}
	mlog.Infof("sound %s loaded, length %v", conf.SoundFile, mp3.Length())
	return audio.Fallback{Primary: mp3, Secondary: bell}
}

// redisNotifier 关闭时断开连接
type redisNotifier struct {
	*notify.Redis
}

func (r redisNotifier) Close() error {
	if Redis != nil {
		Redis.Stop()
	}
	return nil
}

// NewNotifier 日志同步写, 提示音和redis发布放到协程池
func NewNotifier(ctx context.Context, conf *config.AppConfig, bellOut io.Writer) (notify.Notifier, error) {
	var slow notify.Multi
	if conf.RedisAddr != "" {
		if err := InitRedis(ctx, &conf.RedisConfig); err != nil {
			return nil, err
		}
		pub := notify.NewRedis(Redis.GetCmdable(), conf.RedisChannel)
		mlog.Infof("publish alerts to %s as %s", pub, pub.Instance())
		slow = append(slow, redisNotifier{pub})
	}
	slow = append(slow, notify.NewSound(NewPlayer(&conf.SoundConfig, bellOut)))

	async, err := notify.NewAsync(slow, 0, 0)
	if err != nil {
		slow.Close()
		return nil, err
	}
	return notify.Multi{notify.Log{}, async}, nil
}

// Listen 订阅其他实例发布的提醒, 收到后交给n, 阻塞到ctx结束
func Listen(ctx context.Context, conf *config.RedisConfig, n timer.Notifier) error {
	if err := InitRedis(ctx, conf); err != nil {
		return err
	}
	defer Redis.Stop()
	return Redis.Subscribe(ctx, conf.RedisChannel, func(msg *redis.Message) {
		e, instance, err := notify.DecodeEvent([]byte(msg.Payload))
		if err != nil {
			mlog.Warnf("listen %s: bad payload: %v", msg.Channel, err)
			return
		}
		mlog.Debugf("listen %s: event from %s", msg.Channel, instance)
		if err := n.Notify(e); err != nil {
			mlog.Warnf("listen %s: notify: %v", msg.Channel, err)
		}
	})
}
