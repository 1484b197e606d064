package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fixkme/mapletimer/mlog"
)

const (
	RedisMode_Single   = "single"
	RedisMode_Sentinel = "sentinel"
	RedisMode_Cluster  = "cluster"
)

const pingTimeout = 3 * time.Second

type RedisImpl struct {
	client  *redis.Client
	cluster *redis.ClusterClient
}

// NewRedis 按模式创建客户端并ping一次, opts要和mode对应
func NewRedis(ctx context.Context, mode string, opts any) (*RedisImpl, error) {
	db := &RedisImpl{}
	switch mode {
	case RedisMode_Cluster:
		db.cluster = redis.NewClusterClient(opts.(*redis.ClusterOptions))
	case RedisMode_Sentinel:
		db.client = redis.NewFailoverClient(opts.(*redis.FailoverOptions))
	default: // 默认single模式
		db.client = redis.NewClient(opts.(*redis.Options))
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.GetCmdable().Ping(ctx).Err(); err != nil {
		db.Stop()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return db, nil
}

func (db *RedisImpl) Stop() {
	if db.client != nil {
		db.client.Close()
	}
	if db.cluster != nil {
		db.cluster.Close()
	}
}

func (db *RedisImpl) GetCmdable() redis.Cmdable {
	if db.client != nil {
		return db.client
	}
	if db.cluster != nil {
		return db.cluster
	}
	return nil
}

// SubscribeCB 收到订阅消息的回调
type SubscribeCB func(message *redis.Message)

// Subscribe 订阅channel, 阻塞到ctx结束; 连接出错时go-redis会自动重连
func (db *RedisImpl) Subscribe(ctx context.Context, channel string, cb SubscribeCB) error {
	var pubsub *redis.PubSub
	if db.client != nil {
		pubsub = db.client.Subscribe(ctx, channel)
	} else if db.cluster != nil {
		pubsub = db.cluster.Subscribe(ctx, channel)
	}
	if pubsub == nil {
		return fmt.Errorf("redis subscribe %s failed, nil pubsub", channel)
	}
	defer pubsub.Close()

	// 等订阅确认
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", channel, err)
	}
	mlog.Infof("redis subscribed %s", channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						mlog.Errorf("redis subscribe %s callback panic: %v", channel, r)
					}
				}()
				cb(msg)
			}()
		}
	}
}
