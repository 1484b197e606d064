package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	rdb "github.com/fixkme/mapletimer/db/redis"
	"github.com/fixkme/mapletimer/framework/config"
)

var Redis *rdb.RedisImpl

// RedisOptions 按模式转换成go-redis的配置
func RedisOptions(conf *config.RedisConfig) (any, error) {
	if conf == nil {
		return nil, errors.New("redis config is nil")
	}
	addrs := strings.Split(conf.RedisAddr, ",")
	if len(addrs) < 1 || addrs[0] == "" {
		return nil, fmt.Errorf("redis addr invalid (%s)", conf.RedisAddr)
	}
	switch conf.RedisMode {
	case rdb.RedisMode_Cluster:
		return &redis.ClusterOptions{
			Addrs:    addrs,
			Password: conf.RedisPassword,
		}, nil
	case rdb.RedisMode_Sentinel:
		return &redis.FailoverOptions{
			MasterName:    conf.RedisMasterName,
			SentinelAddrs: addrs,
			Password:      conf.RedisPassword,
			DB:            conf.RedisDB,
		}, nil
	default:
		return &redis.Options{
			Addr:     addrs[0],
			Password: conf.RedisPassword,
			DB:       conf.RedisDB,
		}, nil
	}
}

func InitRedis(ctx context.Context, conf *config.RedisConfig) (err error) {
	opt, err := RedisOptions(conf)
	if err != nil {
		return err
	}
	Redis, err = rdb.NewRedis(ctx, conf.RedisMode, opt)
	return
}
