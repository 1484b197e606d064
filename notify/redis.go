package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/fixkme/mapletimer/errs"
	"github.com/fixkme/mapletimer/timer"
)

const publishTimeout = 2 * time.Second

// Publisher redis.Cmdable的子集
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Redis 把到期事件发布到频道, 其他机器上的程序可以订阅
type Redis struct {
	pub      Publisher
	channel  string
	instance string
}

func NewRedis(pub Publisher, channel string) *Redis {
	return &Redis{
		pub:      pub,
		channel:  channel,
		instance: uuid.NewString(),
	}
}

func (r *Redis) Instance() string {
	return r.instance
}

func (r *Redis) Notify(e timer.Event) error {
	payload, err := EncodeEvent(e, r.instance)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.pub.Publish(ctx, r.channel, payload).Err(); err != nil {
		return errs.Publish.Printf("%s", r.channel).Wrap(err)
	}
	return nil
}

func (r *Redis) Close() error { return nil }

// EncodeEvent 事件编码成protobuf Struct
func EncodeEvent(e timer.Event, instance string) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"instance":    instance,
		"timer_id":    e.TimerID,
		"name":        e.Name,
		"duration_ms": e.Duration.Milliseconds(),
		"at_ms":       e.At.UnixMilli(),
		"round":       e.Round,
	})
	if err != nil {
		return nil, errs.Marshal.Wrap(err)
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return nil, errs.Marshal.Wrap(err)
	}
	return data, nil
}

// DecodeEvent EncodeEvent的逆过程
func DecodeEvent(data []byte) (timer.Event, string, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return timer.Event{}, "", errs.Unmarshal.Wrap(err)
	}
	f := s.GetFields()
	str := func(k string) string { return f[k].GetStringValue() }
	num := func(k string) int64 { return int64(f[k].GetNumberValue()) }
	if _, ok := f["timer_id"]; !ok {
		return timer.Event{}, "", errs.Unmarshal.Printf("missing timer_id")
	}
	e := timer.Event{
		TimerID:  str("timer_id"),
		Name:     str("name"),
		Duration: time.Duration(num("duration_ms")) * time.Millisecond,
		At:       time.UnixMilli(num("at_ms")),
		Round:    int(num("round")),
	}
	return e, str("instance"), nil
}

func (r *Redis) String() string {
	return fmt.Sprintf("redis(%s)", r.channel)
}
