package core

import (
	"context"
	"time"

	"github.com/fixkme/mapletimer/mlog"
	"github.com/fixkme/mapletimer/status"
)

var Status *StatusModule

const statusStopTimeout = 3 * time.Second

type StatusModule struct {
	name   string
	server *status.Server
	opt    *status.ServerOpt
	exited chan struct{}
}

func InitStatusModule(name string, addr string, handler status.Handler) error {
	Status = &StatusModule{
		name: name,
		opt:  &status.ServerOpt{Addr: addr, Handler: handler},
	}
	return nil
}

func (s *StatusModule) OnInit() error {
	s.server = status.NewServer(s.opt)
	s.exited = make(chan struct{})
	return nil
}

func (s *StatusModule) Run() {
	defer close(s.exited)
	if err := s.server.Run(); err != nil {
		mlog.Errorf("%s run: %v", s.name, err)
	}
}

func (s *StatusModule) Destroy() {
	ctx, cancel := context.WithTimeout(context.Background(), statusStopTimeout)
	defer cancel()
	// 还没监听上时等一下, 否则Stop不生效
	select {
	case <-s.server.Booted():
	case <-s.exited:
		return
	case <-ctx.Done():
	}
	mlog.Infof("%s stop, %d conn(s) open", s.name, s.server.Conns())
	if err := s.server.Stop(ctx); err != nil {
		mlog.Warnf("%s stop: %v", s.name, err)
	}
}

func (s *StatusModule) Name() string {
	return s.name
}
