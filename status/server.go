package status

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/panjf2000/gnet/v2"

	"github.com/fixkme/mapletimer/mlog"
)

// 单行请求的上限, 超过直接断开
const maxLineSize = 1024

// Handler 处理一行请求(不含换行), 返回应答行
type Handler func(line string) string

type ServerOpt struct {
	gnet.Options
	Addr    string
	Handler Handler
}

// Server 按行应答的状态服务, 每收到一行回一行
type Server struct {
	gnet.BuiltinEventEngine
	gnet.Engine
	opt     *ServerOpt
	booted  chan struct{}
	running atomic.Bool
	conns   atomic.Int32
}

func NewServer(opt *ServerOpt) *Server {
	if opt.Handler == nil {
		opt.Handler = func(string) string { return "" }
	}
	return &Server{
		opt:    opt,
		booted: make(chan struct{}),
	}
}

func (s *Server) Addr() string {
	return s.opt.Addr
}

// Booted 监听成功后关闭
func (s *Server) Booted() <-chan struct{} {
	return s.booted
}

func (s *Server) Conns() int32 {
	return s.conns.Load()
}

func (s *Server) OnBoot(eng gnet.Engine) gnet.Action {
	s.Engine = eng
	s.running.Store(true)
	close(s.booted)
	mlog.Infof("status server listening on %s", s.opt.Addr)
	return gnet.None
}

func (s *Server) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	s.conns.Add(1)
	return nil, gnet.None
}

func (s *Server) OnClose(c gnet.Conn, err error) gnet.Action {
	s.conns.Add(-1)
	if err != nil {
		mlog.Debugf("status conn %v closed: %v", c.RemoteAddr(), err)
	}
	return gnet.None
}

func (s *Server) OnTraffic(c gnet.Conn) gnet.Action {
	buf, err := c.Peek(-1)
	if err != nil {
		return gnet.None
	}
	reply, consumed, ok := Answer(buf, s.opt.Handler)
	if !ok {
		mlog.Warnf("status conn %v line too long, close", c.RemoteAddr())
		return gnet.Close
	}
	if consumed == 0 {
		return gnet.None
	}
	c.Discard(consumed)
	if _, err = c.Write(reply); err != nil {
		mlog.Warnf("status conn %v write err: %v", c.RemoteAddr(), err)
		return gnet.Close
	}
	return gnet.None
}

// Answer 处理缓冲区内所有完整的行, 返回应答和消费的字节数.
// 没有换行且超过上限时ok为false
func Answer(buf []byte, handler Handler) (reply []byte, consumed int, ok bool) {
	for {
		idx := bytes.IndexByte(buf[consumed:], '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimRight(buf[consumed:consumed+idx], "\r")
		consumed += idx + 1
		reply = append(reply, handler(string(line))...)
		reply = append(reply, '\n')
	}
	if len(buf)-consumed > maxLineSize {
		return nil, 0, false
	}
	return reply, consumed, true
}

// Run 阻塞到服务停止
func (s *Server) Run() error {
	addr := s.opt.Addr
	if !strings.Contains(addr, "://") {
		addr = "tcp://" + addr
	}
	err := gnet.Run(s, addr, gnet.WithOptions(s.opt.Options))
	if err != nil {
		return fmt.Errorf("status server run: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	return s.Engine.Stop(ctx)
}
