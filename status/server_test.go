package status

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(line string) Handler {
	return func(string) string { return line }
}

func TestAnswerLines(t *testing.T) {
	reply, n, ok := Answer([]byte("a\nb\nrest"), fixed("Farming: 140s"))
	require.True(t, ok)
	assert.Equal(t, 4, n)
	assert.Equal(t, "Farming: 140s\nFarming: 140s\n", string(reply))
}

func TestAnswerPassesLine(t *testing.T) {
	var got []string
	echo := func(line string) string {
		got = append(got, line)
		return "ok"
	}
	reply, _, ok := Answer([]byte("cancel\r\nrestart\n\n"), echo)
	require.True(t, ok)
	assert.Equal(t, []string{"cancel", "restart", ""}, got)
	assert.Equal(t, "ok\nok\nok\n", string(reply))
}

func TestAnswerPartial(t *testing.T) {
	reply, n, ok := Answer([]byte("stat"), fixed("x"))
	require.True(t, ok)
	assert.Zero(t, n)
	assert.Empty(t, reply)
}

func TestAnswerTooLong(t *testing.T) {
	_, _, ok := Answer([]byte(strings.Repeat("x", maxLineSize+1)), fixed("x"))
	assert.False(t, ok)
}

func freeAddr(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServerRoundTrip(t *testing.T) {
	s := NewServer(&ServerOpt{Addr: freeAddr(t), Handler: fixed("Pickup: 25s")})
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run() }()

	select {
	case <-s.Booted():
	case err := <-errCh:
		t.Fatalf("server exited: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server not booted")
	}

	conn, err := net.DialTimeout("tcp", s.Addr(), time.Second)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(3*time.Second)))

	_, err = conn.Write([]byte("status\n"))
	require.NoError(t, err)
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "Pickup: 25s\n", line)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}
