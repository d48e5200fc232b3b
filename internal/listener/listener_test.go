package listener

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ezer1025/rustymaple-go/internal/codec"
	"github.com/ezer1025/rustymaple-go/internal/config"
	"github.com/ezer1025/rustymaple-go/internal/netio/handler"
)

type nopRole struct{}

func (nopRole) Handle(_ handler.Session, _ []byte) ([]byte, bool) { return nil, false }

func TestListenerAcceptsAndHandshakes(t *testing.T) {
	cfg := config.Config{
		Address:       "127.0.0.1",
		Port:          0,
		ServerType:    config.RoleLogin,
		ClientWorkers: 2,
	}
	l := New(cfg, handler.NewRouter(nopRole{}), nil)
	l.Ready = make(chan net.Addr, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	var addr net.Addr
	select {
	case addr = <-l.Ready:
	case <-time.After(2 * time.Second):
		t.Fatal("listener never became ready")
	}

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	lenBytes := make([]byte, 2)
	_, err = conn.Read(lenBytes)
	require.NoError(t, err)
	bodyLen := binary.LittleEndian.Uint16(lenBytes)
	require.Greater(t, bodyLen, uint16(0))

	body := make([]byte, bodyLen)
	n := 0
	for n < len(body) {
		m, err := conn.Read(body[n:])
		require.NoError(t, err)
		n += m
	}
	require.Equal(t, codec.Version, binary.LittleEndian.Uint16(body[0:2]))

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop after context cancellation")
	}
}
