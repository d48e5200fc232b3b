// Package listener implements spec.md component F: binding a TCP socket
// for one server role, accepting connections, and handing each one to a
// fresh session.Session.
//
// Grounded on the teacher's main.go accept loop (listener.Accept loop with
// a per-connection goroutine) and handler.go's panic-recovery wrapper
// around handleConnection, generalized to the role-selected Router and
// the worker-pool size from config.Config.
package listener

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/hashicorp/yamux"
	"go.uber.org/zap"

	"github.com/ezer1025/rustymaple-go/internal/config"
	"github.com/ezer1025/rustymaple-go/internal/netio/handler"
	"github.com/ezer1025/rustymaple-go/internal/session"
)

// Listener binds one TCP socket and serves one server role.
type Listener struct {
	cfg    config.Config
	router *handler.Router
	log    *zap.Logger

	// Ready, if set, receives the bound address once Run has started
	// listening. Tests set this to discover an ephemeral port; production
	// callers can leave it nil.
	Ready chan net.Addr
}

// New builds a Listener for the given config and role router.
func New(cfg config.Config, router *handler.Router, log *zap.Logger) *Listener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Listener{cfg: cfg, router: router, log: log}
}

// Run binds the configured address and serves connections until ctx is
// canceled. It returns an error only when the bind fails; an Accept error
// is logged and the loop keeps accepting. spec.md §6 "On start": bind,
// log, accept loop.
func (l *Listener) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", l.cfg.Address, l.cfg.ListenPort())
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listener: bind %q: %w", addr, err)
	}
	defer ln.Close()

	l.log.Info("listener started",
		zap.String("addr", ln.Addr().String()),
		zap.String("role", string(l.cfg.ServerType)),
	)
	if l.Ready != nil {
		l.Ready <- ln.Addr()
	}

	if l.cfg.ServerType == config.RoleChannel && l.cfg.WorldCoordinatorAddr != "" {
		go l.reportToCoordinator(ctx)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				l.log.Warn("accept failed", zap.Error(err))
				continue
			}
		}
		go l.serve(conn)
	}
}

// serve runs one connection's session to completion, recovering from any
// panic in a handler the way the teacher's handleConnection guards
// against a single bad connection taking the process down.
func (l *Listener) serve(conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("recovered from panic in session", zap.Any("panic", r))
			conn.Close()
		}
	}()

	sess := session.New(session.Config{
		Conn:    conn,
		Router:  l.router,
		Workers: l.cfg.ClientWorkers,
		Log:     l.log,
	})
	if err := sess.Run(); err != nil {
		l.log.Debug("session ended", zap.Error(err))
	}
}

// reportToCoordinator dials WorldCoordinatorAddr and opens a yamux control
// stream used only to register this channel's bound port and sequence
// number. No game traffic ever crosses this connection — see
// SPEC_FULL.md DOMAIN STACK for why yamux survives the rewrite in this
// one, off-protocol role.
func (l *Listener) reportToCoordinator(ctx context.Context) {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := l.runCoordinatorStream(ctx); err != nil {
			l.log.Warn("coordinator control stream failed, retrying", zap.Error(err), zap.Duration("backoff", backoff))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (l *Listener) runCoordinatorStream(ctx context.Context) error {
	conn, err := net.DialTimeout("tcp", l.cfg.WorldCoordinatorAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("listener: dial coordinator: %w", err)
	}
	defer conn.Close()

	sess, err := yamux.Client(conn, nil)
	if err != nil {
		return fmt.Errorf("listener: yamux client handshake: %w", err)
	}
	defer sess.Close()

	stream, err := sess.Open()
	if err != nil {
		return fmt.Errorf("listener: open control stream: %w", err)
	}
	defer stream.Close()

	msg := make([]byte, 6)
	binary.LittleEndian.PutUint16(msg[0:2], l.cfg.ListenPort())
	binary.LittleEndian.PutUint32(msg[2:6], uint32(l.cfg.ChannelSequence))
	if _, err := stream.Write(msg); err != nil {
		return fmt.Errorf("listener: write registration: %w", err)
	}

	<-sess.CloseChan()
	return nil
}
