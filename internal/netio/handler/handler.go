// Package handler defines the role-handler contract (spec.md component C)
// and the Router that intercepts the universal pong opcode before
// dispatching everything else to a role handler.
//
// Grounded on original_source/src/net/handler/mod.rs's GenericHandler
// trait + get_handler_by_name dispatch, and on the teacher's single
// `packetHandler` indirection in handler.go (processPacket's state-keyed
// switch), generalized to spec.md's opcode-keyed dispatch.
package handler

import (
	"encoding/binary"

	"github.com/ezer1025/rustymaple-go/internal/store"
)

// PongOpcode is the universal opcode every role handler shares: the
// client's keep-alive acknowledgement (spec.md §4.C).
const PongOpcode = 0x0018

// Session is the subset of per-connection state a role handler is allowed
// to touch. Implemented by *session.Session; kept as a narrow interface
// here so this package doesn't import session (which imports this
// package to dispatch).
type Session interface {
	// MarkPonged records that a pong was received since the last ping
	// tick. Must not block on I/O (spec.md §5: "lock scopes MUST NOT
	// span I/O").
	MarkPonged()

	// User returns the session's authenticated principal, or nil.
	User() *store.User
	// SetUser installs the session's authenticated principal.
	SetUser(u *store.User)
	// ClearUser deauthenticates the session.
	ClearUser()
}

// RoleHandler handles every opcode except the universal pong, which the
// Router intercepts. A nil response byte slice with ok=false means "no
// reply" (spec.md: "Option<(response_bytes, response_len)>").
type RoleHandler interface {
	Handle(sess Session, payload []byte) (response []byte, ok bool)
}

// Router wraps a RoleHandler and intercepts PongOpcode, matching spec.md
// §4.C: "0x0018 — pong: sets ponged := true; produces no response. Any
// other opcode is forwarded to the role handler."
type Router struct {
	Role RoleHandler
}

// NewRouter builds a Router around a role handler.
func NewRouter(role RoleHandler) *Router {
	return &Router{Role: role}
}

// Dispatch decodes the little-endian u16 opcode at payload[0:2] and routes
// accordingly.
func (r *Router) Dispatch(sess Session, payload []byte) (response []byte, ok bool) {
	if len(payload) < 2 {
		return nil, false
	}

	opcode := binary.LittleEndian.Uint16(payload[0:2])
	if opcode == PongOpcode {
		sess.MarkPonged()
		return nil, false
	}

	return r.Role.Handle(sess, payload)
}
