// Package placeholder implements the World and Channel role handlers.
// spec.md scopes game content out of the core (component E): both accept
// the same Handler contract as LoginHandler and return no reply for every
// opcode, honoring the Router's pong pre-emption since neither ever sees
// opcode 0x0018.
//
// Grounded on original_source/src/net/handler/world_handler.rs and
// channel_handler.rs, which are themselves one-line stubs returning None.
package placeholder

import (
	"github.com/ezer1025/rustymaple-go/internal/netio/handler"
)

// World is the placeholder handler for the "world" server role.
type World struct{}

func (World) Handle(sess handler.Session, payload []byte) ([]byte, bool) {
	return nil, false
}

// Channel is the placeholder handler for the "channel" server role.
type Channel struct{}

func (Channel) Handle(sess handler.Session, payload []byte) ([]byte, bool) {
	return nil, false
}

var (
	_ handler.RoleHandler = World{}
	_ handler.RoleHandler = Channel{}
)
