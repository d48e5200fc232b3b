// Package login implements spec.md component D: the login handshake
// protocol (credential check, auto-registration, ban handling) and the
// PIN-code sub-protocol.
//
// Grounded on original_source/src/net/handler/login/login.rs and
// .../login/pin.rs (the reference this distills), wired to the
// store.UserStore and auth.Hasher collaborators per spec.md §4.D/§4.G.
package login

import (
	"context"
	"encoding/binary"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ezer1025/rustymaple-go/internal/auth"
	"github.com/ezer1025/rustymaple-go/internal/netio/handler"
	"github.com/ezer1025/rustymaple-go/internal/store"
)

const (
	opLogin     = 0x0001
	opCheckPIN  = 0x0009
	opInsertPIN = 0x000A
	opShowWorlds = 0x000B
)

// Handler is the login-role RoleHandler (spec.md component D).
type Handler struct {
	Store        store.UserStore
	Hasher       auth.Hasher
	AutoRegister bool
	Log          *zap.Logger

	// Now is overridable for deterministic tests; defaults to time.Now.
	Now func() time.Time
}

// New builds a login Handler with sane defaults.
func New(us store.UserStore, autoRegister bool, log *zap.Logger) *Handler {
	return &Handler{
		Store:        us,
		Hasher:       auth.NewHasher(),
		AutoRegister: autoRegister,
		Log:          log,
		Now:          time.Now,
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Handle implements handler.RoleHandler, dispatching on the opcode table
// in spec.md §4.D.
func (h *Handler) Handle(sess handler.Session, payload []byte) ([]byte, bool) {
	if len(payload) < 2 {
		return nil, false
	}
	opcode := binary.LittleEndian.Uint16(payload[0:2])
	body := payload[2:]

	switch opcode {
	case opLogin:
		return h.login(sess, body)
	case opCheckPIN:
		return h.checkPIN(sess, body)
	case opInsertPIN:
		return h.insertPIN(sess, body)
	case opShowWorlds:
		return nil, false
	default:
		return nil, false
	}
}

// lengthPrefixedString reads a [u16 length][bytes] string starting at buf,
// returning the decoded string and the remainder of buf after it.
func lengthPrefixedString(buf []byte) (string, []byte, bool) {
	if len(buf) < 2 {
		return "", buf, false
	}
	n := int(binary.LittleEndian.Uint16(buf[0:2]))
	buf = buf[2:]
	if len(buf) < n {
		return "", buf, false
	}
	return string(buf[:n]), buf[n:], true
}

func (h *Handler) login(sess handler.Session, body []byte) ([]byte, bool) {
	usernameBytes, rest, ok := lengthPrefixedString(body)
	if !ok {
		return simpleResponse(codeServerError), true
	}
	passwordBytes, _, ok := lengthPrefixedString(rest)
	if !ok {
		return simpleResponse(codeServerError), true
	}

	if !utf8.ValidString(usernameBytes) || !utf8.ValidString(passwordBytes) {
		h.logWarn("decode credentials as utf-8 failed")
		return simpleResponse(codeServerError), true
	}
	username, password := usernameBytes, passwordBytes

	ctx := context.Background()
	user, err := h.Store.FindByUsername(ctx, username)
	if err != nil {
		h.logWarn("query user store", zap.Error(err))
		return simpleResponse(codeServerError), true
	}

	if user == nil {
		return h.autoRegister(ctx, sess, username, password)
	}

	if !h.Hasher.Verify(password, user.PasswordHash) {
		return simpleResponse(codeIncorrectPassword), true
	}

	if user.LoggedIn {
		return simpleResponse(codeAlreadyLoggedIn), true
	}

	now := h.now()
	if user.Banned(now) {
		return bannedResponse(byte(user.BanReason), uint64(user.BanResetTime.Unix())), true
	}

	sess.SetUser(user)
	return loginSuccessResponse(user.ID, user.IsAdmin, user.Username, byte(user.MuteReason),
		uint64(user.MuteResetTime.Unix()), uint64(user.CreationTime.Unix())), true
}

func (h *Handler) autoRegister(ctx context.Context, sess handler.Session, username, password string) ([]byte, bool) {
	if !h.AutoRegister {
		return simpleResponse(codeNotRegistered), true
	}

	salt, err := auth.GenerateSalt()
	if err != nil {
		h.logWarn("generate salt", zap.Error(err))
		return simpleResponse(codeNotRegistered), true
	}

	hash, err := h.Hasher.HashWithSalt(password, salt)
	if err != nil {
		h.logWarn("hash password", zap.Error(err))
		return simpleResponse(codeNotRegistered), true
	}

	now := h.now()
	created, err := h.Store.Insert(ctx, store.NewUser{
		Username:      username,
		PasswordHash:  hash,
		Salt:          salt[:],
		IsAdmin:       false,
		IsFemale:      false,
		LoggedIn:      false,
		PinCode:       nil,
		CreationTime:  now,
		BanReason:     0,
		BanResetTime:  now,
		MuteReason:    0,
		MuteResetTime: now,
	})
	if err != nil {
		h.logWarn("insert new user", zap.Error(err))
		return simpleResponse(codeNotRegistered), true
	}

	sess.SetUser(&created)
	return loginSuccessResponse(created.ID, created.IsAdmin, created.Username, byte(created.MuteReason),
		uint64(created.MuteResetTime.Unix()), uint64(created.CreationTime.Unix())), true
}

func (h *Handler) logWarn(msg string, fields ...zap.Field) {
	if h.Log != nil {
		h.Log.Warn(msg, fields...)
	}
}

var _ handler.RoleHandler = (*Handler)(nil)
