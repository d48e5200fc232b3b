package login

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ezer1025/rustymaple-go/internal/auth"
	"github.com/ezer1025/rustymaple-go/internal/store"
)

// fakeSession implements handler.Session for tests.
type fakeSession struct {
	user   *store.User
	ponged bool
}

func (f *fakeSession) MarkPonged()          { f.ponged = true }
func (f *fakeSession) User() *store.User    { return f.user }
func (f *fakeSession) SetUser(u *store.User) { f.user = u }
func (f *fakeSession) ClearUser()           { f.user = nil }

func encodeLoginRequest(username, password string) []byte {
	out := appendU16(nil, opLogin)
	out = appendU16(out, uint16(len(username)))
	out = append(out, username...)
	out = appendU16(out, uint16(len(password)))
	out = append(out, password...)
	return out
}

func fixedTime() time.Time { return time.Unix(0, 0) }

func TestLoginSuccessScenario(t *testing.T) {
	us := store.NewMemory()
	hasher := auth.NewHasher()
	hash, err := hasher.HashWithSalt("pw", [auth.SaltSize]byte{})
	require.NoError(t, err)

	_, err = us.Insert(context.Background(), store.NewUser{
		Username:      "bob",
		PasswordHash:  hash,
		CreationTime:  fixedTime(),
		BanResetTime:  fixedTime(),
		MuteResetTime: fixedTime(),
	})
	require.NoError(t, err)

	h := New(us, false, nil)
	h.Now = fixedTime

	sess := &fakeSession{}
	resp, ok := h.Handle(sess, encodeLoginRequest("bob", "pw"))
	require.True(t, ok)
	require.NotNil(t, sess.User())
	require.Equal(t, "bob", sess.User().Username)

	want := []byte{
		0x00, 0x00, // opcode
		0x00, 0x00, 0x00, 0x00, // code = LoginSuccess
		0x00, 0x00, // zero
		0x01, 0x00, 0x00, 0x00, // user id = 1
		0x00,       // zero
		0x00, 0x00, // admin flag
		0x03, 0x00, 'b', 'o', 'b',
		0x00,                                           // zero
		0x00,                                           // mute reason
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // mute reset
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // creation
		0x00, 0x00, 0x00, 0x00, // zero
	}
	require.Equal(t, want, resp)
}

func TestLoginIncorrectPassword(t *testing.T) {
	us := store.NewMemory()
	hasher := auth.NewHasher()
	hash, err := hasher.HashWithSalt("pw", [auth.SaltSize]byte{})
	require.NoError(t, err)
	_, err = us.Insert(context.Background(), store.NewUser{Username: "bob", PasswordHash: hash})
	require.NoError(t, err)

	h := New(us, false, nil)
	sess := &fakeSession{}
	resp, ok := h.Handle(sess, encodeLoginRequest("bob", "wrong"))
	require.True(t, ok)
	require.Equal(t, simpleResponse(codeIncorrectPassword), resp)
	require.Nil(t, sess.User())
}

func TestLoginNotRegisteredWithoutAutoRegister(t *testing.T) {
	us := store.NewMemory()
	h := New(us, false, nil)
	sess := &fakeSession{}
	resp, ok := h.Handle(sess, encodeLoginRequest("ghost", "pw"))
	require.True(t, ok)
	require.Equal(t, simpleResponse(codeNotRegistered), resp)
}

func TestLoginAutoRegisters(t *testing.T) {
	us := store.NewMemory()
	h := New(us, true, nil)
	sess := &fakeSession{}
	resp, ok := h.Handle(sess, encodeLoginRequest("newguy", "pw"))
	require.True(t, ok)
	require.NotNil(t, sess.User())

	gotCode := binary.LittleEndian.Uint32(resp[2:6])
	require.Equal(t, uint32(codeLoginSuccess), gotCode)
}

func TestLoginAlreadyLoggedIn(t *testing.T) {
	us := store.NewMemory()
	hasher := auth.NewHasher()
	hash, _ := hasher.HashWithSalt("pw", [auth.SaltSize]byte{})
	_, err := us.Insert(context.Background(), store.NewUser{Username: "bob", PasswordHash: hash, LoggedIn: true})
	require.NoError(t, err)

	h := New(us, false, nil)
	sess := &fakeSession{}
	resp, ok := h.Handle(sess, encodeLoginRequest("bob", "pw"))
	require.True(t, ok)
	require.Equal(t, simpleResponse(codeAlreadyLoggedIn), resp)
}

func TestLoginBanned(t *testing.T) {
	us := store.NewMemory()
	hasher := auth.NewHasher()
	hash, _ := hasher.HashWithSalt("pw", [auth.SaltSize]byte{})
	banReset := time.Unix(1_700_000_000, 0)
	_, err := us.Insert(context.Background(), store.NewUser{
		Username: "bob", PasswordHash: hash, BanReason: 2, BanResetTime: banReset,
	})
	require.NoError(t, err)

	h := New(us, false, nil)
	h.Now = func() time.Time { return time.Unix(0, 0) }

	sess := &fakeSession{}
	resp, ok := h.Handle(sess, encodeLoginRequest("bob", "pw"))
	require.True(t, ok)

	want := []byte{
		0x00, 0x00,
		0x02, 0x00, 0x00, 0x00,
		0x00, 0x00,
		0x02,
	}
	want = appendU64(want, 1_700_000_000)
	require.Equal(t, want, resp)
}

func TestPongInterceptedByRouterNotHandler(t *testing.T) {
	// The Handler itself doesn't special-case 0x0018 — the Router does
	// (spec.md §4.C). Feeding it straight to the Handler falls into the
	// default branch.
	h := New(store.NewMemory(), false, nil)
	sess := &fakeSession{}
	resp, ok := h.Handle(sess, appendU16(nil, handlerPongOpcode))
	require.False(t, ok)
	require.Nil(t, resp)
}

const handlerPongOpcode = 0x0018

func TestShowWorldsReturnsNoResponse(t *testing.T) {
	h := New(store.NewMemory(), false, nil)
	sess := &fakeSession{}
	resp, ok := h.Handle(sess, appendU16(nil, opShowWorlds))
	require.False(t, ok)
	require.Nil(t, resp)
}

func TestPINFlow(t *testing.T) {
	us := store.NewMemory()
	created, err := us.Insert(context.Background(), store.NewUser{Username: "bob"})
	require.NoError(t, err)

	h := New(us, false, nil)
	sess := &fakeSession{user: &created}

	// stage=1, sub_stage=1, no pin yet -> InsertNewPin
	req := appendU16(nil, opCheckPIN)
	req = append(req, 1, 1)
	resp, ok := h.Handle(sess, req)
	require.True(t, ok)
	require.Equal(t, simplePinResponse(pinInsertNew), resp)

	// insert pin "1234"
	ins := appendU16(nil, opInsertPIN)
	ins = append(ins, 1)
	ins = appendU16(ins, 4)
	ins = append(ins, "1234"...)
	resp, ok = h.Handle(sess, ins)
	require.True(t, ok)
	require.Equal(t, simplePinResponse(pinAccepted), resp)
	require.NotNil(t, sess.User().PinCode)

	// stage=1, sub_stage=1, pin set -> EnterPin
	resp, ok = h.Handle(sess, req)
	require.True(t, ok)
	require.Equal(t, simplePinResponse(pinEnterPin), resp)

	// stage=0, sub_stage=1, correct pin -> PinAccepted
	check := appendU16(nil, opCheckPIN)
	check = append(check, 1, 0)
	check = appendU32(check, 0)
	check = appendU16(check, 4)
	check = append(check, "1234"...)
	resp, ok = h.Handle(sess, check)
	require.True(t, ok)
	require.Equal(t, simplePinResponse(pinAccepted), resp)

	// stage=0, sub_stage=1, wrong pin -> PinFailed
	check2 := appendU16(nil, opCheckPIN)
	check2 = append(check2, 1, 0)
	check2 = appendU32(check2, 0)
	check2 = appendU16(check2, 4)
	check2 = append(check2, "9999"...)
	resp, ok = h.Handle(sess, check2)
	require.True(t, ok)
	require.Equal(t, simplePinResponse(pinFailed), resp)
}

func TestInsertPINChoiceZeroClearsUser(t *testing.T) {
	us := store.NewMemory()
	created, err := us.Insert(context.Background(), store.NewUser{Username: "bob"})
	require.NoError(t, err)

	h := New(us, false, nil)
	sess := &fakeSession{user: &created}

	req := appendU16(nil, opInsertPIN)
	req = append(req, 0)
	resp, ok := h.Handle(sess, req)
	require.False(t, ok)
	require.Nil(t, resp)
	require.Nil(t, sess.User())
}
