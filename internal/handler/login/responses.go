package login

import "encoding/binary"

// responseCode enumerates the login response codes from
// original_source/src/net/handler/login/login.rs's LoginResponseType,
// reproduced in spec.md §4.D.
type responseCode uint32

const (
	codeLoginSuccess      responseCode = 0
	codeBanned            responseCode = 2
	codeIncorrectPassword responseCode = 4
	codeNotRegistered     responseCode = 5
	codeServerError       responseCode = 6
	codeAlreadyLoggedIn   responseCode = 7
)

// pinCode enumerates the PIN sub-protocol response codes from
// original_source/src/net/handler/login/pin.rs's PinResponseType.
type pinCode uint8

const (
	pinAccepted    pinCode = 0
	pinInsertNew   pinCode = 1
	pinFailed      pinCode = 2
	pinSystemError pinCode = 3
	pinEnterPin    pinCode = 4
	pinAlreadyIn   pinCode = 7
)

const pinOpcode uint16 = 0x000D

func appendU16(b []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(b, buf[:]...)
}

func appendU32(b []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(b, buf[:]...)
}

func appendU64(b []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(b, buf[:]...)
}

// simpleResponse builds [opcode 0][code u32][zero u16], spec.md §4.D.
func simpleResponse(code responseCode) []byte {
	out := make([]byte, 0, 8)
	out = appendU16(out, 0)
	out = appendU32(out, uint32(code))
	out = appendU16(out, 0)
	return out
}

// bannedResponse builds the Banned frame: simple response plus a reason
// byte and a u64 ban-reset unix timestamp.
func bannedResponse(reason byte, banResetUnix uint64) []byte {
	out := simpleResponse(codeBanned)
	out = append(out, reason)
	out = appendU64(out, banResetUnix)
	return out
}

// loginSuccessResponse builds the LoginSuccess frame body described in
// spec.md §4.D and pinned by §8 scenario 4.
func loginSuccessResponse(userID int32, isAdmin bool, username string, muteReason byte, muteResetUnix, creationUnix uint64) []byte {
	out := simpleResponse(codeLoginSuccess)
	out = appendU32(out, uint32(userID))
	out = append(out, 0)

	adminFlag := uint16(0)
	if isAdmin {
		adminFlag = 0x8001
	}
	out = appendU16(out, adminFlag)

	out = appendU16(out, uint16(len(username)))
	out = append(out, username...)

	out = append(out, 0)
	out = append(out, muteReason)
	out = appendU64(out, muteResetUnix)
	out = appendU64(out, creationUnix)
	out = appendU32(out, 0)
	return out
}

// simplePinResponse builds [u16 0x000D][u8 code], spec.md §4.D PIN
// sub-protocol.
func simplePinResponse(code pinCode) []byte {
	out := make([]byte, 0, 3)
	out = appendU16(out, pinOpcode)
	out = append(out, byte(code))
	return out
}
