package login

import (
	"context"
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/ezer1025/rustymaple-go/internal/netio/handler"
)

// insertPIN implements opcode 0x000A, grounded on
// original_source/src/net/handler/login/pin.rs::insert_pin_code.
func (h *Handler) insertPIN(sess handler.Session, body []byte) ([]byte, bool) {
	if len(body) < 1 {
		return nil, false
	}
	choice := body[0]
	rest := body[1:]

	if choice == 0 {
		sess.ClearUser()
		return nil, false
	}

	if len(rest) == 0 {
		return nil, false
	}

	pin, _, ok := lengthPrefixedString(rest)
	if !ok {
		h.logWarn("decode pin as utf-8 failed")
		return nil, false
	}

	user := sess.User()
	if user == nil {
		h.logWarn("received authenticated packet from non-authenticated user")
		return nil, false
	}

	if err := h.Store.UpdatePIN(context.Background(), user.ID, pin); err != nil {
		h.logWarn("update user pin code", zap.Error(err))
		return nil, false
	}
	user.PinCode = &pin
	sess.SetUser(user)

	return simplePinResponse(pinAccepted), true
}

// checkPIN implements opcode 0x0009, grounded on
// original_source/src/net/handler/login/pin.rs::check_pin_code.
func (h *Handler) checkPIN(sess handler.Session, body []byte) ([]byte, bool) {
	if len(body) < 1 {
		return nil, false
	}
	subStage := body[0]
	rest := body[1:]

	if len(rest) == 0 {
		if subStage == 0 {
			sess.ClearUser()
		}
		return nil, false
	}

	stage := rest[0]
	rest = rest[1:]

	switch stage {
	case 1:
		if subStage != 1 {
			return nil, false
		}
		user := sess.User()
		if user == nil {
			h.logWarn("received authenticated packet from non-authenticated user")
			return nil, false
		}
		if user.PinCode != nil {
			return simplePinResponse(pinEnterPin), true
		}
		return simplePinResponse(pinInsertNew), true

	case 0:
		if len(rest) < 4+2 {
			return nil, false
		}
		rest = rest[4:] // ignored u32
		pinLen := int(binary.LittleEndian.Uint16(rest[0:2]))
		rest = rest[2:]
		if len(rest) < pinLen {
			return nil, false
		}
		candidate := string(rest[:pinLen])

		user := sess.User()
		if user == nil {
			h.logWarn("received authenticated packet from non-authenticated user")
			return nil, false
		}

		if user.PinCode == nil {
			return simplePinResponse(pinInsertNew), true
		}

		if *user.PinCode != candidate {
			return simplePinResponse(pinFailed), true
		}

		switch subStage {
		case 1:
			return simplePinResponse(pinAccepted), true
		case 2:
			return simplePinResponse(pinInsertNew), true
		default:
			return nil, false
		}

	default:
		return nil, false
	}
}
