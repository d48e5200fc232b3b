package session

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ezer1025/rustymaple-go/internal/codec"
	"github.com/ezer1025/rustymaple-go/internal/neterr"
)

// sendLoop owns the write half of the connection and is the single writer,
// so outbound frame ordering on the wire equals enqueue order (spec.md §8
// "Ordering"). Any write error closes the session.
func (s *Session) sendLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case f, ok := <-s.sendCh:
			if !ok {
				s.Close(neterr.Wrap(neterr.Session, "send channel closed", io.ErrClosedPipe))
				return
			}

			wire := f.payload
			if f.encrypted {
				header := codec.EncodeHeader(uint16(len(f.payload)), s.sendSeq)
				encrypted, err := codec.Encrypt(f.payload, &s.sendSeq)
				if err != nil {
					s.Close(neterr.Wrap(neterr.Frame, "encrypt outbound frame", err))
					return
				}
				wire = append(header[:], encrypted...)
			}

			if _, err := s.conn.Write(wire); err != nil {
				s.Close(neterr.Wrap(neterr.Session, "write to connection", err))
				return
			}
		}
	}
}

// pingLoop sends an encrypted ping every 15s and closes the session if the
// previous ping went unanswered, per spec.md §4.B/§5/§8 "Ping timeout".
func (s *Session) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if !s.ponged.CompareAndSwap(true, false) {
				s.Close(neterr.Wrap(neterr.Session, "ping timeout", errPingTimeout))
				return
			}

			ping := make([]byte, 2)
			binary.LittleEndian.PutUint16(ping, pingOpcode)
			s.enqueue(outboundFrame{payload: ping, encrypted: true})
		}
	}
}

// receiveLoop reads exactly one header then one payload per iteration and
// decrypts it synchronously — recv_seq mutation must happen strictly in
// arrival order (spec.md §5, §9). Only the post-decode handler body is
// handed to the bounded dispatch pool, so handler work can run
// concurrently without reordering sequence state.
func (s *Session) receiveLoop() error {
	sem := make(chan struct{}, s.workers)

	for {
		headerBytes, err := readExact(s.conn, codec.HeaderLength)
		if err != nil {
			return neterr.Wrap(neterr.Session, "read frame header", err)
		}

		var header [codec.HeaderLength]byte
		copy(header[:], headerBytes)
		length := codec.DecodeLength(header)

		encryptedPayload, err := readExact(s.conn, int(length))
		if err != nil {
			return neterr.Wrap(neterr.Session, "read frame payload", err)
		}

		decrypted, err := codec.Decrypt(encryptedPayload, &s.recvSeq)
		if err != nil {
			s.log.Warn("dropping undecryptable frame", zap.Error(err))
			continue
		}

		sem <- struct{}{}
		go func(payload []byte) {
			defer func() { <-sem }()
			s.dispatch(payload)
		}(decrypted)
	}
}

func (s *Session) dispatch(payload []byte) {
	if s.router == nil {
		return
	}
	response, ok := s.router.Dispatch(s, payload)
	if !ok {
		return
	}
	s.enqueue(outboundFrame{payload: response, encrypted: true})
}

var errPingTimeout = fmt.Errorf("no pong received within the keep-alive window")
