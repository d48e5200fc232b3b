package codec

import "encoding/binary"

// Handshake builds the unencrypted server->client handshake frame:
// LE u16 body length, then the body (version, subversion, recv_seq,
// send_seq, locale). spec.md §3 "Handshake frame", §8 scenario 1.
//
// recvSeq is the sequence the client will use as its send key; sendSeq is
// the sequence the client will use as its recv key — the session hands its
// own recv_seq first because the client's outbound direction is keyed off
// what the server will use to decrypt it.
func Handshake(recvSeq, sendSeq Sequence) []byte {
	body := make([]byte, 0, 2+2+len(Subversion)+SequenceSize+SequenceSize+1)

	body = appendU16(body, Version)
	body = appendU16(body, uint16(len(Subversion)))
	body = append(body, Subversion...)
	body = append(body, recvSeq[:]...)
	body = append(body, sendSeq[:]...)
	body = append(body, Locale)

	frame := make([]byte, 0, 2+len(body))
	frame = appendU16(frame, uint16(len(body)))
	frame = append(frame, body...)
	return frame
}

func appendU16(b []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(b, buf[:]...)
}
