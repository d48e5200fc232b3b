package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShuffleRoundTrip(t *testing.T) {
	lengths := []int{0, 1, 2, 7, 16, 17, 255, 256, 1024, 4096}
	for _, n := range lengths {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(i*7 + 3)
		}
		enc := shuffleEncrypt(buf)
		dec := shuffleDecrypt(enc)
		require.Equal(t, buf, dec, "length %d", n)
	}
}

func TestAESXORInvolution(t *testing.T) {
	seq := Sequence{0x11, 0x22, 0x33, 0x44}
	plain := make([]byte, 3000)
	for i := range plain {
		plain[i] = byte(i)
	}

	enc, err := aesXOR(plain, seq)
	require.NoError(t, err)

	dec, err := aesXOR(enc, seq)
	require.NoError(t, err)
	require.Equal(t, plain, dec)
}

func TestCodecRoundTrip(t *testing.T) {
	sendSeq := Sequence{0x01, 0x02, 0x03, 0x04}
	recvSeq := sendSeq

	payload := []byte("the quick brown fox jumps over the lazy dog")

	encrypted, err := Encrypt(payload, &sendSeq)
	require.NoError(t, err)

	decrypted, err := Decrypt(encrypted, &recvSeq)
	require.NoError(t, err)

	require.Equal(t, payload, decrypted)
	require.Equal(t, sendSeq, recvSeq, "both sides must morph exactly once to the same state")
}

func TestHeaderSelfConsistency(t *testing.T) {
	seq := Sequence{0xDE, 0xAD, 0xBE, 0xEF}
	for _, length := range []uint16{0, 1, 0xFF, 0x1234, 0xFFFF} {
		header := EncodeHeader(length, seq)
		require.Equal(t, length, DecodeLength(header))
	}
}

func TestDecodeLengthScenario(t *testing.T) {
	header := [HeaderLength]byte{0xAA, 0xBB, 0xCC, 0xDD}
	require.Equal(t, uint16(0x6666), DecodeLength(header))
}

func TestMorphDeterminism(t *testing.T) {
	seq := Sequence{0x00, 0x00, 0x00, 0x00}
	a := Morph(seq)
	b := Morph(seq)
	require.Equal(t, a, b)

	// spec.md §8 scenario 3: Morph([0,0,0,0]) is pinned to this byte-exact
	// value, derived from the seed accumulator, the shift table, and four
	// rounds (one per input byte) of the mix-then-rotl32-by-3 step.
	require.Equal(t, Sequence{0x11, 0xBB, 0x64, 0xC7}, a)
}

func TestHandshakeBytes(t *testing.T) {
	recvSeq := Sequence{0x01, 0x02, 0x03, 0x04}
	sendSeq := Sequence{0x05, 0x06, 0x07, 0x08}

	got := Handshake(recvSeq, sendSeq)
	want := []byte{
		0x0E, 0x00, 0x37, 0x00, 0x01, 0x00, 0x31,
		0x01, 0x02, 0x03, 0x04,
		0x05, 0x06, 0x07, 0x08,
		0x08,
	}
	require.Equal(t, want, got)
}
