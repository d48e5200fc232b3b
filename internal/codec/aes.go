package codec

import (
	"crypto/aes"
	"fmt"
)

const (
	aesKeySize   = 32
	aesBlockSize = 16

	firstChunkSize = 1456
	laterChunkSize = 1460
)

// aesKey is the fixed 32-byte AES-256 key the reference client embeds.
// Reproduced verbatim from original_source/src/net/crypto.rs.
var aesKey = [aesKeySize]byte{
	0x13, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x06, 0x00, 0x00, 0x00, 0xB4, 0x00, 0x00, 0x00,
	0x1B, 0x00, 0x00, 0x00, 0x0F, 0x00, 0x00, 0x00, 0x33, 0x00, 0x00, 0x00, 0x52, 0x00, 0x00, 0x00,
}

// aesXOR applies the AES-256-ECB keystream layer over buf, chunked per
// spec.md §4.A (first chunk 1456 bytes, subsequent chunks 1460 bytes). The
// key block re-encrypts every 16 plaintext bytes within a chunk, resetting
// to the sequence-derived seed at the start of each new chunk.
//
// The block cipher is only ever invoked in the forward (encrypt)
// direction: since the keystream is combined with the plaintext by XOR,
// both encrypt and decrypt callers must derive the identical keystream, and
// only repeated forward encryption of the chaining block reproduces it on
// both sides. spec.md §4.A / §9 call this out explicitly as a corrected
// behavior relative to the historical reference implementation.
func aesXOR(buf []byte, seq Sequence) ([]byte, error) {
	block, err := aes.NewCipher(aesKey[:])
	if err != nil {
		return nil, fmt.Errorf("codec: aes.NewCipher: %w", err)
	}

	result := append([]byte(nil), buf...)

	seedBlock := make([]byte, aesBlockSize)
	for i := 0; i < aesBlockSize; i += SequenceSize {
		copy(seedBlock[i:i+SequenceSize], seq[:])
	}

	crypted := 0
	for crypted < len(result) {
		keyBlock := append([]byte(nil), seedBlock...)

		remaining := len(result) - crypted
		size := laterChunkSize
		if crypted == 0 {
			size = firstChunkSize
		}
		if remaining < size {
			size = remaining
		}

		scratch := make([]byte, aesBlockSize)
		for i := 0; i < size; i++ {
			if i%aesBlockSize == 0 {
				block.Encrypt(scratch, keyBlock)
				keyBlock, scratch = scratch, keyBlock
			}
			result[crypted+i] ^= keyBlock[i%aesBlockSize]
		}

		crypted += size
	}

	return result, nil
}
