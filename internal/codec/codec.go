package codec

import "fmt"

// Encrypt transforms a plaintext payload for the wire: shuffle-encrypt,
// then AES-XOR keyed by *seq, then advance *seq with Morph. Returns the
// transformed payload; the header is encoded separately (EncodeHeader)
// before the morph so callers key the header off the pre-morph sequence.
func Encrypt(payload []byte, seq *Sequence) ([]byte, error) {
	shuffled := shuffleEncrypt(payload)
	out, err := aesXOR(shuffled, *seq)
	if err != nil {
		return nil, fmt.Errorf("codec: encrypt: %w", err)
	}
	*seq = Morph(*seq)
	return out, nil
}

// Decrypt inverts Encrypt: AES-XOR keyed by *seq, then shuffle-decrypt,
// then advance *seq with Morph. Callers on the receive path MUST call this
// strictly in frame-arrival order — recv sequence mutation is not
// safe to parallelize (spec.md §5).
func Decrypt(payload []byte, seq *Sequence) ([]byte, error) {
	aesOut, err := aesXOR(payload, *seq)
	if err != nil {
		return nil, fmt.Errorf("codec: decrypt: %w", err)
	}
	out := shuffleDecrypt(aesOut)
	*seq = Morph(*seq)
	return out, nil
}
