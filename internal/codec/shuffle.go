package codec

// shuffleEncrypt runs the six-pass, length-keyed permutation in place,
// mutating a copy of buf and returning it. Passes alternate forward
// (index 0 -> n-1) and backward (index n-1 -> 0), per spec.md §4.A.
//
// original_source/src/net/crypto.rs iterates the backward passes with
// `(result.len() - 1..=0).rev()`, a range that is empty in Rust — a latent
// bug noted in spec.md §9 that would make the cipher non-invertible. This
// implementation iterates the full backward range, as the spec mandates.
func shuffleEncrypt(buf []byte) []byte {
	result := append([]byte(nil), buf...)
	n := len(result)

	for pass := 0; pass < 6; pass++ {
		var carry byte
		length := byte(n % 256)

		if pass%2 == 0 {
			for i := 0; i < n; i++ {
				b := result[i]
				b = rotl8(b, 3)
				b += length
				b ^= carry
				carry = b
				b = rotr8(b, length)
				b = ^b
				b += 0x48
				length--
				result[i] = b
			}
		} else {
			for i := n - 1; i >= 0; i-- {
				b := result[i]
				b = rotl8(b, 4)
				b += length
				b ^= carry
				carry = b
				b ^= 0x13
				b = rotr8(b, 3)
				length--
				result[i] = b
			}
		}
	}

	return result
}

// shuffleDecrypt inverts shuffleEncrypt exactly: shuffleDecrypt(shuffleEncrypt(b)) == b.
func shuffleDecrypt(buf []byte) []byte {
	result := append([]byte(nil), buf...)
	n := len(result)

	for pass := 1; pass <= 6; pass++ {
		var carry byte
		length := byte(n % 256)

		if pass%2 == 0 {
			for i := 0; i < n; i++ {
				b := result[i]
				b -= 0x48
				b = ^b
				b = rotl8(b, length)
				t := b
				b ^= carry
				carry = t
				b -= length
				b = rotr8(b, 3)
				length--
				result[i] = b
			}
		} else {
			for i := n - 1; i >= 0; i-- {
				b := result[i]
				b = rotl8(b, 3)
				b ^= 0x13
				t := b
				b ^= carry
				carry = t
				b -= length
				b = rotr8(b, 4)
				length--
				result[i] = b
			}
		}
	}

	return result
}

func rotl8(b, n byte) byte {
	n &= 7
	return (b << n) | (b >> (8 - n))
}

func rotr8(b, n byte) byte {
	n &= 7
	return (b >> n) | (b << (8 - n))
}
