package cryptoutils

import (
	"crypto/aes"
	"fmt"
)

// AESCMAC computes the RFC 4493 AES-CMAC of data under key.
// The key may be 16, 24 or 32 bytes. The result is always one full AES block.
func AESCMAC(data, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher init failed: %w", err)
	}
	bs := block.BlockSize()

	l := make([]byte, bs)
	block.Encrypt(l, make([]byte, bs))
	k1 := shiftSubkey(l)
	k2 := shiftSubkey(k1)

	var (
		last []byte
		head []byte
	)
	switch rem := len(data) % bs; {
	case len(data) == 0:
		padded := make([]byte, bs)
		padded[0] = CMAC_PADDING_BYTE
		last, _ = XORBytes(padded, k2)
	case rem == 0:
		last, _ = XORBytes(data[len(data)-bs:], k1)
		head = data[:len(data)-bs]
	default:
		padded := make([]byte, bs)
		copy(padded, data[len(data)-rem:])
		padded[rem] = CMAC_PADDING_BYTE
		last, _ = XORBytes(padded, k2)
		head = data[:len(data)-rem]
	}

	x := make([]byte, bs)
	for i := 0; i < len(head); i += bs {
		in, _ := XORBytes(x, head[i:i+bs])
		block.Encrypt(x, in)
	}
	in, _ := XORBytes(x, last)
	block.Encrypt(x, in)

	return x, nil
}

// shiftSubkey shifts b left by one bit and folds in Rb when the top bit was set.
func shiftSubkey(b []byte) []byte {
	n := len(b)
	out := make([]byte, n)
	var carry byte
	for i := n - 1; i >= 0; i-- {
		out[i] = (b[i] << 1) | carry
		carry = b[i] >> 7
	}
	if b[0]&0x80 != 0 {
		out[n-1] ^= CMAC_RB
	}

	return out
}

// CalculateCMACCheckValue returns the first 8 bytes of the AES-CMAC of a zero block.
func CalculateCMACCheckValue(key []byte) ([]byte, error) {
	mac, err := AESCMAC(make([]byte, AES_BLOCK_SIZE), key)
	if err != nil {
		return nil, fmt.Errorf("failed to compute CMAC for check value: %w", err)
	}

	return mac[:CHECK_VALUE_LENGTH], nil
}
