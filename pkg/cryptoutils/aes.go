package cryptoutils

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// EncryptAESCBC encrypts block-aligned data under key with the given IV.
func EncryptAESCBC(data, key, iv []byte) ([]byte, error) {
	block, err := newAESBlock(data, key)
	if err != nil {
		return nil, err
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("%w: got %d", errInvalidIVLength, len(iv))
	}
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, data)

	return out, nil
}

// DecryptAESCBC decrypts block-aligned data under key with the given IV.
func DecryptAESCBC(data, key, iv []byte) ([]byte, error) {
	block, err := newAESBlock(data, key)
	if err != nil {
		return nil, err
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("%w: got %d", errInvalidIVLength, len(iv))
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)

	return out, nil
}

// EncryptAESECB encrypts block-aligned data under key in ECB mode.
func EncryptAESECB(data, key []byte) ([]byte, error) {
	block, err := newAESBlock(data, key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	NewECBEncrypter(block).CryptBlocks(out, data)

	return out, nil
}

// DecryptAESECB decrypts block-aligned data under key in ECB mode.
func DecryptAESECB(data, key []byte) ([]byte, error) {
	block, err := newAESBlock(data, key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	NewECBDecrypter(block).CryptBlocks(out, data)

	return out, nil
}

func newAESBlock(data, key []byte) (cipher.Block, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher init failed: %w", err)
	}
	if len(data)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", errNotBlockAligned, len(data))
	}

	return block, nil
}
