// Package hsm holds the key block protection key of the service and performs
// TR-31 operations under it.
package hsm

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/andrei-cloud/go_tr31/pkg/cryptoutils"
	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

// DefaultTestKBPK is the AES-256 protection key used when none is configured.
const DefaultTestKBPK = "88E1AB2A2E3DD38C1FA039A536500CC8A87AB9D62DC92C01058FA79F44657DE6"

var errInvalidKBPK = errors.New("invalid key block protection key")

// HSM keeps the KBPK sealed in a memguard enclave and opens it only for the
// duration of a single operation.
type HSM struct {
	kbpk            *memguard.Enclave
	firmwareVersion string
}

// NewHSM creates a new HSM instance from a hex encoded AES-128, AES-192 or
// AES-256 KBPK.
func NewHSM(kbpkHex, firmwareVersion string) (*HSM, error) {
	key, err := hex.DecodeString(kbpkHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidKBPK, err)
	}
	switch len(key) {
	case cryptoutils.KEY_LENGTH_AES128, cryptoutils.KEY_LENGTH_AES192, cryptoutils.KEY_LENGTH_AES256:
	default:
		memguard.WipeBytes(key)

		return nil, fmt.Errorf("%w: %d bytes", errInvalidKBPK, len(key))
	}

	return &HSM{kbpk: memguard.NewEnclave(key), firmwareVersion: firmwareVersion}, nil
}

// FirmwareVersion returns the version string reported by diagnostics.
func (h *HSM) FirmwareVersion() string {
	return h.firmwareVersion
}

// Wrap protects key under the KBPK using a copy of header.
// Padding is drawn from a fresh random buffer.
func (h *HSM) Wrap(header *tr31.Header, key []byte, maskedKeyLen int) (string, error) {
	kbpk, err := h.kbpk.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open kbpk: %w", err)
	}
	defer kbpk.Destroy()

	seed := memguard.NewBufferRandom(max(len(key), maskedKeyLen) + cryptoutils.AES_BLOCK_SIZE)
	defer seed.Destroy()

	return tr31.Wrap(kbpk.Bytes(), header, key, maskedKeyLen, seed.Bytes())
}

// Unwrap verifies keyBlock under the KBPK and returns its header and clear key.
func (h *HSM) Unwrap(keyBlock string) (*tr31.Header, []byte, error) {
	kbpk, err := h.kbpk.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open kbpk: %w", err)
	}
	defer kbpk.Destroy()

	return tr31.Unwrap(kbpk.Bytes(), keyBlock)
}

// KBPKCheckValue returns the CMAC check value of the KBPK.
func (h *HSM) KBPKCheckValue() ([]byte, error) {
	kbpk, err := h.kbpk.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open kbpk: %w", err)
	}
	defer kbpk.Destroy()

	return cryptoutils.CalculateCMACCheckValue(kbpk.Bytes())
}

// RandomKey returns length random bytes.
func (h *HSM) RandomKey(length int) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("invalid key length %d", length)
	}
	buf := memguard.NewBufferRandom(length)
	defer buf.Destroy()

	return append([]byte(nil), buf.Bytes()...), nil
}
