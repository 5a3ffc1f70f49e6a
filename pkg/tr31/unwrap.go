package tr31

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/andrei-cloud/go_tr31/pkg/cryptoutils"
)

const minKeyBlockLen = HeaderLen + 2*aesBlock + macHexLen

// Unwrap verifies a key block under kbpk and returns its header and the clear
// key. No key material is returned when authentication fails.
func Unwrap(kbpk []byte, keyBlock string) (*Header, []byte, error) {
	h, err := ParseHeader(keyBlock)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse header: %w", err)
	}
	if len(keyBlock) != h.KBLength() {
		return nil, nil, fmt.Errorf("%w: header declares %d, got %d",
			ErrLengthMismatch, h.KBLength(), len(keyBlock))
	}
	if len(keyBlock) < minKeyBlockLen {
		return nil, nil, fmt.Errorf("%w: %d characters", ErrKeyBlockTooShort, len(keyBlock))
	}
	if h.VersionID() != VersionD {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, h.VersionID())
	}

	// split header, ciphertext and MAC.
	hlen := h.Len()
	if hlen+macHexLen >= len(keyBlock) {
		return nil, nil, fmt.Errorf("%w: no ciphertext after %d header characters",
			ErrKeyBlockTooShort, hlen)
	}
	ctHex := keyBlock[hlen : len(keyBlock)-macHexLen]
	macHex := keyBlock[len(keyBlock)-macHexLen:]
	ciphertext, err := hex.DecodeString(ctHex)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: ciphertext: %v", ErrInvalidHex, err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aesBlock != 0 {
		return nil, nil, fmt.Errorf("%w: ciphertext of %d bytes is not block aligned",
			ErrKeyBlockTooShort, len(ciphertext))
	}
	mac, err := hex.DecodeString(macHex)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: mac: %v", ErrInvalidHex, err)
	}

	kbek, kbak, err := DeriveKeysVersionD(kbpk)
	if err != nil {
		return nil, nil, fmt.Errorf("key derivation failed: %w", err)
	}
	defer memguard.WipeBytes(kbek)
	defer memguard.WipeBytes(kbak)

	payload, err := cryptoutils.DecryptAESCBC(ciphertext, kbek, mac)
	if err != nil {
		return nil, nil, fmt.Errorf("payload decryption failed: %w", err)
	}
	defer memguard.WipeBytes(payload)

	// verify the MAC over the header as received and the clear payload.
	macInput := make([]byte, 0, hlen+len(payload))
	macInput = append(macInput, keyBlock[:hlen]...)
	macInput = append(macInput, payload...)
	expected, err := cryptoutils.AESCMAC(macInput, kbak)
	memguard.WipeBytes(macInput)
	if err != nil {
		return nil, nil, fmt.Errorf("cmac computation failed: %w", err)
	}
	if subtle.ConstantTimeCompare(expected, mac) != 1 {
		return nil, nil, ErrMACVerificationFailed
	}

	key, err := ExtractKeyFromPayload(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract key: %w", err)
	}

	return h, key, nil
}
