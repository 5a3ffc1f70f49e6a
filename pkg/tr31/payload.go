package tr31

import (
	"encoding/binary"
	"fmt"
)

const (
	payloadLengthFieldLen = 2
	maxKeyBits            = 0xFFFF
)

// ConstructPayload builds the confidential payload: the key length in bits as
// a 16-bit big-endian integer, the key, and padding taken from seed. When
// maskedKeyLen exceeds the key length the padding hides the real key size.
// The result is a multiple of blockLen.
func ConstructPayload(key []byte, maskedKeyLen, blockLen int, seed []byte) ([]byte, error) {
	if len(key)*8 > maxKeyBits {
		return nil, fmt.Errorf("%w: %d bytes", ErrKeyTooLong, len(key))
	}
	if blockLen <= 0 {
		return nil, fmt.Errorf("%w: block length %d", ErrPaddingLengthUnderflow, blockLen)
	}

	effective := max(len(key), maskedKeyLen)
	total := (payloadLengthFieldLen + effective + blockLen - 1) / blockLen * blockLen
	padLen := total - (payloadLengthFieldLen + len(key))
	if padLen < 0 {
		return nil, fmt.Errorf("%w: %d", ErrPaddingLengthUnderflow, padLen)
	}
	if len(seed) < padLen {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrRandomSeedTooShort, padLen, len(seed))
	}

	payload := make([]byte, total)
	binary.BigEndian.PutUint16(payload, uint16(len(key)*8))
	copy(payload[payloadLengthFieldLen:], key)
	copy(payload[payloadLengthFieldLen+len(key):], seed[:padLen])

	return payload, nil
}

// ExtractKeyFromPayload returns the key carried in a decrypted payload.
// The returned slice is a copy.
func ExtractKeyFromPayload(payload []byte) ([]byte, error) {
	if len(payload) < payloadLengthFieldLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooShortForLength, len(payload))
	}
	bits := int(binary.BigEndian.Uint16(payload))
	keyLen := (bits + 7) / 8
	if len(payload)-payloadLengthFieldLen < keyLen {
		return nil, fmt.Errorf("%w: key needs %d bytes, payload carries %d",
			ErrPayloadTooShortForKey, keyLen, len(payload)-payloadLengthFieldLen)
	}

	key := make([]byte, keyLen)
	copy(key, payload[payloadLengthFieldLen:])

	return key, nil
}
