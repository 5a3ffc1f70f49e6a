package pinblock

import (
	"fmt"
	"strings"

	"github.com/andrei-cloud/go_tr31/pkg/cryptoutils"
)

const (
	iso4BlockLength = 16
	iso4Control     = 0x4
	iso4Filler      = 0xA
	iso4SeedLength  = 8
	iso4MaxPanLen   = 19
	iso4PanDigits   = 12
)

// EncodePinFieldISO4 builds the 16-byte format 4 PIN field. The second half
// of the field is the first 8 bytes of seed.
func EncodePinFieldISO4(pin string, seed []byte) ([]byte, error) {
	if err := validatePin(pin); err != nil {
		return nil, err
	}
	if len(seed) < iso4SeedLength {
		return nil, fmt.Errorf("%w: need %d bytes", errRandomSeedTooShort, iso4SeedLength)
	}

	field := make([]byte, iso4BlockLength)
	field[0] = iso4Control<<4 | byte(len(pin))
	for i := range pinFieldNibbs {
		v := byte(iso4Filler)
		if i < len(pin) {
			v = pin[i] - '0'
		}
		setNibble(field, 2+i, v)
	}
	copy(field[iso4SeedLength:], seed[:iso4SeedLength])

	return field, nil
}

// DecodePinFieldISO4 extracts the PIN from a clear format 4 PIN field.
func DecodePinFieldISO4(field []byte) (string, error) {
	if len(field) != iso4BlockLength {
		return "", fmt.Errorf("%w: %d bytes", errInvalidPinBlockLength, len(field))
	}

	return decodePinField(field, iso4Control, func(n byte) bool { return n == iso4Filler })
}

// EncodePanFieldISO4 builds the 16-byte format 4 PAN field: the number of PAN
// digits beyond 12, the PAN left padded to 12 digits, then zeros.
func EncodePanFieldISO4(pan string) ([]byte, error) {
	if pan == "" || len(pan) > iso4MaxPanLen {
		return nil, fmt.Errorf("%w: %d digits", errInvalidPanLength, len(pan))
	}
	if !isDigits(pan) {
		return nil, errInvalidPanDigits
	}

	extra := max(len(pan)-iso4PanDigits, 0)
	padded := strings.Repeat("0", max(iso4PanDigits-len(pan), 0)) + pan
	s := fmt.Sprintf("%d%s", extra, padded)
	s += strings.Repeat("0", 2*iso4BlockLength-len(s))

	return cryptoutils.Str2Raw(s)
}

// EncipherPinBlockISO4 returns E(E(pinField) XOR panField) under the AES key.
func EncipherPinBlockISO4(key []byte, pin, pan string, seed []byte) ([]byte, error) {
	pinField, err := EncodePinFieldISO4(pin, seed)
	if err != nil {
		return nil, err
	}
	panField, err := EncodePanFieldISO4(pan)
	if err != nil {
		return nil, err
	}

	a, err := cryptoutils.EncryptAESECB(pinField, key)
	if err != nil {
		return nil, fmt.Errorf("failed to encipher pin field: %w", err)
	}
	b, err := cryptoutils.XORBytes(a, panField)
	if err != nil {
		return nil, err
	}
	block, err := cryptoutils.EncryptAESECB(b, key)
	if err != nil {
		return nil, fmt.Errorf("failed to encipher intermediate block: %w", err)
	}

	return block, nil
}

// DecipherPinBlockISO4 recovers the PIN from an enciphered format 4 PIN block.
func DecipherPinBlockISO4(key, block []byte, pan string) (string, error) {
	if len(block) != iso4BlockLength {
		return "", fmt.Errorf("%w: %d bytes", errInvalidPinBlockLength, len(block))
	}
	panField, err := EncodePanFieldISO4(pan)
	if err != nil {
		return "", err
	}

	b, err := cryptoutils.DecryptAESECB(block, key)
	if err != nil {
		return "", fmt.Errorf("failed to decipher pin block: %w", err)
	}
	a, err := cryptoutils.XORBytes(b, panField)
	if err != nil {
		return "", err
	}
	pinField, err := cryptoutils.DecryptAESECB(a, key)
	if err != nil {
		return "", fmt.Errorf("failed to decipher intermediate block: %w", err)
	}

	return DecodePinFieldISO4(pinField)
}
