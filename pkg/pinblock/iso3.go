package pinblock

import (
	"fmt"

	"github.com/andrei-cloud/go_tr31/pkg/cryptoutils"
)

const (
	iso3BlockLength = 8
	iso3Control     = 0x3
	iso3MinPanLen   = 13
)

// EncodePinFieldISO3 builds the 8-byte format 3 PIN field. Filler nibbles are
// taken from the first 8 bytes of seed mapped into A-F.
func EncodePinFieldISO3(pin string, seed []byte) ([]byte, error) {
	if err := validatePin(pin); err != nil {
		return nil, err
	}
	if len(seed) < iso3BlockLength {
		return nil, fmt.Errorf("%w: need %d bytes", errRandomSeedTooShort, iso3BlockLength)
	}

	field := fillerAF(seed[:iso3BlockLength])
	field[0] = iso3Control<<4 | byte(len(pin))
	for i := range len(pin) {
		setNibble(field, 2+i, pin[i]-'0')
	}

	return field, nil
}

// DecodePinFieldISO3 extracts the PIN from a clear format 3 PIN field.
func DecodePinFieldISO3(field []byte) (string, error) {
	if len(field) != iso3BlockLength {
		return "", fmt.Errorf("%w: %d bytes", errInvalidPinBlockLength, len(field))
	}

	return decodePinField(field, iso3Control, func(n byte) bool { return n >= 0xA })
}

// EncodePanFieldISO3 builds the format 3 PAN field from the 12 rightmost PAN
// digits excluding the check digit.
func EncodePanFieldISO3(pan string) ([]byte, error) {
	if len(pan) < iso3MinPanLen {
		return nil, fmt.Errorf("%w: need at least %d digits", errInvalidPanLength, iso3MinPanLen)
	}
	if !isDigits(pan) {
		return nil, errInvalidPanDigits
	}

	digits := pan[len(pan)-13 : len(pan)-1]
	field := make([]byte, iso3BlockLength)
	for i := range len(digits) {
		setNibble(field, 4+i, digits[i]-'0')
	}

	return field, nil
}

// EncodePinBlockISO3 returns the clear format 3 PIN block: PIN field XOR PAN field.
func EncodePinBlockISO3(pin, pan string, seed []byte) ([]byte, error) {
	pinField, err := EncodePinFieldISO3(pin, seed)
	if err != nil {
		return nil, err
	}
	panField, err := EncodePanFieldISO3(pan)
	if err != nil {
		return nil, err
	}

	return cryptoutils.XORBytes(pinField, panField)
}

// DecodePinBlockISO3 recovers the PIN from a clear format 3 PIN block.
func DecodePinBlockISO3(block []byte, pan string) (string, error) {
	if len(block) != iso3BlockLength {
		return "", fmt.Errorf("%w: %d bytes", errInvalidPinBlockLength, len(block))
	}
	panField, err := EncodePanFieldISO3(pan)
	if err != nil {
		return "", err
	}
	pinField, err := cryptoutils.XORBytes(block, panField)
	if err != nil {
		return "", err
	}

	return DecodePinFieldISO3(pinField)
}
