package pinblock

import "fmt"

func validatePin(pin string) error {
	if len(pin) < minPinLength || len(pin) > maxPinLength {
		return fmt.Errorf("%w: %d", errInvalidPinLength, len(pin))
	}
	if !isDigits(pin) {
		return errInvalidPinDigits
	}

	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// nibble returns the i-th nibble of b counting from the high nibble of b[0].
func nibble(b []byte, i int) byte {
	if i%2 == 0 {
		return b[i/2] >> 4
	}

	return b[i/2] & 0x0F
}

// setNibble stores v in the i-th nibble of b.
func setNibble(b []byte, i int, v byte) {
	if i%2 == 0 {
		b[i/2] = (b[i/2] & 0x0F) | (v << 4)
	} else {
		b[i/2] = (b[i/2] & 0xF0) | (v & 0x0F)
	}
}

// fillerAF maps each nibble of seed into the range A-F.
func fillerAF(seed []byte) []byte {
	out := make([]byte, len(seed))
	for i, b := range seed {
		out[i] = toAF(b>>4)<<4 | toAF(b&0x0F)
	}

	return out
}

func toAF(n byte) byte {
	switch {
	case n >= 0xA:
		return n
	case n < 6:
		return n + 0xA
	default:
		return n + 6
	}
}

// decodePinField reads the control nibble, length and PIN digits of a PIN
// field and checks every filler nibble with validFiller.
func decodePinField(field []byte, control byte, validFiller func(byte) bool) (string, error) {
	if nibble(field, 0) != control {
		return "", fmt.Errorf("%w: control field %X, expected %X", errPinBlockDecoding, nibble(field, 0), control)
	}
	pinLen := int(nibble(field, 1))
	if pinLen < minPinLength || pinLen > maxPinLength {
		return "", fmt.Errorf("%w: pin length %d", errPinBlockDecoding, pinLen)
	}

	pin := make([]byte, pinLen)
	for i := range pinLen {
		d := nibble(field, 2+i)
		if d > 9 {
			return "", fmt.Errorf("%w: pin contains invalid digit", errPinBlockDecoding)
		}
		pin[i] = '0' + d
	}
	for i := pinLen; i < pinFieldNibbs; i++ {
		if !validFiller(nibble(field, 2+i)) {
			return "", fmt.Errorf("%w: invalid filler", errPinBlockDecoding)
		}
	}

	return string(pin), nil
}
