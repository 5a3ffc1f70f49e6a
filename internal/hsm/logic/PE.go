package logic

import (
	"encoding/hex"

	"github.com/awnumar/memguard"
	"github.com/rs/zerolog/log"

	"github.com/andrei-cloud/go_tr31/internal/errorcodes"
	"github.com/andrei-cloud/go_tr31/pkg/cryptoutils"
	"github.com/andrei-cloud/go_tr31/pkg/pinblock"
	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

const iso4PinBlockHexLength = 32

// ExecutePE enciphers a PIN into an ISO 9564 format 4 PIN block under the
// AES PIN key carried in a key block.
// Input: key block | PAN length (2) | PAN | PIN length (2) | PIN.
// Output: "PF00" | PIN block hex.
func ExecutePE(input []byte, svc KeyBlockService) ([]byte, error) {
	key, rest, err := pinKey("PE", input, svc, tr31.ModeOfUse("E"))
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(key)

	pan, rest, err := readField(rest, 2)
	if err != nil {
		return nil, err
	}
	pin, _, err := readField(rest, 2)
	if err != nil {
		return nil, err
	}
	if !validPAN(pan) {
		return nil, errorcodes.Err22
	}
	if !validPIN(pin) {
		return nil, errorcodes.Err24
	}

	seed, err := svc.RandomKey(pinblock.ISO4.SeedLength())
	if err != nil {
		return nil, errorcodes.Err41
	}
	block, err := pinblock.EncipherPinBlockISO4(key, pin, pan, seed)
	if err != nil {
		log.Debug().Str("event", "pe_encipher_error").Err(err).Msg("failed to encipher pin block")

		return nil, errorcodes.Err20
	}

	return append([]byte("PF00"), cryptoutils.Raw2Str(block)...), nil
}

// ExecutePX deciphers an ISO 9564 format 4 PIN block under the AES PIN key
// carried in a key block.
// Input: key block | PAN length (2) | PAN | PIN block hex (32).
// Output: "PY00" | PIN length (2) | PIN.
func ExecutePX(input []byte, svc KeyBlockService) ([]byte, error) {
	key, rest, err := pinKey("PX", input, svc, tr31.ModeOfUse("D"))
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(key)

	pan, rest, err := readField(rest, 2)
	if err != nil {
		return nil, err
	}
	if !validPAN(pan) {
		return nil, errorcodes.Err22
	}
	if len(rest) != iso4PinBlockHexLength {
		return nil, errorcodes.Err80
	}
	block, err := hex.DecodeString(string(rest))
	if err != nil {
		return nil, errorcodes.Err15
	}

	pin, err := pinblock.DecipherPinBlockISO4(key, block, pan)
	if err != nil {
		log.Debug().Str("event", "px_decipher_error").Err(err).Msg("failed to decipher pin block")

		return nil, errorcodes.Err20
	}

	resp := make([]byte, 0, 6+len(pin))
	resp = append(resp, "PY00"...)
	resp = append(resp, []byte{'0' + byte(len(pin)/10), '0' + byte(len(pin)%10)}...)
	resp = append(resp, pin...)

	return resp, nil
}

// pinKey unwraps the key block at the start of input and checks that it is an
// AES PIN encryption key usable in the requested direction.
func pinKey(
	cmd string,
	input []byte,
	svc KeyBlockService,
	direction tr31.ModeOfUse,
) ([]byte, []byte, error) {
	h, _, err := splitHeader(cmd, input)
	if err != nil {
		return nil, nil, err
	}
	if len(input) < h.KBLength() {
		return nil, nil, errorcodes.Err80
	}
	kb := input[:h.KBLength()]

	hdr, key, err := unwrapInput(cmd, kb, svc)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case hdr.KeyUsage() != "P0":
		err = errorcodes.ErrA6
	case hdr.Algorithm() != tr31.AlgorithmAES:
		err = errorcodes.ErrA7
	case !modeAllows(hdr.ModeOfUse(), direction):
		err = errorcodes.ErrA8
	}
	if err != nil {
		memguard.WipeBytes(key)

		return nil, nil, err
	}

	return key, input[len(kb):], nil
}

func modeAllows(mode, direction tr31.ModeOfUse) bool {
	return mode == direction || mode == "B" || mode == "N"
}

func validPAN(pan string) bool {
	return len(pan) >= 1 && len(pan) <= 19 && isDigits(pan)
}

func validPIN(pin string) bool {
	return len(pin) >= 4 && len(pin) <= 12 && isDigits(pin)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
