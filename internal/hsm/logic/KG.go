package logic

import (
	"github.com/awnumar/memguard"
	"github.com/rs/zerolog/log"

	"github.com/andrei-cloud/go_tr31/internal/errorcodes"
	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

// ExecuteKG generates a random key and returns it wrapped.
// Input: header | key length in bytes (2 digits) | masked key length (2 digits).
// Output: "KH00" | key block.
func ExecuteKG(input []byte, svc KeyBlockService) ([]byte, error) {
	h, rest, err := splitHeader("KG", input)
	if err != nil {
		return nil, err
	}
	keyLen, rest, err := readLength(rest, 2)
	if err != nil {
		return nil, err
	}
	masked, _, err := readLength(rest, 2)
	if err != nil {
		return nil, err
	}
	if !keyLengthFits(h.Algorithm(), keyLen) {
		log.Debug().
			Str("event", "kg_validation_error").
			Str("algorithm", string(h.Algorithm())).
			Int("key_length", keyLen).
			Msg("key length does not match algorithm")

		return nil, errorcodes.Err27
	}

	key, err := svc.RandomKey(keyLen)
	if err != nil {
		return nil, errorcodes.Err41
	}
	defer memguard.WipeBytes(key)

	if err := h.Finalize(); err != nil {
		return nil, errorcodes.FromError(err)
	}
	kb, err := svc.Wrap(h, key, masked)
	if err != nil {
		return nil, errorcodes.FromError(err)
	}

	return append([]byte("KH00"), kb...), nil
}

func keyLengthFits(alg tr31.Algorithm, n int) bool {
	switch alg {
	case tr31.AlgorithmAES:
		return n == 16 || n == 24 || n == 32
	case tr31.AlgorithmTDEA:
		return n == 16 || n == 24
	case tr31.AlgorithmDEA:
		return n == 8
	default:
		return n > 0
	}
}
