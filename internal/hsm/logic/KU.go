package logic

import (
	"github.com/awnumar/memguard"
	"github.com/rs/zerolog/log"

	"github.com/andrei-cloud/go_tr31/internal/errorcodes"
	"github.com/andrei-cloud/go_tr31/pkg/cryptoutils"
	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

// ExecuteKU unwraps a key block.
// Input: key block. Output: "KV00" | header | clear key hex.
func ExecuteKU(input []byte, svc KeyBlockService) ([]byte, error) {
	h, key, err := unwrapInput("KU", input, svc)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(key)

	resp := make([]byte, 0, 4+h.Len()+2*len(key))
	resp = append(resp, "KV00"...)
	resp = append(resp, input[:h.Len()]...)
	resp = append(resp, cryptoutils.Raw2Str(key)...)

	return resp, nil
}

// ExecuteKC returns the CMAC check value of an AES key carried in a key block.
// Input: key block. Output: "KD00" | 6 hex digit check value.
func ExecuteKC(input []byte, svc KeyBlockService) ([]byte, error) {
	h, key, err := unwrapInput("KC", input, svc)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(key)

	if h.Algorithm() != tr31.AlgorithmAES {
		return nil, errorcodes.ErrA7
	}
	kcv, err := cryptoutils.CalculateCMACCheckValue(key)
	if err != nil {
		return nil, errorcodes.Err27
	}

	return append([]byte("KD00"), cryptoutils.Raw2Str(kcv)[:kcvHexLength]...), nil
}

func unwrapInput(cmd string, input []byte, svc KeyBlockService) (*tr31.Header, []byte, error) {
	h, key, err := svc.Unwrap(string(input))
	if err != nil {
		log.Debug().
			Str("event", "unwrap_error").
			Str("command", cmd).
			Err(err).
			Msg("failed to unwrap key block")

		return nil, nil, errorcodes.FromError(err)
	}

	return h, key, nil
}
