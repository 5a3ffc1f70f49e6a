package logic

import (
	"encoding/hex"

	"github.com/awnumar/memguard"
	"github.com/rs/zerolog/log"

	"github.com/andrei-cloud/go_tr31/internal/errorcodes"
)

// ExecuteKW wraps a clear key supplied by the host.
// Input: header | masked key length (2 digits) | clear key hex.
// Output: "KX00" | key block.
func ExecuteKW(input []byte, svc KeyBlockService) ([]byte, error) {
	h, rest, err := splitHeader("KW", input)
	if err != nil {
		return nil, err
	}
	masked, rest, err := readLength(rest, 2)
	if err != nil {
		return nil, err
	}
	if len(rest) == 0 || len(rest)%2 != 0 {
		return nil, errorcodes.Err15
	}
	key, err := hex.DecodeString(string(rest))
	if err != nil {
		return nil, errorcodes.Err15
	}
	defer memguard.WipeBytes(key)

	if err := h.Finalize(); err != nil {
		return nil, errorcodes.FromError(err)
	}
	kb, err := svc.Wrap(h, key, masked)
	if err != nil {
		log.Debug().Str("event", "kw_wrap_error").Err(err).Msg("failed to wrap key")

		return nil, errorcodes.FromError(err)
	}

	return append([]byte("KX00"), kb...), nil
}
