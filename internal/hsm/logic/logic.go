// Package logic provides business logic for HSM commands.
package logic

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/andrei-cloud/go_tr31/internal/errorcodes"
	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

// KeyBlockService performs TR-31 operations under the service KBPK.
type KeyBlockService interface {
	Wrap(header *tr31.Header, key []byte, maskedKeyLen int) (string, error)
	Unwrap(keyBlock string) (*tr31.Header, []byte, error)
	KBPKCheckValue() ([]byte, error)
	RandomKey(length int) ([]byte, error)
	FirmwareVersion() string
}

// Handler executes one command payload and returns the full response.
type Handler func(input []byte, svc KeyBlockService) ([]byte, error)

var errUnknownCommand = errors.New("unknown command")

// IsUnknownCommand reports whether err was returned for an unregistered command.
func IsUnknownCommand(err error) bool {
	return errors.Is(err, errUnknownCommand)
}

// splitHeader parses the TR-31 header at the start of input and returns it
// together with the remaining bytes.
func splitHeader(cmd string, input []byte) (*tr31.Header, []byte, error) {
	h, err := tr31.ParseHeader(string(input))
	if err != nil {
		log.Debug().
			Str("event", "header_parse_error").
			Str("command", cmd).
			Err(err).
			Msg("invalid key block header")

		return nil, nil, errorcodes.FromError(err)
	}

	return h, input[h.Len():], nil
}

// readLength reads a fixed width decimal field.
func readLength(input []byte, width int) (int, []byte, error) {
	if len(input) < width {
		return 0, nil, errorcodes.Err15
	}
	n, err := strconv.Atoi(string(input[:width]))
	if err != nil || n < 0 {
		return 0, nil, errorcodes.Err15
	}

	return n, input[width:], nil
}

// readField reads a length prefixed field.
func readField(input []byte, width int) (string, []byte, error) {
	n, rest, err := readLength(input, width)
	if err != nil {
		return "", nil, err
	}
	if len(rest) < n {
		return "", nil, fmt.Errorf("%w: field of %d bytes truncated", errorcodes.Err80, n)
	}

	return string(rest[:n]), rest[n:], nil
}
