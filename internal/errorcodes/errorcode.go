// Package errorcodes defines HSM errors using a structured type.
// HSMError holds the two-character code and human-readable description.
package errorcodes

// Codes returned by the key-block commands and by FromError.
var (
	Err00 = HSMError{"00", "No error"}
	Err15 = HSMError{
		"15",
		"Invalid input data (invalid format, invalid characters, or not enough data provided)",
	}
	Err20 = HSMError{"20", "PIN block does not contain valid values"}
	Err22 = HSMError{"22", "Invalid account number"}
	Err24 = HSMError{"24", "PIN is fewer than 4 or more than 12 digits in length"}
	Err27 = HSMError{"27", "Incompatible key length"}
	Err41 = HSMError{"41", "Internal error: random source or key custody failure"}
	Err68 = HSMError{"68", "Unknown or disabled command"}
	Err80 = HSMError{"80", "Data length error"}
	Err83 = HSMError{"83", "Key block payload or header format error"}
	ErrA4 = HSMError{"A4", "Key block authentication failure"}
	ErrA6 = HSMError{"A6", "Invalid key usage"}
	ErrA7 = HSMError{"A7", "Invalid algorithm"}
	ErrA8 = HSMError{"A8", "Invalid mode of use"}
	ErrA9 = HSMError{"A9", "Invalid key version number"}
	ErrAA = HSMError{"AA", "Invalid export field"}
	ErrAB = HSMError{"AB", "Invalid number of optional blocks"}
	ErrAC = HSMError{"AC", "Optional header block error"}
	ErrB4 = HSMError{"B4", "Optional block data error"}
	ErrBB = HSMError{"BB", "Invalid wrapping key"}
	ErrBE = HSMError{"BE", "Invalid keyblock header ID"}
)

// HSMError represents an HSM error with its code and description.
type HSMError struct {
	Code        string // two-character error code
	Description string // human-readable description
}

// Error implements the Go error interface: "<Code>: <Description>".
func (e HSMError) Error() string {
	return e.Code + ": " + e.Description
}

// CodeOnly returns only the error code (e.g., "68"), for embedding in HSM responses.
func (e HSMError) CodeOnly() string {
	return e.Code
}
