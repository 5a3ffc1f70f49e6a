package errorcodes

import (
	"errors"

	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

var keyBlockErrors = []struct {
	target error
	code   HSMError
}{
	{tr31.ErrMACVerificationFailed, ErrA4},
	{tr31.ErrInvalidKeyUsage, ErrA6},
	{tr31.ErrInvalidAlgorithm, ErrA7},
	{tr31.ErrInvalidModeOfUse, ErrA8},
	{tr31.ErrInvalidKeyVersionNumber, ErrA9},
	{tr31.ErrInvalidExportability, ErrAA},
	{tr31.ErrTooManyOptionalBlocks, ErrAB},
	{tr31.ErrInvalidOptBlockCount, ErrAB},
	{tr31.ErrInconsistentOptBlockLength, ErrAB},
	{tr31.ErrInvalidOptBlockID, ErrAC},
	{tr31.ErrOptBlockTooShort, ErrAC},
	{tr31.ErrInvalidLengthField, ErrAC},
	{tr31.ErrLengthTooSmall, ErrAC},
	{tr31.ErrInvalidExtendedLengthMarker, ErrAC},
	{tr31.ErrExtendedLengthNotGreaterThan255, ErrAC},
	{tr31.ErrDataTooShortForDeclaredLength, ErrAC},
	{tr31.ErrOptBlockTooLong, ErrAC},
	{tr31.ErrUninitializedOptBlock, ErrAC},
	{tr31.ErrNonASCIIData, ErrB4},
	{tr31.ErrInvalidKBPKLength, ErrBB},
	{tr31.ErrInvalidVersionID, ErrBE},
	{tr31.ErrUnsupportedVersion, ErrBE},
	{tr31.ErrLengthMismatch, Err80},
	{tr31.ErrKeyBlockTooShort, Err80},
	{tr31.ErrBlockLengthNotAligned, Err80},
	{tr31.ErrInvalidKBLength, Err80},
	{tr31.ErrDataTooShort, Err80},
	{tr31.ErrKeyTooLong, Err27},
	{tr31.ErrInvalidReservedField, Err83},
	{tr31.ErrEmptyHeaderField, Err83},
	{tr31.ErrPaddingLengthUnderflow, Err83},
	{tr31.ErrRandomSeedTooShort, Err83},
	{tr31.ErrPayloadTooShortForLength, Err83},
	{tr31.ErrPayloadTooShortForKey, Err83},
	{tr31.ErrInvalidHex, Err15},
}

// FromError maps err to the HSM error code reported to clients.
// HSMError values pass through unchanged; unknown errors map to Err15.
func FromError(err error) HSMError {
	if err == nil {
		return Err00
	}
	var hsmErr HSMError
	if errors.As(err, &hsmErr) {
		return hsmErr
	}
	for _, m := range keyBlockErrors {
		if errors.Is(err, m.target) {
			return m.code
		}
	}

	return Err15
}
