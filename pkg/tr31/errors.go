package tr31

import "errors"

// Optional block errors.
var (
	ErrInvalidOptBlockID               = errors.New("invalid optional block ID")
	ErrNonASCIIData                    = errors.New("optional block data is not ASCII")
	ErrOptBlockTooShort                = errors.New("optional block is too short")
	ErrInvalidLengthField              = errors.New("optional block length is not valid hex")
	ErrLengthTooSmall                  = errors.New("optional block length is too small")
	ErrInvalidExtendedLengthMarker     = errors.New("invalid extended length marker")
	ErrExtendedLengthNotGreaterThan255 = errors.New("extended length must be greater than 255")
	ErrDataTooShortForDeclaredLength   = errors.New("optional block data shorter than declared length")
	ErrOptBlockTooLong                 = errors.New("optional block exceeds 65535 bytes")
	ErrUninitializedOptBlock           = errors.New("optional block is not initialized")
)

// Header errors.
var (
	ErrInvalidVersionID           = errors.New("invalid key block version ID")
	ErrInvalidKeyUsage            = errors.New("invalid key usage")
	ErrInvalidAlgorithm           = errors.New("invalid algorithm")
	ErrInvalidModeOfUse           = errors.New("invalid mode of use")
	ErrInvalidKeyVersionNumber    = errors.New("invalid key version number")
	ErrInvalidExportability       = errors.New("invalid exportability")
	ErrInvalidKBLength            = errors.New("invalid key block length")
	ErrTooManyOptionalBlocks      = errors.New("too many optional blocks")
	ErrInvalidOptBlockCount       = errors.New("invalid number of optional blocks")
	ErrInvalidReservedField       = errors.New("invalid reserved field")
	ErrDataTooShort               = errors.New("header data too short")
	ErrInconsistentOptBlockLength = errors.New("optional block count does not match chain")
	ErrEmptyHeaderField           = errors.New("header field is empty")
)

// Derivation errors.
var ErrInvalidKBPKLength = errors.New("invalid key block protection key length")

// Payload errors.
var (
	ErrPaddingLengthUnderflow   = errors.New("padding length underflow")
	ErrRandomSeedTooShort       = errors.New("random seed too short")
	ErrKeyTooLong               = errors.New("key too long for payload length field")
	ErrPayloadTooShortForLength = errors.New("payload too short for length field")
	ErrPayloadTooShortForKey    = errors.New("payload too short for declared key length")
)

// Wrap and unwrap errors.
var (
	ErrUnsupportedVersion    = errors.New("unsupported key block version")
	ErrBlockLengthNotAligned = errors.New("key block length is not block aligned")
	ErrLengthMismatch        = errors.New("key block length does not match header")
	ErrKeyBlockTooShort      = errors.New("key block too short")
	ErrInvalidHex            = errors.New("invalid hex in key block")
	ErrMACVerificationFailed = errors.New("key block MAC verification failed")
)
