package tr31

import (
	"fmt"
	"strings"

	"github.com/awnumar/memguard"

	"github.com/andrei-cloud/go_tr31/pkg/cryptoutils"
)

const (
	macLen    = cryptoutils.AES_BLOCK_SIZE
	macHexLen = 2 * macLen
	aesBlock  = cryptoutils.AES_BLOCK_SIZE
)

// Wrap protects key under kbpk and returns the key block as an ASCII string.
//
// The header is copied; its length field is recomputed and the caller's value
// is not modified. maskedKeyLen pads the payload as if the key had that many
// bytes. seed supplies the padding bytes and must be at least as long as the
// padding the payload needs.
func Wrap(kbpk []byte, header *Header, key []byte, maskedKeyLen int, seed []byte) (string, error) {
	if header == nil {
		return "", fmt.Errorf("%w: nil header", ErrEmptyHeaderField)
	}
	if header.VersionID() != VersionD {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedVersion, header.VersionID())
	}
	h := header.Clone()

	// derive encryption and authentication keys.
	kbek, kbak, err := DeriveKeysVersionD(kbpk)
	if err != nil {
		return "", fmt.Errorf("key derivation failed: %w", err)
	}
	defer memguard.WipeBytes(kbek)
	defer memguard.WipeBytes(kbak)

	// build the padded payload.
	payload, err := ConstructPayload(key, maskedKeyLen, aesBlock, seed)
	if err != nil {
		return "", fmt.Errorf("failed to construct payload: %w", err)
	}
	defer memguard.WipeBytes(payload)

	// fix the final length before the header is bound by the MAC.
	total := h.Len() + 2*len(payload) + macHexLen
	if total%aesBlock != 0 {
		return "", fmt.Errorf("%w: header %d, total %d", ErrBlockLengthNotAligned, h.Len(), total)
	}
	if err := h.SetKBLength(total); err != nil {
		return "", err
	}
	hdr, err := h.Export()
	if err != nil {
		return "", fmt.Errorf("failed to export header: %w", err)
	}

	// MAC over header and clear payload, then encrypt with the MAC as IV.
	macInput := make([]byte, 0, len(hdr)+len(payload))
	macInput = append(macInput, hdr...)
	macInput = append(macInput, payload...)
	mac, err := cryptoutils.AESCMAC(macInput, kbak)
	memguard.WipeBytes(macInput)
	if err != nil {
		return "", fmt.Errorf("cmac computation failed: %w", err)
	}
	ciphertext, err := cryptoutils.EncryptAESCBC(payload, kbek, mac)
	if err != nil {
		return "", fmt.Errorf("payload encryption failed: %w", err)
	}

	var sb strings.Builder
	sb.Grow(total)
	sb.WriteString(hdr)
	sb.WriteString(cryptoutils.Raw2Str(ciphertext))
	sb.WriteString(cryptoutils.Raw2Str(mac))

	return sb.String(), nil
}

// WrapWithHeaderString parses headerStr and wraps key under it.
// The length field of headerStr is ignored and recomputed.
func WrapWithHeaderString(
	headerStr string,
	kbpk []byte,
	key []byte,
	maskedKeyLen int,
	seed []byte,
) (string, error) {
	h, err := ParseHeader(headerStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse header: %w", err)
	}

	return Wrap(kbpk, h, key, maskedKeyLen, seed)
}
