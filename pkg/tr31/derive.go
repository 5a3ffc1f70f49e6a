package tr31

import (
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/andrei-cloud/go_tr31/pkg/cryptoutils"
)

// Key derivation input layout for version D (8 bytes):
// counter(1) | key usage(2) | separator(1) | algorithm(2) | length in bits(2).
var (
	kdiUsageEncryption     = [2]byte{0x00, 0x00}
	kdiUsageAuthentication = [2]byte{0x00, 0x01}
)

type kdiParams struct {
	algorithm [2]byte
	bits      [2]byte
	rounds    int
}

var kdiByKeyLength = map[int]kdiParams{
	cryptoutils.KEY_LENGTH_AES128: {algorithm: [2]byte{0x00, 0x02}, bits: [2]byte{0x00, 0x80}, rounds: 1},
	cryptoutils.KEY_LENGTH_AES192: {algorithm: [2]byte{0x00, 0x03}, bits: [2]byte{0x00, 0xC0}, rounds: 2},
	cryptoutils.KEY_LENGTH_AES256: {algorithm: [2]byte{0x00, 0x04}, bits: [2]byte{0x01, 0x00}, rounds: 2},
}

// DeriveKeysVersionD derives the key block encryption key (KBEK) and the key
// block authentication key (KBAK) from an AES key block protection key using
// the CMAC based derivation of TR-31 version D. Both keys have the length of
// kbpk.
func DeriveKeysVersionD(kbpk []byte) (kbek, kbak []byte, err error) {
	params, ok := kdiByKeyLength[len(kbpk)]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrInvalidKBPKLength, len(kbpk))
	}

	kbek, err = deriveKey(kbpk, kdiUsageEncryption, params)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive KBEK: %w", err)
	}
	kbak, err = deriveKey(kbpk, kdiUsageAuthentication, params)
	if err != nil {
		memguard.WipeBytes(kbek)

		return nil, nil, fmt.Errorf("failed to derive KBAK: %w", err)
	}

	return kbek, kbak, nil
}

func deriveKey(kbpk []byte, usage [2]byte, p kdiParams) ([]byte, error) {
	out := make([]byte, 0, p.rounds*cryptoutils.AES_BLOCK_SIZE)
	for counter := 1; counter <= p.rounds; counter++ {
		kdi := []byte{
			byte(counter),
			usage[0], usage[1],
			0x00,
			p.algorithm[0], p.algorithm[1],
			p.bits[0], p.bits[1],
		}
		mac, err := cryptoutils.AESCMAC(kdi, kbpk)
		if err != nil {
			return nil, err
		}
		out = append(out, mac...)
	}
	key := make([]byte, len(kbpk))
	copy(key, out)
	memguard.WipeBytes(out)

	return key, nil
}
