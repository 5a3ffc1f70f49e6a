package tr31_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)

	return b
}

func TestDeriveKeysVersionD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		kbpk     string
		wantKBEK string
		wantKBAK string
	}{
		{
			name:     "AES-128",
			kbpk:     "00112233445566778899AABBCCDDEEFF",
			wantKBEK: "37DC7700D70781C3E2498A41A027E0B1",
			wantKBAK: "063E785CE4C4C8FE54921839BD1F9ADF",
		},
		{
			name:     "AES-192",
			kbpk:     "00112233445566778899AABBCCDDEEFF0011223344556677",
			wantKBEK: "F343DFB92345457EF5CB08309EEB65DEC170BE7B069FB351",
			wantKBAK: "23F93132F6677CD822FA653562F71CCE3CB9361733BFA128",
		},
		{
			name:     "AES-256",
			kbpk:     "00112233445566778899AABBCCDDEEFF00112233445566778899AABBCCDDEEFF",
			wantKBEK: "FCC7C7F7CA33DA31BA8C60493C7DD384C804C20EBA22022BC5AB29FEF42F20C7",
			wantKBAK: "095DF0DCA65DC922BBEB015F8C855E254FD7CF399B6DA726ABA28206C9A7A3E2",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			kbek, kbak, err := tr31.DeriveKeysVersionD(mustHex(t, tt.kbpk))
			require.NoError(t, err)
			assert.Equal(t, mustHex(t, tt.wantKBEK), kbek)
			assert.Equal(t, mustHex(t, tt.wantKBAK), kbak)
		})
	}
}

func TestDeriveKeysVersionDInvalidLength(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 8, 15, 17, 33} {
		_, _, err := tr31.DeriveKeysVersionD(make([]byte, n))
		require.ErrorIs(t, err, tr31.ErrInvalidKBPKLength)
	}
}
