package hsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

func TestNewHSM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kbpk    string
		wantErr bool
	}{
		{"AES-128", "00112233445566778899AABBCCDDEEFF", false},
		{"AES-192", "00112233445566778899AABBCCDDEEFF0011223344556677", false},
		{"AES-256", DefaultTestKBPK, false},
		{"TDEA length", "0011223344556677", true},
		{"not hex", "ZZ112233445566778899AABBCCDDEEFF", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, err := NewHSM(tt.kbpk, "0007-E000")
			if tt.wantErr {
				require.ErrorIs(t, err, errInvalidKBPK)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, "0007-E000", h.FirmwareVersion())
		})
	}
}

func TestHSMWrapUnwrap(t *testing.T) {
	t.Parallel()

	h, err := NewHSM(DefaultTestKBPK, "0007-E000")
	require.NoError(t, err)

	header, err := tr31.NewHeader(tr31.VersionD, "P0", tr31.AlgorithmAES, "E", "00", tr31.ExportTrusted)
	require.NoError(t, err)

	key, err := h.RandomKey(16)
	require.NoError(t, err)
	require.Len(t, key, 16)

	for _, masked := range []int{0, 16, 32} {
		kb, err := h.Wrap(header, key, masked)
		require.NoError(t, err)

		got, clear, err := h.Unwrap(kb)
		require.NoError(t, err)
		assert.Equal(t, key, clear)
		assert.Equal(t, tr31.KeyUsage("P0"), got.KeyUsage())
	}

	kcv, err := h.KBPKCheckValue()
	require.NoError(t, err)
	assert.Len(t, kcv, 8)

	_, err = h.RandomKey(0)
	require.Error(t, err)
}

func TestHSMUnwrapKnownBlock(t *testing.T) {
	t.Parallel()

	h, err := NewHSM(DefaultTestKBPK, "")
	require.NoError(t, err)

	_, key, err := h.Unwrap("D0112P0AE00E0000B82679114F470F540165EDFBF7E250FCEA43F810D215F8D2" +
		"07E2E417C07156A27E8E31DA05F7425509593D03A457DC34")
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x3F, 0x41, 0x9E, 0x1C, 0xB7, 0x07, 0x94, 0x42,
		0xAA, 0x37, 0x47, 0x4C, 0x2E, 0xFB, 0xF8, 0xB8,
	}, key)
}
