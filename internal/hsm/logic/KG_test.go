package logic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_tr31/internal/errorcodes"
	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

func TestExecuteKG(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		keyLen  int
		wantErr error
	}{
		{"AES-128", "D0000P0AB00E0000" + "16" + "00", 16, nil},
		{"AES-256 masked", "D0000K0AB00E0000" + "32" + "32", 32, nil},
		{"TDEA", "D0000K0TB00E0000" + "24" + "00", 24, nil},
		{"DEA wrong length", "D0000K0DB00E0000" + "16" + "00", 0, errorcodes.Err27},
		{"AES wrong length", "D0000P0AB00E0000" + "08" + "00", 0, errorcodes.Err27},
		{"missing masked length", "D0000P0AB00E0000" + "16", 0, errorcodes.Err15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(t)
			out, err := ExecuteKG([]byte(tt.input), svc)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}
			require.NoError(t, err)
			require.Equal(t, "KH00", string(out[:4]))

			h, key, err := svc.Unwrap(string(out[4:]))
			require.NoError(t, err)
			assert.Equal(t, bytes.Repeat([]byte{0x11}, tt.keyLen), key)
			assert.Equal(t, tr31.Algorithm(tt.input[7:8]), h.Algorithm())
		})
	}
}
