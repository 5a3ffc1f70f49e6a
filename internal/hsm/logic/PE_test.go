package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_tr31/internal/errorcodes"
)

const testPAN = "4111111111111111"

func generateKB(t *testing.T, svc KeyBlockService, header string) string {
	t.Helper()
	out, err := ExecuteKG([]byte(header+"16"+"00"), svc)
	require.NoError(t, err)

	return string(out[4:])
}

func TestExecutePEPXRoundTrip(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	kb := generateKB(t, svc, "D0000P0AB00E0000")

	for _, pin := range []string{"1234", "123456", "123456789012"} {
		pinField := string([]byte{'0' + byte(len(pin)/10), '0' + byte(len(pin)%10)}) + pin
		out, err := ExecutePE([]byte(kb+"16"+testPAN+pinField), svc)
		require.NoError(t, err)
		require.Equal(t, "PF00", string(out[:4]))
		require.Len(t, out, 4+32)

		back, err := ExecutePX([]byte(kb+"16"+testPAN+string(out[4:])), svc)
		require.NoError(t, err)
		assert.Equal(t, "PY00"+pinField, string(back))
	}
}

func TestExecutePEErrors(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	pinKB := generateKB(t, svc, "D0000P0AB00E0000")
	decryptOnly := generateKB(t, svc, "D0000P0AD00E0000")
	wrongUsage := generateKB(t, svc, "D0000K0AB00E0000")

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"short pin", pinKB + "16" + testPAN + "02" + "12", errorcodes.Err24},
		{"pin not digits", pinKB + "16" + testPAN + "04" + "12A4", errorcodes.Err24},
		{"pan not digits", pinKB + "16" + "411111111111111X" + "04" + "1234", errorcodes.Err22},
		{"pan truncated", pinKB + "16" + "4111", errorcodes.Err80},
		{"mode of use", decryptOnly + "16" + testPAN + "04" + "1234", errorcodes.ErrA8},
		{"key usage", wrongUsage + "16" + testPAN + "04" + "1234", errorcodes.ErrA6},
		{"truncated key block", pinKB[:40], errorcodes.Err80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ExecutePE([]byte(tt.input), svc)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExecutePXErrors(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	pinKB := generateKB(t, svc, "D0000P0AB00E0000")
	encryptOnly := generateKB(t, svc, "D0000P0AE00E0000")

	out, err := ExecutePE([]byte(pinKB+"16"+testPAN+"04"+"1234"), svc)
	require.NoError(t, err)
	block := string(out[4:])

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"mode of use", encryptOnly + "16" + testPAN + block, errorcodes.ErrA8},
		{"short block", pinKB + "16" + testPAN + block[:30], errorcodes.Err80},
		{"block not hex", pinKB + "16" + testPAN + "ZZ" + block[2:], errorcodes.Err15},
		{"wrong pan", pinKB + "16" + "4000000000000002" + block, errorcodes.Err20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ExecutePX([]byte(tt.input), svc)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
