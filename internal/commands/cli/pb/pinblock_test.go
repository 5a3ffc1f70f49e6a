package pb

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPAN = "4111111111111111"
	testKB  = "D0112P0AE00E0000B82679114F470F540165EDFBF7E250FCEA43F810D215F8D2" +
		"07E2E417C07156A27E8E31DA05F7425509593D03A457DC34"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd, err := NewPinBlockCommand()
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()

	return out.String(), err
}

func lastField(s string) string {
	fields := strings.Fields(s)

	return fields[len(fields)-1]
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		keyArgs []string
	}{
		{"format 3", "3", nil},
		{"format 4 clear key", "4", []string{"--key", "3F419E1CB7079442AA37474C2EFBF8B8"}},
		{"format 4 key block", "ISO4", []string{"--keyblock", testKB}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := append([]string{"encode", "--pin", "1234", "--pan", testPAN, "--format", tt.format}, tt.keyArgs...)
			out, err := execute(t, args...)
			require.NoError(t, err)
			require.Contains(t, out, "PIN block generated")
			block := lastField(out)

			args = append([]string{"decode", "--pinblock", block, "--pan", testPAN, "--format", tt.format}, tt.keyArgs...)
			out, err = execute(t, args...)
			require.NoError(t, err)
			assert.Equal(t, "1234", lastField(out))
		})
	}
}

func TestEncodeFixedSeedIsDeterministic(t *testing.T) {
	t.Parallel()
	args := []string{"encode", "--pin", "1234", "--pan", testPAN, "--format", "3", "--seed", "0123456789ABCDEF"}

	first, err := execute(t, args...)
	require.NoError(t, err)
	second, err := execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPinBlockCommandErrors(t *testing.T) {
	t.Parallel()
	wrongUsage := "D0016K0AE00E0000"

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"encode", "--pin", "1234", "--pan", testPAN, "--format", "9"}},
		{"format 4 without key", []string{"encode", "--pin", "1234", "--pan", testPAN, "--format", "4"}},
		{"short pin", []string{"encode", "--pin", "12", "--pan", testPAN, "--format", "3"}},
		{"bad key hex", []string{"encode", "--pin", "1234", "--pan", testPAN, "--format", "4", "--key", "XY"}},
		{"bad key block", []string{"encode", "--pin", "1234", "--pan", testPAN, "--format", "4", "--keyblock", wrongUsage}},
		{"both keys", []string{"encode", "--pin", "1234", "--pan", testPAN, "--format", "4", "--key", "00", "--keyblock", testKB}},
		{"bad pin block", []string{"decode", "--pinblock", "ZZ", "--pan", testPAN, "--format", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := execute(t, tt.args...)
			require.Error(t, err)
		})
	}
}

func TestFormatsCommand(t *testing.T) {
	t.Parallel()
	out, err := execute(t, "formats")
	require.NoError(t, err)
	assert.Contains(t, out, "ISO3")
	assert.Contains(t, out, "ISO4")
}
