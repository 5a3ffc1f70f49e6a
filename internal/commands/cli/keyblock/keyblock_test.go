package keyblock

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

const (
	testKey  = "3F419E1CB7079442AA37474C2EFBF8B8"
	testSeed = "1C2965473CE206BB855B01533782"
	testKB   = "D0112P0AE00E0000B82679114F470F540165EDFBF7E250FCEA43F810D215F8D2" +
		"07E2E417C07156A27E8E31DA05F7425509593D03A457DC34"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewKeyBlockCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func TestWrapCommandKnownAnswer(t *testing.T) {
	t.Parallel()
	out, err := execute(t, "wrap", "--header", "D0000P0AE00E0000", "--key", testKey, "--seed", testSeed)
	require.NoError(t, err)
	assert.Equal(t, "Key block: "+testKB+"\n", out)
}

func TestWrapCommandRandomSeedRoundTrip(t *testing.T) {
	t.Parallel()
	out, err := execute(t, "wrap",
		"--header", "D0000P0AB00E0000",
		"--opt", "KS:00604B120F9292800000",
		"--key", testKey,
		"--masked-length", "32")
	require.NoError(t, err)

	kb := out[len("Key block: ") : len(out)-1]
	h, err := tr31.ParseHeader(kb)
	require.NoError(t, err)
	assert.Equal(t, 2, h.NumOptBlocks())

	out, err = execute(t, "unwrap", "--block", kb)
	require.NoError(t, err)
	assert.Contains(t, out, "Key: "+testKey)
	assert.Contains(t, out, "Key Set Identifier")
}

func TestWrapCommandErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"no header", []string{"wrap", "--key", testKey}},
		{"bad header", []string{"wrap", "--header", "D0000ZZAE00E0000", "--key", testKey}},
		{"bad key hex", []string{"wrap", "--header", "D0000P0AE00E0000", "--key", "XYZ"}},
		{"bad opt", []string{"wrap", "--header", "D0000P0AE00E0000", "--key", testKey, "--opt", "KSdata"}},
		{"seed too short", []string{"wrap", "--header", "D0000P0AE00E0000", "--key", testKey, "--seed", "00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := execute(t, tt.args...)
			require.Error(t, err)
		})
	}
}

func TestUnwrapCommand(t *testing.T) {
	t.Parallel()
	out, err := execute(t, "unwrap", "--block", testKB)
	require.NoError(t, err)
	assert.Contains(t, out, "PIN Encryption")
	assert.Contains(t, out, "Key: "+testKey)
	assert.Contains(t, out, "KCV: ")

	_, err = execute(t, "unwrap", "--block", testKB[:len(testKB)-1]+"5")
	require.ErrorIs(t, err, tr31.ErrMACVerificationFailed)
}

func TestInspectCommand(t *testing.T) {
	t.Parallel()
	kb := "D0144P0TE00N0200KS1800604B120F9292800000PB080000" +
		"F2A795BB540447553D9FA3812E64E76A577DA04A1E0DD9FA9EFDE394BE936D45" +
		"32BF5BA7E57063B63FCD90F9C2020F77"

	out, err := execute(t, "inspect", "--block", kb)
	require.NoError(t, err)
	assert.Contains(t, out, "Triple DEA")
	assert.Contains(t, out, "Padding block")
	assert.Contains(t, out, "00604B120F9292800000")
	assert.NotContains(t, out, "warning")

	out, err = execute(t, "inspect", "--block", kb[:100])
	require.NoError(t, err)
	assert.Contains(t, out, "warning: header declares 144 characters, got 100")
}

func TestDeriveCommand(t *testing.T) {
	t.Parallel()
	out, err := execute(t, "derive")
	require.NoError(t, err)
	assert.Contains(t, out, "KBPK: 88E1AB2A")
	assert.Contains(t, out, "KBEK: ")
	assert.Contains(t, out, "KBAK: ")
}

func TestFinalizedHeader(t *testing.T) {
	t.Parallel()
	h, err := tr31.NewHeader(tr31.VersionD, "K0", tr31.AlgorithmAES, "N", "00", tr31.ExportSensitive)
	require.NoError(t, err)

	out, err := finalizedHeader(h, []string{"KS:00604B120F9292800000"})
	require.NoError(t, err)
	assert.Equal(t, "D0048K0AN00S0200KS1800604B120F9292800000PB080000", out)

	plain, err := tr31.NewHeader(tr31.VersionD, "K0", tr31.AlgorithmAES, "N", "00", tr31.ExportSensitive)
	require.NoError(t, err)
	out, err = finalizedHeader(plain, nil)
	require.NoError(t, err)
	assert.Equal(t, "D0016K0AN00S0000", out)
}
