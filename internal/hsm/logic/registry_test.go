package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()
	r := DefaultRegistry()

	codes := make([]string, 0)
	for _, info := range r.List() {
		codes = append(codes, info.Code)
	}
	assert.Equal(t, []string{"KC", "KG", "KU", "KW", "NC", "PE", "PX"}, codes)

	info, ok := r.Get("KW")
	require.True(t, ok)
	assert.Equal(t, "KX", info.ResponseCode)
	assert.Equal(t, "Unknown command", r.Description("ZZ"))
}

func TestRegistryExecute(t *testing.T) {
	t.Parallel()
	r := DefaultRegistry()
	svc := newTestService(t)

	out, err := r.Execute("KU", []byte(testKB), svc)
	require.NoError(t, err)
	assert.Equal(t, "KV00D0112P0AE00E0000"+testKeyHex, string(out))

	_, err = r.Execute("ZZ", nil, svc)
	assert.True(t, IsUnknownCommand(err))
}
