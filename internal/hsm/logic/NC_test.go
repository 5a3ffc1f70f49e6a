package logic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_tr31/pkg/cryptoutils"
)

func TestExecuteNC(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	out, err := ExecuteNC(nil, svc)
	require.NoError(t, err)

	kcv, err := svc.KBPKCheckValue()
	require.NoError(t, err)

	resp := string(out)
	assert.True(t, strings.HasPrefix(resp, "ND00"))
	assert.Equal(t, cryptoutils.Raw2Str(kcv)[:6], resp[4:10])
	assert.True(t, strings.HasSuffix(resp, "0007-E000"))
}
