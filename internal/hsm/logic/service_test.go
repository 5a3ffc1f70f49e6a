package logic

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_tr31/pkg/cryptoutils"
	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

const (
	testKBPKHex = "88E1AB2A2E3DD38C1FA039A536500CC8A87AB9D62DC92C01058FA79F44657DE6"
	testKeyHex  = "3F419E1CB7079442AA37474C2EFBF8B8"
	testSeedHex = "1C2965473CE206BB855B01533782"
	testKB      = "D0112P0AE00E0000B82679114F470F540165EDFBF7E250FCEA43F810D215F8D2" +
		"07E2E417C07156A27E8E31DA05F7425509593D03A457DC34"
)

// testService is a deterministic KeyBlockService: a fixed KBPK, a fixed
// padding seed and random keys made of repeated 0x11 bytes.
type testService struct {
	kbpk []byte
	seed []byte
}

func newTestService(t *testing.T) *testService {
	t.Helper()
	kbpk, err := hex.DecodeString(testKBPKHex)
	require.NoError(t, err)
	seed, err := hex.DecodeString(testSeedHex)
	require.NoError(t, err)

	return &testService{
		kbpk: kbpk,
		seed: append(seed, bytes.Repeat([]byte{0x5A}, 64)...),
	}
}

func (s *testService) Wrap(h *tr31.Header, key []byte, masked int) (string, error) {
	return tr31.Wrap(s.kbpk, h, key, masked, s.seed)
}

func (s *testService) Unwrap(kb string) (*tr31.Header, []byte, error) {
	return tr31.Unwrap(s.kbpk, kb)
}

func (s *testService) KBPKCheckValue() ([]byte, error) {
	return cryptoutils.CalculateCMACCheckValue(s.kbpk)
}

func (s *testService) RandomKey(n int) ([]byte, error) {
	return bytes.Repeat([]byte{0x11}, n), nil
}

func (s *testService) FirmwareVersion() string { return "0007-E000" }
