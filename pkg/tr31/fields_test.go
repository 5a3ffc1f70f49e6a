package tr31_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

func TestFieldEnumerations(t *testing.T) {
	t.Parallel()

	usages := tr31.KeyUsages()
	assert.True(t, slices.IsSorted(usages))
	assert.Contains(t, usages, tr31.KeyUsage("P0"))
	for _, u := range usages {
		assert.True(t, u.Valid(), u)
		assert.NotEqual(t, "Unknown key usage", u.Description())
	}

	modes := tr31.ModesOfUse()
	assert.True(t, slices.IsSorted(modes))
	assert.Len(t, modes, 11)

	for _, a := range tr31.Algorithms() {
		assert.True(t, a.Valid(), a)
	}
	for _, e := range tr31.Exportabilities() {
		assert.True(t, e.Valid(), e)
	}
}

func TestFieldDescriptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"version D", tr31.VersionD.Description(), "AES Key Derivation Binding Method"},
		{"unknown version", tr31.VersionID("Z").Description(), "Unknown version"},
		{"usage P0", tr31.KeyUsage("P0").Description(), "PIN Encryption"},
		{"unknown usage", tr31.KeyUsage("ZZ").Description(), "Unknown key usage"},
		{"algorithm", tr31.AlgorithmTDEA.Description(), "Triple DEA"},
		{"unknown algorithm", tr31.Algorithm("Q").Description(), "Unknown algorithm"},
		{"mode", tr31.ModeOfUse("E").Description(), "Encrypt / wrap only"},
		{"exportability", tr31.ExportNone.Description(), "Non-exportable"},
		{"optional block", tr31.OptBlockKS.Description(), "Key Set Identifier (TDEA DUKPT)"},
		{"kvn unused", tr31.KeyVersionDescription("00"), "Key versioning not used"},
		{"kvn component", tr31.KeyVersionDescription("c2"), "Key component 2"},
		{"kvn version", tr31.KeyVersionDescription("17"), "Version 17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
