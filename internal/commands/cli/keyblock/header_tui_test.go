package keyblock

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

const kvnField = 4

func TestKeyBlockHeaderTUIDefaults(t *testing.T) {
	t.Parallel()
	model := newKeyBlockHeaderModel()

	require.Len(t, model.fields, 6)
	h, err := model.header()
	require.NoError(t, err)
	assert.Equal(t, tr31.VersionD, h.VersionID())
	assert.Equal(t, tr31.KeyUsage("K0"), h.KeyUsage())
	assert.Equal(t, tr31.AlgorithmAES, h.Algorithm())
	assert.Equal(t, tr31.ModeOfUse("N"), h.ModeOfUse())
	assert.Equal(t, "00", h.KeyVersionNumber())
	assert.Equal(t, tr31.ExportSensitive, h.Exportability())

	field := model.fields[kvnField]
	assert.Equal(t, fieldTypeNumeric, field.fieldType)
	assert.Equal(t, 0, field.minValue)
	assert.Equal(t, 99, field.maxValue)
}

func TestNumericFieldOperations(t *testing.T) {
	t.Parallel()
	model := newKeyBlockHeaderModel()
	model.currentField = kvnField

	model.incrementNumericValue(1)
	assert.Equal(t, "01", model.fields[kvnField].numericValue)

	model.fields[kvnField].numericValue = "99"
	model.incrementNumericValue(1)
	assert.Equal(t, "99", model.fields[kvnField].numericValue, "must not exceed max")

	model.decrementNumericValue(1)
	assert.Equal(t, "98", model.fields[kvnField].numericValue)

	model.fields[kvnField].numericValue = "00"
	model.decrementNumericValue(1)
	assert.Equal(t, "00", model.fields[kvnField].numericValue, "must not go below min")

	model.handleNumericInput('5')
	assert.Equal(t, "05", model.fields[kvnField].numericValue)
	model.handleNumericInput('7')
	assert.Equal(t, "57", model.fields[kvnField].numericValue)
	model.handleNumericInput('1')
	assert.Equal(t, "57", model.fields[kvnField].numericValue, "three digits rejected")

	model.handleBackspace()
	assert.Equal(t, "05", model.fields[kvnField].numericValue)
	model.handleBackspace()
	assert.Equal(t, "00", model.fields[kvnField].numericValue)
}

func TestHeaderUpdate(t *testing.T) {
	t.Parallel()
	model := newKeyBlockHeaderModel()

	model.fields[1].selected = indexOf(model.fields[1].options, "P0")
	model.fields[3].selected = indexOf(model.fields[3].options, "E")
	model.fields[kvnField].numericValue = "15"
	model.updateHeaderFromSelection()

	h, err := model.header()
	require.NoError(t, err)
	assert.Equal(t, tr31.KeyUsage("P0"), h.KeyUsage())
	assert.Equal(t, tr31.ModeOfUse("E"), h.ModeOfUse())
	assert.Equal(t, "15", h.KeyVersionNumber())
}

func TestUpdateKeyNavigation(t *testing.T) {
	t.Parallel()
	var m tea.Model = newKeyBlockHeaderModel()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, m.(keyBlockHeaderModel).currentField)

	start := m.(keyBlockHeaderModel).fields[1].selected
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, start+1, m.(keyBlockHeaderModel).fields[1].selected)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 0, m.(keyBlockHeaderModel).currentField)
	assert.Contains(t, m.View(), "Key Block Version")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, m.(keyBlockHeaderModel).cancelled)
	assert.NotNil(t, cmd)
	assert.Equal(t, "Operation cancelled.\n", m.View())
}
