package keyblock

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

const (
	fieldTypeRadio = iota
	fieldTypeNumeric
)

type option struct {
	value       string
	description string
}

type fieldConfig struct {
	name         string
	description  string
	fieldType    int
	options      []option // For radio fields.
	selected     int      // For radio fields.
	numericValue string   // For numeric fields.
	minValue     int      // For numeric fields.
	maxValue     int      // For numeric fields.
	digits       int      // For numeric fields (zero-padding).
}

// headerValues holds the fixed header fields chosen so far.
type headerValues struct {
	version       tr31.VersionID
	keyUsage      tr31.KeyUsage
	algorithm     tr31.Algorithm
	modeOfUse     tr31.ModeOfUse
	kvn           string
	exportability tr31.Exportability
}

type keyBlockHeaderModel struct {
	values       headerValues
	currentField int
	fields       []fieldConfig
	done         bool
	cancelled    bool
}

func optionsOf[T interface {
	~string
	Description() string
}](values []T) []option {
	out := make([]option, 0, len(values))
	for _, v := range values {
		out = append(out, option{string(v), v.Description()})
	}

	return out
}

func indexOf(opts []option, value string) int {
	for i, o := range opts {
		if o.value == value {
			return i
		}
	}

	return 0
}

// newKeyBlockHeaderModel creates a new TUI model for configuring TR-31 headers.
func newKeyBlockHeaderModel() keyBlockHeaderModel {
	usages := optionsOf(tr31.KeyUsages())
	algorithms := optionsOf(tr31.Algorithms())
	modes := optionsOf(tr31.ModesOfUse())
	exports := optionsOf(tr31.Exportabilities())

	fields := []fieldConfig{
		{
			name:        "Version",
			description: "Key Block Version",
			fieldType:   fieldTypeRadio,
			options:     []option{{string(tr31.VersionD), tr31.VersionD.Description()}},
		},
		{
			name:        "KeyUsage",
			description: "Key Usage",
			fieldType:   fieldTypeRadio,
			options:     usages,
			selected:    indexOf(usages, "K0"),
		},
		{
			name:        "Algorithm",
			description: "Cryptographic Algorithm",
			fieldType:   fieldTypeRadio,
			options:     algorithms,
			selected:    indexOf(algorithms, string(tr31.AlgorithmAES)),
		},
		{
			name:        "ModeOfUse",
			description: "Mode of Use",
			fieldType:   fieldTypeRadio,
			options:     modes,
			selected:    indexOf(modes, "N"),
		},
		{
			name:         "KeyVersionNum",
			description:  "Key Version Number (00 means versioning not used)",
			fieldType:    fieldTypeNumeric,
			numericValue: "00",
			minValue:     0,
			maxValue:     99,
			digits:       2,
		},
		{
			name:        "Exportability",
			description: "Key Exportability",
			fieldType:   fieldTypeRadio,
			options:     exports,
			selected:    indexOf(exports, string(tr31.ExportSensitive)),
		},
	}

	return keyBlockHeaderModel{
		values: headerValues{
			version:       tr31.VersionD,
			keyUsage:      "K0",
			algorithm:     tr31.AlgorithmAES,
			modeOfUse:     "N",
			kvn:           "00",
			exportability: tr31.ExportSensitive,
		},
		currentField: 0,
		fields:       fields,
	}
}

// Init initializes the model.
func (m keyBlockHeaderModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m keyBlockHeaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	currentField := &m.fields[m.currentField]

	switch keyMsg.String() {
	case "ctrl+c", "q":
		m.cancelled = true

		return m, tea.Quit
	case "enter":
		m.updateHeaderFromSelection()
		if m.currentField >= len(m.fields)-1 {
			m.done = true

			return m, tea.Quit
		}
		m.currentField++
	case "tab":
		if m.currentField < len(m.fields)-1 {
			m.currentField++
		}
	case "shift+tab":
		if m.currentField > 0 {
			m.currentField--
		}
	case "up", "k":
		switch currentField.fieldType {
		case fieldTypeRadio:
			if currentField.selected > 0 {
				currentField.selected--
			}
		case fieldTypeNumeric:
			m.incrementNumericValue(1)
		}
	case "down", "j":
		switch currentField.fieldType {
		case fieldTypeRadio:
			if currentField.selected < len(currentField.options)-1 {
				currentField.selected++
			}
		case fieldTypeNumeric:
			m.decrementNumericValue(1)
		}
	case "backspace":
		if currentField.fieldType == fieldTypeNumeric {
			m.handleBackspace()
		}
	default:
		if currentField.fieldType == fieldTypeNumeric && len(keyMsg.String()) == 1 {
			if char := keyMsg.String()[0]; char >= '0' && char <= '9' {
				m.handleNumericInput(char)
			}
		}
	}

	return m, nil
}

// incrementNumericValue increases the numeric value by the specified amount.
func (m *keyBlockHeaderModel) incrementNumericValue(amount int) {
	currentField := &m.fields[m.currentField]
	if currentField.fieldType != fieldTypeNumeric {
		return
	}

	newValue := parseNumericValue(currentField.numericValue) + amount
	if newValue <= currentField.maxValue {
		currentField.numericValue = formatNumericValue(newValue, currentField.digits)
	}
}

// decrementNumericValue decreases the numeric value by the specified amount.
func (m *keyBlockHeaderModel) decrementNumericValue(amount int) {
	currentField := &m.fields[m.currentField]
	if currentField.fieldType != fieldTypeNumeric {
		return
	}

	newValue := parseNumericValue(currentField.numericValue) - amount
	if newValue >= currentField.minValue {
		currentField.numericValue = formatNumericValue(newValue, currentField.digits)
	}
}

// handleNumericInput shifts a typed digit into the value.
func (m *keyBlockHeaderModel) handleNumericInput(char byte) {
	currentField := &m.fields[m.currentField]
	if currentField.fieldType != fieldTypeNumeric {
		return
	}

	currentValue := strings.TrimLeft(currentField.numericValue, "0")
	newValue := parseNumericValue(currentValue + string(char))
	if newValue >= currentField.minValue && newValue <= currentField.maxValue {
		currentField.numericValue = formatNumericValue(newValue, currentField.digits)
	}
}

// handleBackspace removes the last digit from the numeric input.
func (m *keyBlockHeaderModel) handleBackspace() {
	currentField := &m.fields[m.currentField]
	if currentField.fieldType != fieldTypeNumeric {
		return
	}

	valueStr := strings.TrimLeft(currentField.numericValue, "0")
	if len(valueStr) <= 1 {
		currentField.numericValue = formatNumericValue(0, currentField.digits)

		return
	}
	newValue := parseNumericValue(valueStr[:len(valueStr)-1])
	currentField.numericValue = formatNumericValue(newValue, currentField.digits)
}

func parseNumericValue(value string) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}

	return parsed
}

func formatNumericValue(value, digits int) string {
	return fmt.Sprintf("%0*d", digits, value)
}

// updateHeaderFromSelection copies the current selections into values.
func (m *keyBlockHeaderModel) updateHeaderFromSelection() {
	for _, field := range m.fields {
		var selected string
		if field.fieldType == fieldTypeRadio {
			selected = field.options[field.selected].value
		}
		switch field.name {
		case "Version":
			m.values.version = tr31.VersionID(selected)
		case "KeyUsage":
			m.values.keyUsage = tr31.KeyUsage(selected)
		case "Algorithm":
			m.values.algorithm = tr31.Algorithm(selected)
		case "ModeOfUse":
			m.values.modeOfUse = tr31.ModeOfUse(selected)
		case "KeyVersionNum":
			m.values.kvn = field.numericValue
		case "Exportability":
			m.values.exportability = tr31.Exportability(selected)
		}
	}
}

// header builds a TR-31 header from the chosen values.
func (m keyBlockHeaderModel) header() (*tr31.Header, error) {
	v := m.values

	return tr31.NewHeader(v.version, v.keyUsage, v.algorithm, v.modeOfUse, v.kvn, v.exportability)
}

// View renders the current state of the model.
func (m keyBlockHeaderModel) View() string {
	if m.done {
		return "Key block header configured successfully!\n"
	}
	if m.cancelled {
		return "Operation cancelled.\n"
	}

	var sb strings.Builder
	sb.WriteString("Configure TR-31 Key Block Header\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")
	fmt.Fprintf(&sb, "Field %d of %d\n\n", m.currentField+1, len(m.fields))

	currentField := m.fields[m.currentField]
	fmt.Fprintf(&sb, "▶ %s: %s\n\n", currentField.name, currentField.description)

	switch currentField.fieldType {
	case fieldTypeRadio:
		for j, opt := range currentField.options {
			selector := "  ○ "
			if j == currentField.selected {
				selector = "  ● "
			}
			fmt.Fprintf(&sb, "%s%s - %s\n", selector, opt.value, opt.description)
		}
	case fieldTypeNumeric:
		fmt.Fprintf(&sb, "  [ %s ] (Range: %02d-%02d)\n",
			currentField.numericValue, currentField.minValue, currentField.maxValue)
		sb.WriteString("  Type digits, use ↑/↓ to increment/decrement, Backspace to delete\n")
	}
	sb.WriteString("\n")

	if m.currentField > 0 {
		sb.WriteString("Completed fields:\n")
		for _, field := range m.fields[:m.currentField] {
			value := field.numericValue
			if field.fieldType == fieldTypeRadio {
				value = field.options[field.selected].value
			}
			fmt.Fprintf(&sb, "  %s: %s\n", field.name, value)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Navigation:\n")
	sb.WriteString("  ↑/↓ or j/k: Select option or increment/decrement value\n")
	sb.WriteString("  Tab/Shift+Tab: Next/Previous field\n")
	sb.WriteString("  Enter: Confirm and continue\n")
	if currentField.fieldType == fieldTypeNumeric {
		sb.WriteString("  0-9: Direct numeric input\n")
		sb.WriteString("  Backspace: Delete digit\n")
	}
	sb.WriteString("  q or Ctrl+C: Quit\n")

	return sb.String()
}

// runKeyBlockHeaderTUI starts the interactive TUI for header configuration.
func runKeyBlockHeaderTUI() (*tr31.Header, bool, error) {
	p := tea.NewProgram(newKeyBlockHeaderModel())
	finalModel, err := p.Run()
	if err != nil {
		return nil, false, err
	}

	m, ok := finalModel.(keyBlockHeaderModel)
	if !ok || m.cancelled {
		return nil, false, nil
	}
	m.updateHeaderFromSelection()
	h, err := m.header()
	if err != nil {
		return nil, false, err
	}

	return h, true, nil
}
