package tr31

import (
	"fmt"
	"slices"
	"strings"
)

const (
	HeaderLen         = 16
	MaxKBLength       = 9999
	MaxOptBlocks      = 99
	ReservedField     = "00"
	minOptHeaderLen   = HeaderLen + optBlockHeaderLen
	blockSizeVersionD = 16
	blockSizeLegacy   = 8
	minPaddingBlock   = 6
)

// Header is the clear text part of a key block: 16 fixed characters followed
// by the optional block chain.
type Header struct {
	versionID     VersionID
	kbLength      int
	keyUsage      KeyUsage
	algorithm     Algorithm
	modeOfUse     ModeOfUse
	kvn           string
	exportability Exportability
	numOptBlocks  int
	reserved      string
	optBlocks     OptBlocks
}

// NewEmptyHeader returns a header with no fields set.
func NewEmptyHeader() *Header {
	return &Header{reserved: ReservedField}
}

// NewHeader builds a header with no optional blocks and a zero length.
// Fields are validated in wire order.
func NewHeader(
	version VersionID,
	usage KeyUsage,
	algorithm Algorithm,
	mode ModeOfUse,
	kvn string,
	exportability Exportability,
) (*Header, error) {
	h := NewEmptyHeader()
	if err := h.SetVersionID(version); err != nil {
		return nil, err
	}
	if err := h.SetKeyUsage(usage); err != nil {
		return nil, err
	}
	if err := h.SetAlgorithm(algorithm); err != nil {
		return nil, err
	}
	if err := h.SetModeOfUse(mode); err != nil {
		return nil, err
	}
	if err := h.SetKeyVersionNumber(kvn); err != nil {
		return nil, err
	}
	if err := h.SetExportability(exportability); err != nil {
		return nil, err
	}

	return h, nil
}

// ParseHeader decodes the header at the start of s. The declared number of
// optional blocks is parsed; anything after them is ignored.
func ParseHeader(s string) (*Header, error) {
	if len(s) < HeaderLen {
		return nil, fmt.Errorf("%w: need %d characters, have %d", ErrDataTooShort, HeaderLen, len(s))
	}

	kbLength, ok := parseDecimal(s[1:5])
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKBLength, s[1:5])
	}
	numOpt, ok := parseDecimal(s[12:14])
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOptBlockCount, s[12:14])
	}

	h := &Header{}
	if err := h.SetVersionID(VersionID(s[0:1])); err != nil {
		return nil, err
	}
	if err := h.SetKBLength(kbLength); err != nil {
		return nil, err
	}
	if err := h.SetKeyUsage(KeyUsage(s[5:7])); err != nil {
		return nil, err
	}
	if err := h.SetAlgorithm(Algorithm(s[7:8])); err != nil {
		return nil, err
	}
	if err := h.SetModeOfUse(ModeOfUse(s[8:9])); err != nil {
		return nil, err
	}
	if err := h.SetKeyVersionNumber(s[9:11]); err != nil {
		return nil, err
	}
	if err := h.SetExportability(Exportability(s[11:12])); err != nil {
		return nil, err
	}
	if err := h.SetNumOptBlocks(numOpt); err != nil {
		return nil, err
	}
	if err := h.SetReservedField(s[14:16]); err != nil {
		return nil, err
	}

	if numOpt > 0 {
		if len(s) < minOptHeaderLen {
			return nil, fmt.Errorf("%w: %d optional blocks declared in %d characters",
				ErrDataTooShort, numOpt, len(s))
		}
		chain, err := ParseOptBlocks(s[HeaderLen:], numOpt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse optional blocks: %w", err)
		}
		h.optBlocks = chain
	}

	return h, nil
}

// Export encodes the header and its optional blocks.
func (h *Header) Export() (string, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"version ID", string(h.versionID)},
		{"key usage", string(h.keyUsage)},
		{"algorithm", string(h.algorithm)},
		{"mode of use", string(h.modeOfUse)},
		{"key version number", h.kvn},
		{"exportability", string(h.exportability)},
		{"reserved", h.reserved},
	}
	for _, f := range fields {
		if f.value == "" {
			return "", fmt.Errorf("%w: %s", ErrEmptyHeaderField, f.name)
		}
	}
	if h.kbLength == 0 {
		return "", fmt.Errorf("%w: length not set", ErrInvalidKBLength)
	}
	if h.numOptBlocks != len(h.optBlocks) {
		return "", fmt.Errorf("%w: declared %d, chain has %d",
			ErrInconsistentOptBlockLength, h.numOptBlocks, len(h.optBlocks))
	}

	opt, err := h.optBlocks.Export()
	if err != nil {
		return "", fmt.Errorf("failed to export optional blocks: %w", err)
	}

	var sb strings.Builder
	sb.Grow(h.Len())
	sb.WriteString(string(h.versionID))
	fmt.Fprintf(&sb, "%04d", h.kbLength)
	sb.WriteString(string(h.keyUsage))
	sb.WriteString(string(h.algorithm))
	sb.WriteString(string(h.modeOfUse))
	sb.WriteString(h.kvn)
	sb.WriteString(string(h.exportability))
	fmt.Fprintf(&sb, "%02d", h.numOptBlocks)
	sb.WriteString(h.reserved)
	sb.WriteString(opt)

	return sb.String(), nil
}

// Len returns the encoded header length including optional blocks.
func (h *Header) Len() int {
	return HeaderLen + h.optBlocks.TotalLength()
}

// Finalize appends a PB padding block so the header length is a multiple of
// the cipher block size. Headers without optional blocks are left untouched.
func (h *Header) Finalize() error {
	if len(h.optBlocks) == 0 {
		return nil
	}
	bs := blockSizeLegacy
	if h.versionID == VersionD {
		bs = blockSizeVersionD
	}
	rem := h.Len() % bs
	if rem == 0 {
		return nil
	}

	need := bs - rem
	if need < minPaddingBlock {
		need += bs
	}
	pb, err := NewOptBlock(OptBlockPB, strings.Repeat("0", need-optBlockHeaderLen))
	if err != nil {
		return err
	}

	return h.AppendOptBlocks(pb)
}

// SetOptBlocks replaces the optional block chain and updates the block count.
func (h *Header) SetOptBlocks(chain OptBlocks) error {
	if len(chain) > MaxOptBlocks {
		return fmt.Errorf("%w: %d", ErrTooManyOptionalBlocks, len(chain))
	}
	h.optBlocks = slices.Clone(chain)
	h.numOptBlocks = len(chain)

	return nil
}

// AppendOptBlocks appends blocks to the chain and updates the block count.
func (h *Header) AppendOptBlocks(blocks ...OptBlock) error {
	if h.numOptBlocks+len(blocks) > MaxOptBlocks {
		return fmt.Errorf("%w: %d", ErrTooManyOptionalBlocks, h.numOptBlocks+len(blocks))
	}
	h.optBlocks.Append(blocks...)
	h.numOptBlocks += len(blocks)

	return nil
}

// Clone returns a deep copy of h.
func (h *Header) Clone() *Header {
	c := *h
	c.optBlocks = slices.Clone(h.optBlocks)

	return &c
}

// SetVersionID sets the version ID after checking it is a known version.
func (h *Header) SetVersionID(v VersionID) error {
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidVersionID, v)
	}
	h.versionID = v

	return nil
}

// SetKBLength sets the total key block length, 0 to MaxKBLength.
func (h *Header) SetKBLength(n int) error {
	if n < 0 || n > MaxKBLength {
		return fmt.Errorf("%w: %d", ErrInvalidKBLength, n)
	}
	h.kbLength = n

	return nil
}

// SetKeyUsage sets the key usage after checking it is a known usage.
func (h *Header) SetKeyUsage(u KeyUsage) error {
	if !u.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKeyUsage, u)
	}
	h.keyUsage = u

	return nil
}

// SetAlgorithm sets the algorithm after checking it is a known algorithm.
func (h *Header) SetAlgorithm(a Algorithm) error {
	if !a.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAlgorithm, a)
	}
	h.algorithm = a

	return nil
}

// SetModeOfUse sets the mode of use after checking it is a known mode.
func (h *Header) SetModeOfUse(m ModeOfUse) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidModeOfUse, m)
	}
	h.modeOfUse = m

	return nil
}

// SetKeyVersionNumber accepts any two ASCII characters.
func (h *Header) SetKeyVersionNumber(kvn string) error {
	if len(kvn) != 2 || !isASCII(kvn) {
		return fmt.Errorf("%w: %q", ErrInvalidKeyVersionNumber, kvn)
	}
	h.kvn = kvn

	return nil
}

// SetExportability sets the exportability after checking it is a known value.
func (h *Header) SetExportability(e Exportability) error {
	if !e.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidExportability, e)
	}
	h.exportability = e

	return nil
}

// SetNumOptBlocks sets the declared optional block count, 0 to MaxOptBlocks.
func (h *Header) SetNumOptBlocks(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOptBlockCount, n)
	}
	if n > MaxOptBlocks {
		return fmt.Errorf("%w: %d", ErrTooManyOptionalBlocks, n)
	}
	h.numOptBlocks = n

	return nil
}

// SetReservedField sets the reserved field, which must be "00".
func (h *Header) SetReservedField(s string) error {
	if s != ReservedField {
		return fmt.Errorf("%w: %q", ErrInvalidReservedField, s)
	}
	h.reserved = s

	return nil
}

// VersionID returns the key block version ID.
func (h *Header) VersionID() VersionID { return h.versionID }

// KBLength returns the total key block length in characters.
func (h *Header) KBLength() int { return h.kbLength }

// KeyUsage returns the key usage.
func (h *Header) KeyUsage() KeyUsage { return h.keyUsage }

// Algorithm returns the key algorithm.
func (h *Header) Algorithm() Algorithm { return h.algorithm }

// ModeOfUse returns the mode of use.
func (h *Header) ModeOfUse() ModeOfUse { return h.modeOfUse }

// KeyVersionNumber returns the two-character key version number.
func (h *Header) KeyVersionNumber() string { return h.kvn }

// Exportability returns the exportability.
func (h *Header) Exportability() Exportability { return h.exportability }

// NumOptBlocks returns the number of optional blocks.
func (h *Header) NumOptBlocks() int { return h.numOptBlocks }

// Reserved returns the reserved field.
func (h *Header) Reserved() string { return h.reserved }

// OptBlocks returns a copy of the optional block chain.
func (h *Header) OptBlocks() OptBlocks { return slices.Clone(h.optBlocks) }

func parseDecimal(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}

	return n, true
}
