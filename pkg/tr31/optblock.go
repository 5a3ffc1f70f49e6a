package tr31

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	optBlockHeaderLen    = 4
	optBlockExtHeaderLen = 10
	optBlockExtThreshold = 256
	optBlockMaxLen       = 0xFFFF
	extLengthMarker      = "02"
)

// OptBlock is a single optional header block: a two character ID followed by
// a length field and ASCII data.
type OptBlock struct {
	id   OptBlockID
	data string
	// extended keeps the six character length form for blocks that were
	// parsed with it even though the ordinary form would fit.
	extended bool
}

// NewOptBlock validates id and data and returns a new optional block.
func NewOptBlock(id OptBlockID, data string) (OptBlock, error) {
	if !id.Valid() {
		return OptBlock{}, fmt.Errorf("%w: %q", ErrInvalidOptBlockID, id)
	}
	if !isASCII(data) {
		return OptBlock{}, ErrNonASCIIData
	}
	b := OptBlock{id: id, data: data}
	if b.Length() > optBlockMaxLen {
		return OptBlock{}, fmt.Errorf("%w: %d", ErrOptBlockTooLong, b.Length())
	}

	return b, nil
}

// ID returns the block identifier.
func (b OptBlock) ID() OptBlockID { return b.id }

// Data returns the block data.
func (b OptBlock) Data() string { return b.data }

// Length returns the encoded size of the block including ID and length field.
func (b OptBlock) Length() int {
	n := len(b.id) + 2 + len(b.data)
	if b.extended || n >= optBlockExtThreshold {
		n += optBlockExtHeaderLen - optBlockHeaderLen
	}

	return n
}

// Export encodes the block.
func (b OptBlock) Export() (string, error) {
	n := b.Length()
	if n < optBlockHeaderLen {
		return "", ErrUninitializedOptBlock
	}
	if n > optBlockMaxLen {
		return "", fmt.Errorf("%w: %d", ErrOptBlockTooLong, n)
	}

	var sb strings.Builder
	sb.WriteString(string(b.id))
	if n >= optBlockExtThreshold {
		fmt.Fprintf(&sb, "00%s%04X", extLengthMarker, n)
	} else {
		fmt.Fprintf(&sb, "%02X", n)
	}
	sb.WriteString(b.data)

	return sb.String(), nil
}

// OptBlocks is an ordered chain of optional blocks.
type OptBlocks []OptBlock

// ParseOptBlocks decodes count consecutive optional blocks from the start of s.
// Any characters following the last block are ignored.
func ParseOptBlocks(s string, count int) (OptBlocks, error) {
	chain := make(OptBlocks, 0, count)
	rest := s
	for i := range count {
		b, n, err := parseOptBlock(rest)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i+1, err)
		}
		chain = append(chain, b)
		rest = rest[n:]
	}

	return chain, nil
}

func parseOptBlock(s string) (OptBlock, int, error) {
	if len(s) < optBlockHeaderLen {
		return OptBlock{}, 0, fmt.Errorf("%w: %d characters left", ErrOptBlockTooShort, len(s))
	}
	id := OptBlockID(s[:2])
	if !id.Valid() {
		return OptBlock{}, 0, fmt.Errorf("%w: %q", ErrInvalidOptBlockID, id)
	}

	short, err := strconv.ParseUint(s[2:4], 16, 8)
	if err != nil {
		return OptBlock{}, 0, fmt.Errorf("%w: %q", ErrInvalidLengthField, s[2:4])
	}

	length := int(short)
	hdrLen := optBlockHeaderLen
	extended := false
	switch {
	case length == 0:
		if len(s) < optBlockExtHeaderLen {
			return OptBlock{}, 0, fmt.Errorf("%w: extended length field truncated", ErrOptBlockTooShort)
		}
		if s[4:6] != extLengthMarker {
			return OptBlock{}, 0, fmt.Errorf("%w: %q", ErrInvalidExtendedLengthMarker, s[4:6])
		}
		ext, err := strconv.ParseUint(s[6:10], 16, 16)
		if err != nil {
			return OptBlock{}, 0, fmt.Errorf("%w: %q", ErrInvalidLengthField, s[6:10])
		}
		if ext < optBlockExtThreshold {
			return OptBlock{}, 0, fmt.Errorf("%w: got %d", ErrExtendedLengthNotGreaterThan255, ext)
		}
		length = int(ext)
		hdrLen = optBlockExtHeaderLen
		extended = true
	case length < optBlockHeaderLen:
		return OptBlock{}, 0, fmt.Errorf("%w: %d", ErrLengthTooSmall, length)
	}

	if len(s) < length {
		return OptBlock{}, 0, fmt.Errorf("%w: need %d, have %d",
			ErrDataTooShortForDeclaredLength, length, len(s))
	}
	data := s[hdrLen:length]
	if !isASCII(data) {
		return OptBlock{}, 0, ErrNonASCIIData
	}

	return OptBlock{id: id, data: data, extended: extended}, length, nil
}

// Export encodes the chain in order.
func (c OptBlocks) Export() (string, error) {
	var sb strings.Builder
	for i, b := range c {
		s, err := b.Export()
		if err != nil {
			return "", fmt.Errorf("block %d: %w", i+1, err)
		}
		sb.WriteString(s)
	}

	return sb.String(), nil
}

// Append adds blocks to the tail of the chain.
func (c *OptBlocks) Append(blocks ...OptBlock) {
	*c = append(*c, blocks...)
}

// TotalLength returns the encoded size of the whole chain.
func (c OptBlocks) TotalLength() int {
	total := 0
	for _, b := range c {
		total += b.Length()
	}

	return total
}

// Get returns the first block with the given ID.
func (c OptBlocks) Get(id OptBlockID) (OptBlock, bool) {
	for _, b := range c {
		if b.id == id {
			return b, true
		}
	}

	return OptBlock{}, false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return false
		}
	}

	return true
}
