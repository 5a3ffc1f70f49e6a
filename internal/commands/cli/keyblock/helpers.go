package keyblock

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_tr31/internal/config"
	"github.com/andrei-cloud/go_tr31/internal/hsm"
	"github.com/andrei-cloud/go_tr31/pkg/cryptoutils"
	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

// resolveKBPK returns the protection key from --kbpk or configuration,
// falling back to the built-in test key.
func resolveKBPK(cmd *cobra.Command) ([]byte, error) {
	kbpkHex := config.Get().KBPK.Hex
	if kbpkHex == "" {
		cmd.PrintErrln("warning: no KBPK configured, using the built-in test key")
		kbpkHex = hsm.DefaultTestKBPK
	}

	return decodeHexFlag("kbpk", kbpkHex)
}

func decodeHexFlag(name, value string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("invalid %s hex: %w", name, err)
	}

	return b, nil
}

// parseOptBlockFlags turns "ID:data" values into optional blocks.
func parseOptBlockFlags(values []string) (tr31.OptBlocks, error) {
	var chain tr31.OptBlocks
	for _, v := range values {
		id, data, ok := strings.Cut(v, ":")
		if !ok || len(id) != 2 {
			return nil, fmt.Errorf("optional block %q must be ID:data", v)
		}
		b, err := tr31.NewOptBlock(tr31.OptBlockID(strings.ToUpper(id)), data)
		if err != nil {
			return nil, err
		}
		chain.Append(b)
	}

	return chain, nil
}

// describeHeader prints the header fields with their meanings.
func describeHeader(w io.Writer, h *tr31.Header) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)

	fmt.Fprintln(tw, "Field\tValue\tMeaning")
	fmt.Fprintln(tw, "-----\t-----\t-------")
	fmt.Fprintf(tw, "Version ID\t%s\t%s\n", h.VersionID(), h.VersionID().Description())
	fmt.Fprintf(tw, "Key Block Length\t%04d\t%d characters\n", h.KBLength(), h.KBLength())
	fmt.Fprintf(tw, "Key Usage\t%s\t%s\n", h.KeyUsage(), h.KeyUsage().Description())
	fmt.Fprintf(tw, "Algorithm\t%s\t%s\n", h.Algorithm(), h.Algorithm().Description())
	fmt.Fprintf(tw, "Mode of Use\t%s\t%s\n", h.ModeOfUse(), h.ModeOfUse().Description())
	fmt.Fprintf(tw, "Key Version Number\t%s\t%s\n",
		h.KeyVersionNumber(), tr31.KeyVersionDescription(h.KeyVersionNumber()))
	fmt.Fprintf(tw, "Exportability\t%s\t%s\n", h.Exportability(), h.Exportability().Description())
	fmt.Fprintf(tw, "Optional Blocks\t%02d\t\n", h.NumOptBlocks())
	for _, b := range h.OptBlocks() {
		fmt.Fprintf(tw, "  %s\t%s\t%s (%d characters)\n", b.ID(), b.Data(), b.ID().Description(), b.Length())
	}

	return tw.Flush()
}

// describeKey prints the clear key and, for AES keys, its CMAC check value.
func describeKey(w io.Writer, h *tr31.Header, key []byte) {
	fmt.Fprintf(w, "Key: %s\n", cryptoutils.Raw2Str(key))
	if h.Algorithm() != tr31.AlgorithmAES {
		return
	}
	if kcv, err := cryptoutils.CalculateCMACCheckValue(key); err == nil {
		fmt.Fprintf(w, "KCV: %s\n", cryptoutils.Raw2Str(kcv)[:6])
	}
}
