// Package keyblock provides TR-31 key block commands.
package keyblock

import (
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_tr31/internal/config"
	"github.com/andrei-cloud/go_tr31/pkg/cryptoutils"
	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

// NewKeyBlockCommand creates the keyblock command group.
func NewKeyBlockCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyblock",
		Short: "TR-31 key block operations",
		Long: `Wrap, unwrap and inspect ANSI X9.143 / TR-31 version D key blocks.
The key block protection key (KBPK) is taken from --kbpk or the kbpk.hex
configuration value.`,
	}

	cmd.AddCommand(newWrapCommand())
	cmd.AddCommand(newUnwrapCommand())
	cmd.AddCommand(newInspectCommand())
	cmd.AddCommand(newDeriveCommand())
	cmd.AddCommand(newBuildCommand())

	return cmd
}

func newWrapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wrap",
		Short: "Wrap a clear key into a key block",
		Long: `Wrap a clear key under the KBPK. The header length field is recomputed
and a padding block is appended when optional blocks need alignment.`,
		Example: `  # Wrap an AES PIN key
  go_tr31 keyblock wrap --header D0000P0AE00E0000 --key 3F419E1CB7079442AA37474C2EFBF8B8

  # Add a key set identifier block and hide the key length
  go_tr31 keyblock wrap --header D0000P0AE00E0000 --opt KS:00604B120F9292800000 \
    --key 3F419E1CB7079442AA37474C2EFBF8B8 --masked-length 32`,
		RunE: runWrap,
	}

	cmd.Flags().String("header", "", "Key block header (length field is ignored)")
	cmd.Flags().Bool("interactive", false, "Build the header interactively")
	cmd.Flags().String("key", "", "Clear key in hex format")
	cmd.Flags().Int("masked-length", -1, "Pad the payload as if the key had this many bytes")
	cmd.Flags().String("seed", "", "Padding bytes in hex (random when omitted)")
	cmd.Flags().StringArray("opt", nil, "Optional block as ID:data (repeatable)")

	if err := cmd.MarkFlagRequired("key"); err != nil {
		panic(err)
	}

	return cmd
}

func newUnwrapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unwrap",
		Short: "Verify a key block and recover the clear key",
		RunE:  runUnwrap,
	}

	cmd.Flags().String("block", "", "Key block")
	if err := cmd.MarkFlagRequired("block"); err != nil {
		panic(err)
	}

	return cmd
}

func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe a key block header without the KBPK",
		RunE:  runInspect,
	}

	cmd.Flags().String("block", "", "Key block or header")
	if err := cmd.MarkFlagRequired("block"); err != nil {
		panic(err)
	}

	return cmd
}

func newDeriveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "derive",
		Short: "Show the version D encryption and authentication keys",
		Long: `Derive KBEK and KBAK from the KBPK with the version D CMAC KDF and print
them with their check values.`,
		RunE: runDerive,
	}
}

func newBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a key block header interactively",
		RunE:  runBuild,
	}

	cmd.Flags().StringArray("opt", nil, "Optional block as ID:data (repeatable)")

	return cmd
}

func runWrap(cmd *cobra.Command, _ []string) error {
	headerStr, _ := cmd.Flags().GetString("header")
	interactive, _ := cmd.Flags().GetBool("interactive")
	keyHex, _ := cmd.Flags().GetString("key")
	masked, _ := cmd.Flags().GetInt("masked-length")
	seedHex, _ := cmd.Flags().GetString("seed")
	optValues, _ := cmd.Flags().GetStringArray("opt")

	var (
		h   *tr31.Header
		err error
	)
	switch {
	case interactive:
		var ok bool
		h, ok, err = runKeyBlockHeaderTUI()
		if err != nil {
			return fmt.Errorf("header builder failed: %w", err)
		}
		if !ok {
			cmd.Println("Operation cancelled.")

			return nil
		}
	case headerStr != "":
		h, err = tr31.ParseHeader(headerStr)
		if err != nil {
			return fmt.Errorf("invalid header: %w", err)
		}
	default:
		return errors.New("either --header or --interactive is required")
	}

	chain, err := parseOptBlockFlags(optValues)
	if err != nil {
		return err
	}
	if err := h.AppendOptBlocks(chain...); err != nil {
		return err
	}
	if err := h.Finalize(); err != nil {
		return err
	}

	kbpk, err := resolveKBPK(cmd)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(kbpk)

	key, err := decodeHexFlag("key", keyHex)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(key)

	if masked < 0 {
		masked = config.Get().Wrap.MaskedKeyLength
	}

	var seed []byte
	if seedHex != "" {
		if seed, err = decodeHexFlag("seed", seedHex); err != nil {
			return err
		}
	} else {
		buf := memguard.NewBufferRandom(max(len(key), masked) + cryptoutils.AES_BLOCK_SIZE)
		defer buf.Destroy()
		seed = buf.Bytes()
	}

	kb, err := tr31.Wrap(kbpk, h, key, masked, seed)
	if err != nil {
		return fmt.Errorf("wrap failed: %w", err)
	}

	cmd.Printf("Key block: %s\n", kb)

	return nil
}

func runUnwrap(cmd *cobra.Command, _ []string) error {
	block, _ := cmd.Flags().GetString("block")

	kbpk, err := resolveKBPK(cmd)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(kbpk)

	h, key, err := tr31.Unwrap(kbpk, block)
	if err != nil {
		return fmt.Errorf("unwrap failed: %w", err)
	}
	defer memguard.WipeBytes(key)

	if err := describeHeader(cmd.OutOrStdout(), h); err != nil {
		return err
	}
	describeKey(cmd.OutOrStdout(), h, key)

	return nil
}

func runInspect(cmd *cobra.Command, _ []string) error {
	block, _ := cmd.Flags().GetString("block")

	h, err := tr31.ParseHeader(block)
	if err != nil {
		return fmt.Errorf("invalid header: %w", err)
	}
	if err := describeHeader(cmd.OutOrStdout(), h); err != nil {
		return err
	}
	if len(block) > h.Len() && len(block) != h.KBLength() {
		cmd.Printf("warning: header declares %d characters, got %d\n", h.KBLength(), len(block))
	}

	return nil
}

func runDerive(cmd *cobra.Command, _ []string) error {
	kbpk, err := resolveKBPK(cmd)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(kbpk)

	kbek, kbak, err := tr31.DeriveKeysVersionD(kbpk)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(kbek)
	defer memguard.WipeBytes(kbak)

	for _, k := range []struct {
		name string
		key  []byte
	}{{"KBPK", kbpk}, {"KBEK", kbek}, {"KBAK", kbak}} {
		kcv, err := cryptoutils.CalculateCMACCheckValue(k.key)
		if err != nil {
			return err
		}
		cmd.Printf("%s: %s (KCV %s)\n", k.name, cryptoutils.Raw2Str(k.key), cryptoutils.Raw2Str(kcv)[:6])
	}

	return nil
}

func runBuild(cmd *cobra.Command, _ []string) error {
	optValues, _ := cmd.Flags().GetStringArray("opt")

	h, ok, err := runKeyBlockHeaderTUI()
	if err != nil {
		return fmt.Errorf("header builder failed: %w", err)
	}
	if !ok {
		cmd.Println("Operation cancelled.")

		return nil
	}

	out, err := finalizedHeader(h, optValues)
	if err != nil {
		return err
	}
	cmd.Printf("Header: %s\n", out)

	return nil
}

// finalizedHeader appends optional blocks, pads the chain and exports the
// header with its own length as a placeholder key block length.
func finalizedHeader(h *tr31.Header, optValues []string) (string, error) {
	chain, err := parseOptBlockFlags(optValues)
	if err != nil {
		return "", err
	}
	if err := h.AppendOptBlocks(chain...); err != nil {
		return "", err
	}
	if err := h.Finalize(); err != nil {
		return "", err
	}
	if err := h.SetKBLength(h.Len()); err != nil {
		return "", err
	}

	return h.Export()
}
