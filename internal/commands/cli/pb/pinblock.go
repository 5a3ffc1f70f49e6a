// Package pb provides PIN block related commands.
package pb

import (
	"encoding/hex"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_tr31/internal/config"
	"github.com/andrei-cloud/go_tr31/internal/hsm"
	"github.com/andrei-cloud/go_tr31/pkg/pinblock"
	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

// NewPinBlockCommand creates the pinblock command with subcommands.
func NewPinBlockCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "pinblock",
		Short: "PIN block operations",
		Long: `ISO 9564-1 PIN block operations. Format 3 blocks are returned in clear;
format 4 blocks are enciphered under an AES key given in clear (--key) or as
a TR-31 key block (--keyblock) unwrapped with the configured KBPK.`,
		Example: `  # Build a format 3 PIN block
  go_tr31 pinblock encode --pin 1234 --pan 4111111111111111 --format 3

  # Encipher a format 4 PIN block under a wrapped PIN key
  go_tr31 pinblock encode --pin 1234 --pan 4111111111111111 --format 4 --keyblock D0112P0AE00E0000...

  # List supported formats
  go_tr31 pinblock formats`,
	}

	encodeCmd, err := newEncodeCommand()
	if err != nil {
		return nil, fmt.Errorf("failed to create 'encode' subcommand: %w", err)
	}
	cmd.AddCommand(encodeCmd)

	decodeCmd, err := newDecodeCommand()
	if err != nil {
		return nil, fmt.Errorf("failed to create 'decode' subcommand: %w", err)
	}
	cmd.AddCommand(decodeCmd)

	cmd.AddCommand(newFormatsCommand())

	return cmd, nil
}

func addKeyFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "PIN block format (3 or 4)")
	cmd.Flags().String("pan", "", "Primary Account Number (card number)")
	cmd.Flags().String("key", "", "Clear AES key in hex (format 4)")
	cmd.Flags().String("keyblock", "", "TR-31 key block holding the AES PIN key (format 4)")
	cmd.MarkFlagsMutuallyExclusive("key", "keyblock")
}

func newEncodeCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Generate a PIN block",
		Long: `Generate a PIN block from a 4-12 digit PIN and a PAN.
Filler digits are random unless --seed is given.`,
		RunE: runEncode,
	}

	addKeyFlags(cmd)
	cmd.Flags().String("pin", "", "PIN (4-12 digits)")
	cmd.Flags().String("seed", "", "Filler bytes in hex (random when omitted)")

	for _, name := range []string{"pin", "pan", "format"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			return nil, fmt.Errorf("failed to mark %s flag as required: %w", name, err)
		}
	}

	return cmd, nil
}

func newDecodeCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Extract PIN from PIN block",
		RunE:  runDecode,
	}

	addKeyFlags(cmd)
	cmd.Flags().String("pinblock", "", "PIN block hex string")

	for _, name := range []string{"pinblock", "pan", "format"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			return nil, fmt.Errorf("failed to mark %s flag as required: %w", name, err)
		}
	}

	return cmd, nil
}

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported PIN block formats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printFormats(cmd.OutOrStdout())
		},
	}
}

func runEncode(cmd *cobra.Command, _ []string) error {
	pin, _ := cmd.Flags().GetString("pin")
	pan, _ := cmd.Flags().GetString("pan")
	seedHex, _ := cmd.Flags().GetString("seed")

	format, key, err := formatAndKey(cmd)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(key)

	var seed []byte
	if seedHex != "" {
		if seed, err = hex.DecodeString(seedHex); err != nil {
			return fmt.Errorf("invalid seed hex: %w", err)
		}
	} else {
		buf := memguard.NewBufferRandom(format.SeedLength())
		defer buf.Destroy()
		seed = buf.Bytes()
	}

	result, err := pinblock.EncodePinBlock(pin, pan, format, key, seed)
	if err != nil {
		return err
	}
	cmd.Printf("PIN block generated (format %s): %s\n", format, result)

	return nil
}

func runDecode(cmd *cobra.Command, _ []string) error {
	pinBlockHex, _ := cmd.Flags().GetString("pinblock")
	pan, _ := cmd.Flags().GetString("pan")

	format, key, err := formatAndKey(cmd)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(key)

	result, err := pinblock.DecodePinBlock(pinBlockHex, pan, format, key)
	if err != nil {
		return err
	}
	cmd.Printf("PIN extracted (format %s): %s\n", format, result)

	return nil
}

// formatAndKey parses --format and resolves the format 4 key from --key or
// --keyblock.
func formatAndKey(cmd *cobra.Command) (pinblock.Format, []byte, error) {
	formatStr, _ := cmd.Flags().GetString("format")
	keyHex, _ := cmd.Flags().GetString("key")
	keyBlock, _ := cmd.Flags().GetString("keyblock")

	format, err := pinblock.ParseFormat(formatStr)
	if err != nil {
		return 0, nil, err
	}

	switch {
	case keyHex != "":
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid key hex: %w", err)
		}

		return format, key, nil
	case keyBlock != "":
		key, err := unwrapPinKey(cmd, keyBlock)

		return format, key, err
	default:
		return format, nil, nil
	}
}

func unwrapPinKey(cmd *cobra.Command, keyBlock string) ([]byte, error) {
	kbpkHex := config.Get().KBPK.Hex
	if kbpkHex == "" {
		cmd.PrintErrln("warning: no KBPK configured, using the built-in test key")
		kbpkHex = hsm.DefaultTestKBPK
	}
	kbpk, err := hex.DecodeString(kbpkHex)
	if err != nil {
		return nil, fmt.Errorf("invalid kbpk hex: %w", err)
	}
	defer memguard.WipeBytes(kbpk)

	h, key, err := tr31.Unwrap(kbpk, keyBlock)
	if err != nil {
		return nil, fmt.Errorf("unwrap failed: %w", err)
	}
	if h.KeyUsage() != "P0" || h.Algorithm() != tr31.AlgorithmAES {
		memguard.WipeBytes(key)

		return nil, fmt.Errorf("key block holds a %s %s key, want an AES PIN key",
			h.Algorithm().Description(), h.KeyUsage())
	}

	return key, nil
}

func printFormats(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "Format\tName\tDescription")
	fmt.Fprintln(tw, "------\t----\t-----------")
	fmt.Fprintf(tw, "3\t%s\tTDEA sized clear block XORed with the PAN field, random A-F filler\n", pinblock.ISO3)
	fmt.Fprintf(tw, "4\t%s\tAES enciphered block bound to a 1-19 digit PAN\n", pinblock.ISO4)

	return tw.Flush()
}
