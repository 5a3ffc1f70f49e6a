// Package cli provides centralized command registration.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_tr31/internal/commands/cli/keyblock"
	"github.com/andrei-cloud/go_tr31/internal/commands/cli/keystore"
	"github.com/andrei-cloud/go_tr31/internal/commands/cli/pb"
	"github.com/andrei-cloud/go_tr31/internal/commands/cli/server"
)

// RegisterCommands registers all root commands.
func RegisterCommands(root *cobra.Command) error {
	root.AddCommand(keyblock.NewKeyBlockCommand())
	root.AddCommand(keystore.NewKeystoreCommand())

	pinblockCmd, err := pb.NewPinBlockCommand()
	if err != nil {
		return fmt.Errorf("failed to create pinblock command: %w", err)
	}
	root.AddCommand(pinblockCmd)

	root.AddCommand(server.NewServeCommand())

	return nil
}
