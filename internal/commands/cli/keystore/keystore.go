// Package keystore provides commands for the wrapped key block store.
package keystore

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_tr31/internal/config"
	store "github.com/andrei-cloud/go_tr31/internal/keystore"
)

// NewKeystoreCommand creates the keystore command group.
func NewKeystoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keystore",
		Short: "Manage stored key blocks",
		Long: `Store, list and remove TR-31 key blocks. Only wrapped key blocks are kept;
the database location is taken from --keystore or keystore.path.`,
	}

	cmd.AddCommand(newAddCommand())
	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newDeleteCommand())

	return cmd
}

func newAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a key block",
		RunE: withStore(func(cmd *cobra.Command, args []string, s *store.Store) error {
			label, _ := cmd.Flags().GetString("label")
			block, _ := cmd.Flags().GetString("block")

			e, err := s.Put(label, block)
			if err != nil {
				return err
			}
			cmd.Printf("Stored %s\n", e.ID)

			return nil
		}),
	}

	cmd.Flags().String("label", "", "Free text label")
	cmd.Flags().String("block", "", "Key block")
	if err := cmd.MarkFlagRequired("block"); err != nil {
		panic(err)
	}

	return cmd
}

func newGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored key block",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, s *store.Store) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id: %w", err)
			}
			e, err := s.Get(id)
			if err != nil {
				return err
			}
			cmd.Println(e.KeyBlock)

			return nil
		}),
	}

	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored key blocks",
		RunE: withStore(func(cmd *cobra.Command, args []string, s *store.Store) error {
			entries, err := s.List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tLabel\tUsage\tAlgorithm\tCreated")
			fmt.Fprintln(w, "--\t-----\t-----\t---------\t-------")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Label, e.KeyUsage, e.Algorithm, e.CreatedAt.Format("2006-01-02 15:04:05"))
			}

			return w.Flush()
		}),
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a stored key block",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, s *store.Store) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id: %w", err)
			}
			if err := s.Delete(id); err != nil {
				return err
			}
			cmd.Printf("Deleted %s\n", id)

			return nil
		}),
	}
}

// withStore opens the configured store around fn.
func withStore(
	fn func(cmd *cobra.Command, args []string, s *store.Store) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(config.Get().Keystore.Path)
		if err != nil {
			return err
		}
		defer s.Close()

		return fn(cmd, args, s)
	}
}
