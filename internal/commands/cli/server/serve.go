// Package server provides server-related CLI commands.
package server

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_tr31/internal/config"
	"github.com/andrei-cloud/go_tr31/internal/hsm"
	"github.com/andrei-cloud/go_tr31/internal/hsm/logic"
	"github.com/andrei-cloud/go_tr31/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the key block server",
		Long: `Start the TCP key block service. The KBPK is sealed in protected memory
for the lifetime of the process.`,
		RunE: runServe,
	}

	// Flags override config through config.Initialize.
	cmd.Flags().String("host", "localhost", "Server host")
	cmd.Flags().Int("port", 1500, "Server port")

	return cmd
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := config.Get()

	kbpkHex := cfg.KBPK.Hex
	if kbpkHex == "" {
		log.Warn().Msg("no KBPK configured, using the built-in test key")
		kbpkHex = hsm.DefaultTestKBPK
	}
	hsmInstance, err := hsm.NewHSM(kbpkHex, cfg.Server.Firmware)
	if err != nil {
		return fmt.Errorf("failed to initialize HSM instance: %w", err)
	}

	registry := logic.DefaultRegistry()
	for _, info := range registry.List() {
		log.Debug().
			Str("command", info.Code).
			Str("response", info.ResponseCode).
			Str("description", info.Description).
			Msg("command registered")
	}

	opts := server.DefaultOptions()
	if cfg.Server.MaxConns > 0 {
		opts.MaxConns = cfg.Server.MaxConns
	}
	if cfg.Server.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.Server.ReadTimeout
	}
	if cfg.Server.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.Server.WriteTimeout
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv, err := server.NewServer(serverAddr, registry, hsmInstance, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stopChan)

	<-stopChan
	log.Info().Msg("shutting down server...")

	if err := srv.Stop(); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	return nil
}
