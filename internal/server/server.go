package server

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	anetserver "github.com/andrei-cloud/anet/server"
	"github.com/rs/zerolog/log"

	"github.com/andrei-cloud/go_tr31/internal/errorcodes"
	"github.com/andrei-cloud/go_tr31/internal/hsm/logic"
	"github.com/andrei-cloud/go_tr31/internal/logging"
)

// logAdapter implements anet.Logger using zerolog.
type logAdapter struct{}

// Server wraps the anet TCP server and the key block command registry.
type Server struct {
	address     string
	srv         *anetserver.Server
	registry    *logic.Registry
	svc         logic.KeyBlockService
	activeConns int32
}

func (l logAdapter) Print(v ...any) {
	log.Info().Msg(fmt.Sprint(v...))
}

func (l logAdapter) Printf(format string, v ...any) {
	log.Info().Msgf(format, v...)
}

func (l logAdapter) Infof(format string, v ...any) {
	log.Info().Msgf(format, v...)
}

func (l logAdapter) Warnf(format string, v ...any) {
	log.Warn().Msgf(format, v...)
}

func (l logAdapter) Errorf(format string, v ...any) {
	log.Error().Msgf(format, v...)
}

// Options tunes the underlying anet server.
type Options struct {
	MaxConns     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultOptions returns the settings used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxConns:     100,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// NewServer configures and returns the key block server instance.
func NewServer(
	address string,
	registry *logic.Registry,
	svc logic.KeyBlockService,
	opts Options,
) (*Server, error) {
	cfg := &anetserver.ServerConfig{
		MaxConns:        opts.MaxConns,
		ReadTimeout:     opts.ReadTimeout,
		WriteTimeout:    opts.WriteTimeout,
		IdleTimeout:     0 * time.Second, // disable idle connection closure.
		ShutdownTimeout: 5 * time.Second,
		Logger:          logAdapter{},
	}

	s := &Server{
		address:  address,
		registry: registry,
		svc:      svc,
	}
	srv, err := anetserver.NewServer(address, anetserver.HandlerFunc(s.handle), cfg)
	if err != nil {
		return nil, fmt.Errorf("server setup failed: %w", err)
	}
	s.srv = srv

	return s, nil
}

// Start begins listening for connections.
func (s *Server) Start() error {
	log.Info().Str("address", s.address).Msg("server started")

	return s.srv.Start()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	return s.srv.Stop()
}

// formatData returns ascii string if all bytes are printable, else hex string.
func formatData(data []byte) string {
	for _, b := range data {
		if b < 32 || b > 126 {
			return hex.EncodeToString(data)
		}
	}

	return string(data)
}

// incrementCode returns the next command code by incrementing the second character.
func incrementCode(cmd string) string {
	b := []byte(cmd)
	if len(b) < 2 {
		return cmd
	}
	if b[1] == 'Z' {
		b[1] = 'A'
	} else {
		b[1]++
	}

	return string(b)
}

// errorResponse builds "<response code><error code>".
func errorResponse(cmd string, code errorcodes.HSMError) []byte {
	return []byte(incrementCode(cmd) + code.CodeOnly())
}

func (s *Server) handle(conn *anetserver.ServerConn, data []byte) ([]byte, error) {
	client := conn.Conn.RemoteAddr().String()
	atomic.AddInt32(&s.activeConns, 1)
	defer atomic.AddInt32(&s.activeConns, -1)

	start := time.Now()
	log.Debug().
		Str("event", "handle_start").
		Str("client_ip", client).
		Msg("starting request handling")

	if len(data) < 2 {
		log.Error().
			Str("client_ip", client).
			Str("request", formatData(data)).
			Msg("malformed request")

		return nil, errors.New("malformed request")
	}

	cmd := string(data[:2])
	logging.LogRequest(client, cmd, s.registry.Description(cmd), data,
		int(atomic.LoadInt32(&s.activeConns)))

	resp, err := s.registry.Execute(cmd, data[2:], s.svc)
	code := errorcodes.FromError(err)
	switch {
	case err == nil:
	case logic.IsUnknownCommand(err):
		code = errorcodes.Err68
		resp = errorResponse(cmd, code)
		log.Warn().
			Str("event", "unknown_command").
			Str("client_ip", client).
			Str("command", cmd).
			Msg("command not recognized, responding with error code")
	default:
		resp = errorResponse(cmd, code)
		log.Error().
			Str("event", "command_error").
			Str("client_ip", client).
			Str("command", cmd).
			Str("error_code", code.CodeOnly()).
			Err(err).
			Msg("command execution failed")
	}

	logging.LogResponse(client, cmd, incrementCode(cmd), resp, code.CodeOnly(),
		int(atomic.LoadInt32(&s.activeConns)))

	log.Debug().
		Str("event", "handle_done").
		Str("command", cmd).
		Str("response", logging.Redact(resp)).
		Str("duration", time.Since(start).String()).
		Msg("completed request handling")

	return resp, nil
}
