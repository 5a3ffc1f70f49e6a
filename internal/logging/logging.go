package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// redactedPrefix is the number of leading bytes of a message left in clear:
// the two character command plus the fixed key block header.
const redactedPrefix = 2 + 2 + 16

// InitLogger initializes the zerolog logger with the specified debug mode and output format.
func InitLogger(debug, human bool) {
	InitLoggerWithWriter(os.Stdout, debug, human)
}

// InitLoggerWithWriter is InitLogger with an explicit destination.
func InitLoggerWithWriter(w io.Writer, debug, human bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano         // always initialize base logger with timestamp.
	base := zerolog.New(w).With().Timestamp().Logger() // initialize base logger.
	if human {
		log.Logger = base.Output(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339Nano,
		}) // select output format.
	} else {
		log.Logger = base // use JSON logger.
	}
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel) // set debug level.
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel) // set info level.
	}
}

// Redact keeps the command code, response code and fixed header of a message
// and masks the rest, which may carry clear keys or PINs.
func Redact(data []byte) string {
	if len(data) <= redactedPrefix {
		return string(data)
	}

	return string(data[:redactedPrefix]) + strings.Repeat("*", len(data)-redactedPrefix)
}

// LogRequest logs a received command with structured fields.
func LogRequest(
	clientIP string,
	command string,
	description string,
	requestData []byte,
	activeConns int,
) {
	log.Info().
		Str("event", "request_received").
		Str("client_ip", clientIP).
		Str("command", command).
		Str("description", description).
		Str("request", Redact(requestData)).
		Int("request_length", len(requestData)).
		Int("active_connections", activeConns).
		Msg("received command")
}

// LogResponse logs a sent response with structured fields.
func LogResponse(
	clientIP string,
	command string,
	responseCommand string,
	responseData []byte,
	errorCode string,
	activeConns int,
) {
	log.Info().
		Str("event", "response_sent").
		Str("client_ip", clientIP).
		Str("command", command).
		Str("response_command", responseCommand).
		Str("response", Redact(responseData)).
		Str("error_code", errorCode).
		Int("active_connections", activeConns).
		Msg("sent response")
}
