package gateway

import (
	"log/slog"

	"github.com/ghostline-dev/ghostline/pkg/protocol"
)

// State is a session's position in the handshake.
type State int32

const (
	StateConnecting State = iota
	StateAwaitingHello
	StateIdentified
	StateReady
	StateClosed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateAwaitingHello:
		return "AwaitingHello"
	case StateIdentified:
		return "Identified"
	case StateReady:
		return "Ready"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Outcome classifies how a session ended.
type Outcome int

const (
	// OutcomeClosed means the session reached READY and the gateway then
	// closed the socket in an orderly way.
	OutcomeClosed Outcome = iota

	// OutcomeTransportFailure covers dial errors, I/O errors, unexpected
	// closes and failed writes.
	OutcomeTransportFailure

	// OutcomeProtocolFailure covers malformed frames, an unexpected first
	// frame, missing fields, and server requests to reconnect.
	OutcomeProtocolFailure

	// OutcomeStopped means the caller cancelled the context.
	OutcomeStopped
)

// String returns the metric label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeClosed:
		return "closed"
	case OutcomeTransportFailure:
		return "transport_failure"
	case OutcomeProtocolFailure:
		return "protocol_failure"
	case OutcomeStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Result is the terminal outcome of one session.
type Result struct {
	Outcome Outcome

	// Ready is true if the session reached READY before ending.
	Ready bool

	// User is the identity from READY, zero if Ready is false.
	User protocol.User

	// CloseCode is the websocket close code sent by the gateway, 0 if none.
	CloseCode int

	// Err is the error that ended the session, nil for OutcomeStopped.
	Err error
}

// LogValue implements slog.LogValuer.
func (r Result) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("outcome", r.Outcome.String()),
		slog.Bool("ready", r.Ready),
	}
	if r.CloseCode != 0 {
		attrs = append(attrs, slog.Int("close_code", r.CloseCode))
	}
	if r.Err != nil {
		attrs = append(attrs, slog.String("error", r.Err.Error()))
	}
	return slog.GroupValue(attrs...)
}

// RunConfig holds the read-only inputs shared by every session.
type RunConfig struct {
	Token      string
	Voice      protocol.VoiceTarget
	Presence   protocol.PresenceConfig
	Properties protocol.ClientProperties
}

// Reporter receives user-facing status lines.
type Reporter interface {
	Success(format string, args ...any)
	Error(format string, args ...any)
	Warning(format string, args ...any)
	Info(format string, args ...any)
	System(format string, args ...any)
}

// NopReporter discards every status line.
type NopReporter struct{}

func (NopReporter) Success(string, ...any) {}
func (NopReporter) Error(string, ...any)   {}
func (NopReporter) Warning(string, ...any) {}
func (NopReporter) Info(string, ...any)    {}
func (NopReporter) System(string, ...any)  {}
