package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	gerrors "github.com/ghostline-dev/ghostline/internal/errors"
	"github.com/ghostline-dev/ghostline/internal/telemetry"
	"github.com/ghostline-dev/ghostline/pkg/protocol"
)

// DefaultBackoff is the fixed wait after a session ends.
const DefaultBackoff = 10 * time.Second

// Supervisor runs sessions back to back for as long as its context lives.
// The zero value is not usable; set at least Config.
type Supervisor struct {
	// Config is shared read-only by every session.
	Config RunConfig

	// URL is the gateway endpoint (default: DefaultGatewayURL).
	URL string

	// Dialer opens connections (default: &WSDialer{}).
	Dialer Dialer

	// Backoff is the fixed wait after every ended session (default: 10s).
	Backoff time.Duration

	// Prober gates reconnects on reachability (default: NewHTTPProber()).
	Prober Prober

	// ProbeInterval is the wait between failed probes (default: 5s).
	ProbeInterval time.Duration

	// Sleep implements the backoff and probe waits (default: Sleep).
	Sleep SleepFunc

	Logger   *slog.Logger
	Reporter Reporter
	Metrics  *telemetry.Metrics
	Health   *telemetry.Health

	// OnResult, if set, is called after every attempt with its result.
	OnResult func(attempt int, res Result)
}

func (s *Supervisor) applyDefaults() {
	if s.URL == "" {
		s.URL = DefaultGatewayURL
	}
	if s.Dialer == nil {
		s.Dialer = &WSDialer{}
	}
	if s.Backoff <= 0 {
		s.Backoff = DefaultBackoff
	}
	if s.Prober == nil {
		s.Prober = NewHTTPProber()
	}
	if s.ProbeInterval <= 0 {
		s.ProbeInterval = DefaultProbeInterval
	}
	if s.Sleep == nil {
		s.Sleep = Sleep
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	if s.Reporter == nil {
		s.Reporter = NopReporter{}
	}
}

// Run dials and runs sessions until ctx is cancelled. Every outcome other
// than a stop is reported, followed by the fixed backoff and a wait for the
// network. Run returns nil when ctx ends.
func (s *Supervisor) Run(ctx context.Context) error {
	s.applyDefaults()

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return nil
		}

		res := s.attempt(ctx, attempt)
		if res.Outcome == OutcomeStopped || ctx.Err() != nil {
			return nil
		}

		s.report(res)
		s.Reporter.Warning("Retrying in %s...", s.Backoff)
		if err := s.Sleep(ctx, s.Backoff); err != nil {
			return nil
		}

		err := waitOnline(ctx, s.Prober, s.ProbeInterval, s.Sleep, func(err error) {
			s.Metrics.ProbeFailed()
			s.Logger.Debug("connectivity probe failed", "error", err)
			s.Reporter.Warning("Waiting for internet...")
		})
		if err != nil {
			return nil
		}
	}
}

// attempt dials and runs one session.
func (s *Supervisor) attempt(ctx context.Context, n int) Result {
	id := uuid.NewString()
	logger := s.Logger.With("attempt", n, "attempt_id", id)

	ctx, span := telemetry.StartAttempt(ctx, telemetry.Attempt{
		ID:        id,
		Number:    n,
		GuildID:   s.Config.Voice.GuildID,
		ChannelID: s.Config.Voice.ChannelID,
	})
	s.Health.SetAttempt(n)

	s.Reporter.Info("Connecting to Discord Gateway...")
	logger.Info("dialing gateway", "url", s.URL)

	var res Result
	conn, err := s.Dialer.Dial(ctx, s.URL)
	switch {
	case err != nil && ctx.Err() != nil:
		res = Result{Outcome: OutcomeStopped}
	case err != nil:
		res = Result{Outcome: OutcomeTransportFailure, Err: gerrors.New("G100").Wrap(err)}
	default:
		sess := NewSession(conn, s.Config, Options{
			Logger:   logger,
			Reporter: s.Reporter,
			Metrics:  s.Metrics,
			OnReady: func(u protocol.User) {
				s.Health.SetReady(u.Tag(), time.Now())
			},
		})
		res = sess.Run(ctx)
	}

	s.Health.SetNotReady()
	s.Metrics.SessionAttempt(res.Outcome.String())
	telemetry.EndAttempt(span, res.Outcome.String(), res.Ready, res.Err)

	if s.OnResult != nil {
		s.OnResult(n, res)
	}
	return res
}

// report prints the status line for an ended session.
func (s *Supervisor) report(res Result) {
	s.Logger.Warn("session ended", "result", res)

	cause := "connection closed"
	if res.Err != nil {
		cause = res.Err.Error()
	}
	if res.CloseCode != 0 {
		s.Reporter.Error("Disconnected (close code %d): %s", res.CloseCode, cause)
		return
	}
	s.Reporter.Error("Disconnected: %s", cause)
}
