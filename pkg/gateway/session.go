package gateway

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	gerrors "github.com/ghostline-dev/ghostline/internal/errors"
	"github.com/ghostline-dev/ghostline/internal/telemetry"
	"github.com/ghostline-dev/ghostline/pkg/protocol"
)

// DefaultLeaveTimeout bounds the voice leave sent when the caller stops a
// ready session.
const DefaultLeaveTimeout = 2 * time.Second

// Options are the collaborators of a Session. All fields are optional.
type Options struct {
	Logger   *slog.Logger
	Reporter Reporter
	Metrics  *telemetry.Metrics

	// Limiter enforces the send budget (default: NewSendLimiter()).
	Limiter *rate.Limiter

	// Now returns the current time (default: time.Now).
	Now func() time.Time

	// OnReady is called from the read loop once READY has been handled.
	OnReady func(user protocol.User)

	// LeaveTimeout bounds the voice leave on stop (default: 2s).
	LeaveTimeout time.Duration
}

// Session is one gateway connection from HELLO to close. A Session is
// single-use: create a new one for every connection.
type Session struct {
	conn     Conn
	cfg      RunConfig
	logger   *slog.Logger
	reporter Reporter
	metrics  *telemetry.Metrics
	now      func() time.Time
	onReady  func(protocol.User)
	leave    time.Duration
	sender   *sender

	seq      SequenceTracker
	state    atomic.Int32
	interval atomic.Int64
	lastAck  atomic.Int64

	// Written by the read loop, read after it has exited.
	user       protocol.User
	closeCode  int
	cleanClose bool
}

// NewSession creates a session on an open connection.
func NewSession(conn Conn, cfg RunConfig, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Reporter == nil {
		opts.Reporter = NopReporter{}
	}
	if opts.Limiter == nil {
		opts.Limiter = NewSendLimiter()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LeaveTimeout <= 0 {
		opts.LeaveTimeout = DefaultLeaveTimeout
	}
	if cfg.Properties == (protocol.ClientProperties{}) {
		cfg.Properties = protocol.DefaultClientProperties
	}

	return &Session{
		conn:     conn,
		cfg:      cfg,
		logger:   opts.Logger,
		reporter: opts.Reporter,
		metrics:  opts.Metrics,
		now:      opts.Now,
		onReady:  opts.OnReady,
		leave:    opts.LeaveTimeout,
		sender:   newSender(conn, opts.Limiter, opts.Metrics, opts.Logger),
	}
}

// State returns the current handshake state.
func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(st State) {
	prev := State(s.state.Swap(int32(st)))
	if prev != st {
		s.logger.Debug("session state", "from", prev, "to", st)
	}
}

// HeartbeatInterval returns the interval announced by HELLO, or 0 before it.
func (s *Session) HeartbeatInterval() time.Duration {
	return time.Duration(s.interval.Load())
}

// Sequence returns the latest sequence number seen in this session.
func (s *Session) Sequence() (int64, bool) {
	return s.seq.Value()
}

// LastHeartbeatAck returns when the gateway last acknowledged a heartbeat.
// Acknowledgements are recorded but not required.
func (s *Session) LastHeartbeatAck() time.Time {
	n := s.lastAck.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Run drives the session until the socket closes, a failure occurs, or ctx is
// cancelled. It closes the connection and waits for the read loop and the
// heartbeat before returning.
func (s *Session) Run(ctx context.Context) Result {
	start := s.now()
	s.setState(StateAwaitingHello)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.readLoop(gctx, g)
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil && s.State() == StateReady {
			s.leaveVoice()
		}
		s.conn.Close()
		return nil
	})

	err := g.Wait()

	ready := s.State() == StateReady
	s.setState(StateClosed)
	if ready {
		s.metrics.SetReady(false)
	}
	s.metrics.SessionDuration(s.now().Sub(start))

	res := Result{Ready: ready, CloseCode: s.closeCode, Err: err}
	if ready {
		res.User = s.user
	}

	switch {
	case ctx.Err() != nil:
		res.Outcome = OutcomeStopped
		res.Err = nil
	case s.cleanClose && gerrors.HasCode(err, "G101"):
		res.Outcome = OutcomeClosed
	case gerrors.CategoryOf(err) == gerrors.CategoryProtocol:
		res.Outcome = OutcomeProtocolFailure
	default:
		res.Outcome = OutcomeTransportFailure
	}

	s.logger.Info("session ended", "result", res, "duration", s.now().Sub(start))
	return res
}

// readLoop is the only goroutine that reads from the socket or changes
// state. It always returns a non-nil error so the group is cancelled.
func (s *Session) readLoop(ctx context.Context, g *errgroup.Group) error {
	for {
		data, err := s.conn.ReadMessage()
		if err != nil {
			s.closeCode = CloseCode(err)
			s.cleanClose = s.State() == StateReady && isCleanClose(err)
			return gerrors.New("G101").Wrap(err)
		}

		env, err := protocol.Decode(data)
		if err != nil {
			if errors.Is(err, protocol.ErrMissingField) {
				return gerrors.New("G202").Wrap(err)
			}
			return gerrors.New("G200").Wrap(err)
		}

		s.metrics.FrameReceived(env.Op.String())
		if env.Seq != nil {
			s.seq.Observe(*env.Seq)
		}

		if s.State() == StateAwaitingHello {
			hello, ok := env.Payload.(*protocol.Hello)
			if !ok {
				return gerrors.New("G201").WithDetailf("Expected HELLO, got %s.", env.Op)
			}
			if err := s.handleHello(ctx, g, hello); err != nil {
				return err
			}
			continue
		}

		if err := s.dispatch(ctx, env); err != nil {
			return err
		}
	}
}

// handleHello starts the heartbeat and identifies.
func (s *Session) handleHello(ctx context.Context, g *errgroup.Group, hello *protocol.Hello) error {
	interval := hello.Interval()
	s.interval.Store(int64(interval))
	s.logger.Debug("hello", "heartbeat_interval", interval)

	hb := &Heartbeat{
		Interval: interval,
		Seq:      &s.seq,
		Send:     s.sender.Send,
		OnBeat:   s.metrics.HeartbeatSent,
	}
	g.Go(func() error {
		return hb.Run(ctx)
	})

	identify := protocol.Identify(s.cfg.Token, s.cfg.Properties, s.cfg.Presence.EffectiveStatus())
	if err := s.send(ctx, identify); err != nil {
		return err
	}
	s.setState(StateIdentified)
	return nil
}

func (s *Session) dispatch(ctx context.Context, env *protocol.Envelope) error {
	switch p := env.Payload.(type) {
	case *protocol.Ready:
		if s.State() == StateReady {
			s.logger.Debug("duplicate READY ignored")
			return nil
		}
		return s.handleReady(ctx, p)

	case *protocol.Dispatch:
		s.logger.Debug("dispatch", "event", p.Event, "bytes", len(p.Data))

	case *protocol.HeartbeatRequest:
		seq, known := s.seq.Value()
		if err := s.send(ctx, protocol.Heartbeat(seq, known)); err != nil {
			return err
		}
		s.metrics.HeartbeatSent()

	case *protocol.HeartbeatAck:
		s.lastAck.Store(s.now().UnixNano())
		s.metrics.HeartbeatAck()

	case *protocol.Reconnect:
		return gerrors.New("G203")

	case *protocol.InvalidSession:
		return gerrors.New("G204").WithDetailf("Resumable: %t.", p.Resumable)

	case *protocol.Hello:
		s.logger.Debug("repeated HELLO ignored")

	default:
		s.logger.Debug("frame ignored", "op", env.Op)
	}
	return nil
}

// handleReady sends the voice join and then the optional presence.
func (s *Session) handleReady(ctx context.Context, ready *protocol.Ready) error {
	s.user = ready.User
	s.setState(StateReady)
	s.metrics.SetReady(true)
	s.reporter.Success("Connected as %s", ready.User.Tag())
	s.logger.Info("ready", "user", ready.User.Tag(), "session_id", ready.SessionID)

	voice := s.cfg.Voice
	if err := s.send(ctx, protocol.VoiceStateUpdate(voice)); err != nil {
		return err
	}
	s.reporter.System("Joining voice (deafened): %s:%s", voice.GuildID, voice.ChannelID)

	presence := s.cfg.Presence
	frame, ok := protocol.PresenceUpdate(presence, s.now())
	if !ok {
		s.reporter.Warning("No activity set (skipped presence)")
	} else {
		if err := s.send(ctx, frame); err != nil {
			return err
		}
		s.reporter.System("Presence set: %s + %s %s",
			presence.EffectiveStatus(), presence.ActivityType.String(), presence.ActivityName)
	}

	if s.onReady != nil {
		s.onReady(ready.User)
	}
	return nil
}

// send writes f and maps a failure to G104.
func (s *Session) send(ctx context.Context, f protocol.Frame) error {
	if err := s.sender.Send(ctx, f); err != nil {
		return gerrors.New("G104").WithDetailf("Sending %s failed.", f.Op).Wrap(err)
	}
	return nil
}

// leaveVoice disconnects from voice before a requested shutdown.
func (s *Session) leaveVoice() {
	ctx, cancel := context.WithTimeout(context.Background(), s.leave)
	defer cancel()
	if err := s.sender.Send(ctx, protocol.VoiceLeave(s.cfg.Voice.GuildID)); err != nil {
		s.logger.Debug("voice leave failed", "error", err)
		return
	}
	s.reporter.System("Left voice channel")
}
