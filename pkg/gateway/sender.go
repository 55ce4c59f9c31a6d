package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ghostline-dev/ghostline/internal/telemetry"
	"github.com/ghostline-dev/ghostline/pkg/protocol"
)

// Gateway send budget: 120 frames per 60 seconds.
const (
	SendBudget       = 120
	SendBudgetWindow = 60 * time.Second
)

// NewSendLimiter returns a limiter that keeps a session within the gateway
// send budget.
func NewSendLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(SendBudgetWindow/SendBudget), SendBudget/2)
}

// sender is the single write path to a connection.
type sender struct {
	mu      sync.Mutex
	conn    Conn
	limiter *rate.Limiter
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

func newSender(conn Conn, limiter *rate.Limiter, metrics *telemetry.Metrics, logger *slog.Logger) *sender {
	return &sender{conn: conn, limiter: limiter, metrics: metrics, logger: logger}
}

// Send waits for send budget, then writes f. Writes never interleave.
func (s *sender) Send(ctx context.Context, f protocol.Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.WriteMessage(data); err != nil {
		return err
	}

	s.metrics.FrameSent(f.Op.String())
	s.logger.Debug("frame sent", "op", f.Op, "bytes", len(data))
	return nil
}
