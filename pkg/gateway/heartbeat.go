package gateway

import (
	"context"
	"time"

	gerrors "github.com/ghostline-dev/ghostline/internal/errors"
	"github.com/ghostline-dev/ghostline/pkg/protocol"
)

// SendFunc writes one frame to the gateway.
type SendFunc func(ctx context.Context, f protocol.Frame) error

// Heartbeat emits a keepalive frame every Interval carrying the latest
// sequence number, or null before any has been seen.
type Heartbeat struct {
	Interval time.Duration
	Seq      *SequenceTracker
	Send     SendFunc

	// OnBeat is called after each successful send. Optional.
	OnBeat func()
}

// Run sends heartbeats until ctx is done. The first heartbeat goes out one
// interval after Run starts. A failed send ends Run with a G102 error; there
// is no retry.
func (h *Heartbeat) Run(ctx context.Context) error {
	if h.Interval <= 0 {
		return gerrors.New("G202").WithDetailf("Heartbeat interval %s is not positive.", h.Interval)
	}
	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			seq, known := h.Seq.Value()
			if err := h.Send(ctx, protocol.Heartbeat(seq, known)); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return gerrors.New("G102").Wrap(err)
			}
			if h.OnBeat != nil {
				h.OnBeat()
			}
		}
	}
}
