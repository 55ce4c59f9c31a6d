package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/ghostline-dev/ghostline/internal/errors"
	"github.com/ghostline-dev/ghostline/internal/telemetry"
)

// recordSleep returns a SleepFunc that records durations without waiting.
func recordSleep(sleeps *[]time.Duration) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return ctx.Err()
	}
}

func TestSupervisorRetriesDialFailuresWithFixedBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const attempts = 6
	dials := 0
	var sleeps []time.Duration
	var results []Result
	rep := &recordingReporter{}

	sup := &Supervisor{
		Config: testConfig(false),
		Dialer: DialerFunc(func(context.Context, string) (Conn, error) {
			dials++
			if dials == attempts {
				cancel()
				return nil, context.Canceled
			}
			return nil, errors.New("dial tcp: lookup gateway.discord.gg: no such host")
		}),
		Prober:   ProberFunc(func(context.Context) error { return nil }),
		Sleep:    recordSleep(&sleeps),
		Reporter: rep,
		OnResult: func(_ int, res Result) { results = append(results, res) },
	}

	require.NoError(t, sup.Run(ctx))

	assert.Equal(t, attempts, dials)
	require.Len(t, sleeps, attempts-1)
	for _, d := range sleeps {
		assert.Equal(t, 10*time.Second, d)
	}

	require.Len(t, results, attempts)
	for _, res := range results[:attempts-1] {
		assert.Equal(t, OutcomeTransportFailure, res.Outcome)
		assert.True(t, gerrors.HasCode(res.Err, "G100"))
	}
	assert.Equal(t, OutcomeStopped, results[attempts-1].Outcome)

	assert.Equal(t, attempts-1, rep.count("warning Retrying in 10s..."))
	assert.Equal(t, attempts, rep.count("info Connecting to Discord Gateway..."))
}

func TestSupervisorWaitsForNetwork(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dials := 0
	probes := 0
	var sleeps []time.Duration
	rep := &recordingReporter{}
	reg := prometheus.NewRegistry()

	sup := &Supervisor{
		Config: testConfig(false),
		Dialer: DialerFunc(func(context.Context, string) (Conn, error) {
			dials++
			if dials == 2 {
				cancel()
				return nil, context.Canceled
			}
			return nil, errors.New("network is unreachable")
		}),
		Prober: ProberFunc(func(context.Context) error {
			probes++
			if probes <= 2 {
				return errors.New("timeout")
			}
			return nil
		}),
		Sleep:    recordSleep(&sleeps),
		Reporter: rep,
		Metrics:  telemetry.NewMetrics(telemetry.WithRegistry(reg)),
	}

	require.NoError(t, sup.Run(ctx))

	assert.Equal(t, 3, probes)
	assert.Equal(t, []time.Duration{10 * time.Second, 5 * time.Second, 5 * time.Second}, sleeps)
	assert.Equal(t, 2, rep.count("warning Waiting for internet..."))
}

func TestSupervisorStartsFreshSessionEachAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var conns []*fakeConn
	var outcomes []Outcome
	var sleeps []time.Duration

	sup := &Supervisor{
		Config: testConfig(false),
		Dialer: DialerFunc(func(context.Context, string) (Conn, error) {
			if len(conns) == 3 {
				cancel()
				return nil, context.Canceled
			}
			c := newFakeConn()
			// A heartbeat ack is not a valid first frame.
			c.push(`{"op":11}`)
			conns = append(conns, c)
			return c, nil
		}),
		Prober:   ProberFunc(func(context.Context) error { return nil }),
		Sleep:    recordSleep(&sleeps),
		OnResult: func(_ int, res Result) { outcomes = append(outcomes, res.Outcome) },
	}

	require.NoError(t, sup.Run(ctx))

	assert.Equal(t, []Outcome{
		OutcomeProtocolFailure,
		OutcomeProtocolFailure,
		OutcomeProtocolFailure,
		OutcomeStopped,
	}, outcomes)
	for _, c := range conns {
		assert.True(t, c.isClosed())
	}
	assert.Len(t, sleeps, 3)
}

func TestSupervisorReportsCloseCode(t *testing.T) {
	rep := &recordingReporter{}
	sup := &Supervisor{Reporter: rep}
	sup.applyDefaults()

	sup.report(Result{Outcome: OutcomeTransportFailure, CloseCode: 4004, Err: errors.New("authentication failed")})
	sup.report(Result{Outcome: OutcomeClosed})

	assert.Equal(t, []string{
		"error Disconnected (close code 4004): authentication failed",
		"error Disconnected: connection closed",
	}, rep.Lines())
}

func TestSupervisorStopsDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sup := &Supervisor{
		Config: testConfig(false),
		Dialer: DialerFunc(func(context.Context, string) (Conn, error) {
			return nil, errors.New("refused")
		}),
		Backoff: time.Hour,
		Prober:  ProberFunc(func(context.Context) error { return nil }),
	}

	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func TestWaitOnline(t *testing.T) {
	var calls atomic.Int32
	var failures atomic.Int32
	p := ProberFunc(func(context.Context) error {
		if calls.Add(1) <= 3 {
			return errors.New("unreachable")
		}
		return nil
	})

	err := WaitOnline(context.Background(), p, time.Millisecond, func(error) { failures.Add(1) })
	require.NoError(t, err)
	assert.EqualValues(t, 4, calls.Load())
	assert.EqualValues(t, 3, failures.Load())
}

func TestWaitOnlineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := ProberFunc(func(context.Context) error {
		cancel()
		return errors.New("unreachable")
	})

	err := WaitOnline(ctx, p, time.Hour, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPProber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	p := &HTTPProber{URL: srv.URL, Timeout: time.Second}
	assert.NoError(t, p.Probe(context.Background()), "any HTTP response means online")

	srv.Close()
	err := p.Probe(context.Background())
	require.Error(t, err)
	assert.True(t, gerrors.HasCode(err, "G103"))
}

func TestHTTPProberTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	p := &HTTPProber{URL: srv.URL, Timeout: 20 * time.Millisecond}
	start := time.Now()
	err := p.Probe(context.Background())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewHTTPProberDefaults(t *testing.T) {
	p := NewHTTPProber()
	assert.Equal(t, "https://1.1.1.1", p.URL)
	assert.Equal(t, 5*time.Second, p.Timeout)
}
