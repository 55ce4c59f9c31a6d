package gateway

import (
	"context"
	"io"
	"net/http"
	"time"

	gerrors "github.com/ghostline-dev/ghostline/internal/errors"
)

// Probe defaults.
const (
	DefaultProbeURL      = "https://1.1.1.1"
	DefaultProbeTimeout  = 5 * time.Second
	DefaultProbeInterval = 5 * time.Second
)

// Prober checks whether the network is reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context) error

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context) error {
	return f(ctx)
}

// HTTPProber considers the network reachable when a GET to URL gets any
// HTTP response within Timeout.
type HTTPProber struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

// NewHTTPProber returns a prober for DefaultProbeURL with DefaultProbeTimeout.
func NewHTTPProber() *HTTPProber {
	return &HTTPProber{URL: DefaultProbeURL, Timeout: DefaultProbeTimeout}
}

// Probe performs one reachability check.
func (p *HTTPProber) Probe(ctx context.Context) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := p.URL
	if url == "" {
		url = DefaultProbeURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return gerrors.New("G103").Wrap(err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
	return nil
}

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WaitOnline probes until p succeeds, waiting interval between failed
// probes. onFailure, if non-nil, is called after every failed probe. It
// returns nil once online, or ctx.Err() if ctx ends first.
func WaitOnline(ctx context.Context, p Prober, interval time.Duration, onFailure func(error)) error {
	return waitOnline(ctx, p, interval, Sleep, onFailure)
}

func waitOnline(ctx context.Context, p Prober, interval time.Duration, sleep SleepFunc, onFailure func(error)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := p.Probe(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if onFailure != nil {
			onFailure(err)
		}
		if err := sleep(ctx, interval); err != nil {
			return err
		}
	}
}
