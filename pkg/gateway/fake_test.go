package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ghostline-dev/ghostline/pkg/protocol"
)

var errFakeClosed = errors.New("fake: use of closed connection")

// fakeConn is an in-memory Conn. Tests push inbound frames on in and read
// what the session wrote from written. Closing in ends the stream with EOF.
type fakeConn struct {
	in       chan []byte
	written  chan []byte
	closed   chan struct{}
	once     sync.Once
	writes   atomic.Int32
	failSend atomic.Bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:      make(chan []byte, 16),
		written: make(chan []byte, 256),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case <-c.closed:
		return nil, errFakeClosed
	default:
	}
	select {
	case m, ok := <-c.in:
		if !ok {
			return nil, io.EOF
		}
		return m, nil
	case <-c.closed:
		return nil, errFakeClosed
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	c.writes.Add(1)
	select {
	case <-c.closed:
		return errFakeClosed
	default:
	}
	if c.failSend.Load() {
		return errors.New("fake: broken pipe")
	}
	c.written <- append([]byte(nil), data...)
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) push(frame string) {
	c.in <- []byte(frame)
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// sentFrame is an outbound frame as seen on the wire.
type sentFrame struct {
	Op protocol.Opcode `json:"op"`
	D  json.RawMessage `json:"d"`
}

func (f sentFrame) data(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(f.D, &m))
	return m
}

// next returns the next frame the session wrote.
func (c *fakeConn) next(t *testing.T) sentFrame {
	t.Helper()
	select {
	case data := <-c.written:
		var f sentFrame
		require.NoError(t, json.Unmarshal(data, &f))
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an outbound frame")
		return sentFrame{}
	}
}

// nextOp skips frames until one with op arrives.
func (c *fakeConn) nextOp(t *testing.T, op protocol.Opcode) sentFrame {
	t.Helper()
	for {
		if f := c.next(t); f.Op == op {
			return f
		}
	}
}

// recordingReporter keeps every status line.
type recordingReporter struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingReporter) add(level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}

func (r *recordingReporter) Success(f string, a ...any) { r.add("success", f, a...) }
func (r *recordingReporter) Error(f string, a ...any)   { r.add("error", f, a...) }
func (r *recordingReporter) Warning(f string, a ...any) { r.add("warning", f, a...) }
func (r *recordingReporter) Info(f string, a ...any)    { r.add("info", f, a...) }
func (r *recordingReporter) System(f string, a ...any)  { r.add("system", f, a...) }

func (r *recordingReporter) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *recordingReporter) count(line string) int {
	n := 0
	for _, l := range r.Lines() {
		if l == line {
			n++
		}
	}
	return n
}

const readyFrame = `{"op":0,"s":1,"t":"READY","d":{"session_id":"s1","user":{"id":"42","username":"ghost","discriminator":"0001"}}}`

func testConfig(activity bool) RunConfig {
	cfg := RunConfig{
		Token: "secret-token",
		Voice: protocol.VoiceTarget{GuildID: "111", ChannelID: "222"},
		Presence: protocol.PresenceConfig{
			Status: protocol.StatusIdle,
		},
	}
	if activity {
		cfg.Presence.ActivityName = "X"
		cfg.Presence.ActivityType = protocol.Activity(protocol.ActivityStreaming)
		cfg.Presence.StreamURL = "https://example.com/u"
	}
	return cfg
}
