package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Decode errors.
var (
	ErrMalformedFrame = errors.New("protocol: malformed frame")
	ErrMissingField   = errors.New("protocol: missing required field")
)

// Envelope is a decoded inbound frame.
type Envelope struct {
	Op Opcode

	// Seq is the sequence number carried by the frame, nil when absent or null.
	Seq *int64

	// Payload is one of *Hello, *Ready, *Dispatch, *HeartbeatRequest,
	// *HeartbeatAck, *Reconnect, *InvalidSession or *Unknown.
	Payload Payload
}

// Payload is implemented by every inbound message type.
type Payload interface {
	Opcode() Opcode
}

// MaxHeartbeatInterval is the longest heartbeat interval HELLO may announce.
const MaxHeartbeatInterval = time.Hour

// Hello is the first frame of every session.
type Hello struct {
	HeartbeatIntervalMillis int64 `json:"heartbeat_interval"`
}

// Interval returns the heartbeat interval as a duration.
func (h *Hello) Interval() time.Duration {
	return time.Duration(h.HeartbeatIntervalMillis) * time.Millisecond
}

// Opcode implements Payload.
func (*Hello) Opcode() Opcode { return OpHello }

// User is the authenticated identity carried by READY.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name,omitempty"`
}

// Tag returns username#discriminator, or just the username for accounts
// that no longer carry a discriminator.
func (u User) Tag() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

// Ready is the READY dispatch: the session is authenticated.
type Ready struct {
	SessionID string `json:"session_id"`
	User      User   `json:"user"`
}

// Opcode implements Payload.
func (*Ready) Opcode() Opcode { return OpDispatch }

// Dispatch is any dispatch event other than READY.
type Dispatch struct {
	Event string
	Data  json.RawMessage
}

// Opcode implements Payload.
func (*Dispatch) Opcode() Opcode { return OpDispatch }

// HeartbeatRequest is an inbound op 1: the server wants a heartbeat now.
type HeartbeatRequest struct{}

// Opcode implements Payload.
func (*HeartbeatRequest) Opcode() Opcode { return OpHeartbeat }

// HeartbeatAck acknowledges a heartbeat.
type HeartbeatAck struct{}

// Opcode implements Payload.
func (*HeartbeatAck) Opcode() Opcode { return OpHeartbeatAck }

// Reconnect asks the client to drop the socket and reconnect.
type Reconnect struct{}

// Opcode implements Payload.
func (*Reconnect) Opcode() Opcode { return OpReconnect }

// InvalidSession reports that the session can no longer be used.
type InvalidSession struct {
	Resumable bool
}

// Opcode implements Payload.
func (*InvalidSession) Opcode() Opcode { return OpInvalidSession }

// Unknown holds a frame with an opcode the client does not act on.
type Unknown struct {
	Op   Opcode
	Data json.RawMessage
}

// Opcode implements Payload.
func (u *Unknown) Opcode() Opcode { return u.Op }

// rawEnvelope mirrors the wire shape. Pointers distinguish absent from zero.
type rawEnvelope struct {
	Op *Opcode         `json:"op"`
	D  json.RawMessage `json:"d"`
	S  *int64          `json:"s"`
	T  *string         `json:"t"`
}

// Decode parses one inbound frame.
func Decode(data []byte) (*Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if raw.Op == nil {
		return nil, fmt.Errorf("%w: op", ErrMissingField)
	}

	env := &Envelope{Op: *raw.Op, Seq: raw.S}

	switch env.Op {
	case OpHello:
		var h Hello
		if err := decodeData(raw.D, &h); err != nil {
			return nil, err
		}
		if h.HeartbeatIntervalMillis <= 0 {
			return nil, fmt.Errorf("%w: d.heartbeat_interval", ErrMissingField)
		}
		if h.HeartbeatIntervalMillis > MaxHeartbeatInterval.Milliseconds() {
			return nil, fmt.Errorf("%w: d.heartbeat_interval %d out of range", ErrMalformedFrame, h.HeartbeatIntervalMillis)
		}
		env.Payload = &h

	case OpDispatch:
		if raw.T == nil || *raw.T == "" {
			return nil, fmt.Errorf("%w: t", ErrMissingField)
		}
		if *raw.T != EventReady {
			env.Payload = &Dispatch{Event: *raw.T, Data: raw.D}
			break
		}
		var r Ready
		if err := decodeData(raw.D, &r); err != nil {
			return nil, err
		}
		if r.User.ID == "" && r.User.Username == "" {
			return nil, fmt.Errorf("%w: d.user", ErrMissingField)
		}
		env.Payload = &r

	case OpHeartbeat:
		env.Payload = &HeartbeatRequest{}

	case OpHeartbeatAck:
		env.Payload = &HeartbeatAck{}

	case OpReconnect:
		env.Payload = &Reconnect{}

	case OpInvalidSession:
		var resumable bool
		if !isNull(raw.D) {
			if err := json.Unmarshal(raw.D, &resumable); err != nil {
				return nil, fmt.Errorf("%w: d: %v", ErrMalformedFrame, err)
			}
		}
		env.Payload = &InvalidSession{Resumable: resumable}

	default:
		env.Payload = &Unknown{Op: env.Op, Data: raw.D}
	}

	return env, nil
}

// decodeData unmarshals a required "d" object.
func decodeData(d json.RawMessage, v any) error {
	if isNull(d) {
		return fmt.Errorf("%w: d", ErrMissingField)
	}
	if err := json.Unmarshal(d, v); err != nil {
		return fmt.Errorf("%w: d: %v", ErrMalformedFrame, err)
	}
	return nil
}

func isNull(d json.RawMessage) bool {
	trimmed := bytes.TrimSpace(d)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
