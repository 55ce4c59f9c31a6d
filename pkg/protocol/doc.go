// Package protocol implements the JSON wire protocol spoken on the gateway
// websocket.
//
// Every frame is a JSON object with an opcode and a payload:
//
//	{"op": 10, "d": {"heartbeat_interval": 41250}, "s": null, "t": null}
//
// Inbound frames may carry a sequence number ("s") and, for dispatches, an
// event name ("t").
//
// # Opcodes
//
//	┌────┬──────────────────┬───────────┐
//	│ Op │ Name             │ Direction │
//	├────┼──────────────────┼───────────┤
//	│  0 │ Dispatch         │ in        │
//	│  1 │ Heartbeat        │ in/out    │
//	│  2 │ Identify         │ out       │
//	│  3 │ Presence Update  │ out       │
//	│  4 │ Voice State      │ out       │
//	│  7 │ Reconnect        │ in        │
//	│  9 │ Invalid Session  │ in        │
//	│ 10 │ Hello            │ in        │
//	│ 11 │ Heartbeat ACK    │ in        │
//	└────┴──────────────────┴───────────┘
//
// # Decoding
//
// Decode turns a raw frame into an Envelope whose Payload is one of the
// concrete message types (Hello, Ready, Dispatch, HeartbeatRequest,
// HeartbeatAck, Reconnect, InvalidSession) or Unknown for opcodes this
// client does not act on. Callers switch on the payload type:
//
//	env, err := protocol.Decode(msg)
//	if err != nil {
//	    return err
//	}
//	switch p := env.Payload.(type) {
//	case *protocol.Hello:
//	    interval = p.Interval()
//	case *protocol.Ready:
//	    user = p.User
//	}
//
// # Encoding
//
// Outbound frames are built by pure functions (Heartbeat, Identify,
// VoiceStateUpdate, PresenceUpdate) and serialized with Frame.Encode.
// The builders perform no I/O and are safe to call from any goroutine.
package protocol
