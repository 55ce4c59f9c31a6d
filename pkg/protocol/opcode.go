package protocol

// Opcode identifies the meaning of a gateway frame.
type Opcode int

const (
	OpDispatch         Opcode = 0  // Server event (READY, ...)
	OpHeartbeat        Opcode = 1  // Keepalive, or server request for one
	OpIdentify         Opcode = 2  // Authenticate a new session
	OpPresenceUpdate   Opcode = 3  // Set status and activity
	OpVoiceStateUpdate Opcode = 4  // Join, move, or leave voice
	OpReconnect        Opcode = 7  // Server asks the client to reconnect
	OpInvalidSession   Opcode = 9  // Session is no longer valid
	OpHello            Opcode = 10 // First frame, carries heartbeat interval
	OpHeartbeatAck     Opcode = 11 // Server acknowledged a heartbeat
)

// String returns the string representation of the opcode.
func (op Opcode) String() string {
	switch op {
	case OpDispatch:
		return "Dispatch"
	case OpHeartbeat:
		return "Heartbeat"
	case OpIdentify:
		return "Identify"
	case OpPresenceUpdate:
		return "PresenceUpdate"
	case OpVoiceStateUpdate:
		return "VoiceStateUpdate"
	case OpReconnect:
		return "Reconnect"
	case OpInvalidSession:
		return "InvalidSession"
	case OpHello:
		return "Hello"
	case OpHeartbeatAck:
		return "HeartbeatAck"
	default:
		return "Unknown"
	}
}

// EventReady is the dispatch event name that marks a session as established.
const EventReady = "READY"

// MaxFrameSize is the largest inbound frame the client accepts (8 MiB).
// READY payloads for large accounts routinely exceed a megabyte.
const MaxFrameSize = 1 << 23
