// Package gateway runs the gateway session lifecycle: one authenticated
// websocket session at a time, kept alive by heartbeats and replaced by a
// fresh session whenever it ends.
//
// # Session
//
// A Session drives one connection through
//
//	Connecting → AwaitingHello → Identified → Ready → Closed
//
// The first inbound frame must be HELLO. Its heartbeat interval starts the
// heartbeat goroutine and the session answers with IDENTIFY. When the READY
// dispatch arrives the session sends the voice join (always self-muted and
// self-deafened) and then, if an activity is configured, a presence update.
//
// Run returns a Result once the socket is closed and every goroutine the
// session started has exited:
//
//	sess := gateway.NewSession(conn, cfg, gateway.Options{Logger: logger})
//	res := sess.Run(ctx)
//	if res.Outcome == gateway.OutcomeProtocolFailure { ... }
//
// # Supervisor
//
// Supervisor dials and runs sessions forever. After any outcome other than
// an operator stop it waits a fixed backoff, then polls a reachability
// probe until the network answers, then dials again. There is no session
// resumption: every attempt identifies from scratch.
//
// # Writes
//
// Every outbound frame goes through one serialized send path that also
// enforces the gateway's send budget of 120 frames per minute.
package gateway
