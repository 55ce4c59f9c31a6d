// Package errors provides structured, actionable error messages for ghostline.
//
// Every error carries a short code, a category, and optionally a longer
// explanation and a hint for the operator. The gateway supervisor and the CLI
// use the category to decide what happens next:
//   - transport: socket I/O failures, unexpected closes, unreachable network
//   - protocol: malformed frames, unexpected first frame, gateway-initiated close
//   - config: invalid token, unknown guild or channel, unreadable config file
//   - cli: operator input errors
//
// Transport and protocol errors inside a running session are retried forever
// by the supervisor. Config errors are reported immediately and never enter
// the reconnect loop.
//
// # Error Codes
//
// Codes are grouped by category:
//   - G100-G199: transport
//   - G200-G299: protocol
//   - G300-G399: config
//   - G400-G499: cli
//
// # Usage
//
//	err := errors.New("G300").
//	    WithDetail("GET /users/@me returned 401").
//	    WithSuggestion("Run 'ghostline token' to store a new token")
//
//	fmt.Print(err.Format())
//	// ERROR G300: Invalid token
//	//
//	//   GET /users/@me returned 401
//	//
//	//   Hint: Run 'ghostline token' to store a new token
package errors
