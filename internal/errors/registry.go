package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Transport Errors (G100-G199)
	// ============================================

	"G100": {
		Category: CategoryTransport,
		Message:  "Gateway connection failed",
		Detail:   "The websocket handshake with the gateway did not complete.",
	},
	"G101": {
		Category: CategoryTransport,
		Message:  "Gateway connection closed",
		Detail:   "The gateway socket was closed or a read from it failed.",
	},
	"G102": {
		Category: CategoryTransport,
		Message:  "Heartbeat send failed",
		Detail:   "A keepalive frame could not be written to the gateway socket.",
	},
	"G103": {
		Category: CategoryTransport,
		Message:  "Network unreachable",
		Detail:   "The connectivity probe could not reach the external address.",
	},
	"G104": {
		Category: CategoryTransport,
		Message:  "Frame send failed",
		Detail:   "An outbound frame could not be written to the gateway socket.",
	},

	// ============================================
	// Protocol Errors (G200-G299)
	// ============================================

	"G200": {
		Category: CategoryProtocol,
		Message:  "Malformed gateway frame",
		Detail:   "An inbound frame was not valid JSON or did not match the gateway envelope.",
	},
	"G201": {
		Category: CategoryProtocol,
		Message:  "Unexpected first frame",
		Detail:   "The first frame of a session must be HELLO (op 10).",
	},
	"G202": {
		Category: CategoryProtocol,
		Message:  "Missing required field",
		Detail:   "A frame was missing a field the session needs to continue.",
	},
	"G203": {
		Category: CategoryProtocol,
		Message:  "Gateway requested reconnect",
		Detail:   "The gateway sent RECONNECT (op 7). A new session will be started.",
	},
	"G204": {
		Category: CategoryProtocol,
		Message:  "Session invalidated by gateway",
		Detail:   "The gateway sent INVALID_SESSION (op 9). A new session will be started.",
	},

	// ============================================
	// Config Errors (G300-G399)
	// ============================================

	"G300": {
		Category: CategoryConfig,
		Message:  "Invalid token",
		Detail:   "The gateway API rejected the stored token.",
	},
	"G301": {
		Category: CategoryConfig,
		Message:  "Invalid guild or voice channel",
		Detail:   "The channel was not found in the guild, or it is not a voice channel.",
	},
	"G302": {
		Category: CategoryConfig,
		Message:  "Configuration file error",
		Detail:   "The configuration record could not be read or written.",
	},
	"G303": {
		Category: CategoryConfig,
		Message:  "Invalid presence configuration",
		Detail:   "Status must be one of online, idle, dnd, invisible and activity type one of 0-3.",
	},
	"G304": {
		Category: CategoryConfig,
		Message:  "Missing token",
		Detail:   "No token is stored and none was provided.",
	},
	"G305": {
		Category: CategoryConfig,
		Message:  "Token check failed",
		Detail:   "The gateway API could not be reached to check the token.",
	},

	// ============================================
	// CLI Errors (G400-G499)
	// ============================================

	"G400": {
		Category: CategoryCLI,
		Message:  "Invalid selection",
		Detail:   "The menu choice was not recognized.",
	},
	"G401": {
		Category: CategoryCLI,
		Message:  "Input required",
		Detail:   "A required value was empty and no default was available.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
