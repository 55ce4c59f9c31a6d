package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Status is the user-visible online status.
type Status string

const (
	StatusOnline    Status = "online"
	StatusIdle      Status = "idle"
	StatusDND       Status = "dnd"
	StatusInvisible Status = "invisible"
)

// Valid reports whether s is one of the four statuses the gateway accepts.
func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusIdle, StatusDND, StatusInvisible:
		return true
	}
	return false
}

// ParseStatus parses a status name. The empty string means online.
func ParseStatus(s string) (Status, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StatusOnline, nil
	}
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: status %q", ErrInvalidPresence, s)
	}
	return st, nil
}

// ActivityType is the kind of activity shown under the user's name.
type ActivityType int

const (
	ActivityPlaying   ActivityType = 0
	ActivityStreaming ActivityType = 1
	ActivityListening ActivityType = 2
	ActivityWatching  ActivityType = 3
)

// String returns the display name of the activity type.
func (t ActivityType) String() string {
	switch t {
	case ActivityPlaying:
		return "Playing"
	case ActivityStreaming:
		return "Streaming"
	case ActivityListening:
		return "Listening"
	case ActivityWatching:
		return "Watching"
	default:
		return "Unknown"
	}
}

// ParseActivityType accepts either the numeric id ("1") or the name
// ("streaming").
func ParseActivityType(s string) (ActivityType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		t := ActivityType(n)
		if t < ActivityPlaying || t > ActivityWatching {
			return 0, fmt.Errorf("%w: activity type %d", ErrInvalidPresence, n)
		}
		return t, nil
	}
	for t := ActivityPlaying; t <= ActivityWatching; t++ {
		if strings.ToLower(t.String()) == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: activity type %q", ErrInvalidPresence, s)
}

// DefaultStreamURL is used for streaming activities configured without a URL.
const DefaultStreamURL = "https://twitch.tv/llama"

// ErrInvalidPresence is returned for an unusable presence configuration.
var ErrInvalidPresence = errors.New("protocol: invalid presence")

// PresenceConfig describes the status and optional activity for a session.
// A nil ActivityType means no activity and no presence frame.
type PresenceConfig struct {
	Status       Status        `json:"status"`
	ActivityName string        `json:"activity_name,omitempty"`
	ActivityType *ActivityType `json:"activity_type,omitempty"`
	StreamURL    string        `json:"stream_url,omitempty"`
}

// HasActivity reports whether an activity is configured.
func (c PresenceConfig) HasActivity() bool {
	return c.ActivityType != nil
}

// Validate checks status, activity type and activity name.
func (c PresenceConfig) Validate() error {
	if c.Status != "" && !c.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidPresence, c.Status)
	}
	if c.ActivityType == nil {
		return nil
	}
	if t := *c.ActivityType; t < ActivityPlaying || t > ActivityWatching {
		return fmt.Errorf("%w: activity type %d", ErrInvalidPresence, t)
	}
	if strings.TrimSpace(c.ActivityName) == "" {
		return fmt.Errorf("%w: activity name is required", ErrInvalidPresence)
	}
	return nil
}

// EffectiveStatus returns the status, defaulting to online.
func (c PresenceConfig) EffectiveStatus() Status {
	if c.Status == "" {
		return StatusOnline
	}
	return c.Status
}

// Activity returns a pointer to t, for building PresenceConfig literals.
func Activity(t ActivityType) *ActivityType {
	return &t
}

// VoiceTarget identifies the voice channel to join.
type VoiceTarget struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
}

// Validate checks that both ids are present and look like snowflakes.
func (v VoiceTarget) Validate() error {
	if !isSnowflake(v.GuildID) {
		return fmt.Errorf("protocol: invalid guild id %q", v.GuildID)
	}
	if !isSnowflake(v.ChannelID) {
		return fmt.Errorf("protocol: invalid channel id %q", v.ChannelID)
	}
	return nil
}

func isSnowflake(id string) bool {
	if id == "" || len(id) > 20 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
