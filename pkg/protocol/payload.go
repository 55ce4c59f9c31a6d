package protocol

import (
	"encoding/json"
	"time"
)

// Frame is an outbound gateway frame.
type Frame struct {
	Op Opcode `json:"op"`
	D  any    `json:"d"`
}

// Encode serializes the frame to JSON.
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// ClientProperties identify the connecting client in IDENTIFY.
type ClientProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// DefaultClientProperties match a desktop browser session.
var DefaultClientProperties = ClientProperties{
	OS:      "Windows",
	Browser: "Firefox",
	Device:  "desktop",
}

// IdentifyData is the payload of an op 2 frame.
type IdentifyData struct {
	Token      string           `json:"token"`
	Properties ClientProperties `json:"properties"`
	Presence   IdentifyPresence `json:"presence"`
}

// IdentifyPresence is the initial presence sent with IDENTIFY.
type IdentifyPresence struct {
	Status Status `json:"status"`
	AFK    bool   `json:"afk"`
}

// VoiceStateData is the payload of an op 4 frame. A nil ChannelID leaves voice.
type VoiceStateData struct {
	GuildID   string  `json:"guild_id"`
	ChannelID *string `json:"channel_id"`
	SelfMute  bool    `json:"self_mute"`
	SelfDeaf  bool    `json:"self_deaf"`
}

// PresenceData is the payload of an op 3 frame.
type PresenceData struct {
	Since      int64          `json:"since"`
	Activities []ActivityData `json:"activities"`
	Status     Status         `json:"status"`
	AFK        bool           `json:"afk"`
}

// ActivityData is one entry of PresenceData.Activities.
type ActivityData struct {
	Name string       `json:"name"`
	Type ActivityType `json:"type"`
	URL  string       `json:"url,omitempty"`
}

// Heartbeat builds an op 1 frame. When known is false the payload is null.
func Heartbeat(seq int64, known bool) Frame {
	if !known {
		return Frame{Op: OpHeartbeat, D: nil}
	}
	return Frame{Op: OpHeartbeat, D: seq}
}

// Identify builds the op 2 frame that authenticates a new session.
func Identify(token string, props ClientProperties, status Status) Frame {
	if status == "" {
		status = StatusOnline
	}
	return Frame{Op: OpIdentify, D: IdentifyData{
		Token:      token,
		Properties: props,
		Presence:   IdentifyPresence{Status: status, AFK: false},
	}}
}

// VoiceStateUpdate builds the op 4 ghost join: self-mute and self-deafen are
// always set.
func VoiceStateUpdate(target VoiceTarget) Frame {
	channelID := target.ChannelID
	return Frame{Op: OpVoiceStateUpdate, D: VoiceStateData{
		GuildID:   target.GuildID,
		ChannelID: &channelID,
		SelfMute:  true,
		SelfDeaf:  true,
	}}
}

// VoiceLeave builds the op 4 frame that disconnects from voice in a guild.
func VoiceLeave(guildID string) Frame {
	return Frame{Op: OpVoiceStateUpdate, D: VoiceStateData{
		GuildID:  guildID,
		SelfMute: true,
		SelfDeaf: true,
	}}
}

// PresenceUpdate builds the op 3 frame for cfg. It returns false when cfg has
// no activity, in which case nothing should be sent.
func PresenceUpdate(cfg PresenceConfig, now time.Time) (Frame, bool) {
	if !cfg.HasActivity() {
		return Frame{}, false
	}

	activity := ActivityData{
		Name: cfg.ActivityName,
		Type: *cfg.ActivityType,
	}
	if activity.Type == ActivityStreaming {
		activity.URL = cfg.StreamURL
		if activity.URL == "" {
			activity.URL = DefaultStreamURL
		}
	}

	return Frame{Op: OpPresenceUpdate, D: PresenceData{
		Since:      now.UnixMilli(),
		Activities: []ActivityData{activity},
		Status:     cfg.EffectiveStatus(),
		AFK:        false,
	}}, true
}
