package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeMap(t *testing.T, f Frame) map[string]any {
	t.Helper()
	data, err := f.Encode()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestDecodeHello(t *testing.T) {
	env, err := Decode([]byte(`{"op":10,"d":{"heartbeat_interval":41250},"s":null,"t":null}`))
	require.NoError(t, err)
	assert.Equal(t, OpHello, env.Op)
	assert.Nil(t, env.Seq)

	hello, ok := env.Payload.(*Hello)
	require.True(t, ok)
	assert.Equal(t, 41250*time.Millisecond, hello.Interval())
}

func TestDecodeHelloRejectsMissingInterval(t *testing.T) {
	for _, in := range []string{
		`{"op":10}`,
		`{"op":10,"d":null}`,
		`{"op":10,"d":{}}`,
		`{"op":10,"d":{"heartbeat_interval":0}}`,
	} {
		_, err := Decode([]byte(in))
		assert.ErrorIs(t, err, ErrMissingField, in)
	}
}

func TestDecodeHelloRejectsOversizedInterval(t *testing.T) {
	for _, in := range []string{
		`{"op":10,"d":{"heartbeat_interval":9223372036854775}}`,
		`{"op":10,"d":{"heartbeat_interval":3600001}}`,
	} {
		_, err := Decode([]byte(in))
		assert.ErrorIs(t, err, ErrMalformedFrame, in)
	}

	env, err := Decode([]byte(`{"op":10,"d":{"heartbeat_interval":3600000}}`))
	require.NoError(t, err)
	assert.Equal(t, MaxHeartbeatInterval, env.Payload.(*Hello).Interval())
}

func TestDecodeReady(t *testing.T) {
	env, err := Decode([]byte(`{"op":0,"s":1,"t":"READY","d":{"session_id":"abc","user":{"id":"42","username":"ghost","discriminator":"0001"}}}`))
	require.NoError(t, err)
	require.NotNil(t, env.Seq)
	assert.EqualValues(t, 1, *env.Seq)

	ready, ok := env.Payload.(*Ready)
	require.True(t, ok)
	assert.Equal(t, "abc", ready.SessionID)
	assert.Equal(t, "ghost#0001", ready.User.Tag())
}

func TestDecodeReadyWithoutUser(t *testing.T) {
	_, err := Decode([]byte(`{"op":0,"s":1,"t":"READY","d":{"session_id":"abc"}}`))
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestDecodeDispatch(t *testing.T) {
	env, err := Decode([]byte(`{"op":0,"s":7,"t":"GUILD_CREATE","d":{"id":"1"}}`))
	require.NoError(t, err)
	d, ok := env.Payload.(*Dispatch)
	require.True(t, ok)
	assert.Equal(t, "GUILD_CREATE", d.Event)
	assert.JSONEq(t, `{"id":"1"}`, string(d.Data))
}

func TestDecodeDispatchWithoutEvent(t *testing.T) {
	_, err := Decode([]byte(`{"op":0,"s":7,"d":{}}`))
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestDecodeControlFrames(t *testing.T) {
	tests := []struct {
		in   string
		want Payload
	}{
		{`{"op":1,"d":null}`, &HeartbeatRequest{}},
		{`{"op":11}`, &HeartbeatAck{}},
		{`{"op":7,"d":null}`, &Reconnect{}},
		{`{"op":9,"d":false}`, &InvalidSession{Resumable: false}},
		{`{"op":9,"d":true}`, &InvalidSession{Resumable: true}},
		{`{"op":9,"d":null}`, &InvalidSession{}},
		{`{"op":42,"d":{"x":1}}`, &Unknown{Op: 42, Data: json.RawMessage(`{"x":1}`)}},
	}
	for _, tt := range tests {
		env, err := Decode([]byte(tt.in))
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, env.Payload, tt.in)
		assert.Equal(t, tt.want.Opcode(), env.Op, tt.in)
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{"op":`))
	assert.ErrorIs(t, err, ErrMalformedFrame)

	_, err = Decode([]byte(`{"d":{}}`))
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = Decode([]byte(`{"op":9,"d":"maybe"}`))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestUserTagWithoutDiscriminator(t *testing.T) {
	assert.Equal(t, "ghost", User{Username: "ghost", Discriminator: "0"}.Tag())
	assert.Equal(t, "ghost", User{Username: "ghost"}.Tag())
}

func TestHeartbeatFrame(t *testing.T) {
	m := encodeMap(t, Heartbeat(0, false))
	assert.EqualValues(t, 1, m["op"])
	assert.Contains(t, m, "d")
	assert.Nil(t, m["d"])

	m = encodeMap(t, Heartbeat(17, true))
	assert.EqualValues(t, 17, m["d"])
}

func TestIdentifyFrame(t *testing.T) {
	m := encodeMap(t, Identify("tok", DefaultClientProperties, StatusDND))
	assert.EqualValues(t, 2, m["op"])

	d := m["d"].(map[string]any)
	assert.Equal(t, "tok", d["token"])
	assert.Equal(t, map[string]any{"os": "Windows", "browser": "Firefox", "device": "desktop"}, d["properties"])
	assert.Equal(t, map[string]any{"status": "dnd", "afk": false}, d["presence"])
}

func TestIdentifyDefaultsToOnline(t *testing.T) {
	f := Identify("tok", DefaultClientProperties, "")
	assert.Equal(t, StatusOnline, f.D.(IdentifyData).Presence.Status)
}

func TestVoiceStateUpdateAlwaysMutedAndDeafened(t *testing.T) {
	m := encodeMap(t, VoiceStateUpdate(VoiceTarget{GuildID: "111", ChannelID: "222"}))
	assert.EqualValues(t, 4, m["op"])
	assert.Equal(t, map[string]any{
		"guild_id":   "111",
		"channel_id": "222",
		"self_mute":  true,
		"self_deaf":  true,
	}, m["d"])
}

func TestVoiceLeave(t *testing.T) {
	m := encodeMap(t, VoiceLeave("111"))
	d := m["d"].(map[string]any)
	assert.Equal(t, "111", d["guild_id"])
	assert.Contains(t, d, "channel_id")
	assert.Nil(t, d["channel_id"])
}

func TestPresenceUpdateStreaming(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	cfg := PresenceConfig{
		Status:       StatusIdle,
		ActivityName: "X",
		ActivityType: Activity(ActivityStreaming),
		StreamURL:    "https://example.com/u",
	}

	f, ok := PresenceUpdate(cfg, now)
	require.True(t, ok)

	m := encodeMap(t, f)
	assert.EqualValues(t, 3, m["op"])
	d := m["d"].(map[string]any)
	assert.EqualValues(t, 1700000000123, d["since"])
	assert.Equal(t, "idle", d["status"])
	assert.Equal(t, false, d["afk"])

	activities := d["activities"].([]any)
	require.Len(t, activities, 1)
	assert.Equal(t, map[string]any{
		"name": "X",
		"type": float64(1),
		"url":  "https://example.com/u",
	}, activities[0])
}

func TestPresenceUpdateStreamingDefaultURL(t *testing.T) {
	f, ok := PresenceUpdate(PresenceConfig{ActivityName: "X", ActivityType: Activity(ActivityStreaming)}, time.Now())
	require.True(t, ok)
	data := f.D.(PresenceData)
	assert.Equal(t, DefaultStreamURL, data.Activities[0].URL)
	assert.Equal(t, StatusOnline, data.Status)
}

func TestPresenceUpdateOmitsURLForOtherTypes(t *testing.T) {
	cfg := PresenceConfig{
		Status:       StatusOnline,
		ActivityName: "tunes",
		ActivityType: Activity(ActivityListening),
		StreamURL:    "https://example.com/ignored",
	}
	f, ok := PresenceUpdate(cfg, time.Now())
	require.True(t, ok)

	m := encodeMap(t, f)
	activity := m["d"].(map[string]any)["activities"].([]any)[0].(map[string]any)
	assert.NotContains(t, activity, "url")
	assert.EqualValues(t, 2, activity["type"])
}

func TestPresenceUpdateWithoutActivity(t *testing.T) {
	_, ok := PresenceUpdate(PresenceConfig{Status: StatusDND}, time.Now())
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" DND ")
	require.NoError(t, err)
	assert.Equal(t, StatusDND, s)

	s, err = ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusOnline, s)

	_, err = ParseStatus("away")
	assert.ErrorIs(t, err, ErrInvalidPresence)
}

func TestParseActivityType(t *testing.T) {
	tests := []struct {
		in   string
		want ActivityType
	}{
		{"0", ActivityPlaying},
		{"1", ActivityStreaming},
		{"listening", ActivityListening},
		{"Watching", ActivityWatching},
	}
	for _, tt := range tests {
		got, err := ParseActivityType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseActivityType("4")
	assert.ErrorIs(t, err, ErrInvalidPresence)
	_, err = ParseActivityType("dancing")
	assert.ErrorIs(t, err, ErrInvalidPresence)
}

func TestPresenceConfigValidate(t *testing.T) {
	assert.NoError(t, PresenceConfig{Status: StatusIdle}.Validate())
	assert.NoError(t, PresenceConfig{ActivityName: "x", ActivityType: Activity(ActivityPlaying)}.Validate())
	assert.ErrorIs(t, PresenceConfig{Status: "away"}.Validate(), ErrInvalidPresence)
	assert.ErrorIs(t, PresenceConfig{ActivityType: Activity(ActivityPlaying)}.Validate(), ErrInvalidPresence)
	assert.ErrorIs(t, PresenceConfig{ActivityName: "x", ActivityType: Activity(9)}.Validate(), ErrInvalidPresence)
}

func TestVoiceTargetValidate(t *testing.T) {
	assert.NoError(t, VoiceTarget{GuildID: "123456789012345678", ChannelID: "876543210987654321"}.Validate())
	assert.Error(t, VoiceTarget{GuildID: "", ChannelID: "1"}.Validate())
	assert.Error(t, VoiceTarget{GuildID: "1", ChannelID: "abc"}.Validate())
}

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "Hello", OpHello.String())
	assert.Equal(t, "VoiceStateUpdate", OpVoiceStateUpdate.String())
	assert.Equal(t, "Unknown", Opcode(42).String())
}
