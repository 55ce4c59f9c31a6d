// Package discord validates credentials and voice targets against the REST
// API before a gateway session is attempted.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ghostline-dev/ghostline/internal/errors"
	"github.com/ghostline-dev/ghostline/pkg/protocol"
)

// REST defaults.
const (
	DefaultBaseURL   = "https://discord.com/api/v9"
	DefaultUserAgent = "Mozilla/5.0"
	DefaultTimeout   = 10 * time.Second
)

// ChannelTypeVoice is the channel type of a guild voice channel.
const ChannelTypeVoice = 2

// Channel is the subset of a guild channel the validator reads.
type Channel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    int    `json:"type"`
	GuildID string `json:"guild_id,omitempty"`
}

// Client talks to the REST API.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient replaces the HTTP client. Its Timeout bounds every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs an authorized GET and returns the response for the caller to
// close.
func (c *Client) get(ctx context.Context, token, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("User-Agent", c.userAgent)
	return c.client.Do(req)
}

// ValidateToken reports whether token is accepted by the API. A non-200
// answer is a definite "no"; a transport error is returned as G305.
func (c *Client) ValidateToken(ctx context.Context, token string) (bool, error) {
	_, err := c.CurrentUser(ctx, token)
	if err == nil {
		return true, nil
	}
	if errors.HasCode(err, "G300") {
		return false, nil
	}
	return false, err
}

// CurrentUser returns the account that owns token.
func (c *Client) CurrentUser(ctx context.Context, token string) (protocol.User, error) {
	resp, err := c.get(ctx, token, "/users/@me")
	if err != nil {
		return protocol.User{}, errors.New("G305").
			Wrap(err).
			WithSuggestion("Check your internet connection")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return protocol.User{}, errors.New("G300").
			WithDetail(fmt.Sprintf("The API answered %d for the stored token.", resp.StatusCode)).
			WithSuggestion("Update the token from the main menu")
	}

	var u protocol.User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return protocol.User{}, errors.New("G305").WithDetail("Invalid user payload: " + err.Error())
	}
	return u, nil
}

// ResolveVoiceChannel looks channelID up in guildID and checks that it is a
// voice channel.
func (c *Client) ResolveVoiceChannel(ctx context.Context, token, guildID, channelID string) (Channel, error) {
	resp, err := c.get(ctx, token, "/guilds/"+url.PathEscape(guildID)+"/channels")
	if err != nil {
		return Channel{}, errors.New("G305").
			Wrap(err).
			WithSuggestion("Check your internet connection")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return Channel{}, errors.New("G301").
			WithDetail(fmt.Sprintf("Listing channels of guild %s returned %d.", guildID, resp.StatusCode)).
			WithSuggestion("Check the guild ID and that the account is a member")
	}

	var channels []Channel
	if err := json.NewDecoder(resp.Body).Decode(&channels); err != nil {
		return Channel{}, errors.New("G305").WithDetail("Invalid channel list: " + err.Error())
	}

	for _, ch := range channels {
		if ch.ID != channelID {
			continue
		}
		if ch.Type != ChannelTypeVoice {
			return Channel{}, errors.New("G301").
				WithDetail(fmt.Sprintf("Channel %s (%s) is not a voice channel.", ch.ID, ch.Name))
		}
		ch.GuildID = guildID
		return ch, nil
	}

	return Channel{}, errors.New("G301").
		WithDetail(fmt.Sprintf("Channel %s was not found in guild %s.", channelID, guildID)).
		WithSuggestion("Copy the channel ID again with developer mode enabled")
}
