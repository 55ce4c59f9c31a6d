package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ghostline-dev/ghostline/internal/config"
	"github.com/ghostline-dev/ghostline/internal/errors"
	"github.com/ghostline-dev/ghostline/internal/telemetry"
	"github.com/ghostline-dev/ghostline/pkg/gateway"
	"github.com/ghostline-dev/ghostline/pkg/protocol"
)

// joinOptions holds the join flags. Empty fields are prompted for.
type joinOptions struct {
	guildID      string
	channelID    string
	status       string
	activityType string
	activityName string
	streamURL    string
	yes          bool

	// askToken prompts for a token when none is stored.
	askToken bool
}

// presenceFromFlags reports whether any presence flag was given.
func (o joinOptions) presenceFromFlags() bool {
	return o.status != "" || o.activityType != "" || o.activityName != "" || o.streamURL != ""
}

func joinCmd(a *app) *cobra.Command {
	var opts joinOptions

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a voice channel and stay connected",
		Long: `Join a voice channel and keep the session alive until interrupted.

The token and channel are checked over REST first. The guild and channel
default to the last ones joined. Presence comes from the flags, or from
the interactive setup when no presence flag is given.

Examples:
  ghostline join
  ghostline join --guild 81384788765712384 --channel 81384788765712385
  ghostline join --status idle --activity-type watching --activity-name "the logs"
  ghostline join --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.join(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.guildID, "guild", "", "Server (guild) ID")
	cmd.Flags().StringVar(&opts.channelID, "channel", "", "Voice channel ID")
	cmd.Flags().StringVar(&opts.status, "status", "", "Status: online, idle, dnd, invisible")
	cmd.Flags().StringVar(&opts.activityType, "activity-type", "", "Activity type: 0-3 or playing, streaming, listening, watching")
	cmd.Flags().StringVar(&opts.activityName, "activity-name", "", "Activity name")
	cmd.Flags().StringVar(&opts.streamURL, "stream-url", "", "Stream URL for the streaming activity")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Use the last channel and saved presence without prompting")

	return cmd
}

// join validates the target, sets up presence and runs the reconnect loop
// until the process is interrupted.
func (a *app) join(ctx context.Context, opts joinOptions) error {
	token := a.cfg.EffectiveToken()
	if token == "" && opts.askToken {
		if err := a.updateToken(ctx, false); err != nil {
			return err
		}
		token = a.cfg.EffectiveToken()
	}
	if token == "" {
		return errors.New("G304").WithSuggestion("Run 'ghostline token' to store one, or set " + config.EnvToken)
	}

	a.printBanner()
	target, err := a.resolveTarget(opts)
	if err != nil {
		return err
	}

	a.console.Info("Validating token and channel...")
	ok, err := a.rest.ValidateToken(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("G300").WithSuggestion("Run 'ghostline token' to replace it")
	}
	channel, err := a.rest.ResolveVoiceChannel(ctx, token, target.GuildID, target.ChannelID)
	if err != nil {
		return err
	}
	a.logger.Debug("voice channel resolved", "channel", channel.Name, "id", channel.ID)

	a.cfg.LastGuildID = target.GuildID
	a.cfg.LastChannelID = target.ChannelID
	a.save(ctx)

	presence, err := a.resolvePresence(opts)
	if err != nil {
		return err
	}
	a.cfg.Presence = &presence
	a.save(ctx)

	return a.stayConnected(ctx, gateway.RunConfig{
		Token:    token,
		Voice:    target,
		Presence: presence,
	})
}

// resolveTarget returns the guild and channel from flags, the last target
// or the prompt.
func (a *app) resolveTarget(opts joinOptions) (protocol.VoiceTarget, error) {
	target := protocol.VoiceTarget{GuildID: opts.guildID, ChannelID: opts.channelID}
	last := a.cfg.LastTarget()

	var err error
	if target.GuildID == "" {
		if opts.yes && last.GuildID != "" {
			target.GuildID = last.GuildID
		} else if target.GuildID, err = a.askID("Server ID", last.GuildID, opts.yes); err != nil {
			return target, err
		}
	}
	if target.ChannelID == "" {
		if opts.yes && last.ChannelID != "" {
			target.ChannelID = last.ChannelID
		} else if target.ChannelID, err = a.askID("Voice Channel ID", last.ChannelID, opts.yes); err != nil {
			return target, err
		}
	}

	if err := target.Validate(); err != nil {
		return target, errors.New("G301").Wrap(err)
	}
	return target, nil
}

func (a *app) askID(label, last string, noPrompt bool) (string, error) {
	if noPrompt {
		return "", errors.New("G401").WithDetail(label + " is required with --yes when none was saved")
	}
	id, err := a.prompt.Ask(label, last)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("G401").WithDetail(label + " is required")
	}
	return id, nil
}

// resolvePresence builds the presence from flags, the saved config, or the
// interactive setup.
func (a *app) resolvePresence(opts joinOptions) (protocol.PresenceConfig, error) {
	var (
		presence protocol.PresenceConfig
		err      error
	)

	switch {
	case opts.presenceFromFlags():
		presence, err = presenceFromFlags(opts)
	case opts.yes && a.cfg.Presence != nil:
		presence = *a.cfg.Presence
	case opts.yes:
		presence = protocol.PresenceConfig{Status: protocol.StatusOnline}
	default:
		presence, err = a.prompt.AskPresence()
	}
	if err != nil {
		return presence, err
	}

	if err := presence.Validate(); err != nil {
		return presence, errors.New("G303").Wrap(err)
	}
	return presence, nil
}

func presenceFromFlags(opts joinOptions) (protocol.PresenceConfig, error) {
	status, err := protocol.ParseStatus(opts.status)
	if err != nil {
		return protocol.PresenceConfig{}, errors.New("G303").Wrap(err)
	}
	presence := protocol.PresenceConfig{
		Status:       status,
		ActivityName: opts.activityName,
		StreamURL:    opts.streamURL,
	}
	if opts.activityType != "" || opts.activityName != "" {
		t := protocol.ActivityPlaying
		if opts.activityType != "" {
			if t, err = protocol.ParseActivityType(opts.activityType); err != nil {
				return presence, errors.New("G303").Wrap(err)
			}
		}
		presence.ActivityType = protocol.Activity(t)
		if t == protocol.ActivityStreaming && presence.StreamURL == "" {
			presence.StreamURL = protocol.DefaultStreamURL
		}
	}
	return presence, nil
}

// stayConnected runs the supervisor until SIGINT or SIGTERM.
func (a *app) stayConnected(ctx context.Context, cfg gateway.RunConfig) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.metricsAddr != "" {
		srv := telemetry.NewServer(a.metricsAddr, telemetry.NewRouter(a.registry, a.health), a.logger)
		addr, err := srv.Start()
		if err != nil {
			a.console.Warning("Metrics server disabled: %s", err)
		} else {
			a.console.Info("Serving metrics on http://%s/metrics", addr)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()
		}
	}

	sup := &gateway.Supervisor{
		Config:  cfg,
		URL:     a.cfg.Gateway.URL,
		Backoff: a.cfg.Backoff(),
		Prober: &gateway.HTTPProber{
			URL:     a.cfg.Gateway.ProbeURL,
			Timeout: a.cfg.ProbeTimeout(),
		},
		ProbeInterval: a.cfg.ProbeInterval(),
		Logger:        a.logger,
		Reporter:      a.console,
		Metrics:       a.metrics,
		Health:        a.health,
	}

	a.console.System("Press Ctrl+C to disconnect")
	if err := a.runSupervisor(ctx, sup); err != nil {
		return err
	}
	a.console.System("Terminated")
	return nil
}
