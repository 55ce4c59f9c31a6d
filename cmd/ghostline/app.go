package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/term"

	"github.com/ghostline-dev/ghostline/internal/config"
	"github.com/ghostline-dev/ghostline/internal/console"
	"github.com/ghostline-dev/ghostline/internal/errors"
	"github.com/ghostline-dev/ghostline/internal/telemetry"
	"github.com/ghostline-dev/ghostline/pkg/discord"
	"github.com/ghostline-dev/ghostline/pkg/gateway"
)

// validator checks credentials and voice targets before a session starts.
type validator interface {
	ValidateToken(ctx context.Context, token string) (bool, error)
	ResolveVoiceChannel(ctx context.Context, token, guildID, channelID string) (discord.Channel, error)
}

// app carries the state shared by every command.
type app struct {
	// Global flags
	configPath  string
	configS3    string
	logLevel    string
	metricsAddr string
	noColor     bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	console *console.Console
	logger  *slog.Logger
	prompt  *prompter
	store   config.Store
	cfg     *config.Config
	rest    validator

	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	health   *telemetry.Health

	// runSupervisor runs the reconnect loop; replaced in tests.
	runSupervisor func(ctx context.Context, sup *gateway.Supervisor) error
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		in:     in,
		out:    out,
		errOut: errOut,
		runSupervisor: func(ctx context.Context, sup *gateway.Supervisor) error {
			return sup.Run(ctx)
		},
	}
}

// setup builds the console, loads the config and wires the logger.
func (a *app) setup(ctx context.Context) error {
	if a.noColor {
		errors.DisableColors()
	}
	a.console = console.New(a.out, a.noColor)
	a.prompt = newPrompter(a.in, a.console)

	if a.store == nil {
		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		a.store = store
	}

	cfg, err := a.store.Load(ctx)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		a.console.Warning("Config load error, resetting config")
		a.console.Muted(compact(err) + "\n")
		cfg = config.New()
	}
	a.cfg = cfg

	level := a.logLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	a.logger = console.NewLogger(a.errOut, console.ParseLevel(level), cfg.Logging.Format)
	slog.SetDefault(a.logger)

	if a.rest == nil {
		a.rest = discord.New()
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = telemetry.NewMetrics(telemetry.WithRegistry(a.registry))
	a.health = &telemetry.Health{}

	a.logger.Debug("config loaded", "location", a.store.Location())
	return nil
}

func (a *app) openStore(ctx context.Context) (config.Store, error) {
	if a.configS3 != "" {
		return config.NewS3StoreFromURI(ctx, a.configS3)
	}
	path := a.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.NewFileStore(path), nil
}

// save persists the config, reporting but not failing on errors.
func (a *app) save(ctx context.Context) {
	if err := a.store.Save(ctx, a.cfg); err != nil {
		a.console.Warning("Could not save config: %s", compact(err))
		a.logger.Warn("config save failed", "location", a.store.Location(), "error", err)
	}
}

// menu is the interactive main menu.
func (a *app) menu(ctx context.Context) error {
	for {
		a.printBanner()
		a.console.Print("Main Menu:\n")
		a.console.Print(" 1 - Join Voice Channel\n")
		a.console.Print(" 2 - Update Token\n")
		a.console.Print(" 3 - Exit\n")

		choice, err := a.prompt.Ask("Choose", "")
		if err != nil {
			if errors.HasCode(err, "G401") {
				return nil
			}
			return err
		}

		switch choice {
		case "1":
			err = a.join(ctx, joinOptions{askToken: true})
		case "2":
			err = a.updateToken(ctx, false)
		case "3":
			a.console.Success("Goodbye!")
			return nil
		default:
			a.console.Error("Invalid selection")
			_, err = a.prompt.Ask("Enter to continue...", "")
		}

		if err != nil {
			if errors.HasCode(err, "G401") {
				return nil
			}
			a.printError(err)
			if _, err := a.prompt.Ask("Enter to continue...", ""); err != nil {
				return nil
			}
		}
	}
}

// updateToken asks for a new token and stores it.
func (a *app) updateToken(ctx context.Context, check bool) error {
	a.printBanner()
	token, err := a.prompt.AskSecret("Enter Discord token")
	if err != nil {
		return err
	}
	if token == "" {
		a.console.Error("No token provided")
		return nil
	}

	if check {
		a.console.Info("Validating token...")
		ok, err := a.rest.ValidateToken(ctx, token)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("G300").WithSuggestion("Copy the token again and retry")
		}
	}

	a.cfg.Token = token
	a.save(ctx)
	a.console.Success("Token saved to %s", a.store.Location())
	if a.cfg.TokenFromEnv() {
		a.console.Warning("%s is set and overrides the saved token", config.EnvToken)
	}
	return nil
}

// clearScreen clears the terminal when writing to one.
func (a *app) clearScreen() {
	if f, ok := a.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		io.WriteString(f, "\033[H\033[2J")
	}
}

// printError prints err in the coded format when possible.
func (a *app) printError(err error) {
	errors.FprintError(a.errOut, err)
}

// compact renders err on one line.
func compact(err error) string {
	if e := errors.FromError(err, ""); e != nil && e.Code != "" {
		return e.FormatCompact()
	}
	return err.Error()
}
