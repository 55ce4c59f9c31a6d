package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
   ┌─┐┬ ┬┌─┐┌─┐┌┬┐┬  ┬┌┐┌┌─┐
   │ ┬├─┤│ │└─┐ │ │  ││││├┤
   └─┘┴ ┴└─┘└─┘ ┴ ┴─┘┴┘└┘└─┘
`

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)

	rootCmd := &cobra.Command{
		Use:   "ghostline",
		Short: "Keep an account parked in a voice channel",
		Long: `ghostline holds one gateway session open for an account and keeps it
sitting muted and deafened in a voice channel.

When the connection drops it waits, checks that the network is back,
and connects again with a fresh session, for as long as it runs.

Run without arguments for the interactive menu.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.menu(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file path (default: user config dir)")
	flags.StringVar(&a.configS3, "config-s3", "", "Load and save config from s3://bucket/key instead of a file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config, warn)")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address while connected")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		joinCmd(a),
		tokenCmd(a),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		a.printError(err)
		os.Exit(1)
	}
}

// printBanner prints the ghostline ASCII art banner.
func (a *app) printBanner() {
	a.clearScreen()
	if a.console != nil {
		a.console.Accent(banner)
		a.console.Print("\n")
		return
	}
	fmt.Fprint(a.out, banner)
}
