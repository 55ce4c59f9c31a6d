package main

import (
	"github.com/spf13/cobra"
)

func tokenCmd(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Store the account token",
		Long: `Prompt for the account token and save it to the config.

Input is hidden when reading from a terminal. With --check the token is
validated against the REST API before it is saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.updateToken(cmd.Context(), check)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Validate the token before saving")
	return cmd
}
