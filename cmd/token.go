package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/manthansachdev12/Hackwave-pragyan/internal/auth"
)

func newTokenCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "token <identity> <room>",
		Short: "Print a room access token signed with the configured API key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if err := cfg.ValidateIssuer(); err != nil {
				return err
			}

			issuer, err := auth.NewTokenIssuer(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, cfg.TokenTTL)
			if err != nil {
				return err
			}

			token, expiresAt, err := issuer.Issue(args[0], args[1])
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}

			out := cmd.OutOrStdout()
			if !asJSON {
				fmt.Fprintln(out, token)
				return nil
			}
			return json.NewEncoder(out).Encode(map[string]string{
				"token":      token,
				"server_url": cfg.LiveKitURL,
				"expires_at": expiresAt.Format(time.RFC3339),
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print token, server URL and expiry as JSON")

	return cmd
}
