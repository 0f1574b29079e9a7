package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/apiconsole/internal/auth"
)

func newTokenCmd(opts *options) *cobra.Command {
	var (
		subject string
		scope   string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the readings API",
		Long: `Sign an HS256 access token with security.jwt.secret. Read-scoped tokens
may only GET; write-scoped tokens may also POST and PUT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Security.JWT.Secret == "" {
				return errors.New("security.jwt.secret is not set")
			}

			s := auth.Scope(scope)
			if !s.Valid() {
				return fmt.Errorf("unknown scope %q (supported: read, write)", scope)
			}
			if ttl == 0 {
				ttl = cfg.GetAccessTokenTTL()
			}

			token, err := auth.GenerateAccessToken(subject, s, cfg.Security.JWT.Secret, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "apiconsole", "Token subject")
	cmd.Flags().StringVar(&scope, "scope", string(auth.ScopeRead), "Token scope: read or write")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default security.jwt.access_token_ttl)")
	return cmd
}
