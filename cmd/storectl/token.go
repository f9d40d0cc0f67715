package main

import (
	"fmt"
	"time"

	"storefront/internal/service"

	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenRole    string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for collection writes",
	Long: `Token signs a JWT with JWT_SECRET. The API requires an admin token on
POST requests whenever JWT_SECRET is set.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "storectl", "token subject")
	tokenCmd.Flags().StringVar(&tokenRole, "role", service.RoleAdmin, "token role")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default JWT_ACCESS_EXPIRY minutes)")
}

func runToken(cmd *cobra.Command, args []string) error {
	ttl := tokenTTL
	if ttl <= 0 {
		ttl = time.Duration(cfg.JWT.AccessExpiry) * time.Minute
	}

	token, expiresAt, err := service.NewTokenService(cfg.JWT.Secret, ttl).Issue(tokenSubject, tokenRole)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
	return nil
}
