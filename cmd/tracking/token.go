package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dropship-tracking/internal/mw"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an operator token for the ops API",
	Long:  `Sign a bearer token with JWT_SECRET for the /api routes of serve.`,
	RunE:  mintToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "ops", "Operator name stored in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
}

func mintToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}

	token, err := mw.IssueToken(cfg.JWTSecret, tokenSubject, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
