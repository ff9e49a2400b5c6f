package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-forge/internal/config"
	"github.com/jonathan/resume-forge/internal/server"
)

var (
	issueTokenUserID string
	issueTokenEmail  string
)

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Issue a bearer token for local development",
	Long:  "Sign a token with JWT_SECRET for the given user so the API can be exercised without an identity provider.",
	RunE:  runIssueToken,
}

func init() {
	issueTokenCmd.Flags().StringVar(&issueTokenUserID, "user-id", "", "User ID to put in the token subject (required)")
	issueTokenCmd.Flags().StringVar(&issueTokenEmail, "email", "", "Email claim")

	_ = issueTokenCmd.MarkFlagRequired("user-id")

	rootCmd.AddCommand(issueTokenCmd)
}

func runIssueToken(cmd *cobra.Command, _ []string) error {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(issueTokenUserID, issueTokenEmail)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
