// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2/clientcredentials"
)

type tokenOptions struct {
	clientID     string
	clientSecret string
	tokenURL     string
	issuerURL    string
	scopes       []string
	export       bool
}

type tokenResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Expiry      time.Time `json:"expiry,omitempty"`
}

var tokenOpts tokenOptions

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Get an access token using the client credentials flow",
	Long: `Get an access token using the client credentials flow. The token can be
passed to the other commands with --token or $WORKSPACE_SERVICE_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		endpoint := tokenOpts.tokenURL
		if endpoint == "" {
			if tokenOpts.issuerURL == "" {
				return errors.New("either --token-url or --issuer-url must be provided")
			}

			provider, err := oidc.NewProvider(ctx, tokenOpts.issuerURL)
			if err != nil {
				return fmt.Errorf("failed to discover issuer %s: %w", tokenOpts.issuerURL, err)
			}
			endpoint = provider.Endpoint().TokenURL
		}

		config := &clientcredentials.Config{
			ClientID:     tokenOpts.clientID,
			ClientSecret: tokenOpts.clientSecret,
			TokenURL:     endpoint,
			Scopes:       tokenOpts.scopes,
		}

		token, err := config.Token(ctx)
		if err != nil {
			return fmt.Errorf("failed to get token: %w", err)
		}

		if tokenOpts.export {
			fmt.Fprintf(cmd.OutOrStdout(), "export WORKSPACE_SERVICE_TOKEN=%s\n", token.AccessToken)
			return nil
		}

		if output != "json" {
			fmt.Fprintln(cmd.OutOrStdout(), token.AccessToken)
			return nil
		}

		result := tokenResult{AccessToken: token.AccessToken, TokenType: token.Type(), Expiry: token.Expiry}

		return render(cmd.OutOrStdout(), result, func(*tabwriter.Writer) {})
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenOpts.clientID, "client-id", "", "Client ID")
	tokenCmd.Flags().StringVar(&tokenOpts.clientSecret, "client-secret", "", "Client Secret")
	tokenCmd.Flags().StringVar(&tokenOpts.tokenURL, "token-url", "", "Token URL")
	tokenCmd.Flags().StringVar(&tokenOpts.issuerURL, "issuer-url", "", "Issuer URL (for OIDC discovery)")
	tokenCmd.Flags().StringSliceVar(&tokenOpts.scopes, "scopes", []string{}, "Scopes (comma-separated)")
	tokenCmd.Flags().BoolVar(&tokenOpts.export, "export", false, "Print a shell export line for WORKSPACE_SERVICE_TOKEN")

	_ = tokenCmd.MarkFlagRequired("client-id")
	_ = tokenCmd.MarkFlagRequired("client-secret")
}
