package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"satisfaction/internal/cli"
	"satisfaction/internal/config"
	"satisfaction/internal/ratings/google"
)

var sheetsAuthCmd = &cobra.Command{
	Use:   "sheets-auth",
	Short: "Authorize read access to Google Sheets and save the token",
	Long: `Run the OAuth installed-app flow for the sheets backend.

Reads the OAuth client from GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE,
listens on http://localhost:$OAUTH_REDIRECT_PORT/callback (add it to the
client's authorized redirect URIs) and writes the token to
GOOGLE_OAUTH_TOKEN_FILE (default token.json).

Example:
  GOOGLE_OAUTH_CLIENT_FILE=client.json satisfaction sheets-auth`,
	RunE: runSheetsAuth,
}

var sheetsAuthTimeout time.Duration

func init() {
	rootCmd.AddCommand(sheetsAuthCmd)
	sheetsAuthCmd.Flags().DurationVar(&sheetsAuthTimeout, "timeout", 5*time.Minute, "how long to wait for the browser")
}

func runSheetsAuth(cmd *cobra.Command, args []string) error {
	// Only the OAuth settings matter here, so the full Validate is skipped.
	cfg := config.Load()
	logger := cli.SetupLogger(cfg)

	redirect := "http://localhost:" + cfg.OAuthRedirectPort + "/callback"
	oauthCfg, err := google.OAuthConfig{
		ClientJSON: cfg.GoogleOAuthClientJSON,
		ClientFile: cfg.GoogleOAuthClientFile,
	}.Config(redirect)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("localhost", cfg.OAuthRedirectPort))
	if err != nil {
		return fmt.Errorf("listen for OAuth callback: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, sheetsAuthTimeout)
	defer cancel()

	tok, err := google.Authorize(ctx, oauthCfg, ln, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	out := cfg.GoogleOAuthTokenFile
	if out == "" {
		out = "token.json"
	}
	if err := google.SaveToken(out, tok); err != nil {
		return err
	}
	logger.Info("Saved OAuth token", "path", out)
	return nil
}
