package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"
)

// OAuthConfig points at an OAuth desktop client and the token saved for it.
// JSON fields win over file paths.
type OAuthConfig struct {
	ClientJSON string
	ClientFile string
	TokenJSON  string
	TokenFile  string
}

// HasToken reports whether a user token was configured.
func (c OAuthConfig) HasToken() bool {
	return strings.TrimSpace(c.TokenJSON) != "" || strings.TrimSpace(c.TokenFile) != ""
}

// Config parses the OAuth client with the read-only Sheets scope.
func (c OAuthConfig) Config(redirectURL string) (*oauth2.Config, error) {
	b, err := readInlineOrFile(c.ClientJSON, c.ClientFile, "OAuth client")
	if err != nil {
		return nil, err
	}
	cfg, err := goauth.ConfigFromJSON(b, gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	cfg.RedirectURL = redirectURL
	return cfg, nil
}

// Token reads the saved user token.
func (c OAuthConfig) Token() (*oauth2.Token, error) {
	b, err := readInlineOrFile(c.TokenJSON, c.TokenFile, "OAuth token")
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode OAuth token: %w", err)
	}
	return &tok, nil
}

// HTTPClient returns a client that refreshes the saved token as needed.
func (c OAuthConfig) HTTPClient(ctx context.Context) (*http.Client, error) {
	cfg, err := c.Config("")
	if err != nil {
		return nil, err
	}
	tok, err := c.Token()
	if err != nil {
		return nil, err
	}
	return cfg.Client(ctx, tok), nil
}

// SaveToken writes tok to path readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	return writeToken(f, tok)
}

// writeToken encodes tok and closes w. A failed close is reported since
// buffered data may not have reached disk.
func writeToken(w io.WriteCloser, tok *oauth2.Token) error {
	if err := json.NewEncoder(w).Encode(tok); err != nil {
		_ = w.Close()
		return fmt.Errorf("write token: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close token file: %w", err)
	}
	return nil
}

// Authorize runs the installed-app flow: it prints the consent URL to out,
// waits on a local callback listener for the code and exchanges it.
// cfg.RedirectURL must point at listener.
func Authorize(ctx context.Context, cfg *oauth2.Config, listener net.Listener, out io.Writer) (*oauth2.Token, error) {
	state, err := randomState()
	if err != nil {
		return nil, err
	}

	type result struct {
		code string
		err  error
	}
	resCh := make(chan result, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res result
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
			http.Error(w, "OAuth error: "+q.Get("error"), http.StatusBadRequest)
		case q.Get("state") != state:
			res.err = errors.New("authorization state mismatch")
			http.Error(w, "state mismatch", http.StatusBadRequest)
		default:
			res.code = q.Get("code")
			_, _ = fmt.Fprintln(w, "You may close this window and return to the terminal.")
		}
		select {
		case resCh <- res:
		default:
		}
	})
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(listener) }()
	defer srv.Close()

	_, _ = fmt.Fprintf(out, "Open this URL to authorize:\n%s\n", cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	select {
	case res := <-resCh:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := cfg.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("token exchange: %w", err)
		}
		return tok, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization aborted: %w", ctx.Err())
	}
}

func readInlineOrFile(inline, path, what string) ([]byte, error) {
	if s := strings.TrimSpace(inline); s != "" {
		return []byte(s), nil
	}
	if p := strings.TrimSpace(path); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s file: %w", what, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("missing %s", what)
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
