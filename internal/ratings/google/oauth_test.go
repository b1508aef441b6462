package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func clientJSON(tokenURL string) string {
	return fmt.Sprintf(`{"installed":{"client_id":"cid","client_secret":"secret","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":%q}}`, tokenURL)
}

// syncBuffer lets the test poll output written by another goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestOAuthConfig_HasToken(t *testing.T) {
	assert.False(t, OAuthConfig{ClientJSON: "{}"}.HasToken())
	assert.True(t, OAuthConfig{TokenFile: "token.json"}.HasToken())
	assert.True(t, OAuthConfig{TokenJSON: `{"access_token":"x"}`}.HasToken())
}

func TestOAuthConfig_Config(t *testing.T) {
	cfg, err := OAuthConfig{ClientJSON: clientJSON("https://oauth2.googleapis.com/token")}.Config("http://localhost:8085/callback")
	require.NoError(t, err)
	assert.Equal(t, "cid", cfg.ClientID)
	assert.Equal(t, "http://localhost:8085/callback", cfg.RedirectURL)
	assert.Contains(t, cfg.Scopes, "https://www.googleapis.com/auth/spreadsheets.readonly")

	_, err = OAuthConfig{}.Config("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing OAuth client")
}

func TestSaveAndReadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, SaveToken(path, &oauth2.Token{AccessToken: "test", TokenType: "Bearer"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err := OAuthConfig{TokenFile: path}.Token()
	require.NoError(t, err)
	assert.Equal(t, "test", tok.AccessToken)

	_, err = OAuthConfig{TokenJSON: "not json"}.Token()
	assert.Error(t, err)
}

type failingFile struct {
	bytes.Buffer
	writeErr error
	closeErr error
	closed   bool
}

func (f *failingFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.Buffer.Write(p)
}

func (f *failingFile) Close() error {
	f.closed = true
	return f.closeErr
}

func TestWriteToken_ReportsErrors(t *testing.T) {
	tok := &oauth2.Token{AccessToken: "test"}

	t.Run("close", func(t *testing.T) {
		errDisk := errors.New("disk quota exceeded")
		f := &failingFile{closeErr: errDisk}
		err := writeToken(f, tok)
		require.ErrorIs(t, err, errDisk)
		assert.Contains(t, err.Error(), "close token file")
		assert.Contains(t, f.String(), `"access_token":"test"`)
	})

	t.Run("write", func(t *testing.T) {
		errWrite := errors.New("no space left on device")
		f := &failingFile{writeErr: errWrite}
		err := writeToken(f, tok)
		require.ErrorIs(t, err, errWrite)
		assert.True(t, f.closed)
	})

	t.Run("ok", func(t *testing.T) {
		f := &failingFile{}
		require.NoError(t, writeToken(f, tok))
		assert.True(t, f.closed)
	})
}

func TestAuthorize(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "fresh", "token_type": "Bearer", "refresh_token": "r"})
	}))
	defer tokenSrv.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	redirect := "http://" + ln.Addr().String() + "/callback"

	cfg, err := OAuthConfig{ClientJSON: clientJSON(tokenSrv.URL)}.Config(redirect)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := &syncBuffer{}
	done := make(chan struct{})
	var tok *oauth2.Token
	var authErr error
	go func() {
		tok, authErr = Authorize(ctx, cfg, ln, out)
		close(done)
	}()

	// Wait for the consent URL, then play the browser.
	var state string
	require.Eventually(t, func() bool {
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		if len(lines) < 2 {
			return false
		}
		u, err := url.Parse(lines[len(lines)-1])
		if err != nil {
			return false
		}
		state = u.Query().Get("state")
		return state != ""
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(redirect + "?code=the-code&state=" + state)
	require.NoError(t, err)
	resp.Body.Close()

	<-done
	require.NoError(t, authErr)
	assert.Equal(t, "fresh", tok.AccessToken)
	assert.Equal(t, "r", tok.RefreshToken)
}

func TestAuthorize_StateMismatch(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	redirect := "http://" + ln.Addr().String() + "/callback"
	cfg, err := OAuthConfig{ClientJSON: clientJSON("http://127.0.0.1:1/token")}.Config(redirect)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		_, err := Authorize(ctx, cfg, ln, &bytes.Buffer{})
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(redirect + "?code=x&state=forged")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusBadRequest
	}, 2*time.Second, 10*time.Millisecond)

	err = <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}
