package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty_defaults", Config{}, false},
		{"default", Config{Mode: ModeDefault}, false},
		{"oauth", Config{Mode: ModeOAuth, CredentialsFile: "credentials.json"}, false},
		{"oauth_without_credentials", Config{Mode: ModeOAuth}, true},
		{"unknown_mode", Config{Mode: "magic"}, true},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if (err != nil) != c.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestConfig_ValidateFillsDefaults(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ModeDefault, cfg.Mode)
	assert.Equal(t, DefaultKeyringService, cfg.KeyringService)
	assert.Equal(t, DefaultKeyringUser, cfg.KeyringUser)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore("drivetree-test", "alice")

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)

	want := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, store.Save(want))

	got, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.Equal(t, want.RefreshToken, got.RefreshToken)
	assert.True(t, want.Expiry.Equal(got.Expiry))

	require.NoError(t, store.Delete())
	require.NoError(t, store.Delete())
	_, found, err = store.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

type memStore struct {
	tok   *oauth2.Token
	saved int
}

func (s *memStore) Load() (*oauth2.Token, bool, error) { return s.tok, s.tok != nil, nil }
func (s *memStore) Save(tok *oauth2.Token) error { s.tok, s.saved = tok, s.saved+1; return nil }
func (s *memStore) Delete() error { s.tok = nil; return nil }

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		assert.Contains(t, string(body), "code=the-code")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "fresh",
			"refresh_token": "refresh",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestToken_RunsConsentOnce(t *testing.T) {
	srv := newTokenServer(t)
	conf := &oauth2.Config{
		ClientID: "id",
		Endpoint: oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
	}
	store := &memStore{}
	asked := 0
	consent := func(ctx context.Context, url string) (string, error) {
		asked++
		assert.True(t, strings.HasPrefix(url, srv.URL+"/auth"))
		return " the-code\n", nil
	}

	tok, err := Token(context.Background(), conf, store, consent)
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)
	assert.Equal(t, 1, store.saved)

	tok, err = Token(context.Background(), conf, store, consent)
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)
	assert.Equal(t, 1, asked)
}

func TestToken_WithoutConsent(t *testing.T) {
	_, err := Token(context.Background(), &oauth2.Config{}, &memStore{}, nil)
	require.Error(t, err)
}
