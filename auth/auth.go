// Package auth builds authorized HTTP clients for the Drive API.
//
// Two modes are supported. In ModeDefault, application default credentials are used. In ModeOAuth, an
// installed-app OAuth client is read from a credentials file and the user token is kept in the system
// keyring. The consent flow runs only when no token is stored.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// Auth modes.
const (
	ModeOAuth   = "oauth"
	ModeDefault = "default"
)

const (
	DefaultKeyringService = "drivetree"
	DefaultKeyringUser    = "default"
)

// Config holds authentication configuration.
type Config struct {
	Mode            string `yaml:"mode"`
	CredentialsFile string `yaml:"credentials_file"`
	KeyringService  string `yaml:"keyring_service"`
	KeyringUser     string `yaml:"keyring_user"`
}

// Validate validates the auth configuration. An empty mode means ModeDefault.
func (c *Config) Validate() error {
	if c.Mode == "" {
		c.Mode = ModeDefault
	}
	if c.KeyringService == "" {
		c.KeyringService = DefaultKeyringService
	}
	if c.KeyringUser == "" {
		c.KeyringUser = DefaultKeyringUser
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(ModeOAuth, ModeDefault)),
	); err != nil {
		return err
	}
	if c.Mode == ModeOAuth && c.CredentialsFile == "" {
		return fmt.Errorf("auth: mode is %q but credentials_file is empty", ModeOAuth)
	}
	return nil
}

// ConsentFunc shows the consent URL to the user and returns the authorization code they obtained.
type ConsentFunc func(ctx context.Context, url string) (code string, err error)

// NewClient returns an HTTP client authorized for the full Drive scope.
func NewClient(ctx context.Context, cfg Config, consent ConsentFunc) (*http.Client, error) {
	if cfg.Mode != ModeOAuth {
		client, err := google.DefaultClient(ctx, drive.DriveScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w", err)
		}
		return client, nil
	}

	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", cfg.CredentialsFile, err)
	}
	conf, err := google.ConfigFromJSON(data, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", cfg.CredentialsFile, err)
	}
	store := NewKeyringStore(cfg.KeyringService, cfg.KeyringUser)
	tok, err := Token(ctx, conf, store, consent)
	if err != nil {
		return nil, err
	}
	src := &persistingSource{
		base:  conf.TokenSource(ctx, tok),
		store: store,
		last:  tok.AccessToken,
	}
	return oauth2.NewClient(ctx, src), nil
}

// Token returns the stored token, or runs the consent flow and stores the token it yields.
func Token(ctx context.Context, conf *oauth2.Config, store TokenStore, consent ConsentFunc) (*oauth2.Token, error) {
	tok, found, err := store.Load()
	if err != nil {
		return nil, err
	}
	if found {
		return tok, nil
	}
	if consent == nil {
		return nil, fmt.Errorf("no stored token and no way to ask for consent")
	}

	url := conf.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	code, err := consent(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain authorization code: %w", err)
	}
	tok, err = conf.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if err := store.Save(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// persistingSource stores every refreshed token.
type persistingSource struct {
	base  oauth2.TokenSource
	store TokenStore
	last  string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		if err := s.store.Save(tok); err != nil {
			return nil, err
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
