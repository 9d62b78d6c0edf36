package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

// TokenStore persists an OAuth token between runs.
type TokenStore interface {
	// Load returns the stored token. found is false if nothing is stored.
	Load() (tok *oauth2.Token, found bool, err error)
	Save(tok *oauth2.Token) error
	Delete() error
}

// KeyringStore is a TokenStore backed by the system keyring.
type KeyringStore struct {
	service string
	user    string
}

var _ TokenStore = KeyringStore{}

func NewKeyringStore(service, user string) KeyringStore {
	return KeyringStore{service: service, user: user}
}

func (s KeyringStore) Load() (*oauth2.Token, bool, error) {
	secret, err := keyring.Get(s.service, s.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read token from keyring: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(secret), &tok); err != nil {
		return nil, false, fmt.Errorf("failed to decode stored token: %w", err)
	}
	return &tok, true, nil
}

func (s KeyringStore) Save(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := keyring.Set(s.service, s.user, string(data)); err != nil {
		return fmt.Errorf("failed to write token to keyring: %w", err)
	}
	return nil
}

// Delete removes the stored token. Deleting a missing token is not an error.
func (s KeyringStore) Delete() error {
	err := keyring.Delete(s.service, s.user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}
