// Package secrets stores the ATS API key in the OS keychain.
package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/gosimple/slug"
	"github.com/zalando/go-keyring"
)

// KeyringService groups recruitdash entries in the OS keychain.
const KeyringService = "recruitdash"

// EnvAPIKey overrides the keychain when set.
const EnvAPIKey = "RECRUITDASH_ATS_API_KEY"

// ErrNoAPIKey is returned when neither the environment nor the keychain
// has a key for the profile.
var ErrNoAPIKey = errors.New("ATS API key not found (run `recruitdash auth set-key` or set " + EnvAPIKey + ")")

// Account returns the keychain account for a profile.
func Account(profile string) string {
	p := slug.Make(profile)
	if p == "" {
		p = "default"
	}
	return "recruitdash:ats:" + p
}

// APIKey returns the key for profile, preferring the environment.
func APIKey(profile string) (string, error) {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key, nil
	}
	key, err := keyring.Get(KeyringService, Account(profile))
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && strings.TrimSpace(key) == "") {
		return "", ErrNoAPIKey
	}
	if err != nil {
		return "", err
	}
	return key, nil
}

// SetAPIKey stores key for profile.
func SetAPIKey(profile, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, Account(profile), key)
}

// DeleteAPIKey removes the stored key. Removing a missing key is not an
// error.
func DeleteAPIKey(profile string) error {
	err := keyring.Delete(KeyringService, Account(profile))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
