// Package draftstore provides the durable backends behind the wizard's
// draft snapshot: a JetStream key-value bucket, a locked JSON file, and
// Redis.
package draftstore

import (
	"context"
	"errors"

	"github.com/gosimple/slug"

	"github.com/recruitdash/recruitdash/internal/logger"
	"github.com/recruitdash/recruitdash/internal/wizard"
)

// KeyBase is the storage key of the job wizard draft before profile
// scoping.
const KeyBase = "job-wizard-draft"

// ErrNoPrevious is returned by Previous when only one revision exists.
var ErrNoPrevious = errors.New("no previous draft revision")

// Backend stores one profile's draft snapshot.
type Backend interface {
	wizard.Persister
	// Previous returns the revision saved before the current one.
	Previous(ctx context.Context) ([]byte, error)
	// Delete removes every stored revision.
	Delete(ctx context.Context) error
	// Name identifies the backend in logs and `doctor` output.
	Name() string
	Close() error
}

var log = logger.Named("draftstore")

// ProfileSlug turns a profile name into the key-safe form used by every
// backend.
func ProfileSlug(profile string) string {
	if s := slug.Make(profile); s != "" {
		return s
	}
	return "default"
}

// Key is the profile-scoped storage key.
func Key(profile string) string {
	return KeyBase + "." + ProfileSlug(profile)
}
