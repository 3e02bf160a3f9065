package draftstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetry = 50 * time.Millisecond

// File keeps the snapshot as JSON under the data directory. A lock file
// serializes writers from concurrent recruitdash processes; the previous
// revision is kept next to the current one.
type File struct {
	path string
	lock *flock.Flock
}

// NewFile stores the profile's draft under dataDir/drafts.
func NewFile(dataDir, profile string) (*File, error) {
	dir := filepath.Join(dataDir, "drafts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating drafts directory: %w", err)
	}
	path := filepath.Join(dir, Key(profile)+".json")
	return &File{path: path, lock: flock.New(path + ".lock")}, nil
}

func (f *File) Name() string { return "file" }

// Path is the location of the current revision.
func (f *File) Path() string { return f.path }

func (f *File) prevPath() string { return f.path + ".prev" }

func (f *File) Load(ctx context.Context) ([]byte, error) {
	unlock, err := f.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return readOptional(f.path)
}

func (f *File) Save(ctx context.Context, data []byte) error {
	unlock, err := f.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	// The new revision is on disk before the current one is rotated, so a
	// failed write leaves the saved draft untouched.
	tmp := f.path + ".tmp"
	if err := writeSynced(tmp, data); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}

	rotated := false
	if _, err := os.Stat(f.path); err == nil {
		if err := os.Rename(f.path, f.prevPath()); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rotate draft: %w", err)
		}
		rotated = true
	}
	if err := os.Rename(tmp, f.path); err != nil {
		if rotated {
			_ = os.Rename(f.prevPath(), f.path)
		}
		_ = os.Remove(tmp)
		return fmt.Errorf("replace draft: %w", err)
	}
	log.Debug("draft saved to %s", f.path)
	return nil
}

func writeSynced(path string, data []byte) error {
	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := fh.Write(data); err != nil {
		_ = fh.Close()
		_ = os.Remove(path)
		return err
	}
	if err := fh.Sync(); err != nil {
		_ = fh.Close()
		_ = os.Remove(path)
		return err
	}
	return fh.Close()
}

func (f *File) Previous(ctx context.Context) ([]byte, error) {
	unlock, err := f.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	data, err := readOptional(f.prevPath())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNoPrevious
	}
	return data, nil
}

func (f *File) Delete(ctx context.Context) error {
	unlock, err := f.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	for _, p := range []string{f.path, f.prevPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

func (f *File) Close() error { return nil }

func (f *File) acquire(ctx context.Context) (func(), error) {
	ok, err := f.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("lock draft file: %w", err)
	}
	if !ok {
		return nil, errors.New("lock draft file: not acquired")
	}
	return func() {
		if err := f.lock.Unlock(); err != nil {
			log.Warn("unlock draft file: %v", err)
		}
	}, nil
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
