// Package ipblock persists the controller-imposed login lockout across
// process restarts. The controller blocks the calling address after failed
// logins and reports the lockout duration; remembering the expiry locally
// lets a client fail fast instead of burning another attempt.
package ipblock

import (
	"errors"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultFileName is the well-known name of the block record when no
// explicit path is configured.
const DefaultFileName = ".wapploxx-ip-block"

// Store keeps a single blocked-until instant in a file. The record holds the
// expiry as Unix epoch seconds in decimal. Last write wins; there is no file
// locking, so the store assumes a single process per path.
type Store struct {
	path string
	now  func() time.Time
}

// New returns a store backed by the file at path. An empty path falls back
// to DefaultFileName in the working directory.
func New(path string) *Store {
	if strings.TrimSpace(path) == "" {
		path = DefaultFileName
	}
	return &Store{path: path, now: time.Now}
}

// Path returns the location of the persisted record.
func (s *Store) Path() string {
	return s.path
}

// Save records a lockout of d from now, overwriting any prior record.
// Negative durations are treated as zero.
func (s *Store) Save(d time.Duration) error {
	if d < 0 {
		d = 0
	}
	expiry := s.now().Add(d).Unix()
	return os.WriteFile(s.path, []byte(strconv.FormatInt(expiry, 10)), 0o600)
}

// Remaining returns the time left on the recorded lockout, rounded up to
// whole seconds, never negative. A missing record yields zero. An unreadable
// or unparsable record yields zero but is left in place so it can be
// inspected; only expiry or Clear removes it. An expired record is removed
// as a side effect of the read.
func (s *Store) Remaining() time.Duration {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0
	}
	expiry, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0
	}
	remaining := expiry - float64(s.now().Unix())
	seconds := int64(math.Ceil(math.Max(remaining, 0)))
	if seconds <= 0 {
		s.Clear()
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// Clear removes the persisted record if present. Clearing a missing record
// is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// SetNow overrides the time source. Tests use this to exercise expiry
// without sleeping.
func (s *Store) SetNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}
