// Package keystore persists password-protected bundles as one JSON file per
// name and gates unlock attempts per name.
package keystore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"dpki-lite/go-core/internal/crypto"
	"dpki-lite/go-core/internal/identity"
	"dpki-lite/go-core/internal/metrics"
	"dpki-lite/go-core/internal/platform/ratelimiter"
	"dpki-lite/go-core/internal/securestore"
	"dpki-lite/go-core/internal/seed"
)

var (
	ErrInvalidName     = errors.New("invalid keystore entry name")
	ErrNotFound        = errors.New("keystore entry not found")
	ErrExists          = errors.New("keystore entry already exists")
	ErrUnlockThrottled = errors.New("too many unlock attempts")
)

const fileExt = ".bundle.json"

var nameRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// Entry is the public part of a stored bundle.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Hint string `json:"hint" yaml:"hint"`
}

type Store struct {
	mu      sync.Mutex
	dir     string
	hier    *seed.Hierarchy
	limiter *ratelimiter.MapLimiter
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Store)

// WithLimiter throttles UnlockSeed/UnlockKeypair per entry name. A nil
// limiter disables throttling.
func WithLimiter(l *ratelimiter.MapLimiter) Option {
	return func(s *Store) { s.limiter = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open prepares dir (created 0700 if missing) as a keystore.
func Open(dir string, h *seed.Hierarchy, opts ...Option) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("keystore: directory is required")
	}
	if h == nil {
		h = seed.NewHierarchy(nil)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, err
	}
	if err := os.Chmod(dir, dirPerm); err != nil {
		return nil, err
	}
	s := &Store{
		dir:     dir,
		hier:    h,
		now:     time.Now,
		logger:  h.Suite().Logger(),
		metrics: h.Suite().Metrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) Hierarchy() *seed.Hierarchy { return s.hier }

func (s *Store) path(name string) (string, error) {
	if !nameRE.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name+fileExt), nil
}

// Put stores b under name. Existing entries are never overwritten; Delete
// first.
func (s *Store) Put(name string, b securestore.Bundle) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if !securestore.IsKnownType(b.Type) {
		return fmt.Errorf("%w: %q", securestore.ErrUnknownBundleType, b.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, name)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := writeJSON(path, b); err != nil {
		return err
	}
	s.logger.Debug("keystore entry written", "name", name, "type", b.Type)
	return nil
}

func (s *Store) Get(name string) (securestore.Bundle, error) {
	path, err := s.path(name)
	if err != nil {
		return securestore.Bundle{}, err
	}
	s.mu.Lock()
	raw, err := readFile(path)
	s.mu.Unlock()
	if err != nil {
		return securestore.Bundle{}, err
	}
	if raw == nil {
		return securestore.Bundle{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	b, err := securestore.ParseBundle(raw)
	if err != nil {
		return securestore.Bundle{}, fmt.Errorf("keystore entry %s: %w", name, err)
	}
	return b, nil
}

// List returns all readable entries sorted by name. Files that do not parse
// as bundles are skipped.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	dirents, err := os.ReadDir(s.dir)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		if de.IsDir() || !strings.HasSuffix(de.Name(), fileExt) {
			continue
		}
		name := strings.TrimSuffix(de.Name(), fileExt)
		b, err := s.Get(name)
		if err != nil {
			s.logger.Debug("keystore entry skipped", "name", name, "error", err)
			continue
		}
		out = append(out, Entry{Name: name, Type: b.Type, Hint: b.Hint})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return err
	}
	s.limiter.Reset(name)
	return nil
}

// UnlockSeed opens the seed bundle stored under name.
func (s *Store) UnlockSeed(name, passphrase string) (*seed.Seed, error) {
	var out *seed.Seed
	err := s.unlock(name, func(b securestore.Bundle) error {
		sd, err := s.hier.FromBundle(b, passphrase)
		out = sd
		return err
	})
	return out, err
}

// UnlockKeypair opens the keypair bundle stored under name.
func (s *Store) UnlockKeypair(name, passphrase string) (*identity.Keypair, error) {
	var out *identity.Keypair
	err := s.unlock(name, func(b securestore.Bundle) error {
		if b.Type != securestore.TypeKeypair {
			return fmt.Errorf("%w: %q is not a keypair", securestore.ErrUnknownBundleType, b.Type)
		}
		kp, err := s.hier.Suite().FromBundle(b, passphrase)
		out = kp
		return err
	})
	return out, err
}

// Rekey re-seals the entry under newPassphrase, keeping its type and hint.
// A wrong oldPassphrase counts against the unlock budget of name.
func (s *Store) Rekey(name, oldPassphrase, newPassphrase string) error {
	if strings.TrimSpace(newPassphrase) == "" {
		return fmt.Errorf("keystore: new passphrase is required")
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}
	codec := s.hier.Suite().Codec()
	var rekeyed securestore.Bundle
	err = s.unlock(name, func(b securestore.Bundle) error {
		data, err := codec.OpenBundle(b, oldPassphrase)
		if err != nil {
			return err
		}
		defer crypto.Wipe(data)
		rekeyed, err = codec.NewBundle(b.Type, b.Hint, data, newPassphrase)
		return err
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeJSON(path, rekeyed); err != nil {
		return err
	}
	s.logger.Debug("keystore entry rekeyed", "name", name)
	return nil
}

func (s *Store) unlock(name string, open func(securestore.Bundle) error) error {
	b, err := s.Get(name)
	if err != nil {
		return err
	}
	if !s.limiter.Allow(name, s.now()) {
		s.metrics.ObserveUnlock(metrics.ResultThrottled)
		return fmt.Errorf("%w: %s", ErrUnlockThrottled, name)
	}
	if err := open(b); err != nil {
		s.metrics.ObserveUnlock(metrics.ResultError)
		s.logger.Debug("keystore unlock failed", "name", name)
		return err
	}
	s.limiter.Reset(name)
	s.metrics.ObserveUnlock(metrics.ResultOK)
	return nil
}
