// Package verification holds pending one-time email codes for the signup,
// login, password-reset and password-change flows.
//
// Each flow gets its own Store so that, for example, a pending signup and a
// pending password reset for the same address never overwrite each other.
package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/kusina-api/internal/domain"
)

const (
	// DefaultTTL is how long an issued code stays valid.
	DefaultTTL = 10 * time.Minute
	// DefaultSweepInterval is the cadence of the background expiry sweep.
	DefaultSweepInterval = 5 * time.Minute

	codeMin = 100000
	codeMax = 999999
)

// Verification failures. All wrap domain.ErrBadRequest so handlers answer 400.
var (
	ErrNotFound = fmt.Errorf("no pending verification code: %w", domain.ErrBadRequest)
	ErrExpired  = fmt.Errorf("verification code expired: %w", domain.ErrBadRequest)
	ErrMismatch = fmt.Errorf("verification code does not match: %w", domain.ErrBadRequest)
)

// Entry is one pending code and the context it unlocks.
type Entry[T any] struct {
	Code      string
	ExpiresAt time.Time
	Context   T
}

// CodeGenerator produces a fresh one-time code.
type CodeGenerator func() (string, error)

// Store is a time-bounded map from email address to a pending code.
// At most one entry exists per key; issuing again overwrites it.
type Store[T any] struct {
	name    string
	ttl     time.Duration
	now     func() time.Time
	newCode CodeGenerator

	mu      sync.Mutex
	entries map[string]Entry[T]
}

// Option configures a Store.
type Option func(*options)

type options struct {
	ttl     time.Duration
	now     func() time.Time
	newCode CodeGenerator
}

// WithClock replaces time.Now, letting tests move time forward.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithCodeGenerator overrides the random 6-digit generator.
func WithCodeGenerator(g CodeGenerator) Option {
	return func(o *options) { o.newCode = g }
}

// NewStore creates an empty store. name is used in logs only.
func NewStore[T any](name string, opts ...Option) *Store[T] {
	o := options{ttl: DefaultTTL, now: time.Now, newCode: GenerateCode}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		name:    name,
		ttl:     o.ttl,
		now:     o.now,
		newCode: o.newCode,
		entries: make(map[string]Entry[T]),
	}
}

// Name identifies the flow this store serves.
func (s *Store[T]) Name() string { return s.name }

// Issue stores a fresh code for key with the given context and returns the code.
func (s *Store[T]) Issue(key string, ctx T) (string, error) {
	code, err := s.newCode()
	if err != nil {
		return "", fmt.Errorf("generate %s code: %w", s.name, err)
	}
	s.mu.Lock()
	s.entries[key] = Entry[T]{Code: code, ExpiresAt: s.now().Add(s.ttl), Context: ctx}
	s.mu.Unlock()
	return code, nil
}

// Reissue replaces the code and expiry for key, keeping the stored context.
// The entry only has to exist; an expired but not yet swept entry can be refreshed.
func (s *Store[T]) Reissue(key string) (string, error) {
	code, err := s.newCode()
	if err != nil {
		return "", fmt.Errorf("generate %s code: %w", s.name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	e.Code = code
	e.ExpiresAt = s.now().Add(s.ttl)
	s.entries[key] = e
	return code, nil
}

// Peek returns the entry for key without checking expiry.
func (s *Store[T]) Peek(key string) (Entry[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok
}

// Consume validates code for key and, on success, removes the entry and
// returns its context. A mismatch leaves the entry in place so the user can retry.
func (s *Store[T]) Consume(key, code string) (T, error) {
	return s.verify(key, code, true)
}

// Check validates code for key like Consume but keeps the entry on success.
func (s *Store[T]) Check(key, code string) (T, error) {
	return s.verify(key, code, false)
}

func (s *Store[T]) verify(key, code string, consume bool) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return zero, ErrNotFound
	}
	if s.now().After(e.ExpiresAt) {
		delete(s.entries, key)
		return zero, ErrExpired
	}
	if e.Code != code {
		return zero, ErrMismatch
	}
	if consume {
		delete(s.entries, key)
	}
	return e.Context, nil
}

// Delete removes key if present.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// DeleteIf removes key only while its pending code is still code. It reports
// whether an entry was removed.
func (s *Store[T]) DeleteIf(key, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.Code != code {
		return false
	}
	delete(s.entries, key)
	return true
}

// Sweep removes every expired entry and reports how many were dropped.
func (s *Store[T]) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries {
		if now.After(e.ExpiresAt) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of entries, expired ones included.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// GenerateCode returns a uniformly random 6-digit code in [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}
