package otp

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"restaurant-ordering-api/clock"
	"restaurant-ordering-api/errs"
)

const (
	// DefaultTTL is how long an issued code stays verifiable
	DefaultTTL = 5 * time.Minute
	// DefaultSweepInterval bounds memory held by expired records
	DefaultSweepInterval = 60 * time.Second
)

type record struct {
	code      string
	expiresAt time.Time
}

// Store holds pending one-time codes keyed by phone number. One record
// per phone, last writer wins. All operations take the same lock so a
// verify never races an issue or sweep on the same key.
type Store struct {
	mu    sync.Mutex
	codes map[string]record

	clock      clock.Clock
	ttl        time.Duration
	sweepEvery time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

func NewStore(c clock.Clock) *Store {
	return &Store{
		codes:      make(map[string]record),
		clock:      c,
		ttl:        DefaultTTL,
		sweepEvery: DefaultSweepInterval,
		stop:       make(chan struct{}),
	}
}

// Issue generates a random 6-digit code for the phone, overwriting any
// pending code. The previous code becomes unverifiable immediately.
func (s *Store) Issue(phone string) (string, error) {
	if phone == "" {
		return "", fmt.Errorf("%w: phone is required", errs.ErrInvalidInput)
	}
	code, err := randomCode()
	if err != nil {
		return "", fmt.Errorf("%w: generating code: %v", errs.ErrInternal, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = record{code: code, expiresAt: s.clock.Now().Add(s.ttl)}
	return code, nil
}

// Verify consumes the pending code for the phone. A wrong code keeps the
// record so the caller may retry until expiry; a correct code deletes it,
// so each code verifies at most once.
func (s *Store) Verify(phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.codes[phone]
	if !ok {
		return fmt.Errorf("%w: no pending code for this phone", errs.ErrNotFound)
	}
	if s.clock.Now().After(rec.expiresAt) {
		delete(s.codes, phone)
		return fmt.Errorf("%w: code expired, request a new one", errs.ErrExpired)
	}
	if rec.code != code {
		return fmt.Errorf("%w: incorrect code", errs.ErrMismatch)
	}
	delete(s.codes, phone)
	return nil
}

// Sweep deletes all expired records and reports how many were removed.
// Correctness never depends on it running; Verify re-checks expiry.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for phone, rec := range s.codes {
		if now.After(rec.expiresAt) {
			delete(s.codes, phone)
			removed++
		}
	}
	return removed
}

// Len reports the number of pending records
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}

// Start runs the periodic sweep in the background until Stop is called.
// No foreground request waits on the sweep; a panic inside one tick is
// logged and the loop keeps going.
func (s *Store) Start() {
	go func() {
		ticker := time.NewTicker(s.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.safeSweep()
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Store) safeSweep() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("otp: sweep recovered from panic: %v", r)
		}
	}()
	s.Sweep()
}

// Stop terminates the sweep loop; safe to call more than once
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// randomCode draws uniformly from the inclusive range 100000–999999
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
