// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"sync"
	"time"

	"github.com/samber/oops"
)

// Lockout defaults.
const (
	// LockoutDuration is the time a user is locked out after too many failures.
	LockoutDuration = 15 * time.Minute

	// LockoutThreshold is the number of consecutive failures that triggers a lockout.
	LockoutThreshold = 7
)

type lockoutEntry struct {
	failures    int
	lockedUntil time.Time
}

// Lockout counts consecutive password failures per user and locks the
// account for a fixed duration once the threshold is reached. It is safe
// for concurrent use. A nil *Lockout never locks.
type Lockout struct {
	threshold int
	duration  time.Duration
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]*lockoutEntry
}

// NewLockout creates a Lockout. A threshold of 0 disables locking.
func NewLockout(threshold int, duration time.Duration) (*Lockout, error) {
	if threshold < 0 {
		return nil, oops.Code("LOCKOUT_INVALID").
			With("threshold", threshold).
			Errorf("lockout threshold cannot be negative")
	}
	if threshold > 0 && duration <= 0 {
		return nil, oops.Code("LOCKOUT_INVALID").
			With("duration", duration.String()).
			Errorf("lockout duration must be positive")
	}
	return &Lockout{
		threshold: threshold,
		duration:  duration,
		now:       time.Now,
		entries:   make(map[string]*lockoutEntry),
	}, nil
}

// Enabled reports whether the lockout can ever lock an account.
func (l *Lockout) Enabled() bool {
	return l != nil && l.threshold > 0
}

// RecordFailure counts a failed attempt. locked reports whether the user is
// locked after it; newlyLocked is true only for the failure that started
// the lock.
func (l *Lockout) RecordFailure(userID string) (locked, newlyLocked bool) {
	if !l.Enabled() {
		return false, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[userID]
	if !ok {
		e = &lockoutEntry{}
		l.entries[userID] = e
	}
	if !e.lockedUntil.IsZero() && !now.Before(e.lockedUntil) {
		// An expired lock starts a fresh count.
		*e = lockoutEntry{}
	}
	e.failures++
	if e.failures >= l.threshold && e.lockedUntil.IsZero() {
		e.lockedUntil = now.Add(l.duration)
		newlyLocked = true
	}
	return now.Before(e.lockedUntil), newlyLocked
}

// RecordSuccess clears the failure count of a user.
func (l *Lockout) RecordSuccess(userID string) {
	if !l.Enabled() {
		return
	}
	l.mu.Lock()
	delete(l.entries, userID)
	l.mu.Unlock()
}

// IsLocked reports whether the user is currently locked out.
func (l *Lockout) IsLocked(userID string) bool {
	return l.Remaining(userID) > 0
}

// Remaining returns the time until the user's lock expires, or 0.
func (l *Lockout) Remaining(userID string) time.Duration {
	if !l.Enabled() {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[userID]
	if !ok || e.lockedUntil.IsZero() {
		return 0
	}
	remaining := e.lockedUntil.Sub(l.now())
	if remaining <= 0 {
		delete(l.entries, userID)
		return 0
	}
	return remaining
}

// Failures returns the number of consecutive failures recorded for a user.
func (l *Lockout) Failures(userID string) int {
	if !l.Enabled() {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[userID]; ok {
		return e.failures
	}
	return 0
}

// setClock replaces the time source; used by the registry's WithClock option.
func (l *Lockout) setClock(now func() time.Time) {
	if l == nil || now == nil {
		return
	}
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
}
