package platform

import (
	"sync"
	"time"
)

// Passive-reply contract: the platform deduplicates replies to the
// same inbound message by sequence number, allows at most this many,
// and only within this validity window.
const (
	DefaultReplyTTL = 5 * time.Minute
	DefaultMaxSeq   = 5
)

type seqEntry struct {
	current   int
	expiresAt time.Time
}

// ReplySequencer tracks per inbound-message reply sequence numbers and
// enforces the capped, expiring passive-reply contract. Shared
// process-wide; increments for the same message id are serialized.
type ReplySequencer struct {
	mu      sync.Mutex
	entries map[string]seqEntry
	now     func() time.Time
}

// NewReplySequencer creates a sequencer.
func NewReplySequencer() *ReplySequencer {
	return &ReplySequencer{
		entries: make(map[string]seqEntry),
		now:     time.Now,
	}
}

// Next returns the next sequence number for the inbound message id, or
// (0, false) when the cap is reached. A missing or expired entry
// restarts at 1; a granted sequence refreshes the expiry.
func (s *ReplySequencer) Next(msgID string, ttl time.Duration, maxSeq int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[msgID]
	if !ok || !entry.expiresAt.After(now) {
		s.entries[msgID] = seqEntry{current: 1, expiresAt: now.Add(ttl)}
		return 1, true
	}

	next := entry.current + 1
	if next > maxSeq {
		return 0, false
	}

	s.entries[msgID] = seqEntry{current: next, expiresAt: now.Add(ttl)}
	return next, true
}
