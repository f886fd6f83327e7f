package platform

import (
	"testing"
	"time"
)

func TestReplySequencer_IncrementsToCap(t *testing.T) {
	s := NewReplySequencer()

	for want := 1; want <= 5; want++ {
		seq, ok := s.Next("m1", 5*time.Minute, 5)
		if !ok {
			t.Fatalf("call %d: unexpectedly exhausted", want)
		}
		if seq != want {
			t.Fatalf("call %d: got seq %d", want, seq)
		}
	}

	if seq, ok := s.Next("m1", 5*time.Minute, 5); ok {
		t.Fatalf("sixth call should be exhausted, got seq %d", seq)
	}
}

func TestReplySequencer_ExpiryResets(t *testing.T) {
	now := time.Now()
	s := NewReplySequencer()
	s.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		s.Next("m1", 5*time.Minute, 5)
	}
	if _, ok := s.Next("m1", 5*time.Minute, 5); ok {
		t.Fatal("expected exhaustion before expiry")
	}

	now = now.Add(5*time.Minute + time.Second)

	seq, ok := s.Next("m1", 5*time.Minute, 5)
	if !ok || seq != 1 {
		t.Fatalf("expected fresh sequence 1 after expiry, got (%d, %v)", seq, ok)
	}
}

func TestReplySequencer_IndependentMessages(t *testing.T) {
	s := NewReplySequencer()

	if seq, _ := s.Next("m1", 5*time.Minute, 5); seq != 1 {
		t.Fatalf("m1 first seq: got %d", seq)
	}
	if seq, _ := s.Next("m2", 5*time.Minute, 5); seq != 1 {
		t.Fatalf("m2 must not share m1 state: got %d", seq)
	}
	if seq, _ := s.Next("m1", 5*time.Minute, 5); seq != 2 {
		t.Fatalf("m1 second seq: got %d", seq)
	}
}

func TestReplySequencer_ExhaustionDoesNotMutate(t *testing.T) {
	now := time.Now()
	s := NewReplySequencer()
	s.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		s.Next("m1", time.Minute, 5)
	}
	expiry := s.entries["m1"].expiresAt

	s.Next("m1", time.Minute, 5)

	if got := s.entries["m1"]; got.current != 5 || !got.expiresAt.Equal(expiry) {
		t.Fatalf("exhausted call mutated entry: %+v", got)
	}
}
