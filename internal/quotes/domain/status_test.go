package domain

import (
	"testing"
	"time"

	"dealer_backoffice_backend/platform/apperr"
)

func TestTransitionHappyPath(t *testing.T) {
	s := StatusDraft

	s, err := s.Transition(StatusSent)
	if err != nil {
		t.Fatalf("draft → sent must be legal: %v", err)
	}
	s, err = s.Transition(StatusAccepted)
	if err != nil {
		t.Fatalf("sent → accepted must be legal: %v", err)
	}
	if s != StatusAccepted {
		t.Fatalf("expected accepted, got %s", s)
	}
}

func TestTransitionFromTerminalFails(t *testing.T) {
	for _, terminal := range []Status{StatusAccepted, StatusRejected, StatusExpired} {
		got, err := terminal.Transition(StatusSent)
		if err == nil {
			t.Fatalf("%s → sent must be rejected", terminal)
		}
		if !apperr.Is(err, apperr.KindConflict) {
			t.Fatalf("illegal transition must map to conflict, got %v", err)
		}
		if got != terminal {
			t.Fatalf("status must be unchanged on failed transition, got %s", got)
		}
	}
}

func TestTransitionSkippingSentFails(t *testing.T) {
	if _, err := StatusDraft.Transition(StatusAccepted); err == nil {
		t.Fatal("draft → accepted must be rejected; quotes are accepted only after sending")
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	if _, err := StatusDraft.Transition(Status("archived")); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("unknown target status must be a validation error, got %v", err)
	}
}

func TestEditable(t *testing.T) {
	if !StatusDraft.Editable() || !StatusSent.Editable() {
		t.Fatal("draft and sent quotes must accept edits")
	}
	for _, s := range []Status{StatusAccepted, StatusRejected, StatusExpired} {
		if s.Editable() {
			t.Fatalf("%s quotes must be locked", s)
		}
	}
}

func TestShouldExpire(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if !ShouldExpire(StatusSent, &past, now) {
		t.Fatal("sent quote past its validity must expire")
	}
	if ShouldExpire(StatusSent, &future, now) {
		t.Fatal("sent quote within its validity must not expire")
	}
	if ShouldExpire(StatusDraft, &past, now) {
		t.Fatal("draft quotes never auto-expire")
	}
	if ShouldExpire(StatusAccepted, &past, now) {
		t.Fatal("accepted quotes never auto-expire")
	}
	if ShouldExpire(StatusSent, nil, now) {
		t.Fatal("quotes without a validity date never auto-expire")
	}
	// Expiry is strict: exactly at the boundary the quote is still valid.
	if ShouldExpire(StatusSent, &now, now) {
		t.Fatal("quote exactly at valid_until must still be valid")
	}
}
