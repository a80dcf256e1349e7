// Package domain holds the quote lifecycle rules: which statuses exist, which
// transitions are legal, and when a quote may still be edited. The repository
// and service layers consult this package instead of encoding transitions
// inline.
package domain

import (
	"time"

	"dealer_backoffice_backend/platform/apperr"
)

// Status is the lifecycle state of a quote.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// transitions is the full lifecycle graph. Terminal states have no outgoing
// edges; absence from the map means no transition is legal.
var transitions = map[Status][]Status{
	StatusDraft: {StatusSent},
	StatusSent:  {StatusAccepted, StatusRejected, StatusExpired},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Editable reports whether line items may still change in this status.
// Only draft and sent quotes accept edits.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusSent
}

// CanTransition reports whether moving from s to target is legal.
func (s Status) CanTransition(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Transition validates the move from s to target and returns the new status.
// The quote's stored status must not change when an error is returned.
func (s Status) Transition(target Status) (Status, error) {
	if !target.Valid() {
		return s, apperr.Validation("unknown quote status: " + string(target))
	}
	if !s.CanTransition(target) {
		return s, apperr.Conflict("invalid transition: " + string(s) + " → " + string(target)).
			WithOp("quotes.transition")
	}
	return target, nil
}

// ErrQuoteLocked is returned when an edit is attempted on a quote in a
// terminal status.
func ErrQuoteLocked(status Status) *apperr.Error {
	return apperr.Conflict("quote is locked: status is " + string(status))
}

// ShouldExpire reports whether a quote read at now must auto-expire: only
// sent quotes expire, and only once their validity window has passed.
func ShouldExpire(status Status, validUntil *time.Time, now time.Time) bool {
	if status != StatusSent || validUntil == nil {
		return false
	}
	return now.After(*validUntil)
}
