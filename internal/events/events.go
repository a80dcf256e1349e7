// Package events defines the domain events exchanged between modules.
// Event names are namespaced by domain so subscribers can register without
// importing the publishing module.
package events

import (
	"github.com/google/uuid"

	"dealer_backoffice_backend/platform/events"
)

// Event names.
const (
	QuoteCreatedEvent       = "quotes.created"
	QuoteStatusChangedEvent = "quotes.status_changed"
	QuoteSentEvent          = "quotes.sent"
	ListingPublishedEvent   = "listings.published"
	CustomerCreatedEvent    = "customers.created"
)

// QuoteCreated is published when a new quote is persisted in draft status.
type QuoteCreated struct {
	events.BaseEvent
	QuoteID     uuid.UUID `json:"quoteId"`
	QuoteNumber string    `json:"quoteNumber"`
	CustomerID  uuid.UUID `json:"customerId"`
	Total       string    `json:"total"`
}

func (e QuoteCreated) EventName() string { return QuoteCreatedEvent }

// QuoteStatusChanged is published after any lifecycle transition, including
// the automatic expiry-on-read transition.
type QuoteStatusChanged struct {
	events.BaseEvent
	QuoteID     uuid.UUID `json:"quoteId"`
	QuoteNumber string    `json:"quoteNumber"`
	FromStatus  string    `json:"fromStatus"`
	ToStatus    string    `json:"toStatus"`
}

func (e QuoteStatusChanged) EventName() string { return QuoteStatusChangedEvent }

// QuoteSent is published when a quote is delivered to the customer. The email
// module subscribes to it.
type QuoteSent struct {
	events.BaseEvent
	QuoteID       uuid.UUID `json:"quoteId"`
	QuoteNumber   string    `json:"quoteNumber"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
}

func (e QuoteSent) EventName() string { return QuoteSentEvent }

// ListingPublished is published when a sales listing goes live.
type ListingPublished struct {
	events.BaseEvent
	ListingID uuid.UUID `json:"listingId"`
	SKU       string    `json:"sku"`
	Title     string    `json:"title"`
}

func (e ListingPublished) EventName() string { return ListingPublishedEvent }

// CustomerCreated is published when a customer record is first stored.
type CustomerCreated struct {
	events.BaseEvent
	CustomerID uuid.UUID `json:"customerId"`
	Name       string    `json:"name"`
}

func (e CustomerCreated) EventName() string { return CustomerCreatedEvent }
