package domain

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// TradeStatus represents where a trade is in its lifecycle.
type TradeStatus string

// Possible trade status values
const (
	TradeStatusPending  TradeStatus = "pending"
	TradeStatusAccepted TradeStatus = "accepted"
	TradeStatusRejected TradeStatus = "rejected"
	// TradeStatusCancelled is part of the stored enum, but cancellation
	// removes the trade instead of recording this status.
	TradeStatusCancelled TradeStatus = "cancelled"
)

// Validation errors for Trade
var (
	ErrEmptyTradeID          = validationError("trade ID cannot be empty")
	ErrEmptyTradeInitiator   = validationError("trade initiator ID cannot be empty")
	ErrEmptyTradeRecipient   = validationError("trade recipient ID cannot be empty")
	ErrEmptyTradeBook        = validationError("trade book IDs cannot be empty")
	ErrSelfTrade             = validationError("initiator and recipient must be different users")
	ErrSameBookTrade         = validationError("a book cannot be traded for itself")
	ErrInvalidTradeStatus    = validationError("invalid trade status")
	ErrInvalidTradeResponse  = validationError("response must be either accepted or rejected")
	ErrTradeStatusTransition = validationError("trade status transition not allowed")
)

// IsValid reports whether s is one of the known statuses.
func (s TradeStatus) IsValid() bool {
	switch s {
	case TradeStatusPending, TradeStatusAccepted, TradeStatusRejected, TradeStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s TradeStatus) IsTerminal() bool {
	return s != TradeStatusPending
}

// CanTransitionTo reports whether a trade in status s may move to next.
// Only pending trades move, and only to accepted, rejected or cancelled.
func (s TradeStatus) CanTransitionTo(next TradeStatus) bool {
	if s != TradeStatusPending {
		return false
	}
	switch next {
	case TradeStatusAccepted, TradeStatusRejected, TradeStatusCancelled:
		return true
	}
	return false
}

// IsValidResponse reports whether s is an allowed recipient response.
func (s TradeStatus) IsValidResponse() bool {
	return s == TradeStatusAccepted || s == TradeStatusRejected
}

// Trade is a proposal to exchange the initiator's book for the recipient's book.
type Trade struct {
	ID              uuid.UUID   `json:"id"`
	InitiatorID     uuid.UUID   `json:"initiatorId"`
	InitiatorBookID uuid.UUID   `json:"initiatorBookId"`
	RecipientID     uuid.UUID   `json:"recipientId"`
	RecipientBookID uuid.UUID   `json:"recipientBookId"`
	Status          TradeStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`

	// Related records, populated by reads that join them.
	Initiator     *UserSummary `json:"initiator,omitempty"`
	Recipient     *UserSummary `json:"recipient,omitempty"`
	InitiatorBook *Book        `json:"initiatorBook,omitempty"`
	RecipientBook *Book        `json:"recipientBook,omitempty"`
}

// NewTrade creates a pending trade between the owners of the two books.
func NewTrade(initiatorID, initiatorBookID, recipientID, recipientBookID uuid.UUID) (*Trade, error) {
	now := time.Now().UTC()
	trade := &Trade{
		ID:              uuid.New(),
		InitiatorID:     initiatorID,
		InitiatorBookID: initiatorBookID,
		RecipientID:     recipientID,
		RecipientBookID: recipientBookID,
		Status:          TradeStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := trade.Validate(); err != nil {
		return nil, err
	}

	return trade, nil
}

// Validate checks if the Trade has valid data.
func (t *Trade) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTradeID
	}
	if t.InitiatorID == uuid.Nil {
		return ErrEmptyTradeInitiator
	}
	if t.RecipientID == uuid.Nil {
		return ErrEmptyTradeRecipient
	}
	if t.InitiatorBookID == uuid.Nil || t.RecipientBookID == uuid.Nil {
		return ErrEmptyTradeBook
	}
	if t.InitiatorID == t.RecipientID {
		return ErrSelfTrade
	}
	if t.InitiatorBookID == t.RecipientBookID {
		return ErrSameBookTrade
	}
	if !t.Status.IsValid() {
		return ErrInvalidTradeStatus
	}
	return nil
}

// AttachBooks sets the traded books and takes each participant's summary
// from the owner of the book they put up.
func (t *Trade) AttachBooks(initiatorBook, recipientBook *Book) {
	t.InitiatorBook = initiatorBook
	t.RecipientBook = recipientBook
	if initiatorBook != nil {
		t.Initiator = initiatorBook.Owner
	}
	if recipientBook != nil {
		t.Recipient = recipientBook.Owner
	}
}

// CopyRelations copies the related records loaded with other.
func (t *Trade) CopyRelations(other *Trade) {
	t.Initiator = other.Initiator
	t.Recipient = other.Recipient
	t.InitiatorBook = other.InitiatorBook
	t.RecipientBook = other.RecipientBook
}

// IsParticipant reports whether userID is the initiator or the recipient.
func (t *Trade) IsParticipant(userID uuid.UUID) bool {
	return t.InitiatorID == userID || t.RecipientID == userID
}

// Pair returns the unordered pair of books the trade exchanges.
func (t *Trade) Pair() BookPair {
	return NewBookPair(t.InitiatorBookID, t.RecipientBookID)
}

// BookPair is an unordered pair of book IDs. Low always sorts before High,
// so (a, b) and (b, a) produce equal pairs.
type BookPair struct {
	Low  uuid.UUID
	High uuid.UUID
}

// NewBookPair builds the canonical pair for two book IDs.
func NewBookPair(a, b uuid.UUID) BookPair {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return BookPair{Low: a, High: b}
}

// Contains reports whether bookID is one of the pair.
func (p BookPair) Contains(bookID uuid.UUID) bool {
	return p.Low == bookID || p.High == bookID
}
