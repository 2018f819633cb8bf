package trade

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by Service for a rejected request is an
// *Error whose Kind is one of these, so callers can test with errors.Is.
var (
	// ErrNotFound indicates a referenced trade or book does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the acting user may not perform the operation
	// on this trade or book.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidOperation indicates a business rule rejected the request:
	// wrong status, self-trade, book not offered for trade or a bad response.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrConflict indicates a pending trade already exists for the book pair.
	ErrConflict = errors.New("conflict")
)

// Error describes why a trade operation was rejected.
type Error struct {
	// Kind is one of ErrNotFound, ErrForbidden, ErrInvalidOperation or ErrConflict.
	Kind error
	// Op is the operation that failed, e.g. "propose_trade".
	Op string
	// Message is safe to show to the acting user.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Is reports whether target is the failure kind of e.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

// Operation names used in Error.Op
const (
	OpPropose  = "propose_trade"
	OpRespond  = "respond_to_trade"
	OpCancel   = "cancel_trade"
	OpGetTrade = "get_trade"
)

// User-facing failure messages
const (
	msgBookNotFound       = "book not found"
	msgNotBookOwner       = "you can only offer your own books"
	msgSelfTrade          = "cannot trade with yourself"
	msgBookNotForTrade    = "both books must be available for trade"
	msgPendingTradeExists = "a pending trade already exists for these books"
	msgTradeNotFound      = "trade not found"
	msgNotRecipient       = "only the recipient can respond to this trade"
	msgNotInitiator       = "only the initiator can cancel this trade"
	msgNotPending         = "trade is no longer pending"
	msgInvalidResponse    = "response must be either accepted or rejected"
	msgNotParticipant     = "you are not a participant in this trade"
)
