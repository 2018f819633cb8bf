package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DefaultCoverImageURL is used when a book is listed without a cover.
	DefaultCoverImageURL = "/book-cover-default.png"
	// DefaultGenre is used when a book is listed without a genre.
	DefaultGenre = "Другое"

	MaxTitleLength     = 255
	MaxAuthorLength    = 255
	MaxGenreLength     = 50
	MinPublicationYear = 1000
	// publicationYearLookahead allows announced books a few years ahead.
	publicationYearLookahead = 5
)

// Validation errors for Book
var (
	ErrEmptyBookID          = validationError("book ID cannot be empty")
	ErrEmptyBookOwnerID     = validationError("book owner ID cannot be empty")
	ErrEmptyBookTitle       = validationError("title cannot be empty")
	ErrBookTitleTooLong     = validationError("title must be at most 255 characters long")
	ErrEmptyBookAuthor      = validationError("author cannot be empty")
	ErrBookAuthorTooLong    = validationError("author must be at most 255 characters long")
	ErrEmptyBookDescription = validationError("description cannot be empty")
	ErrCoverURLTooLong      = validationError("cover image URL must be at most 500 characters long")
	ErrPriceRequired        = validationError("price is required when book is for sale")
	ErrPriceNotPositive     = validationError("price must be a positive number")
	ErrPricePrecision       = validationError("price must have at most 2 decimal places")
	ErrPublicationYear      = validationError("publication year is out of range")
	ErrGenreTooLong         = validationError("genre must be at most 50 characters long")
)

// Book is a physical book listed by its current owner.
// A book can be offered for sale, for trade, both, or neither.
type Book struct {
	ID              uuid.UUID           `json:"id"`
	OwnerID         uuid.UUID           `json:"currentOwnerId"`
	Title           string              `json:"title"`
	Author          string              `json:"author"`
	Description     string              `json:"description"`
	CoverImageURL   string              `json:"coverImageUrl"`
	IsForSale       bool                `json:"isForSale"`
	IsForTrade      bool                `json:"isForTrade"`
	Price           decimal.NullDecimal `json:"priceValue"`
	PublicationYear int                 `json:"publicationYear"`
	Genre           string              `json:"genre"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`

	// Owner is populated by reads that join the owner's summary.
	Owner *UserSummary `json:"currentOwner,omitempty"`
}

// NewBook creates a book owned by ownerID, applying the default cover and genre.
func NewBook(ownerID uuid.UUID, title, author, description string, publicationYear int) (*Book, error) {
	now := time.Now().UTC()
	book := &Book{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Title:           strings.TrimSpace(title),
		Author:          strings.TrimSpace(author),
		Description:     strings.TrimSpace(description),
		PublicationYear: publicationYear,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	book.ApplyDefaults()

	if err := book.Validate(); err != nil {
		return nil, err
	}

	return book, nil
}

// ApplyDefaults fills in the cover image and genre when they are blank.
func (b *Book) ApplyDefaults() {
	if strings.TrimSpace(b.CoverImageURL) == "" {
		b.CoverImageURL = DefaultCoverImageURL
	}
	if strings.TrimSpace(b.Genre) == "" {
		b.Genre = DefaultGenre
	}
}

// Validate checks if the Book has valid data.
func (b *Book) Validate() error {
	if b.ID == uuid.Nil {
		return ErrEmptyBookID
	}
	if b.OwnerID == uuid.Nil {
		return ErrEmptyBookOwnerID
	}

	if strings.TrimSpace(b.Title) == "" {
		return ErrEmptyBookTitle
	}
	if len([]rune(b.Title)) > MaxTitleLength {
		return ErrBookTitleTooLong
	}
	if strings.TrimSpace(b.Author) == "" {
		return ErrEmptyBookAuthor
	}
	if len([]rune(b.Author)) > MaxAuthorLength {
		return ErrBookAuthorTooLong
	}
	if strings.TrimSpace(b.Description) == "" {
		return ErrEmptyBookDescription
	}
	if len(b.CoverImageURL) > MaxURLLength {
		return ErrCoverURLTooLong
	}
	if len([]rune(b.Genre)) > MaxGenreLength {
		return ErrGenreTooLong
	}

	if b.IsForSale && !b.Price.Valid {
		return ErrPriceRequired
	}
	if b.Price.Valid {
		if !b.Price.Decimal.IsPositive() {
			return ErrPriceNotPositive
		}
		if !b.Price.Decimal.Equal(b.Price.Decimal.Round(2)) {
			return ErrPricePrecision
		}
	}

	maxYear := time.Now().UTC().Year() + publicationYearLookahead
	if b.PublicationYear < MinPublicationYear || b.PublicationYear > maxYear {
		return ErrPublicationYear
	}

	return nil
}

// IsOwnedBy reports whether userID currently owns the book.
func (b *Book) IsOwnedBy(userID uuid.UUID) bool {
	return b.OwnerID == userID
}

// BookFilter narrows a catalog listing. Nil fields are not applied.
type BookFilter struct {
	// Search matches title or author, case-insensitively.
	Search   string
	Genre    string
	ForSale  *bool
	ForTrade *bool
	OwnerID  *uuid.UUID
}
