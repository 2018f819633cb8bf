package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/service"
	"github.com/shopspring/decimal"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100,alphanum"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// UpdateProfileRequest defines the payload for PUT /users/profile.
// Omitted fields keep their current value.
type UpdateProfileRequest struct {
	Name      *string `json:"name"      validate:"omitempty,min=3,max=100,alphanum"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,max=500"`
	Bio       *string `json:"bio"       validate:"omitempty,max=5000"`
	Password  *string `json:"password"  validate:"omitempty,min=6,max=72"`
}

func (r UpdateProfileRequest) toUpdate() service.ProfileUpdate {
	return service.ProfileUpdate{
		Name:      r.Name,
		AvatarURL: r.AvatarURL,
		Bio:       r.Bio,
		Password:  r.Password,
	}
}

// TopUpRequest defines the payload for POST /users/balance/top-up.
type TopUpRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

// UserResponse is the public view of a user. The password hash is never exposed.
type UserResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Balance          decimal.Decimal `json:"balance"`
	Role             string          `json:"role"`
	AvatarURL        string          `json:"avatarUrl"`
	Bio              string          `json:"bio"`
	RegistrationDate time.Time       `json:"registrationDate"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:               user.ID,
		Name:             user.Name,
		Balance:          user.Balance,
		Role:             string(user.Role),
		AvatarURL:        user.AvatarURL,
		Bio:              user.Bio,
		RegistrationDate: user.RegistrationDate,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
}

func usersToResponse(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userToResponse(u))
	}
	return out
}

// CreateBookRequest defines the payload for POST /books.
type CreateBookRequest struct {
	Title           string           `json:"title"           validate:"required,max=255"`
	Author          string           `json:"author"          validate:"required,max=255"`
	Description     string           `json:"description"     validate:"required"`
	CoverImageURL   string           `json:"coverImageUrl"   validate:"omitempty,max=500"`
	IsForSale       bool             `json:"isForSale"`
	IsForTrade      bool             `json:"isForTrade"`
	Price           *decimal.Decimal `json:"priceValue"`
	PublicationYear int              `json:"publicationYear" validate:"required"`
	Genre           string           `json:"genre"           validate:"omitempty,max=50"`
}

func (r CreateBookRequest) toInput() service.BookInput {
	input := service.BookInput{
		Title:           r.Title,
		Author:          r.Author,
		Description:     r.Description,
		CoverImageURL:   r.CoverImageURL,
		IsForSale:       r.IsForSale,
		IsForTrade:      r.IsForTrade,
		PublicationYear: r.PublicationYear,
		Genre:           r.Genre,
	}
	if r.Price != nil {
		input.Price = decimal.NewNullDecimal(*r.Price)
	}
	return input
}

// OptionalPrice records whether priceValue was present in an update, so that
// an explicit null can clear the price while an omitted field keeps it.
type OptionalPrice struct {
	Set   bool
	Value decimal.NullDecimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *OptionalPrice) UnmarshalJSON(data []byte) error {
	p.Set = true
	return json.Unmarshal(data, &p.Value)
}

// UpdateBookRequest defines the payload for PUT /books/{id}.
// Omitted fields keep their current value.
type UpdateBookRequest struct {
	Title           *string       `json:"title"           validate:"omitempty,max=255"`
	Author          *string       `json:"author"          validate:"omitempty,max=255"`
	Description     *string       `json:"description"`
	CoverImageURL   *string       `json:"coverImageUrl"   validate:"omitempty,max=500"`
	IsForSale       *bool         `json:"isForSale"`
	IsForTrade      *bool         `json:"isForTrade"`
	Price           OptionalPrice `json:"priceValue"`
	PublicationYear *int          `json:"publicationYear"`
	Genre           *string       `json:"genre"           validate:"omitempty,max=50"`
}

func (r UpdateBookRequest) toUpdate() service.BookUpdate {
	update := service.BookUpdate{
		Title:           r.Title,
		Author:          r.Author,
		Description:     r.Description,
		CoverImageURL:   r.CoverImageURL,
		IsForSale:       r.IsForSale,
		IsForTrade:      r.IsForTrade,
		PublicationYear: r.PublicationYear,
		Genre:           r.Genre,
	}
	if r.Price.Set {
		price := r.Price.Value
		update.Price = &price
	}
	return update
}

// UserSummaryResponse is the public identity embedded in book and trade responses.
type UserSummaryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatarUrl"`
}

func summaryToResponse(s *domain.UserSummary) *UserSummaryResponse {
	if s == nil {
		return nil
	}
	return &UserSummaryResponse{ID: s.ID, Name: s.Name, AvatarURL: s.AvatarURL}
}

// BookResponse is the public view of a book.
type BookResponse struct {
	ID              uuid.UUID            `json:"id"`
	CurrentOwnerID  uuid.UUID            `json:"currentOwnerId"`
	CurrentOwner    *UserSummaryResponse `json:"currentOwner,omitempty"`
	Title           string               `json:"title"`
	Author          string               `json:"author"`
	Description     string               `json:"description"`
	CoverImageURL   string               `json:"coverImageUrl"`
	IsForSale       bool                 `json:"isForSale"`
	IsForTrade      bool                 `json:"isForTrade"`
	Price           decimal.NullDecimal  `json:"priceValue"`
	PublicationYear int                  `json:"publicationYear"`
	Genre           string               `json:"genre"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

func bookToResponse(book *domain.Book) BookResponse {
	return BookResponse{
		ID:              book.ID,
		CurrentOwnerID:  book.OwnerID,
		CurrentOwner:    summaryToResponse(book.Owner),
		Title:           book.Title,
		Author:          book.Author,
		Description:     book.Description,
		CoverImageURL:   book.CoverImageURL,
		IsForSale:       book.IsForSale,
		IsForTrade:      book.IsForTrade,
		Price:           book.Price,
		PublicationYear: book.PublicationYear,
		Genre:           book.Genre,
		CreatedAt:       book.CreatedAt,
		UpdatedAt:       book.UpdatedAt,
	}
}

func optionalBookResponse(book *domain.Book) *BookResponse {
	if book == nil {
		return nil
	}
	resp := bookToResponse(book)
	return &resp
}

func booksToResponse(books []*domain.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, bookToResponse(b))
	}
	return out
}

// ProposeTradeRequest defines the payload for POST /trades/propose.
type ProposeTradeRequest struct {
	InitiatorBookID string `json:"initiatorBookId" validate:"required,uuid"`
	RecipientBookID string `json:"recipientBookId" validate:"required,uuid"`
}

// RespondTradeRequest defines the payload for PUT /trades/{id}/respond.
type RespondTradeRequest struct {
	Response string `json:"response" validate:"required,oneof=accepted rejected"`
}

// TradeResponse is the public view of a trade. The participant and book
// objects are present when the trade was read together with them.
type TradeResponse struct {
	ID              uuid.UUID            `json:"id"`
	InitiatorID     uuid.UUID            `json:"initiatorId"`
	InitiatorBookID uuid.UUID            `json:"initiatorBookId"`
	RecipientID     uuid.UUID            `json:"recipientId"`
	RecipientBookID uuid.UUID            `json:"recipientBookId"`
	Status          string               `json:"status"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
	Initiator       *UserSummaryResponse `json:"initiator,omitempty"`
	Recipient       *UserSummaryResponse `json:"recipient,omitempty"`
	InitiatorBook   *BookResponse        `json:"initiatorBook,omitempty"`
	RecipientBook   *BookResponse        `json:"recipientBook,omitempty"`
}

func tradeToResponse(t *domain.Trade) TradeResponse {
	return TradeResponse{
		ID:              t.ID,
		InitiatorID:     t.InitiatorID,
		InitiatorBookID: t.InitiatorBookID,
		RecipientID:     t.RecipientID,
		RecipientBookID: t.RecipientBookID,
		Status:          string(t.Status),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		Initiator:       summaryToResponse(t.Initiator),
		Recipient:       summaryToResponse(t.Recipient),
		InitiatorBook:   optionalBookResponse(t.InitiatorBook),
		RecipientBook:   optionalBookResponse(t.RecipientBook),
	}
}

func tradesToResponse(trades []*domain.Trade) []TradeResponse {
	out := make([]TradeResponse, 0, len(trades))
	for _, t := range trades {
		out = append(out, tradeToResponse(t))
	}
	return out
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}
