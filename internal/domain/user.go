package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role identifies the capabilities granted to a user.
type Role string

// Possible user roles
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const (
	// DefaultAvatarURL is assigned to users who never set an avatar.
	DefaultAvatarURL = "/default-avatar.png"

	MinUserNameLength = 3
	MaxUserNameLength = 100
	MinPasswordLength = 6
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
	MaxBioLength      = 5000
	MaxURLLength      = 500
)

// DefaultStartingBalance is credited to every newly registered user.
var DefaultStartingBalance = decimal.NewFromInt(500)

// Validation errors for User
var (
	ErrEmptyUserID         = validationError("user ID cannot be empty")
	ErrEmptyUserName       = validationError("name cannot be empty")
	ErrUserNameLength      = validationError("name must be between 3 and 100 characters long")
	ErrUserNameCharacters  = validationError("name must contain only alphanumeric characters")
	ErrPasswordTooShort    = validationError("password must be at least 6 characters long")
	ErrPasswordTooLong     = validationError("password must be at most 72 characters long")
	ErrEmptyPassword       = validationError("password cannot be empty")
	ErrNegativeBalance     = validationError("balance cannot be negative")
	ErrBalancePrecision    = validationError("balance must have at most 2 decimal places")
	ErrInvalidRole         = validationError("invalid user role")
	ErrBioTooLong          = validationError("bio must be at most 5000 characters long")
	ErrAvatarURLTooLong    = validationError("avatar URL must be at most 500 characters long")
	ErrEmptyHashedPassword = validationError("hashed password cannot be empty")
)

// User represents a registered member of the exchange.
type User struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Password         string          `json:"-"` // Plaintext, only set during registration or password change
	HashedPassword   string          `json:"-"`
	Balance          decimal.Decimal `json:"balance"`
	Role             Role            `json:"role"`
	AvatarURL        string          `json:"avatarUrl"`
	Bio              string          `json:"bio"`
	RegistrationDate time.Time       `json:"registrationDate"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// UserSummary is the public identity of a user as embedded in book and
// trade reads.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatarUrl"`
}

// NewUser creates a regular user with the starting balance and default avatar.
// The caller is responsible for hashing the password before storing the user.
func NewUser(name, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:               uuid.New(),
		Name:             name,
		Password:         password,
		Balance:          DefaultStartingBalance,
		Role:             RoleUser,
		AvatarURL:        DefaultAvatarURL,
		RegistrationDate: now.Truncate(24 * time.Hour),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if err := ValidateUserName(u.Name); err != nil {
		return err
	}

	if u.Password != "" {
		if err := ValidatePassword(u.Password); err != nil {
			return err
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	if u.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	if !u.Balance.Equal(u.Balance.Round(2)) {
		return ErrBalancePrecision
	}

	if u.Role != RoleUser && u.Role != RoleAdmin {
		return ErrInvalidRole
	}

	if len(u.Bio) > MaxBioLength {
		return ErrBioTooLong
	}
	if len(u.AvatarURL) > MaxURLLength {
		return ErrAvatarURLTooLong
	}

	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidateUserName enforces the 3 to 100 character ASCII alphanumeric rule.
func ValidateUserName(name string) error {
	if name == "" {
		return ErrEmptyUserName
	}
	if len(name) < MinUserNameLength || len(name) > MaxUserNameLength {
		return ErrUserNameLength
	}
	for _, r := range name {
		if !isASCIIAlphanumeric(r) {
			return ErrUserNameCharacters
		}
	}
	return nil
}

// ValidatePassword checks plaintext password length.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return ErrEmptyPassword
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

func isASCIIAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
