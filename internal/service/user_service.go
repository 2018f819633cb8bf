package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/platform/logger"
	"github.com/phrazzld/bookswap-api/internal/service/auth"
	"github.com/phrazzld/bookswap-api/internal/store"
	"github.com/shopspring/decimal"
)

// MaxTopUpAmount is the largest single balance top-up.
var MaxTopUpAmount = decimal.NewFromInt(100000)

// ProfileUpdate carries the profile fields to change. Nil fields are kept.
type ProfileUpdate struct {
	Name      *string
	AvatarURL *string
	Bio       *string
	Password  *string
}

func (u ProfileUpdate) isEmpty() bool {
	return u.Name == nil && u.AvatarURL == nil && u.Bio == nil && u.Password == nil
}

// UserService provides user-related operations.
type UserService interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	ListUsers(ctx context.Context) ([]*domain.User, error)

	// UpdateProfile applies update to the user. A new password is re-hashed.
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error)

	// TopUpBalance adds amount to the user's balance.
	TopUpBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.User, error)

	// DeleteUser removes targetID on behalf of actorID, who must be an admin
	// other than the target.
	DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	db     *sql.DB
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(users store.UserStore, hasher auth.PasswordHasher, db *sql.DB, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		users:  users,
		hasher: hasher,
		db:     db,
		logger: logger.With("component", "user_service"),
	}
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve user",
				"error", err,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// ListUsers returns every user ordered by name
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateProfile reads the full user, applies the changed fields and writes it
// back in one transaction
func (s *UserServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	update ProfileUpdate,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if update.isEmpty() {
		return nil, ErrEmptyUpdate
	}

	var hashed string
	if update.Password != nil {
		if err := domain.ValidatePassword(*update.Password); err != nil {
			return nil, err
		}
		h, err := s.hasher.Hash(*update.Password)
		if err != nil {
			log.Error("failed to hash password", "error", err, "user_id", userID)
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		hashed = h
	}

	var updated *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if update.Name != nil {
			name := strings.TrimSpace(*update.Name)
			if name != user.Name {
				if existing, err := users.GetByName(ctx, name); err == nil && existing.ID != user.ID {
					return store.ErrNameExists
				} else if err != nil && !errors.Is(err, store.ErrUserNotFound) {
					return err
				}
			}
			user.Name = name
		}
		if update.AvatarURL != nil {
			user.AvatarURL = strings.TrimSpace(*update.AvatarURL)
			if user.AvatarURL == "" {
				user.AvatarURL = domain.DefaultAvatarURL
			}
		}
		if update.Bio != nil {
			user.Bio = *update.Bio
		}
		if hashed != "" {
			user.HashedPassword = hashed
		}

		if err := user.Validate(); err != nil {
			return err
		}
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) || store.IsNotFoundError(err) || errors.Is(err, store.ErrNameExists) {
			log.Debug("profile update rejected", "error", err, "user_id", userID)
			return nil, err
		}
		log.Error("failed to update profile", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	log.Info("profile updated", "user_id", userID)
	return updated, nil
}

// ValidTopUpAmount reports whether amount may be added to a balance.
func ValidTopUpAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() &&
		amount.LessThanOrEqual(MaxTopUpAmount) &&
		amount.Equal(amount.Round(2))
}

// TopUpBalance adds amount to the user's balance in a single statement
func (s *UserServiceImpl) TopUpBalance(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !ValidTopUpAmount(amount) {
		return nil, ErrInvalidAmount
	}

	user, err := s.users.AddBalance(ctx, userID, amount)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to top up balance", "error", err, "user_id", userID)
		}
		return nil, fmt.Errorf("failed to top up balance: %w", err)
	}

	log.Info("balance topped up",
		"user_id", userID,
		"amount", amount.StringFixed(2))
	return user, nil
}

// DeleteUser removes a user. Only admins may delete, and never themselves.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to load acting user: %w", err)
	}
	if !actor.IsAdmin() {
		log.Warn("non-admin attempted user deletion", "actor_id", actorID, "target_id", targetID)
		return ErrAdminRequired
	}
	if actorID == targetID {
		return ErrSelfDelete
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to delete user", "error", err, "target_id", targetID)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	log.Info("user deleted", "actor_id", actorID, "target_id", targetID)
	return nil
}
