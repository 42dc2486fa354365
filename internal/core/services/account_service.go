package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"moviehub/internal/core/domain"
	"moviehub/internal/core/ports"
	"moviehub/pkg/crypto"
	apperrors "moviehub/pkg/errors"
	"moviehub/pkg/tracing"
	"moviehub/pkg/utils"
	"moviehub/pkg/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// User-facing account messages
const (
	MsgAllFieldsRequired   = "All fields are required"
	MsgUserExists          = "User already exists"
	MsgInvalidEmail        = "Invalid email format"
	MsgWeakPassword        = "Password must be at least 6 characters long"
	MsgCredentialsRequired = "Email and password are required"
	MsgInvalidCredentials  = "Invalid email or password"
	msgAccountStoreFailure = "account store failure"
	msgPasswordHashFailure = "password hashing failure"
)

type accountService struct {
	users  ports.UserRepository
	hasher crypto.PasswordHasher
	logger *zap.SugaredLogger
	newID  func() string
}

func NewAccountService(
	users ports.UserRepository,
	hasher crypto.PasswordHasher,
	logger *zap.SugaredLogger,
) ports.AccountService {
	return &accountService{
		users:  users,
		hasher: hasher,
		logger: logger,
		newID:  uuid.NewString,
	}
}

func (s *accountService) CreateUser(ctx context.Context, name, email, password string) (domain.Profile, error) {
	ctx, span := tracing.TraceAccountOperation(ctx, "signup")
	defer span.End()

	name = utils.SanitizeString(name)
	email = utils.NormalizeEmail(email)

	if name == "" || email == "" || password == "" {
		return domain.Profile{}, apperrors.NewValidationError(domain.ErrMissingFields, MsgAllFieldsRequired)
	}

	exists, err := s.users.Exists(ctx, email)
	if err != nil {
		tracing.RecordError(ctx, err)
		return domain.Profile{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, msgAccountStoreFailure, http.StatusInternalServerError)
	}
	if exists {
		return domain.Profile{}, apperrors.NewValidationError(domain.ErrDuplicateUser, MsgUserExists)
	}

	if err := validation.ValidateEmail(email); err != nil {
		return domain.Profile{}, apperrors.NewValidationError(domain.ErrInvalidEmail, MsgInvalidEmail)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return domain.Profile{}, apperrors.NewValidationError(domain.ErrWeakPassword, MsgWeakPassword)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		tracing.RecordError(ctx, err)
		return domain.Profile{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, msgPasswordHashFailure, http.StatusInternalServerError)
	}

	user := &domain.User{
		ID:           domain.UserID(s.newID()),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    utils.Now().UTC().Truncate(time.Millisecond),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			// lost a concurrent signup for the same email
			return domain.Profile{}, apperrors.NewValidationError(domain.ErrDuplicateUser, MsgUserExists)
		}
		tracing.RecordError(ctx, err)
		return domain.Profile{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, msgAccountStoreFailure, http.StatusInternalServerError)
	}

	tracing.AddSpanAttributes(ctx, tracing.UserIDKey.String(string(user.ID)))
	s.logger.Infow("user created", "user_id", user.ID, "email", utils.MaskEmail(user.Email))
	return user.Profile(), nil
}

func (s *accountService) VerifyCredentials(ctx context.Context, email, password string) (domain.Profile, error) {
	ctx, span := tracing.TraceAccountOperation(ctx, "login")
	defer span.End()

	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.Profile{}, apperrors.NewValidationError(domain.ErrMissingFields, MsgCredentialsRequired)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Debugw("login for unknown email", "email", utils.MaskEmail(email))
		return domain.Profile{}, apperrors.NewAuthError(domain.ErrInvalidCredentials, MsgInvalidCredentials)
	}
	if err != nil {
		tracing.RecordError(ctx, err)
		return domain.Profile{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, msgAccountStoreFailure, http.StatusInternalServerError)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		// an unreadable stored hash is a store problem, but the caller
		// still only learns that the credentials were rejected
		s.logger.Errorw("stored password hash is unreadable", "user_id", user.ID, "error", err)
		return domain.Profile{}, apperrors.NewAuthError(domain.ErrInvalidCredentials, MsgInvalidCredentials)
	}
	if !ok {
		return domain.Profile{}, apperrors.NewAuthError(domain.ErrInvalidCredentials, MsgInvalidCredentials)
	}

	tracing.AddSpanAttributes(ctx, tracing.UserIDKey.String(string(user.ID)))
	return user.Profile(), nil
}
