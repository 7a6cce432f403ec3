package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"recipes/internal/auth"
	"recipes/internal/enrich"
	apperrors "recipes/internal/errors"
	"recipes/internal/metrics"
	"recipes/internal/model"
	"recipes/internal/repository"
)

const bcryptCost = 10

// TokenResolver turns a presented session token into the acting user.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*model.User, error)
}

// AuthService handles registration and session tokens.
type AuthService interface {
	TokenResolver
	Register(ctx context.Context, email, password, firstName, lastName string) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	Logout(ctx context.Context, token string) error
	IssueToken(user *model.User) (string, error)
	ResolveOptional(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	userRepo    repository.UserRepository
	jwtService  *auth.JWTService
	revocations auth.RevocationStore
	enricher    enrich.Hook
	metrics     metrics.Recorder
	logger      zerolog.Logger
}

// NewAuthService creates a new authentication service.
// enricher may be nil, in which case registration skips enrichment.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	revocations auth.RevocationStore,
	enricher enrich.Hook,
	recorder metrics.Recorder,
	logger zerolog.Logger,
) AuthService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &authService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		revocations: revocations,
		enricher:    enricher,
		metrics:     recorder,
		logger:      logger,
	}
}

// Register creates a new user after best-effort profile enrichment.
func (s *authService) Register(ctx context.Context, email, password, firstName, lastName string) (*model.User, error) {
	// Check if user already exists
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		s.metrics.RecordRegistration("exists")
		return nil, apperrors.ErrUserExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	// Enrichment runs before anything is persisted; a hard rejection aborts.
	var profile *enrich.Profile
	if s.enricher != nil {
		profile, err = s.enricher.Lookup(ctx, email)
		if err != nil {
			if errors.Is(err, enrich.ErrInvalidEmail) {
				s.metrics.RecordRegistration("invalid")
				return nil, fmt.Errorf("%w: %v", apperrors.ErrRegistrationInvalid, err)
			}
			s.logger.Warn().Err(err).Str("email", email).Msg("profile enrichment failed, continuing without it")
			profile = nil
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			s.metrics.RecordRegistration("invalid")
			return nil, fmt.Errorf("%w: %v", apperrors.ErrRegistrationInvalid, err)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		PublicID:     uuid.NewString(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if profile != nil {
		user.Bio = profile.Bio
		user.Role = profile.Role
		user.Location = profile.Location
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.metrics.RecordRegistration("exists")
			return nil, apperrors.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.RecordRegistration("ok")
	s.logger.Info().Str("public_id", user.PublicID).Msg("user registered")
	return user, nil
}

// Login authenticates a user and returns a fresh session token.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.RecordLogin("invalid")
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.RecordLogin("invalid")
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}

	s.metrics.RecordLogin("ok")
	return token, user, nil
}

// IssueToken signs a session token for user.
func (s *authService) IssueToken(user *model.User) (string, error) {
	token, _, err := s.jwtService.GenerateSessionToken(auth.Identity{
		PublicID:  user.PublicID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	})
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return token, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return err
	}
	if err := s.revocations.Revoke(ctx, claims.ID, s.jwtService.RemainingLifetime(claims)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Resolve verifies token and loads the user it names. It never writes.
func (s *authService) Resolve(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByPublicID(ctx, claims.PublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}

// ResolveOptional treats an absent token as an anonymous caller.
// A token that is present but unusable is still an error.
func (s *authService) ResolveOptional(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}
	return s.Resolve(ctx, token)
}
