package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"tts-guard-backend/apperrors"
	"tts-guard-backend/config"
	"tts-guard-backend/db/models"
	"tts-guard-backend/users/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

type CreateUserRequest struct {
	FullName string
	Email    string
	Password string
	Role     models.Role
}

type UserService struct {
	repo    repositories.UserRepository
	limiter *LoginLimiter
	now     func() time.Time
}

func NewUserService(repo repositories.UserRepository, limiter *LoginLimiter) *UserService {
	if limiter == nil {
		limiter = NewLoginLimiter(time.Minute, 5)
	}
	return &UserService{repo: repo, limiter: limiter, now: time.Now}
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Authenticate checks credentials for an active account. clientKey scopes the
// attempt limiter, usually the caller's ip.
func (s *UserService) Authenticate(ctx context.Context, email, password, clientKey string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	key := clientKey + "|" + email
	if !s.limiter.Allow(key) {
		config.Logger.Warn("Login throttled", zap.String("email", email), zap.String("client", clientKey))
		return nil, ErrTooManyAttempts
	}

	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active || !CheckPasswordHash(password, user.Password) {
		config.Logger.Warn("Login attempt rejected", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	s.limiter.Reset(key)
	now := s.now()
	if err := s.repo.TouchLastLogin(user.ID, now); err != nil {
		config.Logger.Warn("Could not record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}
	return user, nil
}

func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest, actor string) (*models.User, error) {
	req.Role = models.Role(strings.ToLower(strings.TrimSpace(string(req.Role))))
	if msg := ValidateUser(req); msg != "" {
		return nil, apperrors.InvalidInput("%s", msg)
	}

	existing, err := s.repo.GetUserByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.StateConflict("email %s is already registered", existing.Email)
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.CreateUser(&models.User{
		FullName:  strings.TrimSpace(req.FullName),
		Email:     req.Email,
		Password:  hashed,
		Role:      req.Role,
		Active:    true,
		CreatedBy: actor,
	})
	if err != nil {
		return nil, err
	}
	config.Logger.Info("Staff account created", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user %s", id)
	}
	return user, nil
}

// SetActive enables or disables an account. Disabled accounts cannot log in;
// existing sessions run until the access token expires.
func (s *UserService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Active = active
	return s.repo.UpdateUser(user)
}

func (s *UserService) ListUsers(pageSize, offset int, filters map[string]string) ([]models.User, int64, error) {
	return s.repo.GetFilteredUsers(pageSize, offset, filters)
}
