package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"weave-server/internal/clients/weave"
	"weave-server/internal/models"
	"weave-server/internal/repository"
	"weave-server/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Claims are the JWT claims of a session token.
type Claims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// Service handles registration, login and session token verification.
type Service interface {
	Register(ctx context.Context, email, name, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	VerifyToken(tokenString string) (uuid.UUID, error)
}

// Compile-time check
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	userRepo        repository.UserRepository
	client          service.GenerationClient
	logger          *zap.Logger
	jwtSecret       []byte
	tokenTTL        time.Duration
	startingCredits int
	syncTimeout     time.Duration
}

func NewService(
	userRepo repository.UserRepository,
	client service.GenerationClient,
	logger *zap.Logger,
	jwtSecret string,
	tokenTTL time.Duration,
	startingCredits int,
) Service {
	return &serviceImpl{
		userRepo:        userRepo,
		client:          client,
		logger:          logger.Named("AuthService"),
		jwtSecret:       []byte(jwtSecret),
		tokenTTL:        tokenTTL,
		startingCredits: startingCredits,
		syncTimeout:     weave.DefaultTimeout,
	}
}

// Register creates a local account and kicks off the fire-and-forget
// preference sync with the generation service. The sync must never block or
// fail registration.
func (s *serviceImpl) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	logFields := []zap.Field{zap.String("email", email)}

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email format", models.ErrValidation)
	}
	if name == "" || len(password) < 8 {
		return nil, fmt.Errorf("%w: name is required and password must be at least 8 characters", models.ErrValidation)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("Failed to check existing email", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		s.logger.Warn("Registration attempt for existing email", logFields...)
		return nil, models.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Credits:      s.startingCredits,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User registered", append(logFields, zap.String("userID", user.ID.String()))...)

	go s.syncPreferences(user)

	return user, nil
}

// syncPreferences runs detached from the request; its failure is logged and
// forgotten.
func (s *serviceImpl) syncPreferences(user *models.User) {
	ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
	defer cancel()

	err := s.client.RegisterPreferences(ctx, weave.RegisterRequest{
		UserID:           user.ID.String(),
		Email:            user.Email,
		Name:             user.Name,
		PreferredAuthors: []int{},
	})
	if err != nil {
		s.logger.Warn("Preference sync with generation service failed",
			zap.String("userID", user.ID.String()), zap.Error(err))
	}
}

// Login verifies credentials and issues a signed session token.
func (s *serviceImpl) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", nil, models.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Login attempt with wrong password", zap.String("email", email))
		return "", nil, models.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	s.logger.Info("User logged in", zap.String("userID", user.ID.String()))
	return token, user, nil
}

// VerifyToken validates a session token and returns the user id it carries.
func (s *serviceImpl) VerifyToken(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, models.ErrUnauthorized
	}
	if claims.UserID == uuid.Nil {
		return uuid.Nil, models.ErrUnauthorized
	}
	return claims.UserID, nil
}
