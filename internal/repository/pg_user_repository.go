package repository

import (
	"context"
	"errors"
	"fmt"

	"weave-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Compile-time check
var _ UserRepository = (*pgUserRepository)(nil)

type pgUserRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewPgUserRepository(db DBTX, logger *zap.Logger) UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

func (r *pgUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
        INSERT INTO users (id, email, name, password_hash, credits, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	logFields := []zap.Field{zap.String("userID", user.ID.String()), zap.String("email", user.Email)}
	r.logger.Debug("Creating user", logFields...)

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Credits, user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			r.logger.Warn("User already exists", logFields...)
			return models.ErrUserAlreadyExists
		}
		r.logger.Error("Failed to create user", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create user: %w", err)
	}
	r.logger.Info("User created", logFields...)
	return nil
}

func (r *pgUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
        SELECT id, email, name, password_hash, credits, created_at
        FROM users
        WHERE email = $1
    `
	user := &models.User{}
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.Credits, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
        SELECT id, email, name, password_hash, credits, created_at
        FROM users
        WHERE id = $1
    `
	user := &models.User{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.Credits, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get user by ID", zap.String("userID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return user, nil
}
