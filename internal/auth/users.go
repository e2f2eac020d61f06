package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/zenith/internal/telemetry/tracing"
	"github.com/2beens/zenith/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// UsersRepo keeps registered accounts in the app_user table.
type UsersRepo struct {
	db *pgxpool.Pool
}

func NewUsersRepo(db *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	_, err = r.db.Exec(ctx, `
		INSERT INTO app_user (email, password_hash)
		VALUES ($1, $2)
	`, email, passwordHash)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UsersRepo) PasswordHash(ctx context.Context, email string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.passwordHash")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var hash string
	err = r.db.QueryRow(ctx, `SELECT password_hash FROM app_user WHERE email = $1`, email).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("select user: %w", err)
	}
	return hash, nil
}
