package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/pkg/logger"
)

const uniqueViolation = "23505"

// PostgresProvider stores accounts in app.users with bcrypt password hashes
type PostgresProvider struct {
	pool   *pgxpool.Pool
	ttl    time.Duration
	logger *logger.Logger
}

// NewPostgresProvider creates a provider over pool
func NewPostgresProvider(pool *pgxpool.Pool, resetTTL time.Duration, log *logger.Logger) *PostgresProvider {
	return &PostgresProvider{pool: pool, ttl: resetTTL, logger: log.WithComponent("identity")}
}

func (p *PostgresProvider) SignIn(ctx context.Context, email, password string) (contracts.User, error) {
	query := `
		SELECT uid, email, username, password_hash
		FROM app.users
		WHERE lower(email) = lower($1)
	`

	var user contracts.User
	var hash string
	err := p.pool.QueryRow(ctx, query, email).Scan(&user.UID, &user.Email, &user.Username, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return contracts.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return contracts.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (p *PostgresProvider) CreateUser(ctx context.Context, username, email, password string) (contracts.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return contracts.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := contracts.User{UID: uuid.NewString(), Email: strings.ToLower(email), Username: username}
	query := `
		INSERT INTO app.users (uid, email, username, password_hash)
		VALUES ($1, $2, $3, $4)
	`
	_, err = p.pool.Exec(ctx, query, user.UID, user.Email, user.Username, string(hash))

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return contracts.User{}, ErrEmailInUse
	}
	if err != nil {
		return contracts.User{}, err
	}
	return user, nil
}

// SignOut has nothing to revoke: sessions are held by the gateway
func (p *PostgresProvider) SignOut(ctx context.Context, _ string) error {
	return ctx.Err()
}

func (p *PostgresProvider) SendPasswordReset(ctx context.Context, email string) error {
	var uid string
	err := p.pool.QueryRow(ctx, `SELECT uid FROM app.users WHERE lower(email) = lower($1)`, email).Scan(&uid)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	token := uuid.NewString()
	query := `
		INSERT INTO app.password_resets (token, uid, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := p.pool.Exec(ctx, query, token, uid, time.Now().Add(p.ttl)); err != nil {
		return err
	}

	p.logger.WithField("uid", uid).Info("Password reset token issued")
	return nil
}
