package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planetprotrader/backend/internal/contracts"
)

// PostgresRepository stores each profile as a JSONB document in app.user_profiles
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository over pool
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create upserts the full document
func (r *PostgresRepository) Create(ctx context.Context, p contracts.UserProfile) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	query := `
		INSERT INTO app.user_profiles (uid, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (uid) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = now()
	`
	_, err = r.pool.Exec(ctx, query, p.UID, doc)
	return err
}

// TouchLogin sets lastLoginAt inside the document
func (r *PostgresRepository) TouchLogin(ctx context.Context, uid string, at time.Time) error {
	query := `
		UPDATE app.user_profiles
		SET document = jsonb_set(document, '{lastLoginAt}', to_jsonb($2::text)),
			updated_at = now()
		WHERE uid = $1
	`
	return r.exec(ctx, query, uid, at.UTC().Format(time.RFC3339Nano))
}

// SetOnline sets isOnline inside the document
func (r *PostgresRepository) SetOnline(ctx context.Context, uid string, online bool) error {
	query := `
		UPDATE app.user_profiles
		SET document = jsonb_set(document, '{isOnline}', to_jsonb($2::boolean)),
			updated_at = now()
		WHERE uid = $1
	`
	return r.exec(ctx, query, uid, online)
}

// Get loads and decodes the document
func (r *PostgresRepository) Get(ctx context.Context, uid string) (contracts.UserProfile, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT document FROM app.user_profiles WHERE uid = $1`, uid).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return contracts.UserProfile{}, err
	}

	var p contracts.UserProfile
	if err := json.Unmarshal(doc, &p); err != nil {
		return contracts.UserProfile{}, fmt.Errorf("decode profile %s: %w", uid, err)
	}
	return p, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
