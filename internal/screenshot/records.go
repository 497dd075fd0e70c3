package screenshot

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planetprotrader/backend/internal/contracts"
)

// RecordStore persists the reference to each uploaded capture
type RecordStore interface {
	Save(ctx context.Context, rec contracts.ScreenshotRecord) error
	Recent(ctx context.Context, limit int) ([]contracts.ScreenshotRecord, error)
}

// MemoryRecordStore keeps records in process, newest first
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records []contracts.ScreenshotRecord
}

// NewMemoryRecordStore creates an empty store
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{}
}

func (s *MemoryRecordStore) Save(ctx context.Context, rec contracts.ScreenshotRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.records = append([]contracts.ScreenshotRecord{rec}, s.records...)
	s.mu.Unlock()
	return nil
}

func (s *MemoryRecordStore) Recent(_ context.Context, limit int) ([]contracts.ScreenshotRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	return append([]contracts.ScreenshotRecord(nil), s.records[:limit]...), nil
}

// PostgresRecordStore writes records to app.screenshots
type PostgresRecordStore struct {
	pool *pgxpool.Pool
}

// NewPostgresRecordStore creates a store over pool
func NewPostgresRecordStore(pool *pgxpool.Pool) *PostgresRecordStore {
	return &PostgresRecordStore{pool: pool}
}

func (s *PostgresRecordStore) Save(ctx context.Context, rec contracts.ScreenshotRecord) error {
	query := `
		INSERT INTO app.screenshots
			(id, type, filename, object_key, download_url, account_login, size_bytes, metadata, taken_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	var metadata []byte
	if len(rec.Metadata) > 0 {
		metadata = rec.Metadata
	}
	_, err := s.pool.Exec(ctx, query,
		rec.ID, string(rec.Type), rec.Filename, rec.ObjectKey, rec.DownloadURL,
		rec.AccountLogin, rec.SizeBytes, metadata, rec.Timestamp,
	)
	return err
}

func (s *PostgresRecordStore) Recent(ctx context.Context, limit int) ([]contracts.ScreenshotRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, type, filename, object_key, download_url, account_login, size_bytes, metadata, taken_at
		FROM app.screenshots
		ORDER BY taken_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.ScreenshotRecord
	for rows.Next() {
		var (
			rec      contracts.ScreenshotRecord
			typ      string
			metadata []byte
		)
		if err := rows.Scan(&rec.ID, &typ, &rec.Filename, &rec.ObjectKey, &rec.DownloadURL,
			&rec.AccountLogin, &rec.SizeBytes, &metadata, &rec.Timestamp); err != nil {
			return nil, err
		}
		rec.Type = contracts.ScreenshotType(typ)
		rec.Metadata = metadata
		out = append(out, rec)
	}
	return out, rows.Err()
}
