package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"route-weather-service/internal/platform/obs"
)

// SQLStore is a Postgres-backed ports.Store over the lookup_cache table.
type SQLStore struct {
	DB  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db, now: time.Now}
}

func (s *SQLStore) timeNow() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Fetch a cached value that has not expired yet.
func (s *SQLStore) Get(ctx context.Context, key string) (_ []byte, _ bool, err error) {
	defer obs.Time(ctx, "lookup.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("lookup cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get lookup cache: key must not be empty")
	}

	q := `
	SELECT value
    FROM lookup_cache
    WHERE key = $1
        AND (expires_at IS NULL OR expires_at > $2);
	`

	var value string
	err = s.DB.QueryRowContext(ctx, q, key, s.timeNow()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get lookup cache: query lookup_cache table: %w", err)
	}

	return []byte(value), true, nil
}

// Store a value; a non-positive ttl never expires.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.DB == nil {
		return errors.New("lookup cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert lookup cache: key must not be empty")
	}

	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: s.timeNow().Add(ttl), Valid: true}
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO lookup_cache (key, value, expires_at)
    VALUES ($1, $2, $3)
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value,
		expires_at = EXCLUDED.expires_at;
	`, key, string(value), expiresAt)
	if err != nil {
		return fmt.Errorf("insert lookup cache key=%q: %w", key, err)
	}

	return nil
}

// PurgeExpired deletes expired rows and reports how many were removed.
func (s *SQLStore) PurgeExpired(ctx context.Context) (int64, error) {
	if s.DB == nil {
		return 0, errors.New("lookup cache: db is nil")
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM lookup_cache WHERE expires_at IS NOT NULL AND expires_at <= $1;`, s.timeNow())
	if err != nil {
		return 0, fmt.Errorf("purge lookup cache: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge lookup cache: rows affected: %w", err)
	}
	return n, nil
}
