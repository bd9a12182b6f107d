package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/target/shortener/internal/core"
	"github.com/target/shortener/internal/data/pgxutil"
	"github.com/target/shortener/internal/domain/model"
	apperrors "github.com/target/shortener/internal/errors"
)

const entryColumns = `key, owner_id, long_url, persistent, created_at, updated_at`

var (
	_ core.EntryRepository       = (*EntryRepo)(nil)
	_ core.MaintenanceRepository = (*EntryRepo)(nil)
)

// EntryRepo provides database operations for short URL entries.
type EntryRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewEntryRepo creates a new EntryRepo with real time provider.
func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewEntryRepoWithTimeProvider creates a new EntryRepo with a custom time provider (useful for tests).
func NewEntryRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *EntryRepo {
	return &EntryRepo{DB: db, timeProvider: tp}
}

// Exists reports whether key is taken.
func (r *EntryRepo) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM entries WHERE key = $1)`, key).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("check key: %w", apperrors.MapDBError(err))
	}
	return exists, nil
}

// FindEntry loads the entry stored under key.
func (r *EntryRepo) FindEntry(ctx context.Context, key string) (*model.Entry, error) {
	entry, err := pgxutil.CollectOne[model.Entry](ctx, r.DB,
		`SELECT `+entryColumns+` FROM entries WHERE key = $1`, key)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return entry, nil
}

// InsertEntry stores a new entry. A taken key yields a Conflict error.
func (r *EntryRepo) InsertEntry(ctx context.Context, entry *model.Entry) (*model.Entry, error) {
	if entry == nil {
		return nil, errors.New("entry is required")
	}

	now := r.timeProvider.Now().UTC()
	created, err := pgxutil.CollectOne[model.Entry](ctx, r.DB, `
		INSERT INTO entries (key, owner_id, long_url, persistent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING `+entryColumns,
		entry.Key, entry.OwnerID, entry.LongURL, entry.Persistent, now)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return created, nil
}

// UpdateEntry applies the non-nil fields of req to the entry stored under key.
func (r *EntryRepo) UpdateEntry(
	ctx context.Context,
	key string,
	req *model.UpdateEntryRequest,
) (*model.Entry, error) {
	if req == nil || !req.HasUpdates() {
		return nil, apperrors.Validation("body must contain at least one property: longurl, persistent")
	}

	updated, err := pgxutil.CollectOne[model.Entry](ctx, r.DB, `
		UPDATE entries
		SET long_url = COALESCE($2, long_url),
		    persistent = COALESCE($3, persistent),
		    updated_at = $4
		WHERE key = $1
		RETURNING `+entryColumns,
		key, req.LongURL, req.Persistent, r.timeProvider.Now().UTC())
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return updated, nil
}

// DeleteEntry removes the entry stored under key. It reports whether a row was deleted.
func (r *EntryRepo) DeleteEntry(ctx context.Context, key string) (bool, error) {
	n, err := r.exec(ctx, `DELETE FROM entries WHERE key = $1`, key)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListKeys lists the keys owned by ownerID, or every key when ownerID is empty.
func (r *EntryRepo) ListKeys(ctx context.Context, ownerID string) ([]string, error) {
	var (
		keys []string
		err  error
	)
	if ownerID == "" {
		keys, err = pgxutil.CollectStrings(ctx, r.DB, `SELECT key FROM entries ORDER BY created_at, key`)
	} else {
		keys, err = pgxutil.CollectStrings(ctx, r.DB,
			`SELECT key FROM entries WHERE owner_id = $1 ORDER BY created_at, key`, ownerID)
	}
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// FindExpiredKeys returns up to limit non-persistent keys created at least maxAge ago, oldest first.
func (r *EntryRepo) FindExpiredKeys(ctx context.Context, maxAge time.Duration, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	cutoff := r.timeProvider.Now().UTC().Add(-maxAge)
	keys, err := pgxutil.CollectStrings(ctx, r.DB, `
		SELECT key FROM entries
		WHERE persistent = FALSE AND created_at <= $1
		ORDER BY created_at
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return keys, nil
}

// DeleteEntries removes the given keys and returns the number of rows deleted.
func (r *EntryRepo) DeleteEntries(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return r.exec(ctx, `DELETE FROM entries WHERE key = ANY($1)`, keys)
}

func (r *EntryRepo) exec(ctx context.Context, query string, args ...any) (int64, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return affected, nil
}
