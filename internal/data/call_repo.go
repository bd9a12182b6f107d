package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/target/shortener/internal/core"
	"github.com/target/shortener/internal/data/pgxutil"
	"github.com/target/shortener/internal/domain/model"
	apperrors "github.com/target/shortener/internal/errors"
)

var _ core.CallRepository = (*CallRepo)(nil)

// CallRepo stores and aggregates redirect usage records.
type CallRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCallRepo creates a new CallRepo with real time provider.
func NewCallRepo(db *sql.DB) *CallRepo {
	return &CallRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewCallRepoWithTimeProvider creates a new CallRepo with a custom time provider.
func NewCallRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *CallRepo {
	return &CallRepo{DB: db, timeProvider: tp}
}

// AddCall records one redirect. A zero CreatedAt is stamped with the current time.
func (r *CallRepo) AddCall(ctx context.Context, call *model.Call) error {
	if call == nil {
		return errors.New("call is required")
	}
	if call.CreatedAt.IsZero() {
		call.CreatedAt = r.timeProvider.Now().UTC()
	}

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			INSERT INTO calls (key, user_id, ip, user_agent, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			call.Key, call.UserID, call.IP, call.UserAgent, call.CreatedAt,
		).Scan(&call.ID)
	})
	return apperrors.MapDBError(err)
}

// DeleteCalls removes every usage record of the given keys.
func (r *CallRepo) DeleteCalls(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `DELETE FROM calls WHERE key = ANY($1)`, keys)
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

// CallsPerDate counts the calls of key grouped by UTC day, oldest day first.
func (r *CallRepo) CallsPerDate(ctx context.Context, key string) ([]model.DailyCalls, error) {
	rows, err := pgxutil.CollectAll[model.DailyCalls](ctx, r.DB, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, count(*)::int AS calls
		FROM calls
		WHERE key = $1
		GROUP BY day
		ORDER BY day`, key)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return rows, nil
}

// UniqueCallers counts the calls of key per distinct (ip, user agent) pair.
func (r *CallRepo) UniqueCallers(ctx context.Context, key string) ([]model.CallerCalls, error) {
	rows, err := pgxutil.CollectAll[model.CallerCalls](ctx, r.DB, `
		SELECT ip, user_agent, count(*)::int AS calls
		FROM calls
		WHERE key = $1
		GROUP BY ip, user_agent
		ORDER BY calls DESC`, key)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return rows, nil
}
