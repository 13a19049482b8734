package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/amolnak/GuidanceMind/internal/common"
	"github.com/amolnak/GuidanceMind/internal/entity"
)

// SessionRepository stores one row per named session with its results as JSON.
type SessionRepository interface {
	Load(ctx context.Context, name string) (entity.SessionSnapshot, bool, error)
	Save(ctx context.Context, snap entity.SessionSnapshot) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]entity.SessionSnapshot, error)
}

type sessionRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewSessionRepository(db *DB, logger *slog.Logger) SessionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &sessionRepository{db: db, logger: logger}
}

func (r *sessionRepository) Load(ctx context.Context, name string) (entity.SessionSnapshot, bool, error) {
	row := r.db.QueryRowContext(ctx,
		r.db.Rebind(`SELECT name, next_row, results, updated_at FROM sessions WHERE name = ?`), name)
	snap, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.SessionSnapshot{}, false, nil
	}
	if err != nil {
		r.logger.Error("failed to load session", "session", name, "error", err)
		return entity.SessionSnapshot{}, false, common.NewAppError(common.ErrStore, "load session", err)
	}
	return snap, true, nil
}

func (r *sessionRepository) Save(ctx context.Context, snap entity.SessionSnapshot) error {
	results := snap.Results
	if results == nil {
		results = []entity.ExtractionResult{}
	}
	b, err := json.Marshal(results)
	if err != nil {
		return common.NewAppError(common.ErrStore, "encode results", err)
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO sessions (name, next_row, results, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			next_row = excluded.next_row,
			results = excluded.results,
			updated_at = excluded.updated_at`),
		snap.Name, snap.Cursor, string(b), snap.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		r.logger.Error("failed to save session", "session", snap.Name, "cursor", snap.Cursor, "error", err)
		return common.NewAppError(common.ErrStore, "save session", err)
	}
	r.logger.Debug("session saved", "session", snap.Name, "cursor", snap.Cursor, "results", len(results))
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE name = ?`), name); err != nil {
		r.logger.Error("failed to delete session", "session", name, "error", err)
		return common.NewAppError(common.ErrStore, "delete session", err)
	}
	return nil
}

func (r *sessionRepository) List(ctx context.Context) ([]entity.SessionSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, next_row, results, updated_at FROM sessions ORDER BY name`)
	if err != nil {
		return nil, common.NewAppError(common.ErrStore, "list sessions", err)
	}
	defer rows.Close()

	var out []entity.SessionSnapshot
	for rows.Next() {
		snap, err := scanSession(rows.Scan)
		if err != nil {
			return nil, common.NewAppError(common.ErrStore, "scan session", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.ErrStore, "list sessions", err)
	}
	return out, nil
}

func scanSession(scan func(dest ...any) error) (entity.SessionSnapshot, error) {
	var (
		snap    entity.SessionSnapshot
		results string
		updated string
	)
	if err := scan(&snap.Name, &snap.Cursor, &results, &updated); err != nil {
		return entity.SessionSnapshot{}, err
	}
	if err := json.Unmarshal([]byte(results), &snap.Results); err != nil {
		return entity.SessionSnapshot{}, err
	}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		snap.UpdatedAt = t
	}
	return snap, nil
}
