package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mbti-bot/internal/domain"
)

// DefaultRetention es el maximo de filas de historial por usuario.
const DefaultRetention = 5

// AssessmentStore define el contrato de persistencia para resultados e
// historial de diagnosticos.
type AssessmentStore interface {
	// Finalize persiste el cierre de una sesion y devuelve el resultado
	// anterior del usuario, si existia.
	Finalize(ctx context.Context, result domain.Result, entry domain.HistoryEntry) (*domain.Result, error)
	GetCurrentResult(ctx context.Context, userID string) (domain.Result, error)
	ListHistory(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error)
	ListTrend(ctx context.Context, userID string) ([]domain.HistoryEntry, error)
	DeleteRecent(ctx context.Context, userID string, count int) (int64, error)
}

// PgAssessmentRepository implementa AssessmentStore usando pgxpool.
type PgAssessmentRepository struct {
	pool      *pgxpool.Pool
	retention int
}

func NewPgAssessmentRepository(pool *pgxpool.Pool) *PgAssessmentRepository {
	return &PgAssessmentRepository{pool: pool, retention: DefaultRetention}
}

// NewPgAssessmentRepositoryWithRetention permite un limite distinto al default.
func NewPgAssessmentRepositoryWithRetention(pool *pgxpool.Pool, retention int) *PgAssessmentRepository {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &PgAssessmentRepository{pool: pool, retention: retention}
}

// Finalize commits a completed assessment in one transaction: read the
// previous result, upsert the current one, evict the oldest history row once
// the user is at the retention limit, then insert the new history entry. A
// failure at any step rolls back the whole sequence.
func (r *PgAssessmentRepository) Finalize(ctx context.Context, result domain.Result, entry domain.HistoryEntry) (*domain.Result, error) {
	scores, err := json.Marshal(entry.TraitScores)
	if err != nil {
		return nil, fmt.Errorf("marshal trait scores: %w", err)
	}
	atScores, err := json.Marshal(entry.SubtypeScores)
	if err != nil {
		return nil, fmt.Errorf("marshal subtype scores: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin finalize tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var previous *domain.Result
	const previousQuery = `
		SELECT user_id, username, result, subtype, timestamp
		FROM mbti_results
		WHERE user_id = $1
	`
	var prev domain.Result
	err = tx.QueryRow(ctx, previousQuery, result.UserID).Scan(
		&prev.UserID,
		&prev.Username,
		&prev.TypeCode,
		&prev.Subtype,
		&prev.Timestamp,
	)
	switch {
	case err == nil:
		previous = &prev
	case errors.Is(err, pgx.ErrNoRows):
		// primer diagnostico del usuario
	default:
		return nil, fmt.Errorf("read previous result: %w", err)
	}

	const upsertQuery = `
		INSERT INTO mbti_results (user_id, username, result, subtype, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
			result = EXCLUDED.result,
			subtype = EXCLUDED.subtype,
			timestamp = EXCLUDED.timestamp
	`
	if _, err := tx.Exec(ctx, upsertQuery,
		result.UserID,
		result.Username,
		result.TypeCode,
		result.Subtype,
		result.Timestamp,
	); err != nil {
		return nil, fmt.Errorf("upsert result: %w", err)
	}

	var count int
	const countQuery = `SELECT COUNT(*) FROM mbti_history WHERE user_id = $1`
	if err := tx.QueryRow(ctx, countQuery, entry.UserID).Scan(&count); err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}

	if count >= r.retention {
		const evictQuery = `
			DELETE FROM mbti_history WHERE id = (
				SELECT id FROM mbti_history
				WHERE user_id = $1
				ORDER BY timestamp ASC
				LIMIT 1
			)
		`
		if _, err := tx.Exec(ctx, evictQuery, entry.UserID); err != nil {
			return nil, fmt.Errorf("evict oldest history: %w", err)
		}
	}

	const insertQuery = `
		INSERT INTO mbti_history (user_id, username, result, subtype, scores, at_scores, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.Exec(ctx, insertQuery,
		entry.UserID,
		entry.Username,
		entry.TypeCode,
		entry.Subtype,
		scores,
		atScores,
		entry.Timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit finalize tx: %w", err)
	}
	return previous, nil
}

func (r *PgAssessmentRepository) GetCurrentResult(ctx context.Context, userID string) (domain.Result, error) {
	const query = `
		SELECT user_id, username, result, subtype, timestamp
		FROM mbti_results
		WHERE user_id = $1
	`
	var res domain.Result
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&res.UserID,
		&res.Username,
		&res.TypeCode,
		&res.Subtype,
		&res.Timestamp,
	)
	if err != nil {
		return domain.Result{}, err
	}
	return res, nil
}

// ListHistory devuelve las entradas mas recientes primero.
func (r *PgAssessmentRepository) ListHistory(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 || limit > r.retention {
		limit = r.retention
	}
	const query = `
		SELECT id, user_id, username, result, subtype, scores, at_scores, timestamp
		FROM mbti_history
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`
	return r.listEntries(ctx, query, userID, limit)
}

// ListTrend devuelve las entradas en orden cronologico para las vistas de
// tendencia.
func (r *PgAssessmentRepository) ListTrend(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	const query = `
		SELECT id, user_id, username, result, subtype, scores, at_scores, timestamp
		FROM mbti_history
		WHERE user_id = $1
		ORDER BY timestamp ASC
		LIMIT $2
	`
	return r.listEntries(ctx, query, userID, r.retention)
}

// DeleteRecent borra las `count` entradas mas recientes del usuario y devuelve
// cuantas filas se eliminaron realmente.
func (r *PgAssessmentRepository) DeleteRecent(ctx context.Context, userID string, count int) (int64, error) {
	const query = `
		DELETE FROM mbti_history WHERE id IN (
			SELECT id FROM mbti_history
			WHERE user_id = $1
			ORDER BY timestamp DESC
			LIMIT $2
		)
	`
	tag, err := r.pool.Exec(ctx, query, userID, count)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgAssessmentRepository) listEntries(ctx context.Context, query, userID string, limit int) ([]domain.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func scanHistoryEntry(row pgx.Row) (domain.HistoryEntry, error) {
	var (
		entry    domain.HistoryEntry
		scores   []byte
		atScores []byte
	)
	if err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Username,
		&entry.TypeCode,
		&entry.Subtype,
		&scores,
		&atScores,
		&entry.Timestamp,
	); err != nil {
		return domain.HistoryEntry{}, err
	}
	if len(scores) > 0 {
		if err := json.Unmarshal(scores, &entry.TraitScores); err != nil {
			return domain.HistoryEntry{}, fmt.Errorf("unmarshal trait scores: %w", err)
		}
	}
	if len(atScores) > 0 {
		if err := json.Unmarshal(atScores, &entry.SubtypeScores); err != nil {
			return domain.HistoryEntry{}, fmt.Errorf("unmarshal subtype scores: %w", err)
		}
	}
	return entry, nil
}
