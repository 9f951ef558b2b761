package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

const sessionColumns = "id, token, user_id, expires_at, ip_address, user_agent, created_at"

// SessionRepository persists opaque session tokens.
type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.UserSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO user_sessions (id, token, user_id, expires_at, ip_address, user_agent, created_at) VALUES (:id, :token, :user_id, :expires_at, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindActiveByToken returns the session for token if it has not expired at now.
func (r *SessionRepository) FindActiveByToken(ctx context.Context, token string, now time.Time) (*models.UserSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE token = $1 AND expires_at > $2 LIMIT 1`
	var session models.UserSession
	if err := r.db.GetContext(ctx, &session, query, token, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// FindByID returns a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.UserSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE id = $1 LIMIT 1`
	var session models.UserSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find session by id: %w", err)
	}
	return &session, nil
}

// ListActiveByUser returns a user's unexpired sessions, newest first.
func (r *SessionRepository) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]models.UserSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE user_id = $1 AND expires_at > $2 ORDER BY created_at DESC`
	sessions := []models.UserSession{}
	if err := r.db.SelectContext(ctx, &sessions, query, userID, now); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Delete removes a session by id.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return expectAffected(res)
}

// DeleteOthers removes every session of userID except keepID.
func (r *SessionRepository) DeleteOthers(ctx context.Context, userID, keepID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE user_id = $1 AND id <> $2`, userID, keepID)
	if err != nil {
		return 0, fmt.Errorf("delete other sessions: %w", err)
	}
	return res.RowsAffected()
}

// DeleteExpired purges sessions past their expiry and reports how many went.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
