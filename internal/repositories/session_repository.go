package repositories

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"

	"dumplin/internal/models"
)

type SessionRepository interface {
	CreateTx(tx *sql.Tx, s *models.Session) error
	// GetWithUserByToken — сессия + владелец одним запросом, только
	// непросроченные. nil, nil, nil — если токена нет.
	GetWithUserByToken(token string) (*models.Session, *models.User, error)
	// DeleteByToken идемпотентен: удаление несуществующего токена — не ошибка.
	DeleteByToken(token string) error
	DeleteByUserID(userID uuid.UUID) error
	// Rotate атомарно заменяет старую сессию новой: старый токен
	// перестаёт действовать сразу.
	Rotate(oldToken string, next *models.Session) error
}

type sessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{DB: db}
}

func (r *sessionRepository) CreateTx(tx *sql.Tx, s *models.Session) error {
	const q = `
		INSERT INTO sessions (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := tx.QueryRow(q, s.UserID, s.Token, s.ExpiresAt).Scan(&s.ID, &s.CreatedAt); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) GetWithUserByToken(token string) (*models.Session, *models.User, error) {
	const q = `
		SELECT
			s.id, s.user_id, s.token, s.expires_at, s.created_at,
			u.id, u.phone_number, u.created_at, u.updated_at, u.deleted_at, u.dump_count
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1
		  AND s.expires_at > NOW()
		LIMIT 1
	`
	s := &models.Session{}
	u := &models.User{}
	var deletedAt sql.NullTime
	err := r.DB.QueryRow(q, token).Scan(
		&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.CreatedAt,
		&u.ID, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt, &deletedAt, &u.DumpCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("get session by token: %w", err)
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return s, u, nil
}

func (r *sessionRepository) DeleteByToken(token string) error {
	if _, err := r.DB.Exec(`DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *sessionRepository) DeleteByUserID(userID uuid.UUID) error {
	if _, err := r.DB.Exec(`DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete sessions by user: %w", err)
	}
	return nil
}

func (r *sessionRepository) Rotate(oldToken string, next *models.Session) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("rotate session: begin: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Printf("[session][rotate] rollback failed: %v", rbErr)
		}
	}()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE token = $1`, oldToken); err != nil {
		return fmt.Errorf("rotate session: delete old: %w", err)
	}
	if err := r.CreateTx(tx, next); err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rotate session: commit: %w", err)
	}
	return nil
}
