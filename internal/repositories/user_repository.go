package repositories

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"dumplin/internal/models"
)

type UserRepository interface {
	// GetByPhoneTx возвращает пользователя по номеру, включая soft-deleted
	// (реактивация должна их видеть). nil, nil — если нет.
	GetByPhoneTx(tx *sql.Tx, phone string) (*models.User, error)
	CreateTx(tx *sql.Tx, phone string) (*models.User, error)
	ReactivateTx(tx *sql.Tx, id uuid.UUID) error

	SoftDelete(id uuid.UUID) error
	UpdateDumpCount(id uuid.UUID, count int) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) GetByPhoneTx(tx *sql.Tx, phone string) (*models.User, error) {
	const q = `
		SELECT id, phone_number, created_at, updated_at, deleted_at, dump_count
		FROM users
		WHERE phone_number = $1
		LIMIT 1
	`
	u := &models.User{}
	var deletedAt sql.NullTime
	err := tx.QueryRow(q, phone).Scan(
		&u.ID, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt, &deletedAt, &u.DumpCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by phone: %w", err)
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return u, nil
}

func (r *userRepository) CreateTx(tx *sql.Tx, phone string) (*models.User, error) {
	const q = `
		INSERT INTO users (id, phone_number)
		VALUES ($1, $2)
		RETURNING id, phone_number, created_at, updated_at, dump_count
	`
	u := &models.User{}
	if err := tx.QueryRow(q, uuid.New(), phone).Scan(
		&u.ID, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt, &u.DumpCount,
	); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *userRepository) ReactivateTx(tx *sql.Tx, id uuid.UUID) error {
	const q = `
		UPDATE users
		SET deleted_at = NULL, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.Exec(q, id); err != nil {
		return fmt.Errorf("reactivate user: %w", err)
	}
	return nil
}

func (r *userRepository) SoftDelete(id uuid.UUID) error {
	const q = `
		UPDATE users
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	if _, err := r.DB.Exec(q, id); err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateDumpCount(id uuid.UUID, count int) error {
	const q = `
		UPDATE users
		SET dump_count = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`
	if _, err := r.DB.Exec(q, count, id); err != nil {
		return fmt.Errorf("update dump count: %w", err)
	}
	return nil
}
