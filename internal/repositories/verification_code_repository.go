package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

type VerificationCodeRepository interface {
	// Upsert — новая отправка перезаписывает прежний код номера
	// (нативный ON CONFLICT, без read-then-write).
	Upsert(phone, code string, expiresAt time.Time) error
	// ConsumeActiveTx помечает использованным действующий код номера,
	// если он совпал. false — нет подходящей строки (неверный/просроченный/использованный).
	ConsumeActiveTx(tx *sql.Tx, phone, code string) (bool, error)
}

type verificationCodeRepository struct {
	DB *sql.DB
}

func NewVerificationCodeRepository(db *sql.DB) VerificationCodeRepository {
	return &verificationCodeRepository{DB: db}
}

func (r *verificationCodeRepository) Upsert(phone, code string, expiresAt time.Time) error {
	const q = `
		INSERT INTO verification_codes (phone_number, code, expires_at, used, created_at)
		VALUES ($1, $2, $3, FALSE, NOW())
		ON CONFLICT (phone_number)
		DO UPDATE SET
			code = EXCLUDED.code,
			expires_at = EXCLUDED.expires_at,
			used = FALSE,
			created_at = NOW()
	`
	if _, err := r.DB.Exec(q, phone, code, expiresAt); err != nil {
		return fmt.Errorf("upsert verification code: %w", err)
	}
	return nil
}

func (r *verificationCodeRepository) ConsumeActiveTx(tx *sql.Tx, phone, code string) (bool, error) {
	const q = `
		UPDATE verification_codes
		SET used = TRUE
		WHERE phone_number = $1
		  AND code = $2
		  AND expires_at > NOW()
		  AND used = FALSE
	`
	res, err := tx.Exec(q, phone, code)
	if err != nil {
		return false, fmt.Errorf("consume verification code: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume verification code: rows affected: %w", err)
	}
	return n > 0, nil
}
