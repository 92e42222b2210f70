package repositories

import (
	"database/sql"
	"fmt"
	"log"
)

// TxRunner исполняет fn в одной транзакции: rollback при ошибке, иначе commit.
type TxRunner interface {
	WithinTx(fn func(tx *sql.Tx) error) error
}

type txRunner struct {
	DB *sql.DB
}

func NewTxRunner(db *sql.DB) TxRunner {
	return &txRunner{DB: db}
}

func (r *txRunner) WithinTx(fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Printf("[db][tx] rollback failed: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
