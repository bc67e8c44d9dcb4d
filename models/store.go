package models

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the catalog and ledger repositories over one gorm handle,
// which is either the connection pool or an open transaction.
type Store struct {
	db       *gorm.DB
	Products *ProductsRepository
	Ledger   *LedgerRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Products: NewProductsRepository(db),
		Ledger:   NewLedgerRepository(db),
	}
}

// Transaction runs fn against a Store bound to a new transaction. It commits
// when fn returns nil and rolls back otherwise, returning fn's error as is.
// Called on a Store that is already transactional it opens a savepoint, so a
// failing nested fn undoes only its own writes.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
