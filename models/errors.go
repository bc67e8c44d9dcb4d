package models

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateSku is returned when inserting a product whose SKU already exists.
	ErrDuplicateSku = errors.New("product with this sku already exists")
	// ErrOutOfStock is returned when selling a product with no stock left.
	ErrOutOfStock = errors.New("product is out of stock")
	// ErrInvalidArgument marks bad caller input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// SkuError ties a domain error to the SKU that triggered it.
type SkuError struct {
	SKU string
	Err error
}

func (e *SkuError) Error() string {
	return fmt.Sprintf("sku %q: %v", e.SKU, e.Err)
}

func (e *SkuError) Unwrap() error { return e.Err }

// StorageError wraps a failure of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
