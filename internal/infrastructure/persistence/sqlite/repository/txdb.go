package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"juryboard/internal/ports"
)

// dbFromContext prefers the transaction smuggled through the context by the
// unit of work; outside a transaction the repository's own handle is used.
func dbFromContext(ctx context.Context, fallback *gorm.DB) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return fallback.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}
