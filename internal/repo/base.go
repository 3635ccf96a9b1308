package repo

import (
	"context"

	"gorm.io/gorm"
)

// Table is an append-only view over a table whose rows carry an
// autoincrement id column. Rows are always read back in id order.
type Table[T any] struct {
	db *gorm.DB
}

// NewTable binds a Table to the provided GORM connection.
func NewTable[T any](db *gorm.DB) Table[T] {
	return Table[T]{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (t Table[T]) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return t.db
	}
	return t.db.WithContext(ctx)
}

// Append inserts row; the generated id is written back into it.
func (t Table[T]) Append(ctx context.Context, row *T) error {
	return t.DB(ctx).Create(row).Error
}

// All returns every row, oldest first.
func (t Table[T]) All(ctx context.Context) ([]T, error) {
	var rows []T
	if err := t.DB(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// After returns at most limit rows with an id greater than afterID.
func (t Table[T]) After(ctx context.Context, afterID int64, limit int) ([]T, error) {
	query := t.DB(ctx).Order("id ASC").Limit(limit)
	if afterID > 0 {
		query = query.Where("id > ?", afterID)
	}
	var rows []T
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
