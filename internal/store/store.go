package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ev-admin-backend/internal/query"
)

// Store is the data-access layer shared by the API handlers and the booking
// orchestrator.
type Store interface {
	DB() *gorm.DB
	Writer() *Writer
	// List executes a filtered, paginated SELECT plus its companion count
	// query and returns one page of rows with totals.
	List(ctx context.Context, spec query.Spec) (*query.Result, error)
}

type gormStore struct {
	db     *gorm.DB
	writer *Writer
}

// New creates a GORM-backed store.
func New(db *gorm.DB) Store {
	return &gormStore{db: db, writer: NewWriter(db)}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

func (s *gormStore) Writer() *Writer { return s.writer }

// List runs the count query first, then the row query. The count executes once
// per call; freshness is preferred over cross-request count caching (the
// response-cache middleware provides a short TTL at the HTTP boundary
// instead).
func (s *gormStore) List(ctx context.Context, spec query.Spec) (*query.Result, error) {
	countSQL, countArgs, err := spec.CountSQL()
	if err != nil {
		return nil, err
	}
	rowSQL, rowArgs, err := spec.Build()
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.db.WithContext(ctx).Raw(countSQL, countArgs...).Scan(&total).Error; err != nil {
		return nil, fmt.Errorf("count query on %s failed: %w", spec.Table, err)
	}

	rows := make([]map[string]any, 0, spec.PageSize)
	if err := s.db.WithContext(ctx).Raw(rowSQL, rowArgs...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list query on %s failed: %w", spec.Table, err)
	}

	return &query.Result{
		Rows:       rows,
		Total:      total,
		TotalPages: query.Pages(total, spec.PageSize),
	}, nil
}
