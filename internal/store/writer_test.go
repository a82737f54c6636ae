package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ev-admin-backend/internal/query"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestWriter_Insert(t *testing.T) {
	db, mock := newTestDB(t)
	w := NewWriter(db)

	mock.ExpectExec(`INSERT INTO portable_charger_histories \(booking_id, status, actor, reason\) VALUES`).
		WithArgs("PCB0001", "C", "user:7", "changed mind").
		WillReturnResult(sqlmock.NewResult(1, 1))

	n, err := w.Insert(context.Background(), "portable_charger_histories",
		[]string{"booking_id", "status", "actor", "reason"},
		[]any{"PCB0001", "C", "user:7", "changed mind"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriter_Insert_RejectsMismatchedColumns(t *testing.T) {
	db, _ := newTestDB(t)
	w := NewWriter(db)

	_, err := w.Insert(context.Background(), "agents",
		[]string{"id", "name"}, []any{"RSA-1"})

	assert.ErrorIs(t, err, query.ErrBadSpec)
}

func TestWriter_Update_CompositeKey(t *testing.T) {
	db, mock := newTestDB(t)
	w := NewWriter(db)

	// Set columns are emitted in sorted order; both key fields appear in the
	// WHERE clause.
	mock.ExpectExec(`UPDATE portable_charger_bookings SET agent_id = .+, lock_version = .+, status = .+ WHERE id = .+ AND lock_version = .+`).
		WithArgs("RSA-2", int64(4), "A", "PCB0001", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := w.Update(context.Background(), "portable_charger_bookings",
		map[string]any{"status": "A", "agent_id": "RSA-2", "lock_version": int64(4)},
		[]string{"id", "lock_version"}, []any{"PCB0001", int64(3)})

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriter_Update_ZeroRowsIsNotAnError(t *testing.T) {
	db, mock := newTestDB(t)
	w := NewWriter(db)

	mock.ExpectExec(`UPDATE agents SET status = .+ WHERE id = .+`).
		WithArgs(0, "RSA-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := w.Update(context.Background(), "agents",
		map[string]any{"status": 0}, []string{"id"}, []any{"RSA-404"})

	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestWriter_Update_RejectsMissingKeys(t *testing.T) {
	db, _ := newTestDB(t)
	w := NewWriter(db)

	_, err := w.Update(context.Background(), "agents",
		map[string]any{"status": 1}, nil, nil)

	assert.ErrorIs(t, err, query.ErrBadSpec)
}

func TestWriter_Delete(t *testing.T) {
	db, mock := newTestDB(t)
	w := NewWriter(db)

	mock.ExpectExec(`DELETE FROM portable_charger_assignments WHERE booking_id = .+`).
		WithArgs("PCB0001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := w.Delete(context.Background(), "portable_charger_assignments",
		[]string{"booking_id"}, []any{"PCB0001"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
