package leads

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSink(t *testing.T) (*PostgresSink, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresSink(sqlx.NewDb(db, "postgres")), mock
}

func TestPostgresSinkInserts(t *testing.T) {
	sink, mock := newMockSink(t)
	rec := sampleRecord()

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(rec.Name, rec.Project, rec.Budget, rec.Contact, rec.UserID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, sink.Record(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkWrapsFailures(t *testing.T) {
	sink, mock := newMockSink(t)
	boom := errors.New("connection reset")

	mock.ExpectExec("INSERT INTO leads").WillReturnError(boom)

	err := sink.Record(context.Background(), sampleRecord())
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, BackendPostgres, se.Backend)
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
