package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostgresWithDBMigrates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "uploads"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s, err := NewPostgresWithDB(context.Background(), db, "")
	require.NoError(t, err)
	assert.Equal(t, `"uploads"`, s.table)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresWithDBQuotesTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "bot ""uploads"""`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = NewPostgresWithDB(context.Background(), db, `bot "uploads"`)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresWithDBMigrationError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

	_, err = NewPostgresWithDB(context.Background(), db, "uploads")
	assert.ErrorContains(t, err, "permission denied")
}

func TestRecordUpload(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := NewPostgresWithDB(context.Background(), db, "uploads")
	require.NoError(t, err)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "uploads" (filename, size, uploaded_at)`)).
		WithArgs("f.txt", int64(1), at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.RecordUpload(context.Background(), Upload{Filename: "f.txt", Size: 1, UploadedAt: at}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordUploadDefaultsTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := NewPostgresWithDB(context.Background(), db, "uploads")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO").
		WithArgs("f.txt", int64(7), sqlmock.AnyArg()).
		WillReturnError(errors.New("conn reset"))

	err = s.RecordUpload(context.Background(), Upload{Filename: "f.txt", Size: 7})
	assert.ErrorContains(t, err, "record upload f.txt")
	assert.NoError(t, mock.ExpectationsWereMet())
}
