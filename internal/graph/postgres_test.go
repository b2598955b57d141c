package graph

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return NewPostgresStore(db), mock, db
}

func TestPostgresStore_MergeNode(t *testing.T) {
	store, mock, db := setupPostgresStore(t)
	defer db.Close()

	t.Run("inserts with conflict no-op", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(mergeNodeSQL)).
			WithArgs("Service", "ec2").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.MergeNode(context.Background(), ServiceLabel, "ec2"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing node affects no rows", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(mergeNodeSQL)).
			WithArgs("Service", "ec2").
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, store.MergeNode(context.Background(), ServiceLabel, "ec2"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps driver error", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(mergeNodeSQL)).
			WithArgs("Service", "s3").
			WillReturnError(sql.ErrConnDone)

		err := store.MergeNode(context.Background(), ServiceLabel, "s3")
		assert.ErrorIs(t, err, sql.ErrConnDone)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid label never reaches the database", func(t *testing.T) {
		err := store.MergeNode(context.Background(), "bad label", "s3")
		assert.ErrorIs(t, err, ErrInvalidLabel)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_Probe(t *testing.T) {
	store, mock, db := setupPostgresStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(probeSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	require.NoError(t, store.Probe(context.Background()))

	refused := errors.New("connection refused")
	mock.ExpectQuery(regexp.QuoteMeta(probeSQL)).WillReturnError(refused)
	err := store.Probe(context.Background())
	assert.ErrorIs(t, err, refused)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EnsureSchemaAndCount(t *testing.T) {
	store, mock, db := setupPostgresStore(t)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS graph_nodes`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, store.EnsureSchema(context.Background()))

	mock.ExpectQuery(regexp.QuoteMeta(countNodeSQL)).
		WithArgs("Service").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	n, err := store.CountNodes(context.Background(), ServiceLabel)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Close(t *testing.T) {
	store, mock, _ := setupPostgresStore(t)

	mock.ExpectClose()
	require.NoError(t, store.Close(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenPostgres(t *testing.T) {
	for _, driver := range []string{"pgx", "postgres"} {
		store, err := OpenPostgres(driver, "postgres://user:pw@localhost:5432/graph?sslmode=disable")
		require.NoError(t, err, driver)
		require.NoError(t, store.Close(context.Background()))
	}

	_, err := OpenPostgres("mysql", "whatever")
	assert.Error(t, err)
}
