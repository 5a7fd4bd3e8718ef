package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aba-necessity-server/internal/domain"
)

// Driver-level failures are hard to provoke against a real file, so these
// paths are exercised against a mocked driver.

func createMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &SQLiteStore{db: db, log: testLogger()}, mock
}

func TestGetByIDSurfacesDriverError(t *testing.T) {
	store, mock := createMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM claims WHERE id").
		WillReturnError(errors.New("disk I/O error"))

	_, err := store.GetByID(context.Background(), "claim-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "getting claim by id")
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRollsBackOnAuditInsertFailure(t *testing.T) {
	store, mock := createMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO claims").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err := store.Create(context.Background(), sampleClaim("claim-1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting audit entry")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransitionRollsBackOnUpdateFailure(t *testing.T) {
	store, mock := createMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE claims").
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	_, err := store.ApplyTransition(context.Background(), domain.TransitionRequest{
		ClaimID:  "claim-1",
		Expected: domain.StatusSubmitted,
		Target:   domain.StatusUnderReview,
		Actor:    domain.RoleInsurance,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "updating claim status")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsSurfacesDriverError(t *testing.T) {
	store, mock := createMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnError(errors.New("disk I/O error"))

	_, err := store.Stats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregating claim stats")

	assert.NoError(t, mock.ExpectationsWereMet())
}
