package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockMariaRepo(t *testing.T) (*MariaUserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &MariaUserRepo{db: db}, mock
}

func TestMariaSchemaUsesDatetimeForLastLogin(t *testing.T) {
	repo, mock := newMockMariaRepo(t)

	// The never-logged-in marker is epoch zero, which a TIMESTAMP column
	// cannot hold (its minimum is 1970-01-01 00:00:01). The schema must
	// declare DATETIME so inserts of fresh accounts succeed under strict
	// SQL mode.
	mock.ExpectExec("last_login_date DATETIME NOT NULL").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.createTables())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMariaCreateBindsEpochLastLogin(t *testing.T) {
	repo, mock := newMockMariaRepo(t)

	user := NewUser("Alice", "hashedpw", "Alice@Example.com")

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "hashedpw", "alice@example.com", "ROLE_USER",
			0, 0, 0, []byte("[]"), time.Unix(0, 0).UTC()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	created, err := repo.Create(user)
	require.NoError(t, err)
	assert.Equal(t, "7", created.ID)
	assert.Equal(t, "alice", created.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMariaCreateDuplicate(t *testing.T) {
	repo, mock := newMockMariaRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'alice' for key 'username'"))

	_, err := repo.Create(NewUser("alice", "hashedpw", "alice@example.com"))
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestMariaUpdateNeverLoggedInUser(t *testing.T) {
	repo, mock := newMockMariaRepo(t)

	user := NewUser("alice", "hashedpw", "alice@example.com")
	user.ID = "7"
	user.Coins = 100

	mock.ExpectExec("UPDATE users SET").
		WithArgs("hashedpw", "ROLE_USER", 100, 0, 0, []byte("[]"),
			time.Unix(0, 0).UTC(), nil, nil, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.Update(user)
	require.NoError(t, err)
	assert.Equal(t, 100, updated.Coins)
	assert.NoError(t, mock.ExpectationsWereMet())
}
