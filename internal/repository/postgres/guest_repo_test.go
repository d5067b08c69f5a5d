package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"gatherly/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func testGuest() *domain.Guest {
	userID := "user-1"
	return &domain.Guest{
		ID:          "guest-1",
		EventID:     "ev-1",
		UserID:      &userID,
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Phone:       "+15550001234",
		CountryCode: "US",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestGuestRepository_InsertIfRoom(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		mock       func(mock sqlmock.Sqlmock)
		wantOK     bool
		wantErr    bool
		wantErrIs  error
	}{
		{
			name: "room available",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT COALESCE\(v.capacity, 0\)`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(10))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM guests`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
				mock.ExpectExec(`INSERT INTO guests`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantOK: true,
		},
		{
			name: "venue full aborts without inserting",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT COALESCE\(v.capacity, 0\)`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM guests`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
				mock.ExpectRollback()
			},
			wantOK: false,
		},
		{
			name: "unbounded skips the count",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT COALESCE\(v.capacity, 0\)`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(0))
				mock.ExpectExec(`INSERT INTO guests`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantOK: true,
		},
		{
			name: "event missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT COALESCE\(v.capacity, 0\)`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr:   true,
			wantErrIs: domain.ErrNotFound,
		},
		{
			name: "duplicate unique violation",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT COALESCE\(v.capacity, 0\)`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(10))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM guests`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
				mock.ExpectExec(`INSERT INTO guests`).
					WillReturnError(&pq.Error{Code: "23505"})
				mock.ExpectRollback()
			},
			wantErr:   true,
			wantErrIs: domain.ErrAlreadyRegistered,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT COALESCE\(v.capacity, 0\)`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewGuestRepository(db)
			ok, err := repo.InsertIfRoom(ctx, testGuest())
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrIs != nil {
					require.True(t, errors.Is(err, tt.wantErrIs))
				}
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantOK, ok)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGuestRepository_Remove_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// No matching row is still a success.
	mock.ExpectExec(`DELETE FROM guests WHERE event_id = \$1 AND user_id = \$2`).
		WithArgs("ev-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewGuestRepository(db)
	require.NoError(t, repo.Remove(ctx, "ev-1", "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGuestRepository_RemoveByID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM guests WHERE event_id = \$1 AND id = \$2`).
		WithArgs("ev-1", "guest-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewGuestRepository(db)
	err = repo.RemoveByID(ctx, "ev-1", "guest-missing")
	require.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGuestRepository_EmailExists(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		exclude *string
		exists  bool
	}{
		{name: "exists", exists: true},
		{name: "absent", exists: false},
		{name: "excluding a guest", exclude: strPtr("guest-1"), exists: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			expect := mock.ExpectQuery(`SELECT EXISTS`)
			if tt.exclude != nil {
				expect.WithArgs("ev-1", "ada@example.com", *tt.exclude)
			} else {
				expect.WithArgs("ev-1", "ada@example.com", nil)
			}
			expect.WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			repo := NewGuestRepository(db)
			got, err := repo.EmailExists(ctx, "ev-1", "ada@example.com", tt.exclude)
			require.NoError(t, err)
			require.Equal(t, tt.exists, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGuestRepository_IsUserJoined(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("ev-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewGuestRepository(db)
	joined, err := repo.IsUserJoined(ctx, "ev-1", "user-1")
	require.NoError(t, err)
	require.True(t, joined)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGuestRepository_ListByEventID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "event_id", "user_id", "first_name", "last_name", "email", "phone", "country_code", "created_at"}).
		AddRow("guest-1", "ev-1", "user-1", "Ada", "Lovelace", "ada@example.com", "+15550001234", "US", created).
		AddRow("guest-2", "ev-1", nil, "Manual", "Guest", "manual@example.com", nil, "US", created)
	mock.ExpectQuery(`SELECT id, event_id, user_id, first_name, last_name, email, phone, country_code, created_at`).
		WithArgs("ev-1").
		WillReturnRows(rows)

	repo := NewGuestRepository(db)
	guests, err := repo.ListByEventID(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, guests, 2)
	require.NotNil(t, guests[0].UserID)
	require.Nil(t, guests[1].UserID)
	require.Empty(t, guests[1].Phone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func strPtr(s string) *string { return &s }
