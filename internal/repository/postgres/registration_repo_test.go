package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusevents/internal/domain"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

var registrationCols = []string{
	"id", "event_id", "person_id", "state", "attended",
	"attended_at", "checkin_token", "token_expires_at", "created_at",
}

func TestRegistrationRepository_Create(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO registrations \(event_id, person_id, state, attended, created_at\)`).
					WithArgs("event-1", "person-1", domain.RegistrationActive, false, createdAt).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-uuid-1"))
			},
			wantID: "reg-uuid-1",
		},
		{
			name: "active registration already exists",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "registrations_one_active"})
			},
			wantErr: domain.ErrDuplicateRegistration,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.mock(mock)

			repo := NewRegistrationRepository(store)
			reg := &domain.Registration{
				EventID:   "event-1",
				PersonID:  "person-1",
				State:     domain.RegistrationActive,
				CreatedAt: createdAt,
			}
			err := repo.Create(ctx, reg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, reg.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	attendedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("found with nullable fields set", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT (.+) FROM registrations WHERE id = \$1`).
			WithArgs("reg-1").
			WillReturnRows(sqlmock.NewRows(registrationCols).
				AddRow("reg-1", "event-1", "person-1", "active", true,
					attendedAt, "CHK-abc", attendedAt.Add(2*time.Hour), createdAt))

		repo := NewRegistrationRepository(store)
		reg, err := repo.GetByID(ctx, "reg-1")
		require.NoError(t, err)
		assert.True(t, reg.Attended)
		require.NotNil(t, reg.CheckinToken)
		assert.Equal(t, "CHK-abc", *reg.CheckinToken)
		require.NotNil(t, reg.AttendedAt)
		assert.True(t, attendedAt.Equal(*reg.AttendedAt))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("found with nullable fields empty", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT (.+) FROM registrations WHERE id = \$1`).
			WithArgs("reg-1").
			WillReturnRows(sqlmock.NewRows(registrationCols).
				AddRow("reg-1", "event-1", "person-1", "active", false,
					nil, nil, nil, createdAt))

		repo := NewRegistrationRepository(store)
		reg, err := repo.GetByID(ctx, "reg-1")
		require.NoError(t, err)
		assert.Nil(t, reg.AttendedAt)
		assert.Nil(t, reg.CheckinToken)
		assert.Nil(t, reg.TokenExpiresAt)
	})

	t.Run("not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT (.+) FROM registrations WHERE id = \$1`).
			WithArgs("reg-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewRegistrationRepository(store)
		_, err := repo.GetByID(ctx, "reg-missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRegistrationRepository_GetByToken(t *testing.T) {
	store, mock := newMockStore(t)
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM registrations WHERE checkin_token = \$1`).
		WithArgs("CHK-abc").
		WillReturnRows(sqlmock.NewRows(registrationCols).
			AddRow("reg-1", "event-1", "person-1", "active", false,
				nil, "CHK-abc", nil, createdAt))

	repo := NewRegistrationRepository(store)
	reg, err := repo.GetByToken(context.Background(), "CHK-abc")
	require.NoError(t, err)
	assert.Equal(t, "reg-1", reg.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_CountActiveByEventID(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations WHERE event_id = \$1 AND state = \$2`).
		WithArgs("event-1", domain.RegistrationActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	repo := NewRegistrationRepository(store)
	count, err := repo.CountActiveByEventID(context.Background(), "event-1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestRegistrationRepository_HasActive(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("event-1", "person-1", domain.RegistrationActive).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewRegistrationRepository(store)
	ok, err := repo.HasActive(context.Background(), "event-1", "person-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegistrationRepository_SetCancelled(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		want         bool
	}{
		{"active seat cancelled", 1, true},
		{"already cancelled", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			mock.ExpectExec(`UPDATE registrations SET state = \$1 WHERE id = \$2 AND state = \$3`).
				WithArgs(domain.RegistrationCancelled, "reg-1", domain.RegistrationActive).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			repo := NewRegistrationRepository(store)
			ok, err := repo.SetCancelled(context.Background(), "reg-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_SetAttended(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("marks attendance and clears token", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE registrations\s+SET attended = TRUE, attended_at = \$1, checkin_token = NULL, token_expires_at = NULL`).
			WithArgs(at, "reg-1", domain.RegistrationActive).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewRegistrationRepository(store)
		ok, err := repo.SetAttended(context.Background(), "reg-1", at)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("no-op when already attended", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE registrations`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewRegistrationRepository(store)
		ok, err := repo.SetAttended(context.Background(), "reg-1", at)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRegistrationRepository_SetToken(t *testing.T) {
	expires := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE registrations SET checkin_token = \$1, token_expires_at = \$2 WHERE id = \$3`).
			WithArgs("CHK-abc", expires, "reg-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewRegistrationRepository(store)
		require.NoError(t, repo.SetToken(context.Background(), "reg-1", "CHK-abc", &expires))
	})

	t.Run("unknown registration", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE registrations SET checkin_token`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewRegistrationRepository(store)
		err := repo.SetToken(context.Background(), "reg-missing", "CHK-abc", nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRegistrationRepository_ClearToken(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		want         bool
	}{
		{"token consumed", 1, true},
		{"token already gone", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			mock.ExpectExec(`UPDATE registrations\s+SET checkin_token = NULL, token_expires_at = NULL\s+WHERE id = \$1 AND checkin_token = \$2 AND attended = FALSE`).
				WithArgs("reg-1", "CHK-abc").
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			repo := NewRegistrationRepository(store)
			ok, err := repo.ClearToken(context.Background(), "reg-1", "CHK-abc")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestRegistrationRepository_ListByEventID(t *testing.T) {
	store, mock := newMockStore(t)
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM registrations WHERE event_id = \$1 ORDER BY created_at ASC`).
		WithArgs("event-1").
		WillReturnRows(sqlmock.NewRows(registrationCols).
			AddRow("reg-1", "event-1", "alice", "active", false, nil, nil, nil, createdAt).
			AddRow("reg-2", "event-1", "bob", "cancelled", false, nil, nil, nil, createdAt.Add(time.Minute)))

	repo := NewRegistrationRepository(store)
	regs, err := repo.ListByEventID(context.Background(), "event-1")
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "alice", regs[0].PersonID)
	assert.Equal(t, domain.RegistrationCancelled, regs[1].State)
}

func TestStore_InTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits and routes queries through the transaction", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE registrations SET state = \$1 WHERE id = \$2 AND state = \$3`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewRegistrationRepository(store)
		err := store.InTx(ctx, func(ctx context.Context) error {
			_, err := repo.SetCancelled(ctx, "reg-1")
			return err
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := store.InTx(ctx, func(ctx context.Context) error {
			return domain.ErrInvalidInput
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := store.InTx(ctx, func(ctx context.Context) error {
			return store.InTx(ctx, func(ctx context.Context) error { return nil })
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
