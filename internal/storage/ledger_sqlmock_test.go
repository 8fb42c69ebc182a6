package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/assert/v2"
	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

// Эти тесты проверяют SQL и транзакции без Postgres, поэтому идут всегда
func newMockLedger(t *testing.T) (*LedgerPostgresStorage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		_ = db.Close()
	})

	ledger := NewLedgerPostgresStorage(sqlx.NewDb(db, "postgres"))
	ledger.now = func() time.Time { return time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC) }

	return ledger, mock
}

var alice = model.User{ID: "alice"}

func TestLedgerSQL_RecordUsedReturnsID(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO outreach \(user_id,title,created_at,used\) VALUES \(\$1,\$2,\$3,\$4\) RETURNING id`).
		WithArgs("alice", "Rates rise", time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectCommit()

	id, err := ledger.RecordUsed(context.Background(), alice, "Rates rise")

	assert.Equal(t, nil, err)
	assert.Equal(t, int64(42), id)
}

func TestLedgerSQL_OutcomeUpdatesNewestRow(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM outreach WHERE title = \$1 AND user_id = \$2 ORDER BY id DESC LIMIT 1 FOR UPDATE`).
		WithArgs("Same title", "alice").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(`UPDATE outreach SET success = \$1 WHERE id = \$2 AND user_id = \$3`).
		WithArgs(1, int64(7), "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	affected, err := ledger.RecordOutcome(context.Background(), alice, "Same title", true)

	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), affected)
}

func TestLedgerSQL_OutcomeWithoutRowIsNoop(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM outreach WHERE .* FOR UPDATE`).
		WithArgs("Never used", "alice").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	affected, err := ledger.RecordOutcome(context.Background(), alice, "Never used", false)

	assert.Equal(t, nil, err)
	assert.Equal(t, int64(0), affected)
}

func TestLedgerSQL_WriteFailureRollsBack(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE outreach SET success`).
		WithArgs(0, int64(3), "alice").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	affected, err := ledger.RecordOutcomeByID(context.Background(), alice, 3, false)

	assert.Equal(t, true, errors.Is(err, model.ErrLedgerWrite))
	assert.Equal(t, int64(0), affected)
}

func TestLedgerSQL_StatsWithoutRowsIsNA(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectQuery(`SELECT used, COUNT\(\*\) AS total, .* FROM outreach WHERE user_id = \$1 GROUP BY used`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"used", "total", "successes"}))

	stats, err := ledger.Stats(context.Background(), alice)

	assert.Equal(t, nil, err)
	assert.Equal(t, model.OutreachStats{}, stats)
	assert.Equal(t, "N/A", stats.SuccessRateText())
}

func TestLedgerSQL_StatsGroupsByUsed(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectQuery(`SELECT used, COUNT\(\*\) AS total`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"used", "total", "successes"}).
			AddRow(int64(1), int64(3), int64(2)).
			AddRow(int64(0), int64(2), int64(0)))

	stats, err := ledger.Stats(context.Background(), alice)

	assert.Equal(t, nil, err)
	assert.Equal(t, model.OutreachStats{UsedCount: 3, NotUsedCount: 2, SuccessCount: 2}, stats)
	assert.Equal(t, "66.7%", stats.SuccessRateText())
}

func TestLedgerSQL_History(t *testing.T) {
	ledger, mock := newMockLedger(t)
	created := time.Date(2024, 5, 7, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, user_id, title, created_at, used, success FROM outreach WHERE user_id = \$1 ORDER BY id DESC LIMIT 2`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "created_at", "used", "success"}).
			AddRow(int64(2), "alice", "B", created, int64(1), nil).
			AddRow(int64(1), "alice", "A", created, int64(1), int64(1)))

	records, err := ledger.History(context.Background(), alice, 2)

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(records))
	assert.Equal(t, (*bool)(nil), records[0].Success)
	assert.Equal(t, true, *records[1].Success)
}
