package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/samber/lo"
)

const schema = `
CREATE TABLE IF NOT EXISTS outreach (
    id         BIGSERIAL PRIMARY KEY,
    user_id    TEXT        NOT NULL,
    title      TEXT        NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    used       SMALLINT    NOT NULL DEFAULT 0,
    success    SMALLINT    NULL
);
CREATE INDEX IF NOT EXISTS outreach_user_title_idx ON outreach (user_id, title, id);
`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Журнал действий продавцов. Строки не удаляются и не схлопываются:
// повторная отметка той же новости - новая строка
type LedgerPostgresStorage struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewLedgerPostgresStorage(db *sqlx.DB) *LedgerPostgresStorage {
	return &LedgerPostgresStorage{db: db, now: time.Now}
}

// Migrate создает таблицу, если ее еще нет
func (s *LedgerPostgresStorage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate outreach ledger: %w", err)
	}
	return nil
}

// RecordUsed добавляет строку used=1 без результата и возвращает ее id
func (s *LedgerPostgresStorage) RecordUsed(ctx context.Context, user model.User, title string) (int64, error) {
	query, args, err := psql.
		Insert("outreach").
		Columns("user_id", "title", "created_at", "used").
		Values(user.ID, title, s.now().UTC(), 1).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, writeErr(err)
	}

	var id int64
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowxContext(ctx, query, args...).Scan(&id)
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// RecordOutcome ставит результат самой новой строке пользователя с этим заголовком.
// Поиск и обновление в одной транзакции, строка блокируется. Нет строки - 0 без ошибки
func (s *LedgerPostgresStorage) RecordOutcome(ctx context.Context, user model.User, title string, success bool) (int64, error) {
	var affected int64

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := psql.
			Select("id").
			From("outreach").
			Where(sq.Eq{"user_id": user.ID, "title": title}).
			OrderBy("id DESC").
			Limit(1).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return err
		}

		var id int64
		if err := tx.GetContext(ctx, &id, query, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}

		affected, err = updateOutcome(ctx, tx, user, id, success)
		return err
	})
	if err != nil {
		return 0, err
	}

	return affected, nil
}

// RecordOutcomeByID ставит результат конкретной строке. Чужую строку обновить нельзя
func (s *LedgerPostgresStorage) RecordOutcomeByID(ctx context.Context, user model.User, id int64, success bool) (int64, error) {
	var affected int64

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		affected, err = updateOutcome(ctx, tx, user, id, success)
		return err
	})
	if err != nil {
		return 0, err
	}

	return affected, nil
}

func updateOutcome(ctx context.Context, tx *sqlx.Tx, user model.User, id int64, success bool) (int64, error) {
	query, args, err := psql.
		Update("outreach").
		Set("success", boolToInt(success)).
		Where(sq.Eq{"id": id, "user_id": user.ID}).
		ToSql()
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// Stats считает строки пользователя по флагу used.
// Успехом считается строка с used=1 и success=1
func (s *LedgerPostgresStorage) Stats(ctx context.Context, user model.User) (model.OutreachStats, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return model.OutreachStats{}, err
	}
	defer conn.Close()

	query, args, err := psql.
		Select("used", "COUNT(*) AS total", "COUNT(*) FILTER (WHERE success = 1) AS successes").
		From("outreach").
		Where(sq.Eq{"user_id": user.ID}).
		GroupBy("used").
		ToSql()
	if err != nil {
		return model.OutreachStats{}, err
	}

	var rows []dbStatsRow
	if err := conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return model.OutreachStats{}, err
	}

	var stats model.OutreachStats
	for _, row := range rows {
		if row.Used == 1 {
			stats.UsedCount += row.Total
			stats.SuccessCount += row.Successes
			continue
		}
		stats.NotUsedCount += row.Total
	}

	return stats, nil
}

// History возвращает последние записи пользователя, новые сначала
func (s *LedgerPostgresStorage) History(ctx context.Context, user model.User, limit int) ([]model.OutreachRecord, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	builder := psql.
		Select("id", "user_id", "title", "created_at", "used", "success").
		From("outreach").
		Where(sq.Eq{"user_id": user.ID}).
		OrderBy("id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var records []dbOutreach
	if err := conn.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, err
	}

	return lo.Map(records, func(r dbOutreach, _ int) model.OutreachRecord {
		return r.toModel()
	}), nil
}

// Запись и коммит под одной транзакцией. Любая ошибка оборачивается в ErrLedgerWrite
func (s *LedgerPostgresStorage) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return writeErr(err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return writeErr(err)
	}

	if err := tx.Commit(); err != nil {
		return writeErr(err)
	}

	return nil
}

func writeErr(err error) error {
	return fmt.Errorf("%w: %w", model.ErrLedgerWrite, err)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Внутренние модели для работы с БД, чтобы правильно мапить их на колонки в таблице
type dbOutreach struct {
	ID        int64         `db:"id"`
	UserID    string        `db:"user_id"`
	Title     string        `db:"title"`
	CreatedAt time.Time     `db:"created_at"`
	Used      int           `db:"used"`
	Success   sql.NullInt16 `db:"success"`
}

func (r dbOutreach) toModel() model.OutreachRecord {
	record := model.OutreachRecord{
		ID:        r.ID,
		User:      r.UserID,
		Title:     r.Title,
		CreatedAt: r.CreatedAt,
		Used:      r.Used == 1,
	}
	if r.Success.Valid {
		record.Success = lo.ToPtr(r.Success.Int16 == 1)
	}
	return record
}

type dbStatsRow struct {
	Used      int `db:"used"`
	Total     int `db:"total"`
	Successes int `db:"successes"`
}
