package api_test

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upsertRuleQuery = `INSERT INTO weekly_schedule (day_of_week, is_work_day, start_time, end_time, updated_at) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (day_of_week) DO UPDATE SET is_work_day = EXCLUDED.is_work_day, start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time, updated_at = EXCLUDED.updated_at`

func TestScheduleAPI(t *testing.T) {
	t.Parallel()

	t.Run("get schedule", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		dbMock.ExpectQuery(regexp.QuoteMeta(`SELECT day_of_week, is_work_day, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI') FROM weekly_schedule ORDER BY day_of_week`)).
			WillReturnRows(sqlmock.NewRows(ruleColumns).
				AddRow(1, true, "10:00", "13:00").
				AddRow(6, false, "00:00", "00:00"))

		rec := do(a, http.MethodGet, "/api/schedule", nil)
		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusOK, rec.Code)

		rules := decode(t, rec).Response.(map[string]any)["rules"].([]any)
		require.Len(t, rules, 2)
		assert.Equal(t, map[string]any{"day_of_week": float64(1), "is_work_day": true, "start_time": "10:00", "end_time": "13:00"}, rules[0])
	})

	t.Run("replace rules", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		dbMock.ExpectBegin()
		dbMock.ExpectExec(regexp.QuoteMeta(upsertRuleQuery)).
			WithArgs(1, true, "10:00", "13:00", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectExec(regexp.QuoteMeta(upsertRuleQuery)).
			WithArgs(3, false, "00:00", "00:00", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectCommit()

		rec := do(a, http.MethodPut, "/api/schedule", map[string]any{
			"rules": []map[string]any{
				{"day_of_week": 1, "is_work_day": true, "start_time": "10:00", "end_time": "13:00"},
				{"day_of_week": 3, "is_work_day": false},
			},
		})
		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("reject inverted hours", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		rec := do(a, http.MethodPut, "/api/schedule", map[string]any{
			"rules": []map[string]any{
				{"day_of_week": 2, "is_work_day": true, "start_time": "17:00", "end_time": "09:00"},
			},
		})
		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reject duplicate day", func(t *testing.T) {
		t.Parallel()
		a, _ := setupAPI(t)

		rec := do(a, http.MethodPut, "/api/schedule", map[string]any{
			"rules": []map[string]any{
				{"day_of_week": 2, "is_work_day": false},
				{"day_of_week": 2, "is_work_day": true, "start_time": "09:00", "end_time": "12:00"},
			},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reject empty rules", func(t *testing.T) {
		t.Parallel()
		a, _ := setupAPI(t)

		rec := do(a, http.MethodPut, "/api/schedule", map[string]any{"rules": []any{}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBlocksAPI(t *testing.T) {
	t.Parallel()

	t.Run("list blocks from date", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		dbMock.ExpectQuery(regexp.QuoteMeta(`SELECT id, date, reason, created_at FROM blocked_dates WHERE date >= $1 ORDER BY date`)).
			WithArgs("2025-03-01").
			WillReturnRows(sqlmock.NewRows([]string{"id", "date", "reason", "created_at"}).
				AddRow(4, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "conference", now))

		rec := do(a, http.MethodGet, "/api/blocks?from=2025-03-01", nil)
		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusOK, rec.Code)

		blocks := decode(t, rec).Response.(map[string]any)["blocks"].([]any)
		require.Len(t, blocks, 1)
		b := blocks[0].(map[string]any)
		assert.Equal(t, "2025-03-10", b["date"])
		assert.Equal(t, "conference", b["reason"])
	})

	t.Run("list blocks bad from", func(t *testing.T) {
		t.Parallel()
		a, _ := setupAPI(t)

		rec := do(a, http.MethodGet, "/api/blocks?from=tomorrow", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create block", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		dbMock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO blocked_dates (date, reason, created_at) VALUES ($1, $2, $3) RETURNING id`)).
			WithArgs("2025-03-10", "conference", now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		rec := do(a, http.MethodPost, "/api/blocks", map[string]string{"date": "2025-03-10", "reason": "conference"})
		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusCreated, rec.Code)

		b := decode(t, rec).Response.(map[string]any)
		assert.Equal(t, float64(7), b["id"])
		assert.Equal(t, "2025-03-10", b["date"])
	})

	t.Run("create block twice", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		dbMock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO blocked_dates (date, reason, created_at) VALUES ($1, $2, $3) RETURNING id`)).
			WithArgs("2025-03-10", "", now).
			WillReturnError(&pq.Error{Code: "23505"})

		rec := do(a, http.MethodPost, "/api/blocks", map[string]string{"date": "2025-03-10"})
		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("create block bad date", func(t *testing.T) {
		t.Parallel()
		a, _ := setupAPI(t)

		rec := do(a, http.MethodPost, "/api/blocks", map[string]string{"date": "10/03/2025"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete block", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		dbMock.ExpectExec(regexp.QuoteMeta(`DELETE FROM blocked_dates WHERE id = $1`)).
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		rec := do(a, http.MethodDelete, "/api/blocks/7", nil)
		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("delete missing block", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		dbMock.ExpectExec(regexp.QuoteMeta(`DELETE FROM blocked_dates WHERE id = $1`)).
			WithArgs(8).
			WillReturnResult(sqlmock.NewResult(0, 0))

		rec := do(a, http.MethodDelete, "/api/blocks/8", nil)
		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete block invalid id", func(t *testing.T) {
		t.Parallel()
		a, _ := setupAPI(t)

		rec := do(a, http.MethodDelete, "/api/blocks/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list blocks db error", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		dbMock.ExpectQuery(regexp.QuoteMeta(`SELECT id, date, reason, created_at FROM blocked_dates ORDER BY date`)).
			WillReturnError(errors.New("connection reset"))

		rec := do(a, http.MethodGet, "/api/blocks", nil)
		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "could not list blocks", decode(t, rec).Response)
	})

	t.Run("create block reason too long", func(t *testing.T) {
		t.Parallel()
		a, _ := setupAPI(t)

		rec := do(a, http.MethodPost, "/api/blocks", map[string]string{"date": "2025-03-10", "reason": strings.Repeat("x", 501)})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
