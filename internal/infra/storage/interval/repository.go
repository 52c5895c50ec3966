package interval

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CapacityService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с интервалами ёмкости
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория интервалов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateBatch создает пачку интервалов одним запросом
// Используется сидированием; интервалы после создания не мутируются
func (r *Repository) CreateBatch(ctx context.Context, intervals []*domain.CapacityInterval) error {
	if len(intervals) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("capacity_intervals").
		Columns("date", "starts_at", "ends_at")

	for _, iv := range intervals {
		insertBuilder = insertBuilder.Values(iv.Date, iv.StartsAt, iv.EndsAt)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateBatch - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CreateBatch - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// DeleteByDateRange удаляет все интервалы в диапазоне дат [from, to]
// Вызывается только массовым пересидированием
func (r *Repository) DeleteByDateRange(ctx context.Context, from, to time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("capacity_intervals").
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByDateRange - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByDateRange - execute delete: %w", ErrExecQuery, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByDateRange - get rows affected: %w", ErrExecQuery, err)
	}

	return deleted, nil
}

// GetByDate получает все интервалы на дату, упорядоченные по началу
func (r *Repository) GetByDate(ctx context.Context, date time.Time) ([]*domain.CapacityInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "date", "starts_at", "ends_at").
		From("capacity_intervals").
		Where(squirrel.Eq{"date": date}).
		OrderBy("starts_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByDate - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanIntervals(rows)
}

// GetOverlapping получает интервалы, пересекающиеся с окном [start, end),
// упорядоченные по starts_at - порядок важен для детерминизма аллокации
func (r *Repository) GetOverlapping(ctx context.Context, start, end time.Time) ([]*domain.CapacityInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "date", "starts_at", "ends_at").
		From("capacity_intervals").
		Where(squirrel.Lt{"starts_at": end}).
		Where(squirrel.Gt{"ends_at": start}).
		OrderBy("starts_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOverlapping - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverlapping - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanIntervals(rows)
}

// scanIntervals сканирует результаты запроса в слайс интервалов
func (r *Repository) scanIntervals(rows *sql.Rows) ([]*domain.CapacityInterval, error) {
	intervals := make([]*domain.CapacityInterval, 0)

	for rows.Next() {
		var iv domain.CapacityInterval
		if err := rows.Scan(&iv.ID, &iv.Date, &iv.StartsAt, &iv.EndsAt); err != nil {
			return nil, fmt.Errorf("%w: scanIntervals - scan row: %w", ErrScanRow, err)
		}
		intervals = append(intervals, &iv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanIntervals - rows error: %w", ErrScanRow, err)
	}

	return intervals, nil
}
