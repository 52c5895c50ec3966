package capacity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CapacityService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с кэшем занятых секунд по (lane, interval)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория кэша ёмкости
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetForUpdate получает строку кэша по паре (lane, interval)
// Внутри транзакции строка блокируется через FOR UPDATE
// Если строки ещё нет, возвращает ErrCapacityRowNotFound - вызывающий
// трактует это как ноль занятых секунд
func (r *Repository) GetForUpdate(ctx context.Context, laneID, intervalID int64) (*domain.LaneIntervalCapacity, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("lane_id", "interval_id", "total_booked_seconds").
		From("lane_interval_capacity").
		Where(squirrel.Eq{"lane_id": laneID}).
		Where(squirrel.Eq{"interval_id": intervalID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetForUpdate - build select query: %w", ErrBuildQuery, err)
	}

	var row domain.LaneIntervalCapacity
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&row.LaneID,
		&row.IntervalID,
		&row.TotalBookedSeconds,
	)

	if err == sql.ErrNoRows {
		return nil, ErrCapacityRowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetForUpdate - scan row: %w", ErrScanRow, err)
	}

	return &row, nil
}

// GetTotals получает строки кэша для набора (lanes x intervals)
// Пары без строки кэша означают ноль занятых секунд
func (r *Repository) GetTotals(ctx context.Context, laneIDs, intervalIDs []int64) ([]*domain.LaneIntervalCapacity, error) {
	if len(laneIDs) == 0 || len(intervalIDs) == 0 {
		return []*domain.LaneIntervalCapacity{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("lane_id", "interval_id", "total_booked_seconds").
		From("lane_interval_capacity").
		Where(squirrel.Eq{"lane_id": laneIDs}).
		Where(squirrel.Eq{"interval_id": intervalIDs}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetTotals - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetTotals - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.LaneIntervalCapacity, 0)
	for rows.Next() {
		var row domain.LaneIntervalCapacity
		if err := rows.Scan(&row.LaneID, &row.IntervalID, &row.TotalBookedSeconds); err != nil {
			return nil, fmt.Errorf("%w: GetTotals - scan row: %w", ErrScanRow, err)
		}
		result = append(result, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetTotals - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// AddBooked увеличивает занятые секунды пары (lane, interval)
// Вставляет строку кэша, если её ещё не было
func (r *Repository) AddBooked(ctx context.Context, laneID, intervalID, seconds int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("lane_interval_capacity").
		Columns("lane_id", "interval_id", "total_booked_seconds").
		Values(laneID, intervalID, seconds).
		Suffix("ON CONFLICT (lane_id, interval_id) DO UPDATE SET total_booked_seconds = lane_interval_capacity.total_booked_seconds + EXCLUDED.total_booked_seconds").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AddBooked - build upsert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AddBooked - execute upsert: %w", ErrExecQuery, err)
	}

	return nil
}

// SubtractBooked уменьшает занятые секунды пары (lane, interval)
// Итог не может уйти ниже нуля
func (r *Repository) SubtractBooked(ctx context.Context, laneID, intervalID, seconds int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("lane_interval_capacity").
		Set("total_booked_seconds", squirrel.Expr("GREATEST(total_booked_seconds - ?, 0)", seconds)).
		Where(squirrel.Eq{"lane_id": laneID}).
		Where(squirrel.Eq{"interval_id": intervalID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SubtractBooked - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SubtractBooked - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SubtractBooked - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrCapacityRowNotFound
	}

	return nil
}

// SetTotal выставляет точное значение занятых секунд
// Используется аудитом для починки разъехавшегося кэша
func (r *Repository) SetTotal(ctx context.Context, laneID, intervalID, seconds int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("lane_interval_capacity").
		Columns("lane_id", "interval_id", "total_booked_seconds").
		Values(laneID, intervalID, seconds).
		Suffix("ON CONFLICT (lane_id, interval_id) DO UPDATE SET total_booked_seconds = EXCLUDED.total_booked_seconds").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetTotal - build upsert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SetTotal - execute upsert: %w", ErrExecQuery, err)
	}

	return nil
}
