package contribution

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CapacityService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с вкладами работников
// и производными счётчиками остатка по интервалам
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория вкладов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateContribution создает вклад работника
func (r *Repository) CreateContribution(ctx context.Context, c *domain.WorkerContribution) (*domain.WorkerContribution, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("worker_contributions").
		Columns("worker_id", "lane_id", "starts_at", "ends_at", "available_seconds").
		Values(c.WorkerID, c.LaneID, c.StartsAt, c.EndsAt, c.AvailableSeconds).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateContribution - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&c.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: CreateContribution - execute insert: %w", ErrExecQuery, err)
	}
	c.CreatedAt = createdAt.Time

	return c, nil
}

// CreateIntervals создает производные строки остатка по интервалам
// RemainingSeconds каждой строки стартует равным её OriginalSeconds
func (r *Repository) CreateIntervals(ctx context.Context, rows []*domain.ContributionInterval) error {
	if len(rows) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("contribution_intervals").
		Columns("contribution_id", "lane_id", "interval_id", "original_seconds", "remaining_seconds")

	for _, row := range rows {
		insertBuilder = insertBuilder.Values(
			row.ContributionID,
			row.LaneID,
			row.IntervalID,
			row.OriginalSeconds,
			row.RemainingSeconds,
		)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateIntervals - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CreateIntervals - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// GetByLaneAndInterval получает все строки остатка по паре (lane, interval),
// упорядоченные по id для детерминированного порядка списания
// Внутри транзакции строки блокируются через FOR UPDATE
func (r *Repository) GetByLaneAndInterval(ctx context.Context, laneID, intervalID int64) ([]*domain.ContributionInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"contribution_id",
		"lane_id",
		"interval_id",
		"original_seconds",
		"remaining_seconds",
	).
		From("contribution_intervals").
		Where(squirrel.Eq{"lane_id": laneID}).
		Where(squirrel.Eq{"interval_id": intervalID}).
		OrderBy("id ASC")

	// Блокировка строк остатка - они единственное разделяемое мутабельное
	// состояние аллокации и отмены
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByLaneAndInterval - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByLaneAndInterval - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanContributionIntervals(rows)
}

// SumRemainingByLaneIntervals возвращает суммы остатков секунд,
// сгруппированные по (lane, interval) - один запрос на весь расчёт доступности
func (r *Repository) SumRemainingByLaneIntervals(ctx context.Context, laneIDs, intervalIDs []int64) ([]RemainingSum, error) {
	if len(laneIDs) == 0 || len(intervalIDs) == 0 {
		return []RemainingSum{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"lane_id",
		"interval_id",
		"COALESCE(SUM(remaining_seconds), 0)",
	).
		From("contribution_intervals").
		Where(squirrel.Eq{"lane_id": laneIDs}).
		Where(squirrel.Eq{"interval_id": intervalIDs}).
		GroupBy("lane_id", "interval_id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: SumRemainingByLaneIntervals - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: SumRemainingByLaneIntervals - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	sums := make([]RemainingSum, 0)
	for rows.Next() {
		var s RemainingSum
		if err := rows.Scan(&s.LaneID, &s.IntervalID, &s.RemainingSeconds); err != nil {
			return nil, fmt.Errorf("%w: SumRemainingByLaneIntervals - scan row: %w", ErrScanRow, err)
		}
		sums = append(sums, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: SumRemainingByLaneIntervals - rows error: %w", ErrScanRow, err)
	}

	return sums, nil
}

// DecrementRemaining списывает секунды с одной строки остатка
// Размер списания вычисляется движком аллокации и не превышает остаток
func (r *Repository) DecrementRemaining(ctx context.Context, id, seconds int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("contribution_intervals").
		Set("remaining_seconds", squirrel.Expr("GREATEST(remaining_seconds - ?, 0)", seconds)).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DecrementRemaining - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DecrementRemaining - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DecrementRemaining - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrContributionIntervalNotFound
	}

	return nil
}

// RestoreRemaining возвращает секунды на строку остатка при отмене
// Остаток не может превысить исходную долю строки
func (r *Repository) RestoreRemaining(ctx context.Context, id, seconds int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("contribution_intervals").
		Set("remaining_seconds", squirrel.Expr("LEAST(remaining_seconds + ?, original_seconds)", seconds)).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: RestoreRemaining - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: RestoreRemaining - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: RestoreRemaining - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrContributionIntervalNotFound
	}

	return nil
}

// DeleteIntervalsByContribution удаляет производные строки вклада
// Используется при перегенерации после правки вклада
func (r *Repository) DeleteIntervalsByContribution(ctx context.Context, contributionID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("contribution_intervals").
		Where(squirrel.Eq{"contribution_id": contributionID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteIntervalsByContribution - build delete query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: DeleteIntervalsByContribution - execute delete: %w", ErrExecQuery, err)
	}

	return nil
}

// scanContributionIntervals сканирует результаты запроса в слайс строк остатка
func (r *Repository) scanContributionIntervals(rows *sql.Rows) ([]*domain.ContributionInterval, error) {
	result := make([]*domain.ContributionInterval, 0)

	for rows.Next() {
		var ci domain.ContributionInterval
		err := rows.Scan(
			&ci.ID,
			&ci.ContributionID,
			&ci.LaneID,
			&ci.IntervalID,
			&ci.OriginalSeconds,
			&ci.RemainingSeconds,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanContributionIntervals - scan row: %w", ErrScanRow, err)
		}
		result = append(result, &ci)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanContributionIntervals - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}
