package booking

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CapacityService/pkg/psqlbuilder"
)

// bookingColumns полный набор колонок таблицы bookings
var bookingColumns = []string{
	"id",
	"user_id",
	"lane_id",
	"window_starts_at",
	"window_ends_at",
	"service_time_seconds",
	"status",
	"customer_name",
	"vehicle_brand",
	"vehicle_model",
	"vehicle_plate",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями,
// их поинтервальными аллокациями и раскладкой списаний
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Вызывается только движком аллокации внутри сериализуемой транзакции
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"user_id",
			"lane_id",
			"window_starts_at",
			"window_ends_at",
			"service_time_seconds",
			"status",
			"customer_name",
			"vehicle_brand",
			"vehicle_model",
			"vehicle_plate",
			"notes",
		).
		Values(
			b.UserID,
			b.LaneID,
			b.WindowStartsAt,
			b.WindowEndsAt,
			b.ServiceTimeSeconds,
			b.Status,
			b.CustomerName,
			b.VehicleBrand,
			b.VehicleModel,
			b.VehiclePlate,
			b.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&b.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется через FOR UPDATE, чтобы две
// конкурентные отмены не прошли обе проверку статуса
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return b, nil
}

// GetByLaneWithFilter получает бронирования поста с гибкой фильтрацией
// по периоду окна, статусу и включению отменённых
func (r *Repository) GetByLaneWithFilter(ctx context.Context, filter domain.LaneBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"lane_id": filter.LaneID})

	// Фильтрация по периоду окна доставки
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"window_starts_at": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"window_starts_at": filter.EndDate.AddDate(0, 0, 1)})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings})
	}

	selectBuilder = selectBuilder.OrderBy("window_starts_at ASC, id ASC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByLaneWithFilter - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByLaneWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Cancel переводит бронирование в статус cancelled с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// CreateIntervals создает поинтервальные аллокации бронирования
// Возвращает переданные строки с присвоенными ID
func (r *Repository) CreateIntervals(ctx context.Context, intervals []*domain.BookingInterval) ([]*domain.BookingInterval, error) {
	if len(intervals) == 0 {
		return intervals, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("booking_intervals").
		Columns("booking_id", "lane_id", "interval_id", "booked_seconds")

	for _, bi := range intervals {
		insertBuilder = insertBuilder.Values(bi.BookingID, bi.LaneID, bi.IntervalID, bi.BookedSeconds)
	}

	// Порядок строк в RETURNING не гарантирован, поэтому присвоенные ID
	// сопоставляем обратно по interval_id, уникальному в рамках бронирования
	query, args, err := insertBuilder.Suffix("RETURNING id, interval_id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateIntervals - build insert query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateIntervals - execute insert: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make(map[int64]int64, len(intervals))
	for rows.Next() {
		var id, intervalID int64
		if err := rows.Scan(&id, &intervalID); err != nil {
			return nil, fmt.Errorf("%w: CreateIntervals - scan id: %w", ErrScanRow, err)
		}
		ids[intervalID] = id
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CreateIntervals - rows error: %w", ErrScanRow, err)
	}

	for _, bi := range intervals {
		bi.ID = ids[bi.IntervalID]
	}

	return intervals, nil
}

// CreateAllocations создает раскладку списаний по contribution intervals
// Воспроизводится при отмене как точное обратное действие
func (r *Repository) CreateAllocations(ctx context.Context, allocations []*domain.BookingAllocation) error {
	if len(allocations) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("booking_allocations").
		Columns("booking_interval_id", "contribution_interval_id", "deducted_seconds")

	for _, a := range allocations {
		insertBuilder = insertBuilder.Values(a.BookingIntervalID, a.ContributionIntervalID, a.DeductedSeconds)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateAllocations - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CreateAllocations - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// GetIntervalsByBookingID получает аллокации бронирования в порядке интервалов
func (r *Repository) GetIntervalsByBookingID(ctx context.Context, bookingID int64) ([]*domain.BookingInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "booking_id", "lane_id", "interval_id", "booked_seconds").
		From("booking_intervals").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetIntervalsByBookingID - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetIntervalsByBookingID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.BookingInterval, 0)
	for rows.Next() {
		var bi domain.BookingInterval
		if err := rows.Scan(&bi.ID, &bi.BookingID, &bi.LaneID, &bi.IntervalID, &bi.BookedSeconds); err != nil {
			return nil, fmt.Errorf("%w: GetIntervalsByBookingID - scan row: %w", ErrScanRow, err)
		}
		result = append(result, &bi)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetIntervalsByBookingID - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// GetAllocationsByBookingID получает раскладку списаний всех аллокаций бронирования
func (r *Repository) GetAllocationsByBookingID(ctx context.Context, bookingID int64) ([]*domain.BookingAllocation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"ba.id",
		"ba.booking_interval_id",
		"ba.contribution_interval_id",
		"ba.deducted_seconds",
	).
		From("booking_allocations ba").
		Join("booking_intervals bi ON bi.id = ba.booking_interval_id").
		Where(squirrel.Eq{"bi.booking_id": bookingID}).
		OrderBy("ba.id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetAllocationsByBookingID - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAllocationsByBookingID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.BookingAllocation, 0)
	for rows.Next() {
		var a domain.BookingAllocation
		if err := rows.Scan(&a.ID, &a.BookingIntervalID, &a.ContributionIntervalID, &a.DeductedSeconds); err != nil {
			return nil, fmt.Errorf("%w: GetAllocationsByBookingID - scan row: %w", ErrScanRow, err)
		}
		result = append(result, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAllocationsByBookingID - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// SumBookedByIntervals пересчитывает занятые секунды интервалов поста
// из undo-лога, учитывая только активные бронирования
// Источник истины для аудита кэша lane_interval_capacity
func (r *Repository) SumBookedByIntervals(ctx context.Context, laneID int64, intervalIDs []int64) ([]IntervalBookedSum, error) {
	if len(intervalIDs) == 0 {
		return []IntervalBookedSum{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	activeStatusStrings := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		activeStatusStrings[i] = string(s)
	}

	query, args, err := psqlbuilder.Select(
		"bi.interval_id",
		"COALESCE(SUM(bi.booked_seconds), 0)",
	).
		From("booking_intervals bi").
		Join("bookings b ON b.id = bi.booking_id").
		Where(squirrel.Eq{"bi.lane_id": laneID}).
		Where(squirrel.Eq{"bi.interval_id": intervalIDs}).
		Where(squirrel.Eq{"b.status": activeStatusStrings}).
		GroupBy("bi.interval_id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: SumBookedByIntervals - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: SumBookedByIntervals - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	sums := make([]IntervalBookedSum, 0)
	for rows.Next() {
		var s IntervalBookedSum
		if err := rows.Scan(&s.IntervalID, &s.BookedSeconds); err != nil {
			return nil, fmt.Errorf("%w: SumBookedByIntervals - scan row: %w", ErrScanRow, err)
		}
		sums = append(sums, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: SumBookedByIntervals - rows error: %w", ErrScanRow, err)
	}

	return sums, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку бронирования
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.LaneID,
		&b.WindowStartsAt,
		&b.WindowEndsAt,
		&b.ServiceTimeSeconds,
		&b.Status,
		&b.CustomerName,
		&b.VehicleBrand,
		&b.VehicleModel,
		&b.VehiclePlate,
		&b.Notes,
		&b.CancellationReason,
		&b.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}
