package allocate_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	capacityRepo "github.com/m04kA/SMC-CapacityService/internal/infra/storage/capacity"
	laneClient "github.com/m04kA/SMC-CapacityService/internal/integrations/laneservice"
	"github.com/m04kA/SMC-CapacityService/pkg/txmanager"
)

// UseCase use case создания бронирования: движок аллокации ёмкости
//
// Раскладывает требуемые секунды обслуживания по интервалам окна доставки
// и атомарно фиксирует их в леджере: бронирование, поинтервальные аллокации,
// раскладка списаний, кэш занятых секунд и счётчики остатка коммитятся
// одной сериализуемой транзакцией
type UseCase struct {
	intervalRepo     IntervalRepository
	contributionRepo ContributionRepository
	capacityRepo     CapacityRepository
	bookingRepo      BookingRepository
	laneClient       LaneServiceClient
	txManager        TransactionManager
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	intervalRepo IntervalRepository,
	contributionRepo ContributionRepository,
	capacityRepo CapacityRepository,
	bookingRepo BookingRepository,
	laneClient LaneServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		intervalRepo:     intervalRepo,
		contributionRepo: contributionRepo,
		capacityRepo:     capacityRepo,
		bookingRepo:      bookingRepo,
		laneClient:       laneClient,
		txManager:        txManager,
		logger:           logger,
	}
}

// Execute выполняет use case создания бронирования
// Две гонки за один интервал не могут обе пройти проверку остатка:
// строки остатка и кэша блокируются внутри SERIALIZABLE транзакции,
// конфликт сериализации повторяется менеджером транзакций
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("AllocateBooking: user=%d, lane=%d, window=[%s, %s), required=%ds",
		req.UserID, req.LaneID,
		req.WindowStart.Format("2006-01-02 15:04"), req.WindowEnd.Format("2006-01-02 15:04"),
		req.RequiredSeconds)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("AllocateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем метаданные поста
	lane, err := uc.laneClient.GetLane(ctx, req.LaneID)
	if err != nil {
		if errors.Is(err, laneClient.ErrLaneNotFound) {
			uc.logger.Warn("AllocateBooking: lane id=%d not found", req.LaneID)
			return nil, ErrLaneNotFound
		}
		uc.logger.Error("AllocateBooking: failed to get lane id=%d: %v", req.LaneID, err)
		return nil, fmt.Errorf("%w: failed to get lane: %w", ErrInternal, err)
	}

	if lane.ClosedForBookings {
		uc.logger.Warn("AllocateBooking: lane id=%d is closed for new bookings", req.LaneID)
		return nil, ErrLaneClosed
	}

	var result *domain.Booking
	var resultIntervals []IntervalAllocationResult

	// 3. Коммит в леджер - одна атомарная сериализуемая транзакция
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Интервалы, пересекающие окно доставки, в порядке starts_at
		intervals, err := uc.intervalRepo.GetOverlapping(txCtx, req.WindowStart, req.WindowEnd)
		if err != nil {
			uc.logger.Error("AllocateBooking: failed to get intervals: %v", err)
			return fmt.Errorf("%w: failed to get intervals: %w", ErrInternal, err)
		}
		if len(intervals) == 0 {
			uc.logger.Warn("AllocateBooking: no intervals overlap window [%s, %s)",
				req.WindowStart.Format("2006-01-02 15:04"), req.WindowEnd.Format("2006-01-02 15:04"))
			return ErrIntervalsMissing
		}

		// 3.2. Детерминированная жадная раскладка по пересечению с окном
		allocations := distributeServiceTime(intervals, req.WindowStart, req.WindowEnd, req.RequiredSeconds)
		if len(allocations) == 0 {
			return ErrIntervalsMissing
		}

		// 3.3. Создаем бронирование
		booking := &domain.Booking{
			UserID:             req.UserID,
			LaneID:             req.LaneID,
			WindowStartsAt:     req.WindowStart,
			WindowEndsAt:       req.WindowEnd,
			ServiceTimeSeconds: req.RequiredSeconds,
			Status:             domain.StatusConfirmed,
			CustomerName:       req.CustomerName,
			VehicleBrand:       req.VehicleBrand,
			VehicleModel:       req.VehicleModel,
			VehiclePlate:       req.VehiclePlate,
			Notes:              req.Notes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("AllocateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		// 3.4. Для каждого интервала: блокируем строки леджера, проверяем
		// остаток, списываем пропорционально текущим долям вкладов
		bookingIntervals := make([]*domain.BookingInterval, 0, len(allocations))
		pendingDeductions := make([][]*domain.BookingAllocation, 0, len(allocations))

		for _, alloc := range allocations {
			contribs, err := uc.contributionRepo.GetByLaneAndInterval(txCtx, req.LaneID, alloc.Interval.ID)
			if err != nil {
				uc.logger.Error("AllocateBooking: failed to get contribution intervals: %v", err)
				return fmt.Errorf("%w: failed to get contribution intervals: %w", ErrInternal, err)
			}

			var totalBooked int64
			capRow, err := uc.capacityRepo.GetForUpdate(txCtx, req.LaneID, alloc.Interval.ID)
			if err != nil && !errors.Is(err, capacityRepo.ErrCapacityRowNotFound) {
				uc.logger.Error("AllocateBooking: failed to get capacity row: %v", err)
				return fmt.Errorf("%w: failed to get capacity row: %w", ErrInternal, err)
			}
			if capRow != nil {
				totalBooked = capRow.TotalBookedSeconds
			}

			var totalRemaining int64
			for _, c := range contribs {
				totalRemaining += c.RemainingSeconds
			}

			// Жёсткая защита от овербукинга: та же формула, что и у
			// запроса доступности, но под блокировками строк
			available := totalRemaining - totalBooked
			if alloc.BookedSeconds > available {
				uc.logger.Warn("AllocateBooking: capacity exceeded on lane=%d interval=%d: need %ds, available %ds",
					req.LaneID, alloc.Interval.ID, alloc.BookedSeconds, available)
				return ErrCapacityExceeded
			}

			deductions := proportionalDeductions(contribs, alloc.BookedSeconds)

			intervalDeductions := make([]*domain.BookingAllocation, 0, len(contribs))
			for i, d := range deductions {
				if d <= 0 {
					continue
				}
				if err := uc.contributionRepo.DecrementRemaining(txCtx, contribs[i].ID, d); err != nil {
					uc.logger.Error("AllocateBooking: failed to decrement remaining: %v", err)
					return fmt.Errorf("%w: failed to decrement remaining: %w", ErrInternal, err)
				}
				intervalDeductions = append(intervalDeductions, &domain.BookingAllocation{
					ContributionIntervalID: contribs[i].ID,
					DeductedSeconds:        d,
				})
			}

			if err := uc.capacityRepo.AddBooked(txCtx, req.LaneID, alloc.Interval.ID, alloc.BookedSeconds); err != nil {
				uc.logger.Error("AllocateBooking: failed to add booked seconds: %v", err)
				return fmt.Errorf("%w: failed to add booked seconds: %w", ErrInternal, err)
			}

			bookingIntervals = append(bookingIntervals, &domain.BookingInterval{
				BookingID:     created.ID,
				LaneID:        req.LaneID,
				IntervalID:    alloc.Interval.ID,
				BookedSeconds: alloc.BookedSeconds,
			})
			pendingDeductions = append(pendingDeductions, intervalDeductions)
		}

		// 3.5. Пишем undo-лог и раскладку списаний
		createdIntervals, err := uc.bookingRepo.CreateIntervals(txCtx, bookingIntervals)
		if err != nil {
			uc.logger.Error("AllocateBooking: failed to create booking intervals: %v", err)
			return fmt.Errorf("%w: failed to create booking intervals: %w", ErrInternal, err)
		}

		allocationRows := make([]*domain.BookingAllocation, 0)
		for i, bi := range createdIntervals {
			for _, d := range pendingDeductions[i] {
				d.BookingIntervalID = bi.ID
				allocationRows = append(allocationRows, d)
			}
		}

		if err := uc.bookingRepo.CreateAllocations(txCtx, allocationRows); err != nil {
			uc.logger.Error("AllocateBooking: failed to create booking allocations: %v", err)
			return fmt.Errorf("%w: failed to create booking allocations: %w", ErrInternal, err)
		}

		result = created
		resultIntervals = make([]IntervalAllocationResult, len(allocations))
		for i, alloc := range allocations {
			resultIntervals[i] = IntervalAllocationResult{
				IntervalID:    alloc.Interval.ID,
				StartsAt:      alloc.Interval.StartsAt,
				EndsAt:        alloc.Interval.EndsAt,
				BookedSeconds: alloc.BookedSeconds,
			}
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("AllocateBooking: serialization retries exhausted for lane=%d: %v", req.LaneID, err)
			return nil, ErrConcurrencyConflict
		}
		return nil, err
	}

	uc.logger.Info("AllocateBooking: successfully created booking id=%d (%d intervals) on lane=%s",
		result.ID, len(resultIntervals), lane.Name)

	return &Response{
		ID:                 result.ID,
		UserID:             result.UserID,
		LaneID:             result.LaneID,
		WindowStartsAt:     result.WindowStartsAt,
		WindowEndsAt:       result.WindowEndsAt,
		ServiceTimeSeconds: result.ServiceTimeSeconds,
		Status:             string(result.Status),
		Intervals:          resultIntervals,
		CustomerName:       result.CustomerName,
		VehicleBrand:       result.VehicleBrand,
		VehicleModel:       result.VehicleModel,
		VehiclePlate:       result.VehiclePlate,
		Notes:              result.Notes,
		CreatedAt:          result.CreatedAt,
		UpdatedAt:          result.UpdatedAt,
	}, nil
}
