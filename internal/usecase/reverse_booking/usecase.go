package reverse_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CapacityService/internal/infra/storage/booking"
	laneClient "github.com/m04kA/SMC-CapacityService/internal/integrations/laneservice"
	"github.com/m04kA/SMC-CapacityService/pkg/txmanager"
)

// UseCase use case отмены бронирования: движок реверса аллокации
//
// Читает undo-лог (BookingInterval) и раскладку списаний (BookingAllocation),
// записанные при аллокации, и воспроизводит их в обратную сторону:
// возвращает секунды на те же contribution intervals теми же значениями
// и уменьшает кэш занятых секунд. Undo-лог после отмены сохраняется
// как неизменяемый аудиторский след
type UseCase struct {
	bookingRepo      BookingRepository
	contributionRepo ContributionRepository
	capacityRepo     CapacityRepository
	laneClient       LaneServiceClient
	txManager        TransactionManager
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	contributionRepo ContributionRepository,
	capacityRepo CapacityRepository,
	laneClient LaneServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		contributionRepo: contributionRepo,
		capacityRepo:     capacityRepo,
		laneClient:       laneClient,
		txManager:        txManager,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case отмены бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) error {
	uc.logger.Info("ReverseBooking: booking=%d, user=%d", req.BookingID, req.UserID)

	// 1. Валидация входных данных
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if len(req.Reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason must not exceed %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	// 2. Предварительные проверки вне транзакции - быстрый отказ
	// без захвата блокировок
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("ReverseBooking: booking id=%d not found", req.BookingID)
			return ErrBookingNotFound
		}
		uc.logger.Error("ReverseBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
	}

	if booking.UserID != req.UserID {
		uc.logger.Warn("ReverseBooking: access denied for user=%d to booking id=%d", req.UserID, req.BookingID)
		return ErrAccessDenied
	}

	if err := checkCancellable(booking); err != nil {
		uc.logger.Warn("ReverseBooking: booking id=%d is not cancellable, status=%s", req.BookingID, booking.Status)
		return err
	}

	// 3. Дедлайн отмены поста, если политика настроена
	lane, err := uc.laneClient.GetLane(ctx, booking.LaneID)
	if err != nil && !errors.Is(err, laneClient.ErrLaneNotFound) {
		uc.logger.Error("ReverseBooking: failed to get lane id=%d: %v", booking.LaneID, err)
		return fmt.Errorf("%w: failed to get lane: %w", ErrInternal, err)
	}
	if lane != nil && lane.CancellationCutoffMinutes > 0 {
		cutoff := booking.WindowStartsAt.Add(-time.Duration(lane.CancellationCutoffMinutes) * time.Minute)
		if uc.timeProvider.Now().After(cutoff) {
			uc.logger.Warn("ReverseBooking: cancellation window closed for booking id=%d (cutoff=%s)",
				req.BookingID, cutoff.Format("2006-01-02 15:04"))
			return ErrCancellationWindowClosed
		}
	}

	// 4. Реверс леджера - одна атомарная сериализуемая транзакция
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Перечитываем бронирование под блокировкой FOR UPDATE:
		// конкурентная отмена не должна пройти проверку статуса дважды
		locked, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to lock booking: %w", ErrInternal, err)
		}
		if err := checkCancellable(locked); err != nil {
			return err
		}

		// 4.2. Undo-лог и раскладка списаний аллокации
		intervals, err := uc.bookingRepo.GetIntervalsByBookingID(txCtx, req.BookingID)
		if err != nil {
			return fmt.Errorf("%w: failed to get booking intervals: %w", ErrInternal, err)
		}

		allocations, err := uc.bookingRepo.GetAllocationsByBookingID(txCtx, req.BookingID)
		if err != nil {
			return fmt.Errorf("%w: failed to get booking allocations: %w", ErrInternal, err)
		}

		// 4.3. Возвращаем секунды на те же contribution intervals
		// ровно теми же значениями, что были списаны
		for _, a := range allocations {
			if err := uc.contributionRepo.RestoreRemaining(txCtx, a.ContributionIntervalID, a.DeductedSeconds); err != nil {
				return fmt.Errorf("%w: failed to restore remaining seconds: %w", ErrInternal, err)
			}
		}

		// 4.4. Уменьшаем кэш занятых секунд, не уходя ниже нуля
		for _, bi := range intervals {
			if err := uc.capacityRepo.SubtractBooked(txCtx, bi.LaneID, bi.IntervalID, bi.BookedSeconds); err != nil {
				return fmt.Errorf("%w: failed to subtract booked seconds: %w", ErrInternal, err)
			}
		}

		// 4.5. Терминальный статус
		if err := uc.bookingRepo.Cancel(txCtx, req.BookingID, req.Reason); err != nil {
			return fmt.Errorf("%w: failed to cancel booking: %w", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("ReverseBooking: serialization retries exhausted for booking=%d: %v", req.BookingID, err)
			return ErrConcurrencyConflict
		}
		return err
	}

	uc.logger.Info("ReverseBooking: successfully cancelled booking id=%d", req.BookingID)
	return nil
}

// checkCancellable проверяет, что статус бронирования допускает отмену
func checkCancellable(b *domain.Booking) error {
	switch {
	case b.IsCancelled():
		return ErrAlreadyCancelled
	case !b.CanBeCancelled():
		return ErrCannotCancel
	default:
		return nil
	}
}
