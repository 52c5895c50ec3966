package bookings

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "github.com/m04kA/SMC-CapacityService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CapacityService/internal/service/bookings/models"
)

// Service read-side сервис для работы с бронированиями
// Ёмкость здесь не мутируется - создание идёт через движок аллокации,
// отмена через движок реверса
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID вместе с поинтервальной раскладкой
// Пользователь может видеть только своё бронирование
func (s *Service) GetByID(ctx context.Context, id, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %w", ErrInternal, err)
	}

	if booking.UserID != userID {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	intervals, err := s.bookingRepo.GetIntervalsByBookingID(ctx, id)
	if err != nil {
		s.logger.Error("GetByID: failed to get intervals for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - failed to get intervals: %w", ErrInternal, err)
	}

	resp := models.FromDomainBooking(booking)
	resp.Intervals = make([]models.BookingIntervalResponse, len(intervals))
	for i, bi := range intervals {
		resp.Intervals[i] = models.BookingIntervalResponse{
			IntervalID:    bi.IntervalID,
			BookedSeconds: bi.BookedSeconds,
		}
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d (%d intervals)", id, len(intervals))
	return resp, nil
}

// GetLaneBookings получает бронирования поста с гибкой фильтрацией
// по периоду, статусу и включению отменённых
func (s *Service) GetLaneBookings(ctx context.Context, req *models.GetLaneBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetLaneBookings: fetching bookings for lane=%d", req.LaneID)

	if req.LaneID <= 0 {
		return nil, fmt.Errorf("%w: laneID must be positive", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetLaneBookings: invalid filter for lane=%d: %v", req.LaneID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByLaneWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetLaneBookings: repository error for lane=%d: %v", req.LaneID, err)
		return nil, fmt.Errorf("%w: GetLaneBookings - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetLaneBookings: successfully fetched %d bookings for lane=%d", len(bookings), req.LaneID)
	return models.FromDomainBookingList(bookings), nil
}
