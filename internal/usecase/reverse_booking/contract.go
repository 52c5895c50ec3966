package reverse_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/internal/integrations/laneservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetIntervalsByBookingID(ctx context.Context, bookingID int64) ([]*domain.BookingInterval, error)
	GetAllocationsByBookingID(ctx context.Context, bookingID int64) ([]*domain.BookingAllocation, error)
	Cancel(ctx context.Context, id int64, reason string) error
}

// ContributionRepository интерфейс репозитория счётчиков остатка
type ContributionRepository interface {
	RestoreRemaining(ctx context.Context, id, seconds int64) error
}

// CapacityRepository интерфейс репозитория кэша занятых секунд
type CapacityRepository interface {
	SubtractBooked(ctx context.Context, laneID, intervalID, seconds int64) error
}

// LaneServiceClient интерфейс клиента для LaneService
type LaneServiceClient interface {
	GetLane(ctx context.Context, laneID int64) (*laneservice.Lane, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
