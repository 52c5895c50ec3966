package allocate_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/internal/integrations/laneservice"
)

// IntervalRepository интерфейс репозитория интервалов ёмкости
type IntervalRepository interface {
	GetOverlapping(ctx context.Context, start, end time.Time) ([]*domain.CapacityInterval, error)
}

// ContributionRepository интерфейс репозитория счётчиков остатка
type ContributionRepository interface {
	GetByLaneAndInterval(ctx context.Context, laneID, intervalID int64) ([]*domain.ContributionInterval, error)
	DecrementRemaining(ctx context.Context, id, seconds int64) error
}

// CapacityRepository интерфейс репозитория кэша занятых секунд
type CapacityRepository interface {
	GetForUpdate(ctx context.Context, laneID, intervalID int64) (*domain.LaneIntervalCapacity, error)
	AddBooked(ctx context.Context, laneID, intervalID, seconds int64) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	CreateIntervals(ctx context.Context, intervals []*domain.BookingInterval) ([]*domain.BookingInterval, error)
	CreateAllocations(ctx context.Context, allocations []*domain.BookingAllocation) error
}

// LaneServiceClient интерфейс клиента для LaneService
type LaneServiceClient interface {
	GetLane(ctx context.Context, laneID int64) (*laneservice.Lane, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
