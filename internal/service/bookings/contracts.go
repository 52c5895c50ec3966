package bookings

import (
	"context"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByLaneWithFilter(ctx context.Context, filter domain.LaneBookingsFilter) ([]*domain.Booking, error)
	GetIntervalsByBookingID(ctx context.Context, bookingID int64) ([]*domain.BookingInterval, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
