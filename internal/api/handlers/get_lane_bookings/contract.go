package get_lane_bookings

import (
	"context"

	"github.com/m04kA/SMC-CapacityService/internal/service/bookings/models"
)

type BookingService interface {
	GetLaneBookings(ctx context.Context, req *models.GetLaneBookingsRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
