package create_booking

import (
	"context"

	allocateBooking "github.com/m04kA/SMC-CapacityService/internal/usecase/allocate_booking"
)

type AllocateBookingUseCase interface {
	Execute(ctx context.Context, req *allocateBooking.Request) (*allocateBooking.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
