package cancel_booking

import (
	"context"

	reverseBooking "github.com/m04kA/SMC-CapacityService/internal/usecase/reverse_booking"
)

type ReverseBookingUseCase interface {
	Execute(ctx context.Context, req *reverseBooking.Request) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
