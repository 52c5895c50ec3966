package cancel_booking

import (
	reverseBooking "github.com/m04kA/SMC-CapacityService/internal/usecase/reverse_booking"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *CancelBookingRequest) ToUseCaseRequest(bookingID, userID int64) *reverseBooking.Request {
	reason := ""
	if r.CancellationReason != nil {
		reason = *r.CancellationReason
	}

	return &reverseBooking.Request{
		BookingID: bookingID,
		UserID:    userID,
		Reason:    reason,
	}
}
