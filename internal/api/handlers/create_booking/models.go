package create_booking

import (
	"time"

	allocateBooking "github.com/m04kA/SMC-CapacityService/internal/usecase/allocate_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	LaneID             int64   `json:"laneId"`
	WindowStartsAt     string  `json:"windowStartsAt"` // RFC3339
	WindowEndsAt       string  `json:"windowEndsAt"`   // RFC3339
	ServiceTimeSeconds int64   `json:"serviceTimeSeconds"`
	CustomerName       *string `json:"customerName,omitempty"`
	VehicleBrand       *string `json:"vehicleBrand,omitempty"`
	VehicleModel       *string `json:"vehicleModel,omitempty"`
	VehiclePlate       *string `json:"vehiclePlate,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

// BookingIntervalResponse аллокация секунд на один интервал
type BookingIntervalResponse struct {
	IntervalID    int64  `json:"intervalId"`
	StartsAt      string `json:"startsAt"` // RFC3339
	EndsAt        string `json:"endsAt"`   // RFC3339
	BookedSeconds int64  `json:"bookedSeconds"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID                 int64                     `json:"id"`
	UserID             int64                     `json:"userId"`
	LaneID             int64                     `json:"laneId"`
	WindowStartsAt     string                    `json:"windowStartsAt"`
	WindowEndsAt       string                    `json:"windowEndsAt"`
	ServiceTimeSeconds int64                     `json:"serviceTimeSeconds"`
	Status             string                    `json:"status"`
	Intervals          []BookingIntervalResponse `json:"intervals"`
	CustomerName       *string                   `json:"customerName,omitempty"`
	VehicleBrand       *string                   `json:"vehicleBrand,omitempty"`
	VehicleModel       *string                   `json:"vehicleModel,omitempty"`
	VehiclePlate       *string                   `json:"vehiclePlate,omitempty"`
	Notes              *string                   `json:"notes,omitempty"`
	CreatedAt          string                    `json:"createdAt"`
	UpdatedAt          string                    `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*allocateBooking.Request, error) {
	windowStart, err := time.Parse(time.RFC3339, r.WindowStartsAt)
	if err != nil {
		return nil, err
	}
	windowEnd, err := time.Parse(time.RFC3339, r.WindowEndsAt)
	if err != nil {
		return nil, err
	}

	return &allocateBooking.Request{
		UserID:          userID,
		LaneID:          r.LaneID,
		WindowStart:     windowStart,
		WindowEnd:       windowEnd,
		RequiredSeconds: r.ServiceTimeSeconds,
		CustomerName:    r.CustomerName,
		VehicleBrand:    r.VehicleBrand,
		VehicleModel:    r.VehicleModel,
		VehiclePlate:    r.VehiclePlate,
		Notes:           r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *allocateBooking.Response) *BookingResponse {
	intervals := make([]BookingIntervalResponse, len(resp.Intervals))
	for i, iv := range resp.Intervals {
		intervals[i] = BookingIntervalResponse{
			IntervalID:    iv.IntervalID,
			StartsAt:      iv.StartsAt.Format(time.RFC3339),
			EndsAt:        iv.EndsAt.Format(time.RFC3339),
			BookedSeconds: iv.BookedSeconds,
		}
	}

	return &BookingResponse{
		ID:                 resp.ID,
		UserID:             resp.UserID,
		LaneID:             resp.LaneID,
		WindowStartsAt:     resp.WindowStartsAt.Format(time.RFC3339),
		WindowEndsAt:       resp.WindowEndsAt.Format(time.RFC3339),
		ServiceTimeSeconds: resp.ServiceTimeSeconds,
		Status:             resp.Status,
		Intervals:          intervals,
		CustomerName:       resp.CustomerName,
		VehicleBrand:       resp.VehicleBrand,
		VehicleModel:       resp.VehicleModel,
		VehiclePlate:       resp.VehiclePlate,
		Notes:              resp.Notes,
		CreatedAt:          resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          resp.UpdatedAt.Format(time.RFC3339),
	}
}
