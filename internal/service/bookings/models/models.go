package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetLaneBookingsRequest запрос на получение бронирований поста
type GetLaneBookingsRequest struct {
	LaneID          int64      `json:"laneId"`
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отменённые бронирования
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetLaneBookingsRequest) ToDomainFilter() (domain.LaneBookingsFilter, error) {
	filter := domain.LaneBookingsFilter{
		LaneID:          r.LaneID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingIntervalResponse аллокация секунд на один интервал
type BookingIntervalResponse struct {
	IntervalID    int64 `json:"intervalId"`
	BookedSeconds int64 `json:"bookedSeconds"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                 int64  `json:"id"`
	UserID             int64  `json:"userId"`
	LaneID             int64  `json:"laneId"`
	WindowStartsAt     string `json:"windowStartsAt"` // RFC3339
	WindowEndsAt       string `json:"windowEndsAt"`   // RFC3339
	ServiceTimeSeconds int64  `json:"serviceTimeSeconds"`
	Status             string `json:"status"`

	// Денормализованные данные клиента и автомобиля
	CustomerName *string `json:"customerName,omitempty"`
	VehicleBrand *string `json:"vehicleBrand,omitempty"`
	VehicleModel *string `json:"vehicleModel,omitempty"`
	VehiclePlate *string `json:"vehiclePlate,omitempty"`
	Notes        *string `json:"notes,omitempty"`

	// Поинтервальная раскладка (заполняется только в ответе по одному бронированию)
	Intervals []BookingIntervalResponse `json:"intervals,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// BookingListResponse список бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// FromDomainBooking конвертирует domain бронирование в response
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:                 b.ID,
		UserID:             b.UserID,
		LaneID:             b.LaneID,
		WindowStartsAt:     b.WindowStartsAt.Format(time.RFC3339),
		WindowEndsAt:       b.WindowEndsAt.Format(time.RFC3339),
		ServiceTimeSeconds: b.ServiceTimeSeconds,
		Status:             string(b.Status),
		CustomerName:       b.CustomerName,
		VehicleBrand:       b.VehicleBrand,
		VehicleModel:       b.VehicleModel,
		VehiclePlate:       b.VehiclePlate,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          b.UpdatedAt.Format(time.RFC3339),
	}

	if b.CancelledAt != nil {
		cancelledAt := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledAt
	}

	return resp
}

// FromDomainBookingList конвертирует список domain бронирований в response
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	result := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		result[i] = *FromDomainBooking(b)
	}
	return &BookingListResponse{
		Bookings: result,
		Total:    len(result),
	}
}

// ToDomainBookingStatus конвертирует строку в domain статус
func ToDomainBookingStatus(s string) (domain.BookingStatus, error) {
	switch domain.BookingStatus(s) {
	case domain.StatusConfirmed, domain.StatusCompleted, domain.StatusCancelled:
		return domain.BookingStatus(s), nil
	default:
		return "", ErrInvalidStatus
	}
}
