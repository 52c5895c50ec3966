package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking бронирование обслуживания на посту (lane) в окне доставки
// Создаётся только движком аллокации; после cancelled или completed
// статус терминален
type Booking struct {
	ID                 int64
	UserID             int64
	LaneID             int64
	WindowStartsAt     time.Time
	WindowEndsAt       time.Time
	ServiceTimeSeconds int64
	Status             BookingStatus

	// Денормализованные данные клиента и автомобиля (opaque payload)
	CustomerName *string
	VehicleBrand *string
	VehicleModel *string
	VehiclePlate *string
	Notes        *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies capacity
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// IsCompleted returns true if the booking has been completed
func (b *Booking) IsCompleted() bool {
	return b.Status == StatusCompleted
}

// BookingInterval запись аллокации секунд бронирования на один интервал ёмкости
// Неизменяема после создания - служит undo-логом для отмены
type BookingInterval struct {
	ID            int64
	BookingID     int64
	LaneID        int64
	IntervalID    int64
	BookedSeconds int64
}

// BookingAllocation точная раскладка списания по одному contribution interval
// Пишется вместе с BookingInterval и воспроизводится при отмене,
// чтобы возврат ёмкости был точным обратным действием списания
type BookingAllocation struct {
	ID                     int64
	BookingIntervalID      int64
	ContributionIntervalID int64
	DeductedSeconds        int64
}

// LaneBookingsFilter фильтр для получения бронирований поста
type LaneBookingsFilter struct {
	LaneID          int64          // Обязательный параметр
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отменённые бронирования
}
