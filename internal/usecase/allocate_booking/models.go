package allocate_booking

import "time"

// Request модель запроса на создание бронирования
type Request struct {
	UserID          int64     // ID пользователя
	LaneID          int64     // ID поста обслуживания
	WindowStart     time.Time // Начало окна доставки
	WindowEnd       time.Time // Конец окна доставки (не включается)
	RequiredSeconds int64     // Суммарное время обслуживания в секундах

	// Opaque payload - данные клиента и автомобиля
	CustomerName *string
	VehicleBrand *string
	VehicleModel *string
	VehiclePlate *string
	Notes        *string
}

// IntervalAllocationResult аллокация секунд на один интервал
type IntervalAllocationResult struct {
	IntervalID    int64
	StartsAt      time.Time
	EndsAt        time.Time
	BookedSeconds int64
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID                 int64
	UserID             int64
	LaneID             int64
	WindowStartsAt     time.Time
	WindowEndsAt       time.Time
	ServiceTimeSeconds int64
	Status             string

	// Раскладка по интервалам в порядке starts_at
	Intervals []IntervalAllocationResult

	CustomerName *string
	VehicleBrand *string
	VehicleModel *string
	VehiclePlate *string
	Notes        *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
