package domain

// Default configuration values
const (
	DefaultSliceMinutes = 30 // длительность интервала ёмкости по умолчанию
)

// Business validation constants
const (
	MinSliceMinutes             = 5
	MaxSliceMinutes             = 480 // 8 часов
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxSeedRangeDays            = 92 // не больше квартала за одно сидирование
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов, не занимающих ёмкость
// Используется при пересчёте занятых секунд
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
}

// ActiveStatuses список статусов, занимающих ёмкость
var ActiveStatuses = []BookingStatus{
	StatusConfirmed,
	StatusCompleted,
}
