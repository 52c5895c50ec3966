package allocate_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("allocate_booking: invalid input data")

	// ErrLaneNotFound возвращается, когда пост не найден
	ErrLaneNotFound = errors.New("allocate_booking: lane not found")

	// ErrLaneClosed возвращается, когда пост закрыт для новых бронирований
	ErrLaneClosed = errors.New("allocate_booking: lane is closed for new bookings")

	// ErrIntervalsMissing возвращается, когда ни один интервал ёмкости
	// не пересекается с окном доставки - интервалы на эту дату не засидированы
	ErrIntervalsMissing = errors.New("allocate_booking: no capacity intervals overlap the delivery window")

	// ErrCapacityExceeded возвращается, когда остатка ёмкости интервала
	// не хватает на требуемые секунды обслуживания
	ErrCapacityExceeded = errors.New("allocate_booking: insufficient remaining capacity")

	// ErrConcurrencyConflict возвращается, когда сериализуемая транзакция
	// не прошла даже после всех повторов
	ErrConcurrencyConflict = errors.New("allocate_booking: concurrent allocation conflict, retries exhausted")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("allocate_booking: internal error")
)
