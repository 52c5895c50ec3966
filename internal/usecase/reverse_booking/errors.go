package reverse_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reverse_booking: invalid input data")

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reverse_booking: booking not found")

	// ErrAccessDenied возвращается, когда отмену инициировал не владелец
	ErrAccessDenied = errors.New("reverse_booking: access denied")

	// ErrAlreadyCancelled возвращается при повторной попытке отмены
	ErrAlreadyCancelled = errors.New("reverse_booking: booking is already cancelled")

	// ErrCannotCancel возвращается, когда бронирование в терминальном
	// статусе completed и отмене не подлежит
	ErrCannotCancel = errors.New("reverse_booking: booking cannot be cancelled")

	// ErrCancellationWindowClosed возвращается, когда дедлайн отмены поста прошёл
	ErrCancellationWindowClosed = errors.New("reverse_booking: cancellation window is closed")

	// ErrConcurrencyConflict возвращается, когда сериализуемая транзакция
	// не прошла даже после всех повторов
	ErrConcurrencyConflict = errors.New("reverse_booking: concurrent reversal conflict, retries exhausted")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reverse_booking: internal error")
)
