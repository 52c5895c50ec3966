package schedule

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("schedule: invalid input data")

	// ErrIntervalsMissing возвращается, когда на окно смены не засидировано
	// ни одного интервала - вклад не из чего нарезать
	ErrIntervalsMissing = errors.New("schedule: no capacity intervals overlap the contribution window")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("schedule: internal error")
)
