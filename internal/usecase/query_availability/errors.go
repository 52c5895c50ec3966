package query_availability

import "errors"

// Запрос доступности не порождает доменных ошибок - отсутствие ёмкости
// или интервалов выражается пустым списком слотов
var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("query_availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("query_availability: internal error")
)
