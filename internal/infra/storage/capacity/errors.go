package capacity

import "errors"

var (
	// ErrCapacityRowNotFound возвращается, когда строки кэша ещё нет
	// Для пары (lane, interval) без бронирований это нормальная ситуация
	ErrCapacityRowNotFound = errors.New("capacity.repository: lane interval capacity row not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("capacity.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("capacity.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("capacity.repository: failed to scan row")
)
