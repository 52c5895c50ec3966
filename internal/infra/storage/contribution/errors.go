package contribution

import "errors"

var (
	// ErrContributionNotFound возвращается, когда вклад работника не найден
	ErrContributionNotFound = errors.New("contribution.repository: worker contribution not found")

	// ErrContributionIntervalNotFound возвращается, когда производная строка интервала не найдена
	ErrContributionIntervalNotFound = errors.New("contribution.repository: contribution interval not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("contribution.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("contribution.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("contribution.repository: failed to scan row")
)
