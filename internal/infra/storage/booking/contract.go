package booking

import "github.com/m04kA/SMC-CapacityService/pkg/dbmetrics"

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// IntervalBookedSum пересчитанная из undo-лога сумма занятых секунд интервала
// Результат группирующего запроса для аудита кэша ёмкости
type IntervalBookedSum struct {
	IntervalID    int64
	BookedSeconds int64
}
