package contribution

import "github.com/m04kA/SMC-CapacityService/pkg/dbmetrics"

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// RemainingSum сумма остатков секунд по паре (lane, interval)
// Результат группирующего запроса для расчёта доступности
type RemainingSum struct {
	LaneID           int64
	IntervalID       int64
	RemainingSeconds int64
}
