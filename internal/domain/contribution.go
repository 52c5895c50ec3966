package domain

import "time"

// WorkerContribution вклад работника: обещание отдать посту
// available_seconds ёмкости в окне смены [StartsAt, EndsAt)
// Неизменяем после нарезки производных ContributionInterval строк -
// правка требует их перегенерации
type WorkerContribution struct {
	ID               int64
	WorkerID         int64
	LaneID           int64
	StartsAt         time.Time
	EndsAt           time.Time
	AvailableSeconds int64
	CreatedAt        time.Time
}

// ShiftSeconds возвращает длительность смены в секундах
func (c *WorkerContribution) ShiftSeconds() int64 {
	return int64(c.EndsAt.Sub(c.StartsAt) / time.Second)
}
