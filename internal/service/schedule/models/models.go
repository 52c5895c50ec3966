package models

import (
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/pkg/types"
)

// Request модели

// SeedIntervalsRequest запрос на массовое (пере)сидирование интервалов
// Существующие интервалы диапазона удаляются и нарезаются заново
type SeedIntervalsRequest struct {
	FromDate     time.Time        `json:"fromDate"`
	ToDate       time.Time        `json:"toDate"`
	DayStart     types.TimeString `json:"dayStart"` // Начало рабочего окна дня, "HH:MM"
	DayEnd       types.TimeString `json:"dayEnd"`   // Конец рабочего окна дня, "HH:MM"
	SliceMinutes int              `json:"sliceMinutes,omitempty"`
}

// CreateContributionRequest запрос на регистрацию вклада работника
type CreateContributionRequest struct {
	WorkerID         int64     `json:"workerId"`
	LaneID           int64     `json:"laneId"`
	StartsAt         time.Time `json:"startsAt"`
	EndsAt           time.Time `json:"endsAt"`
	AvailableSeconds int64     `json:"availableSeconds"`
}

// ToDomain конвертирует request в domain модель вклада
func (r *CreateContributionRequest) ToDomain() *domain.WorkerContribution {
	return &domain.WorkerContribution{
		WorkerID:         r.WorkerID,
		LaneID:           r.LaneID,
		StartsAt:         r.StartsAt,
		EndsAt:           r.EndsAt,
		AvailableSeconds: r.AvailableSeconds,
	}
}

// AuditCapacityRequest запрос на сверку кэша занятых секунд поста
type AuditCapacityRequest struct {
	LaneID int64     `json:"laneId"`
	Date   time.Time `json:"date"`
	Repair bool      `json:"repair,omitempty"` // Починить кэш по пересчитанным значениям
}

// Response модели

// SeedIntervalsResponse результат сидирования
type SeedIntervalsResponse struct {
	Deleted int64 `json:"deleted"`
	Created int   `json:"created"`
}

// ContributionIntervalResponse доля вклада, нарезанная на один интервал
type ContributionIntervalResponse struct {
	IntervalID      int64 `json:"intervalId"`
	OriginalSeconds int64 `json:"originalSeconds"`
}

// CreateContributionResponse результат регистрации вклада
type CreateContributionResponse struct {
	ID               int64                          `json:"id"`
	WorkerID         int64                          `json:"workerId"`
	LaneID           int64                          `json:"laneId"`
	StartsAt         string                         `json:"startsAt"` // RFC3339
	EndsAt           string                         `json:"endsAt"`   // RFC3339
	AvailableSeconds int64                          `json:"availableSeconds"`
	Intervals        []ContributionIntervalResponse `json:"intervals"`
	CreatedAt        string                         `json:"createdAt"`
}

// FromDomainContribution конвертирует вклад и его доли в response
func FromDomainContribution(c *domain.WorkerContribution, rows []*domain.ContributionInterval) *CreateContributionResponse {
	intervals := make([]ContributionIntervalResponse, len(rows))
	for i, row := range rows {
		intervals[i] = ContributionIntervalResponse{
			IntervalID:      row.IntervalID,
			OriginalSeconds: row.OriginalSeconds,
		}
	}
	return &CreateContributionResponse{
		ID:               c.ID,
		WorkerID:         c.WorkerID,
		LaneID:           c.LaneID,
		StartsAt:         c.StartsAt.Format(time.RFC3339),
		EndsAt:           c.EndsAt.Format(time.RFC3339),
		AvailableSeconds: c.AvailableSeconds,
		Intervals:        intervals,
		CreatedAt:        c.CreatedAt.Format(time.RFC3339),
	}
}

// AuditEntry расхождение кэша с пересчитанным значением по одному интервалу
type AuditEntry struct {
	IntervalID int64  `json:"intervalId"`
	StartsAt   string `json:"startsAt"` // RFC3339
	EndsAt     string `json:"endsAt"`   // RFC3339
	Cached     int64  `json:"cached"`
	Recomputed int64  `json:"recomputed"`
	Repaired   bool   `json:"repaired"`
}

// AuditCapacityResponse результат сверки кэша
type AuditCapacityResponse struct {
	LaneID    int64        `json:"laneId"`
	Date      string       `json:"date"` // YYYY-MM-DD
	Intervals int          `json:"intervals"`
	Drift     []AuditEntry `json:"drift"`
	Repaired  bool         `json:"repaired"`
}
