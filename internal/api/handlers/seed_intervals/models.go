package seed_intervals

import (
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/internal/service/schedule/models"
	"github.com/m04kA/SMC-CapacityService/pkg/types"
)

// SeedIntervalsRequest HTTP request model
type SeedIntervalsRequest struct {
	FromDate     string `json:"fromDate"` // "2026-09-01"
	ToDate       string `json:"toDate"`   // "2026-09-30"
	DayStart     string `json:"dayStart"` // "08:00"
	DayEnd       string `json:"dayEnd"`   // "20:00"
	SliceMinutes int    `json:"sliceMinutes,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *SeedIntervalsRequest) ToServiceRequest() (*models.SeedIntervalsRequest, error) {
	fromDate, err := time.Parse(domain.DateFormat, r.FromDate)
	if err != nil {
		return nil, err
	}
	toDate, err := time.Parse(domain.DateFormat, r.ToDate)
	if err != nil {
		return nil, err
	}

	dayStart, err := types.NewTimeStringFromString(r.DayStart)
	if err != nil {
		return nil, err
	}
	dayEnd, err := types.NewTimeStringFromString(r.DayEnd)
	if err != nil {
		return nil, err
	}

	return &models.SeedIntervalsRequest{
		FromDate:     fromDate,
		ToDate:       toDate,
		DayStart:     dayStart,
		DayEnd:       dayEnd,
		SliceMinutes: r.SliceMinutes,
	}, nil
}
