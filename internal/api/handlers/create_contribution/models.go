package create_contribution

import (
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/service/schedule/models"
)

// CreateContributionRequest HTTP request model
type CreateContributionRequest struct {
	WorkerID         int64  `json:"workerId"`
	LaneID           int64  `json:"laneId"`
	StartsAt         string `json:"startsAt"` // RFC3339
	EndsAt           string `json:"endsAt"`   // RFC3339
	AvailableSeconds int64  `json:"availableSeconds"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CreateContributionRequest) ToServiceRequest() (*models.CreateContributionRequest, error) {
	startsAt, err := time.Parse(time.RFC3339, r.StartsAt)
	if err != nil {
		return nil, err
	}
	endsAt, err := time.Parse(time.RFC3339, r.EndsAt)
	if err != nil {
		return nil, err
	}

	return &models.CreateContributionRequest{
		WorkerID:         r.WorkerID,
		LaneID:           r.LaneID,
		StartsAt:         startsAt,
		EndsAt:           endsAt,
		AvailableSeconds: r.AvailableSeconds,
	}, nil
}
