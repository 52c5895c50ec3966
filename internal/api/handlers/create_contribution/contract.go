package create_contribution

import (
	"context"

	"github.com/m04kA/SMC-CapacityService/internal/service/schedule/models"
)

type ScheduleService interface {
	CreateContribution(ctx context.Context, req *models.CreateContributionRequest) (*models.CreateContributionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
