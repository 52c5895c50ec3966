package seed_intervals

import (
	"context"

	"github.com/m04kA/SMC-CapacityService/internal/service/schedule/models"
)

type ScheduleService interface {
	SeedIntervals(ctx context.Context, req *models.SeedIntervalsRequest) (*models.SeedIntervalsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
