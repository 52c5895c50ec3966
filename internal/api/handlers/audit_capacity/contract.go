package audit_capacity

import (
	"context"

	"github.com/m04kA/SMC-CapacityService/internal/service/schedule/models"
)

type ScheduleService interface {
	AuditLaneCapacity(ctx context.Context, req *models.AuditCapacityRequest) (*models.AuditCapacityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
