package query_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/internal/infra/storage/contribution"
	"github.com/m04kA/SMC-CapacityService/internal/integrations/laneservice"
)

// IntervalRepository интерфейс репозитория интервалов ёмкости
type IntervalRepository interface {
	GetByDate(ctx context.Context, date time.Time) ([]*domain.CapacityInterval, error)
}

// ContributionRepository интерфейс репозитория счётчиков остатка
type ContributionRepository interface {
	SumRemainingByLaneIntervals(ctx context.Context, laneIDs, intervalIDs []int64) ([]contribution.RemainingSum, error)
}

// CapacityRepository интерфейс репозитория кэша занятых секунд
type CapacityRepository interface {
	GetTotals(ctx context.Context, laneIDs, intervalIDs []int64) ([]*domain.LaneIntervalCapacity, error)
}

// LaneServiceClient интерфейс клиента для LaneService
type LaneServiceClient interface {
	GetLane(ctx context.Context, laneID int64) (*laneservice.Lane, error)
	ListLanes(ctx context.Context) ([]*laneservice.Lane, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
