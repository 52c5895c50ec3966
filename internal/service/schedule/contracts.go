package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/internal/infra/storage/booking"
)

// IntervalRepository интерфейс репозитория интервалов ёмкости
type IntervalRepository interface {
	CreateBatch(ctx context.Context, intervals []*domain.CapacityInterval) error
	DeleteByDateRange(ctx context.Context, from, to time.Time) (int64, error)
	GetByDate(ctx context.Context, date time.Time) ([]*domain.CapacityInterval, error)
	GetOverlapping(ctx context.Context, start, end time.Time) ([]*domain.CapacityInterval, error)
}

// ContributionRepository интерфейс репозитория вкладов работников
type ContributionRepository interface {
	CreateContribution(ctx context.Context, c *domain.WorkerContribution) (*domain.WorkerContribution, error)
	CreateIntervals(ctx context.Context, rows []*domain.ContributionInterval) error
}

// CapacityRepository интерфейс репозитория кэша занятых секунд
type CapacityRepository interface {
	GetTotals(ctx context.Context, laneIDs, intervalIDs []int64) ([]*domain.LaneIntervalCapacity, error)
	SetTotal(ctx context.Context, laneID, intervalID, seconds int64) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	SumBookedByIntervals(ctx context.Context, laneID int64, intervalIDs []int64) ([]booking.IntervalBookedSum, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
