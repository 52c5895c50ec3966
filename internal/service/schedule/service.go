package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/internal/service/schedule/models"
)

// Service административный сервис расписания: сидирование интервалов,
// регистрация вкладов работников и сверка кэша занятых секунд
type Service struct {
	intervalRepo     IntervalRepository
	contributionRepo ContributionRepository
	capacityRepo     CapacityRepository
	bookingRepo      BookingRepository
	txManager        TransactionManager
	sliceMinutes     int
	logger           Logger
}

// NewService создает новый экземпляр сервиса расписания
// sliceMinutes используется как длина среза по умолчанию при сидировании
func NewService(
	intervalRepo IntervalRepository,
	contributionRepo ContributionRepository,
	capacityRepo CapacityRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	sliceMinutes int,
	logger Logger,
) *Service {
	if sliceMinutes <= 0 {
		sliceMinutes = domain.DefaultSliceMinutes
	}
	return &Service{
		intervalRepo:     intervalRepo,
		contributionRepo: contributionRepo,
		capacityRepo:     capacityRepo,
		bookingRepo:      bookingRepo,
		txManager:        txManager,
		sliceMinutes:     sliceMinutes,
		logger:           logger,
	}
}

// SeedIntervals пересидирует интервалы ёмкости на диапазоне дат:
// существующие интервалы диапазона удаляются и нарезаются заново
// в одной транзакции
func (s *Service) SeedIntervals(ctx context.Context, req *models.SeedIntervalsRequest) (*models.SeedIntervalsResponse, error) {
	if err := s.validateSeedRequest(req); err != nil {
		s.logger.Warn("SeedIntervals: validation failed: %v", err)
		return nil, err
	}

	sliceMinutes := req.SliceMinutes
	if sliceMinutes == 0 {
		sliceMinutes = s.sliceMinutes
	}

	// Валидация уже проверила формат HH:MM
	startMin, _ := req.DayStart.Minutes()
	endMin, _ := req.DayEnd.Minutes()

	var intervals []*domain.CapacityInterval
	for d := req.FromDate; !d.After(req.ToDate); d = d.AddDate(0, 0, 1) {
		intervals = append(intervals, sliceDay(d, startMin, endMin, sliceMinutes)...)
	}
	if len(intervals) == 0 {
		return nil, fmt.Errorf("%w: day window [%s, %s) is shorter than one %d-minute slice",
			ErrInvalidInput, req.DayStart, req.DayEnd, sliceMinutes)
	}

	s.logger.Info("SeedIntervals: reseeding %s..%s, %d intervals of %d minutes",
		req.FromDate.Format(domain.DateFormat), req.ToDate.Format(domain.DateFormat), len(intervals), sliceMinutes)

	var deleted int64
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = s.intervalRepo.DeleteByDateRange(ctx, req.FromDate, req.ToDate)
		if err != nil {
			return fmt.Errorf("failed to delete existing intervals: %w", err)
		}
		if err = s.intervalRepo.CreateBatch(ctx, intervals); err != nil {
			return fmt.Errorf("failed to create intervals: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("SeedIntervals: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: SeedIntervals - transaction failed: %w", ErrInternal, err)
	}

	s.logger.Info("SeedIntervals: deleted %d, created %d intervals", deleted, len(intervals))
	return &models.SeedIntervalsResponse{
		Deleted: deleted,
		Created: len(intervals),
	}, nil
}

func (s *Service) validateSeedRequest(req *models.SeedIntervalsRequest) error {
	if req.FromDate.IsZero() || req.ToDate.IsZero() {
		return fmt.Errorf("%w: fromDate and toDate are required", ErrInvalidInput)
	}
	if req.ToDate.Before(req.FromDate) {
		return fmt.Errorf("%w: toDate must not be before fromDate", ErrInvalidInput)
	}
	days := int(req.ToDate.Sub(req.FromDate)/(24*time.Hour)) + 1
	if days > domain.MaxSeedRangeDays {
		return fmt.Errorf("%w: date range exceeds %d days", ErrInvalidInput, domain.MaxSeedRangeDays)
	}
	if err := req.DayStart.Validate(); err != nil {
		return fmt.Errorf("%w: invalid dayStart: %v", ErrInvalidInput, err)
	}
	if err := req.DayEnd.Validate(); err != nil {
		return fmt.Errorf("%w: invalid dayEnd: %v", ErrInvalidInput, err)
	}
	if !req.DayStart.IsBefore(req.DayEnd) {
		return fmt.Errorf("%w: dayStart must be before dayEnd", ErrInvalidInput)
	}
	if req.SliceMinutes != 0 && (req.SliceMinutes < domain.MinSliceMinutes || req.SliceMinutes > domain.MaxSliceMinutes) {
		return fmt.Errorf("%w: sliceMinutes must be between %d and %d", ErrInvalidInput, domain.MinSliceMinutes, domain.MaxSliceMinutes)
	}
	return nil
}

// CreateContribution регистрирует вклад работника и нарезает его
// available_seconds на производные счётчики остатка по пересекающимся
// интервалам. Вклад и счётчики создаются в одной транзакции
func (s *Service) CreateContribution(ctx context.Context, req *models.CreateContributionRequest) (*models.CreateContributionResponse, error) {
	if err := s.validateContributionRequest(req); err != nil {
		s.logger.Warn("CreateContribution: validation failed: %v", err)
		return nil, err
	}

	s.logger.Info("CreateContribution: worker=%d lane=%d window=[%s, %s) available=%ds",
		req.WorkerID, req.LaneID, req.StartsAt.Format(time.RFC3339), req.EndsAt.Format(time.RFC3339), req.AvailableSeconds)

	var (
		created *domain.WorkerContribution
		rows    []*domain.ContributionInterval
	)
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.contributionRepo.CreateContribution(ctx, req.ToDomain())
		if err != nil {
			return fmt.Errorf("failed to create contribution: %w", err)
		}

		intervals, err := s.intervalRepo.GetOverlapping(ctx, req.StartsAt, req.EndsAt)
		if err != nil {
			return fmt.Errorf("failed to get overlapping intervals: %w", err)
		}

		rows = deriveContributionRows(created, intervals)
		if len(rows) == 0 {
			return ErrIntervalsMissing
		}

		if err = s.contributionRepo.CreateIntervals(ctx, rows); err != nil {
			return fmt.Errorf("failed to create contribution intervals: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrIntervalsMissing) {
			s.logger.Warn("CreateContribution: no seeded intervals overlap window of worker=%d lane=%d", req.WorkerID, req.LaneID)
			return nil, ErrIntervalsMissing
		}
		s.logger.Error("CreateContribution: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: CreateContribution - transaction failed: %w", ErrInternal, err)
	}

	s.logger.Info("CreateContribution: created contribution id=%d with %d interval rows", created.ID, len(rows))
	return models.FromDomainContribution(created, rows), nil
}

func (s *Service) validateContributionRequest(req *models.CreateContributionRequest) error {
	if req.WorkerID <= 0 {
		return fmt.Errorf("%w: workerID must be positive", ErrInvalidInput)
	}
	if req.LaneID <= 0 {
		return fmt.Errorf("%w: laneID must be positive", ErrInvalidInput)
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		return fmt.Errorf("%w: startsAt and endsAt are required", ErrInvalidInput)
	}
	if !req.StartsAt.Before(req.EndsAt) {
		return fmt.Errorf("%w: startsAt must be before endsAt", ErrInvalidInput)
	}
	if req.AvailableSeconds <= 0 {
		return fmt.Errorf("%w: availableSeconds must be positive", ErrInvalidInput)
	}
	shiftSeconds := int64(req.EndsAt.Sub(req.StartsAt) / time.Second)
	if req.AvailableSeconds > shiftSeconds {
		return fmt.Errorf("%w: availableSeconds exceeds shift length of %ds", ErrInvalidInput, shiftSeconds)
	}
	return nil
}

// AuditLaneCapacity сверяет кэш total_booked_seconds поста с пересчётом
// по строкам booking_intervals за один день. При repair=true найденные
// расхождения чинятся в транзакции
func (s *Service) AuditLaneCapacity(ctx context.Context, req *models.AuditCapacityRequest) (*models.AuditCapacityResponse, error) {
	if req.LaneID <= 0 {
		return nil, fmt.Errorf("%w: laneID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	s.logger.Info("AuditLaneCapacity: auditing lane=%d date=%s repair=%t",
		req.LaneID, req.Date.Format(domain.DateFormat), req.Repair)

	resp := &models.AuditCapacityResponse{
		LaneID: req.LaneID,
		Date:   req.Date.Format(domain.DateFormat),
		Drift:  []models.AuditEntry{},
	}

	intervals, err := s.intervalRepo.GetByDate(ctx, req.Date)
	if err != nil {
		s.logger.Error("AuditLaneCapacity: failed to get intervals: %v", err)
		return nil, fmt.Errorf("%w: AuditLaneCapacity - failed to get intervals: %w", ErrInternal, err)
	}
	if len(intervals) == 0 {
		return resp, nil
	}
	resp.Intervals = len(intervals)

	intervalIDs := make([]int64, len(intervals))
	for i, iv := range intervals {
		intervalIDs[i] = iv.ID
	}

	sums, err := s.bookingRepo.SumBookedByIntervals(ctx, req.LaneID, intervalIDs)
	if err != nil {
		s.logger.Error("AuditLaneCapacity: failed to recompute booked seconds: %v", err)
		return nil, fmt.Errorf("%w: AuditLaneCapacity - failed to recompute booked seconds: %w", ErrInternal, err)
	}
	recomputed := make(map[int64]int64, len(sums))
	for _, sum := range sums {
		recomputed[sum.IntervalID] = sum.BookedSeconds
	}

	totals, err := s.capacityRepo.GetTotals(ctx, []int64{req.LaneID}, intervalIDs)
	if err != nil {
		s.logger.Error("AuditLaneCapacity: failed to get cached totals: %v", err)
		return nil, fmt.Errorf("%w: AuditLaneCapacity - failed to get cached totals: %w", ErrInternal, err)
	}
	cached := make(map[int64]int64, len(totals))
	for _, t := range totals {
		cached[t.IntervalID] = t.TotalBookedSeconds
	}

	for _, iv := range intervals {
		c := cached[iv.ID]
		r := recomputed[iv.ID]
		if c == r {
			continue
		}
		resp.Drift = append(resp.Drift, models.AuditEntry{
			IntervalID: iv.ID,
			StartsAt:   iv.StartsAt.Format(time.RFC3339),
			EndsAt:     iv.EndsAt.Format(time.RFC3339),
			Cached:     c,
			Recomputed: r,
		})
	}

	if len(resp.Drift) == 0 {
		s.logger.Info("AuditLaneCapacity: lane=%d date=%s no drift across %d intervals",
			req.LaneID, resp.Date, len(intervals))
		return resp, nil
	}
	s.logger.Warn("AuditLaneCapacity: lane=%d date=%s drift on %d of %d intervals",
		req.LaneID, resp.Date, len(resp.Drift), len(intervals))

	if !req.Repair {
		return resp, nil
	}

	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		for _, entry := range resp.Drift {
			if err := s.capacityRepo.SetTotal(ctx, req.LaneID, entry.IntervalID, entry.Recomputed); err != nil {
				return fmt.Errorf("failed to repair interval %d: %w", entry.IntervalID, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("AuditLaneCapacity: repair transaction failed: %v", err)
		return nil, fmt.Errorf("%w: AuditLaneCapacity - repair transaction failed: %w", ErrInternal, err)
	}

	for i := range resp.Drift {
		resp.Drift[i].Repaired = true
	}
	resp.Repaired = true
	s.logger.Info("AuditLaneCapacity: repaired %d intervals for lane=%d date=%s", len(resp.Drift), req.LaneID, resp.Date)
	return resp, nil
}
