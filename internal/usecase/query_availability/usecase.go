package query_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	laneClient "github.com/m04kA/SMC-CapacityService/internal/integrations/laneservice"
)

// UseCase use case запроса доступных слотов
//
// Read-only вычисление без побочных эффектов: безопасно вызывать
// с любой конкурентностью, результат - снимок без гарантий свежести.
// Интервал, начавшийся в прошлом, здесь не исключается - свежесть
// это забота вызывающего
type UseCase struct {
	intervalRepo     IntervalRepository
	contributionRepo ContributionRepository
	capacityRepo     CapacityRepository
	laneClient       LaneServiceClient
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	intervalRepo IntervalRepository,
	contributionRepo ContributionRepository,
	capacityRepo CapacityRepository,
	laneClient LaneServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		intervalRepo:     intervalRepo,
		contributionRepo: contributionRepo,
		capacityRepo:     capacityRepo,
		laneClient:       laneClient,
		logger:           logger,
	}
}

// Execute выполняет use case запроса доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("QueryAvailability: date=%s, required=%ds, capabilities=%v, candidates=%v",
		req.Date.Format(domain.DateFormat), req.RequiredSeconds, req.RequiredCapabilities, req.CandidateLaneIDs)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("QueryAvailability: validation failed: %v", err)
		return nil, err
	}

	emptyResponse := &Response{
		Date:            req.Date,
		RequiredSeconds: req.RequiredSeconds,
		Slots:           []domain.AvailabilitySlot{},
	}

	// 2. Посты-кандидаты: явный список либо все посты платформы
	lanes, err := uc.resolveLanes(ctx, req.CandidateLaneIDs)
	if err != nil {
		return nil, err
	}

	// 3. Фильтрация по возможностям и флагу закрытия
	lanes = filterLanes(lanes, req.RequiredCapabilities)
	if len(lanes) == 0 {
		uc.logger.Info("QueryAvailability: no candidate lanes after filtering")
		return emptyResponse, nil
	}

	// 4. Интервалы на дату; их отсутствие - пустой ответ, не ошибка
	intervals, err := uc.intervalRepo.GetByDate(ctx, req.Date)
	if err != nil {
		uc.logger.Error("QueryAvailability: failed to get intervals: %v", err)
		return nil, fmt.Errorf("%w: failed to get intervals: %w", ErrInternal, err)
	}
	if len(intervals) == 0 {
		uc.logger.Info("QueryAvailability: no capacity intervals seeded for %s", req.Date.Format(domain.DateFormat))
		return emptyResponse, nil
	}

	laneIDs := make([]int64, len(lanes))
	for i, lane := range lanes {
		laneIDs[i] = lane.ID
	}
	intervalIDs := make([]int64, len(intervals))
	for i, iv := range intervals {
		intervalIDs[i] = iv.ID
	}

	// 5. Снимок обоих леджеров - по одному группирующему запросу
	remainingSums, err := uc.contributionRepo.SumRemainingByLaneIntervals(ctx, laneIDs, intervalIDs)
	if err != nil {
		uc.logger.Error("QueryAvailability: failed to sum remaining seconds: %v", err)
		return nil, fmt.Errorf("%w: failed to sum remaining seconds: %w", ErrInternal, err)
	}

	totals, err := uc.capacityRepo.GetTotals(ctx, laneIDs, intervalIDs)
	if err != nil {
		uc.logger.Error("QueryAvailability: failed to get booked totals: %v", err)
		return nil, fmt.Errorf("%w: failed to get booked totals: %w", ErrInternal, err)
	}

	remaining := make(map[laneIntervalKey]int64, len(remainingSums))
	for _, s := range remainingSums {
		remaining[laneIntervalKey{laneID: s.LaneID, intervalID: s.IntervalID}] = s.RemainingSeconds
	}
	booked := make(map[laneIntervalKey]int64, len(totals))
	for _, t := range totals {
		booked[laneIntervalKey{laneID: t.LaneID, intervalID: t.IntervalID}] = t.TotalBookedSeconds
	}

	// 6. Сборка слотов
	slots := buildSlots(lanes, intervals, remaining, booked, req.RequiredSeconds)

	uc.logger.Info("QueryAvailability: %d slots available on %s for %d lanes",
		len(slots), req.Date.Format(domain.DateFormat), len(lanes))

	return &Response{
		Date:            req.Date,
		RequiredSeconds: req.RequiredSeconds,
		Slots:           slots,
	}, nil
}

// resolveLanes получает метаданные постов-кандидатов с сохранением порядка
// Неизвестный кандидат пропускается - это фильтрация, а не ошибка запроса
func (uc *UseCase) resolveLanes(ctx context.Context, candidateIDs []int64) ([]*laneClient.Lane, error) {
	if len(candidateIDs) == 0 {
		lanes, err := uc.laneClient.ListLanes(ctx)
		if err != nil {
			uc.logger.Error("QueryAvailability: failed to list lanes: %v", err)
			return nil, fmt.Errorf("%w: failed to list lanes: %w", ErrInternal, err)
		}
		return lanes, nil
	}

	lanes := make([]*laneClient.Lane, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		lane, err := uc.laneClient.GetLane(ctx, id)
		if err != nil {
			if errors.Is(err, laneClient.ErrLaneNotFound) {
				uc.logger.Warn("QueryAvailability: candidate lane id=%d not found, skipping", id)
				continue
			}
			uc.logger.Error("QueryAvailability: failed to get lane id=%d: %v", id, err)
			return nil, fmt.Errorf("%w: failed to get lane: %w", ErrInternal, err)
		}
		lanes = append(lanes, lane)
	}

	return lanes, nil
}
