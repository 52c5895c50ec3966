package query_availability

import (
	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/internal/integrations/laneservice"
	"github.com/m04kA/SMC-CapacityService/pkg/types"
)

// laneIntervalKey ключ пары (lane, interval) для сводных карт
type laneIntervalKey struct {
	laneID     int64
	intervalID int64
}

// filterLanes отбирает посты, пригодные для новых бронирований:
// пост должен нести все требуемые теги и быть открыт для записи
// Пост с пробелом в возможностях исключается целиком
func filterLanes(lanes []*laneservice.Lane, requiredCapabilities []string) []*laneservice.Lane {
	result := make([]*laneservice.Lane, 0, len(lanes))

	for _, lane := range lanes {
		if lane.ClosedForBookings {
			continue
		}
		if !domain.NewCapabilitySet(lane.Capabilities).HasAll(requiredCapabilities) {
			continue
		}
		result = append(result, lane)
	}

	return result
}

// laneAcceptsInterval проверяет, что wall-clock начало интервала попадает
// в открытые часы поста
func laneAcceptsInterval(lane *laneservice.Lane, iv *domain.CapacityInterval) bool {
	if lane.OpenTime == nil || lane.CloseTime == nil {
		return false
	}

	openTime, err := types.NewTimeStringFromString(*lane.OpenTime)
	if err != nil {
		return false
	}
	closeTime, err := types.NewTimeStringFromString(*lane.CloseTime)
	if err != nil {
		return false
	}

	start := types.NewTimeString(iv.StartsAt)
	return !start.IsBefore(openTime) && start.IsBefore(closeTime)
}

// buildSlots собирает доступные слоты из снимка двух леджеров
//
// Для каждой пары (lane, interval):
//
//	available = Σ remaining_seconds - total_booked_seconds
//
// Слот попадает в ответ, только если available >= requiredSeconds.
// Порядок: посты в порядке кандидатов, интервалы по starts_at
func buildSlots(
	lanes []*laneservice.Lane,
	intervals []*domain.CapacityInterval,
	remaining map[laneIntervalKey]int64,
	booked map[laneIntervalKey]int64,
	requiredSeconds int64,
) []domain.AvailabilitySlot {
	slots := make([]domain.AvailabilitySlot, 0)

	for _, lane := range lanes {
		for _, iv := range intervals {
			if !laneAcceptsInterval(lane, iv) {
				continue
			}

			key := laneIntervalKey{laneID: lane.ID, intervalID: iv.ID}
			available := remaining[key] - booked[key]
			if available < requiredSeconds {
				continue
			}

			slots = append(slots, domain.AvailabilitySlot{
				IntervalID:       iv.ID,
				LaneID:           lane.ID,
				LaneName:         lane.Name,
				StartsAt:         iv.StartsAt,
				EndsAt:           iv.EndsAt,
				AvailableSeconds: available,
			})
		}
	}

	return slots
}
