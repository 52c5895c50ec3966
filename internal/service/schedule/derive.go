package schedule

import (
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
)

// sliceDay нарезает рабочее окно одного дня [startMin, endMin) в минутах
// от полуночи на интервалы фиксированной длины
// Неполный хвост окна отбрасывается
func sliceDay(day time.Time, startMin, endMin, sliceMinutes int) []*domain.CapacityInterval {
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	var intervals []*domain.CapacityInterval
	for m := startMin; m+sliceMinutes <= endMin; m += sliceMinutes {
		startsAt := date.Add(time.Duration(m) * time.Minute)
		intervals = append(intervals, &domain.CapacityInterval{
			Date:     date,
			StartsAt: startsAt,
			EndsAt:   startsAt.Add(time.Duration(sliceMinutes) * time.Minute),
		})
	}
	return intervals
}

// deriveContributionRows нарезает available_seconds вклада на доли по
// пересекающимся интервалам пропорционально wall-clock пересечению.
// Деление с округлением вниз, остаток досыпается в последний интервал
// (с переливом влево, если упираемся в пересечение). Доля никогда не
// превышает пересечение вклада с интервалом.
func deriveContributionRows(c *domain.WorkerContribution, intervals []*domain.CapacityInterval) []*domain.ContributionInterval {
	overlaps := make([]int64, len(intervals))
	var totalOverlap int64
	for i, iv := range intervals {
		overlaps[i] = iv.OverlapSeconds(c.StartsAt, c.EndsAt)
		totalOverlap += overlaps[i]
	}
	if totalOverlap == 0 {
		return nil
	}

	shares := make([]int64, len(intervals))
	var distributed int64
	for i, overlap := range overlaps {
		share := c.AvailableSeconds * overlap / totalOverlap
		if share > overlap {
			share = overlap
		}
		shares[i] = share
		distributed += share
	}

	// Остаток от округлений кладём в последний интервал, перелив - влево
	remainder := c.AvailableSeconds - distributed
	for i := len(shares) - 1; i >= 0 && remainder > 0; i-- {
		room := overlaps[i] - shares[i]
		if room <= 0 {
			continue
		}
		add := remainder
		if add > room {
			add = room
		}
		shares[i] += add
		remainder -= add
	}

	rows := make([]*domain.ContributionInterval, 0, len(intervals))
	for i, iv := range intervals {
		if shares[i] == 0 {
			continue
		}
		rows = append(rows, &domain.ContributionInterval{
			ContributionID:   c.ID,
			LaneID:           c.LaneID,
			IntervalID:       iv.ID,
			OriginalSeconds:  shares[i],
			RemainingSeconds: shares[i],
		})
	}
	return rows
}
