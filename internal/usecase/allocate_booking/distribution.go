package allocate_booking

import (
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
)

// intervalAllocation результат жадной раскладки: сколько секунд
// бронирования достаётся одному интервалу
type intervalAllocation struct {
	Interval      *domain.CapacityInterval
	BookedSeconds int64
}

// distributeServiceTime раскладывает требуемые секунды обслуживания
// по интервалам, пересекающим окно [windowStart, windowEnd)
//
// Жадное заполнение слева направо: каждому интервалу достаётся
// min(остаток, пересечение с окном в секундах). Раскладка детерминирована
// и зависит только от границ интервалов, окна и требуемых секунд -
// остатки ёмкости здесь не участвуют, их проверяет коммит в леджер.
// Интервалы должны быть упорядочены по starts_at.
//
// Если интервалы закончились раньше, чем остаток дошёл до нуля,
// нераспределённые секунды не аллоцируются.
func distributeServiceTime(
	intervals []*domain.CapacityInterval,
	windowStart, windowEnd time.Time,
	requiredSeconds int64,
) []intervalAllocation {
	allocations := make([]intervalAllocation, 0, len(intervals))
	remaining := requiredSeconds

	for _, iv := range intervals {
		if remaining <= 0 {
			break
		}

		overlap := iv.OverlapSeconds(windowStart, windowEnd)
		if overlap <= 0 {
			continue
		}

		booked := overlap
		if remaining < booked {
			booked = remaining
		}

		allocations = append(allocations, intervalAllocation{
			Interval:      iv,
			BookedSeconds: booked,
		})
		remaining -= booked
	}

	return allocations
}

// proportionalDeductions раскладывает списание bookedSeconds по строкам
// остатка пропорционально текущей доле каждой строки в суммарном остатке:
//
//	deduction_i = floor(bookedSeconds * remaining_i / Σ remaining)
//
// Из-за округления вниз сумма списаний может быть меньше bookedSeconds;
// потерянный остаток не досписывается - отмена воспроизводит ровно
// эти же значения из сохранённой раскладки
func proportionalDeductions(rows []*domain.ContributionInterval, bookedSeconds int64) []int64 {
	deductions := make([]int64, len(rows))

	var totalRemaining int64
	for _, row := range rows {
		totalRemaining += row.RemainingSeconds
	}

	if totalRemaining <= 0 || bookedSeconds <= 0 {
		return deductions
	}

	for i, row := range rows {
		d := bookedSeconds * row.RemainingSeconds / totalRemaining
		if d < 0 {
			d = 0
		}
		deductions[i] = d
	}

	return deductions
}
