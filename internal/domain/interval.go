package domain

import "time"

// CapacityInterval фиксированный временной срез - единица учёта ёмкости
// Интервалы непрерывны, не пересекаются, создаются заранее сидированием
// и никогда не мутируются (удаляются только массовым пересидированием)
type CapacityInterval struct {
	ID       int64
	Date     time.Time
	StartsAt time.Time
	EndsAt   time.Time
}

// DurationSeconds возвращает длительность интервала в секундах
func (i *CapacityInterval) DurationSeconds() int64 {
	return int64(i.EndsAt.Sub(i.StartsAt) / time.Second)
}

// OverlapSeconds возвращает пересечение интервала с окном [start, end) в секундах
// Возвращает 0, если пересечения нет
func (i *CapacityInterval) OverlapSeconds(start, end time.Time) int64 {
	from := i.StartsAt
	if start.After(from) {
		from = start
	}
	to := i.EndsAt
	if end.Before(to) {
		to = end
	}
	if !to.After(from) {
		return 0
	}
	return int64(to.Sub(from) / time.Second)
}

// Overlaps проверяет, что интервал пересекается с окном [start, end)
func (i *CapacityInterval) Overlaps(start, end time.Time) bool {
	return i.StartsAt.Before(end) && i.EndsAt.After(start)
}

// ContributionInterval производный счётчик остатка секунд по паре
// (contribution, interval). RemainingSeconds - единственное мутабельное
// поле ядра: списывается аллокацией, восстанавливается отменой.
// Инвариант: 0 <= RemainingSeconds <= OriginalSeconds
type ContributionInterval struct {
	ID               int64
	ContributionID   int64
	LaneID           int64
	IntervalID       int64
	OriginalSeconds  int64
	RemainingSeconds int64
}
