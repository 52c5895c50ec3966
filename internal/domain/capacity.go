package domain

import "time"

// LaneIntervalCapacity кэш суммы забронированных секунд по паре (lane, interval)
// Источник истины - строки BookingInterval подтверждённых бронирований,
// кэш пересчитываем аудитом
type LaneIntervalCapacity struct {
	LaneID             int64
	IntervalID         int64
	TotalBookedSeconds int64
}

// AvailabilitySlot доступный для бронирования слот: пара (interval, lane)
// с достаточным остатком ёмкости
type AvailabilitySlot struct {
	IntervalID       int64
	LaneID           int64
	LaneName         string
	StartsAt         time.Time
	EndsAt           time.Time
	AvailableSeconds int64
}

// CapabilitySet множество тегов возможностей поста
type CapabilitySet map[string]struct{}

// NewCapabilitySet создает множество из списка тегов
func NewCapabilitySet(tags []string) CapabilitySet {
	set := make(CapabilitySet, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

// HasAll проверяет, что множество содержит все требуемые теги
// Пост с пробелом в возможностях исключается целиком, а не частично
func (s CapabilitySet) HasAll(required []string) bool {
	for _, tag := range required {
		if _, ok := s[tag]; !ok {
			return false
		}
	}
	return true
}
