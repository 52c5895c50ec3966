package laneservice

// Lane метаданные поста обслуживания из LaneService
// Ядро не владеет этими данными - открытые часы, набор возможностей
// и политика отмены приходят от административного сервиса
type Lane struct {
	ID                        int64    `json:"id"`
	Name                      string   `json:"name"`
	Capabilities              []string `json:"capabilities"`
	OpenTime                  *string  `json:"open_time"`  // "HH:MM", nil = пост не принимает записи
	CloseTime                 *string  `json:"close_time"` // "HH:MM"
	ClosedForBookings         bool     `json:"closed_for_bookings"`
	CancellationCutoffMinutes int      `json:"cancellation_cutoff_minutes"` // 0 = отмена без ограничений
}

// ErrorResponse модель ошибки от LaneService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
