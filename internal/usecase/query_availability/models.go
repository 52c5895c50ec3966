package query_availability

import (
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
)

// Request модель запроса доступных слотов
type Request struct {
	Date                 time.Time // Календарная дата
	RequiredCapabilities []string  // Требуемые теги возможностей поста
	CandidateLaneIDs     []int64   // Упорядоченный список постов-кандидатов (опционально)
	RequiredSeconds      int64     // Суммарное требуемое время обслуживания
}

// Response модель ответа со слотами, у которых хватает остатка ёмкости
// Снимок на момент запроса - без гарантий свежести
type Response struct {
	Date            time.Time
	RequiredSeconds int64
	Slots           []domain.AvailabilitySlot
}
