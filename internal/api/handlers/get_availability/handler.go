package get_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CapacityService/internal/api/handlers"
	queryAvailability "github.com/m04kA/SMC-CapacityService/internal/usecase/query_availability"
)

const (
	msgMissingDate            = "дата обязательна"
	msgMissingRequiredSeconds = "требуемое время обслуживания обязательно"
	msgInvalidQueryParams     = "некорректные параметры запроса"
)

type Handler struct {
	useCase QueryAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase QueryAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability
// Query params: date (required, YYYY-MM-DD), requiredSeconds (required),
// capabilities (csv, optional), laneIds (csv, optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	requiredSecondsStr := query.Get("requiredSeconds")
	if requiredSecondsStr == "" {
		h.logger.Warn("GET /availability - Missing required seconds")
		handlers.RespondBadRequest(w, msgMissingRequiredSeconds)
		return
	}

	useCaseReq, err := ToUseCaseRequest(dateStr, requiredSecondsStr, query.Get("capabilities"), query.Get("laneIds"))
	if err != nil {
		h.logger.Warn("GET /availability - Failed to parse query params: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQueryParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, queryAvailability.ErrInvalidInput):
			h.logger.Warn("GET /availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidQueryParams)

		default:
			h.logger.Error("GET /availability - Failed to query availability: date=%s, error=%v", dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /availability - Availability retrieved: date=%s, required_seconds=%d, slots_count=%d",
		dateStr, useCaseReq.RequiredSeconds, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
