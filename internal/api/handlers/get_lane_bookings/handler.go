package get_lane_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CapacityService/internal/api/handlers"
	"github.com/m04kA/SMC-CapacityService/internal/service/bookings"
)

const (
	msgInvalidLaneID      = "некорректный ID поста"
	msgInvalidQueryParams = "некорректные параметры запроса"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/lanes/{laneId}/bookings
// Query params: startDate (YYYY-MM-DD), endDate (YYYY-MM-DD),
// status, includeInactive - все опциональны
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	laneIDStr := vars["laneId"]

	laneID, err := strconv.ParseInt(laneIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /lanes/{id}/bookings - Invalid lane ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLaneID)
		return
	}

	query := r.URL.Query()
	serviceReq, err := ToServiceRequest(laneID,
		query.Get("startDate"), query.Get("endDate"), query.Get("status"), query.Get("includeInactive"))
	if err != nil {
		h.logger.Warn("GET /lanes/{id}/bookings - Failed to parse query params: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQueryParams)
		return
	}

	result, err := h.service.GetLaneBookings(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /lanes/{id}/bookings - Invalid input: lane_id=%d: %v", laneID, err)
			handlers.RespondBadRequest(w, msgInvalidQueryParams)

		default:
			h.logger.Error("GET /lanes/{id}/bookings - Failed to get bookings: lane_id=%d, error=%v", laneID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /lanes/{id}/bookings - Bookings retrieved successfully: lane_id=%d, count=%d",
		laneID, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
