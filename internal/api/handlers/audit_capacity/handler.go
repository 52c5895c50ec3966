package audit_capacity

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CapacityService/internal/api/handlers"
	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/internal/service/schedule"
	"github.com/m04kA/SMC-CapacityService/internal/service/schedule/models"
)

const (
	msgInvalidLaneID = "некорректный ID поста"
	msgMissingDate   = "дата обязательна"
	msgInvalidDate   = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidRepair = "некорректное значение repair, ожидается true или false"
	msgInvalidInput  = "некорректные параметры сверки"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/admin/lanes/{laneId}/capacity-audit
// Query params: date (required, YYYY-MM-DD), repair (optional, bool)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	laneIDStr := vars["laneId"]

	laneID, err := strconv.ParseInt(laneIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /admin/lanes/{id}/capacity-audit - Invalid lane ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLaneID)
		return
	}

	query := r.URL.Query()

	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /admin/lanes/{id}/capacity-audit - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /admin/lanes/{id}/capacity-audit - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	repair := false
	if repairStr := query.Get("repair"); repairStr != "" {
		repair, err = strconv.ParseBool(repairStr)
		if err != nil {
			h.logger.Warn("GET /admin/lanes/{id}/capacity-audit - Invalid repair flag: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRepair)
			return
		}
	}

	result, err := h.service.AuditLaneCapacity(r.Context(), &models.AuditCapacityRequest{
		LaneID: laneID,
		Date:   date,
		Repair: repair,
	})
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("GET /admin/lanes/{id}/capacity-audit - Invalid input: lane_id=%d: %v", laneID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /admin/lanes/{id}/capacity-audit - Failed to audit capacity: lane_id=%d, error=%v",
				laneID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /admin/lanes/{id}/capacity-audit - Audit completed: lane_id=%d, date=%s, intervals=%d, drift=%d, repaired=%t",
		laneID, dateStr, result.Intervals, len(result.Drift), result.Repaired)
	handlers.RespondJSON(w, http.StatusOK, result)
}
