package create_contribution

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CapacityService/internal/api/handlers"
	"github.com/m04kA/SMC-CapacityService/internal/service/schedule"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidShiftWindow = "некорректный формат окна смены, ожидается RFC3339"
	msgInvalidInput       = "некорректные параметры вклада"
	msgIntervalsMissing   = "на окно смены не заведено расписание"
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

// Handle POST /api/v1/admin/contributions
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateContributionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/contributions - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest()
	if err != nil {
		h.logger.Warn("POST /admin/contributions - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidShiftWindow)
		return
	}

	result, err := h.service.CreateContribution(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("POST /admin/contributions - Invalid input: worker_id=%d, lane_id=%d: %v",
				req.WorkerID, req.LaneID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, schedule.ErrIntervalsMissing):
			h.logger.Warn("POST /admin/contributions - No intervals in shift window: worker_id=%d, lane_id=%d",
				req.WorkerID, req.LaneID)
			handlers.RespondUnprocessableEntity(w, msgIntervalsMissing)

		default:
			h.logger.Error("POST /admin/contributions - Failed to create contribution: worker_id=%d, lane_id=%d, error=%v",
				req.WorkerID, req.LaneID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/contributions - Contribution created successfully: contribution_id=%d, worker_id=%d, lane_id=%d, intervals=%d",
		result.ID, req.WorkerID, req.LaneID, len(result.Intervals))
	handlers.RespondJSON(w, http.StatusCreated, result)
}
