package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CapacityService/internal/api/handlers"
	"github.com/m04kA/SMC-CapacityService/internal/api/middleware"
	allocateBooking "github.com/m04kA/SMC-CapacityService/internal/usecase/allocate_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidWindow       = "некорректный формат окна доставки, ожидается RFC3339"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgInvalidInput        = "некорректные параметры бронирования"
	msgLaneNotFound        = "пост обслуживания не найден"
	msgLaneClosed          = "пост закрыт для бронирований"
	msgIntervalsMissing    = "на выбранное окно не заведено расписание"
	msgCapacityExceeded    = "недостаточно свободной ёмкости в выбранном окне"
	msgConcurrencyConflict = "не удалось забронировать из-за конкурентных изменений, повторите попытку"
)

type Handler struct {
	useCase AllocateBookingUseCase
	logger  Logger
}

func NewHandler(useCase AllocateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWindow)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, allocateBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, lane_id=%d: %v", userID, req.LaneID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, allocateBooking.ErrLaneNotFound):
			h.logger.Warn("POST /bookings - Lane not found: lane_id=%d", req.LaneID)
			handlers.RespondNotFound(w, msgLaneNotFound)

		case errors.Is(err, allocateBooking.ErrLaneClosed):
			h.logger.Warn("POST /bookings - Lane closed for bookings: lane_id=%d", req.LaneID)
			handlers.RespondUnprocessableEntity(w, msgLaneClosed)

		case errors.Is(err, allocateBooking.ErrIntervalsMissing):
			h.logger.Warn("POST /bookings - No intervals in window: user_id=%d, lane_id=%d", userID, req.LaneID)
			handlers.RespondUnprocessableEntity(w, msgIntervalsMissing)

		case errors.Is(err, allocateBooking.ErrCapacityExceeded):
			h.logger.Warn("POST /bookings - Capacity exceeded: user_id=%d, lane_id=%d", userID, req.LaneID)
			handlers.RespondError(w, http.StatusConflict, msgCapacityExceeded)

		case errors.Is(err, allocateBooking.ErrConcurrencyConflict):
			h.logger.Warn("POST /bookings - Concurrency conflict: user_id=%d, lane_id=%d", userID, req.LaneID)
			handlers.RespondError(w, http.StatusConflict, msgConcurrencyConflict)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, lane_id=%d, error=%v",
				userID, req.LaneID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d, lane_id=%d",
		result.ID, userID, req.LaneID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
