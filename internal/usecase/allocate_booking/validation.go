package allocate_booking

import (
	"fmt"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.LaneID <= 0 {
		return fmt.Errorf("%w: laneID must be positive", ErrInvalidInput)
	}

	if req.WindowStart.IsZero() || req.WindowEnd.IsZero() {
		return fmt.Errorf("%w: delivery window is required", ErrInvalidInput)
	}

	if !req.WindowStart.Before(req.WindowEnd) {
		return fmt.Errorf("%w: window start must be before window end", ErrInvalidInput)
	}

	if req.RequiredSeconds <= 0 {
		return fmt.Errorf("%w: requiredSeconds must be positive", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}
