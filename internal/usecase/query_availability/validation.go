package query_availability

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.RequiredSeconds <= 0 {
		return fmt.Errorf("%w: requiredSeconds must be positive", ErrInvalidInput)
	}

	for _, id := range req.CandidateLaneIDs {
		if id <= 0 {
			return fmt.Errorf("%w: candidate lane ids must be positive", ErrInvalidInput)
		}
	}

	return nil
}
