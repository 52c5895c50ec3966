package get_lane_bookings

import (
	"strconv"
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/internal/service/bookings/models"
)

// ToServiceRequest создает запрос сервиса из query параметров
func ToServiceRequest(laneID int64, startDateStr, endDateStr, statusStr, includeInactiveStr string) (*models.GetLaneBookingsRequest, error) {
	req := &models.GetLaneBookingsRequest{
		LaneID: laneID,
	}

	if startDateStr != "" {
		startDate, err := time.Parse(domain.DateFormat, startDateStr)
		if err != nil {
			return nil, err
		}
		req.StartDate = &startDate
	}

	if endDateStr != "" {
		endDate, err := time.Parse(domain.DateFormat, endDateStr)
		if err != nil {
			return nil, err
		}
		req.EndDate = &endDate
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	if includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, err
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
