package get_availability

import (
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	queryAvailability "github.com/m04kA/SMC-CapacityService/internal/usecase/query_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date            string          `json:"date"`
	RequiredSeconds int64           `json:"requiredSeconds"`
	Slots           []AvailableSlot `json:"slots"`
}

// AvailableSlot пара (интервал, пост) с достаточным остатком ёмкости
type AvailableSlot struct {
	IntervalID       int64  `json:"intervalId"`
	LaneID           int64  `json:"laneId"`
	LaneName         string `json:"laneName"`
	StartsAt         string `json:"startsAt"` // RFC3339
	EndsAt           string `json:"endsAt"`   // RFC3339
	AvailableSeconds int64  `json:"availableSeconds"`
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(dateStr, requiredSecondsStr, capabilitiesStr, laneIDsStr string) (*queryAvailability.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	requiredSeconds, err := strconv.ParseInt(requiredSecondsStr, 10, 64)
	if err != nil {
		return nil, err
	}

	var capabilities []string
	if capabilitiesStr != "" {
		for _, tag := range strings.Split(capabilitiesStr, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				capabilities = append(capabilities, tag)
			}
		}
	}

	var laneIDs []int64
	if laneIDsStr != "" {
		for _, idStr := range strings.Split(laneIDsStr, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				return nil, err
			}
			laneIDs = append(laneIDs, id)
		}
	}

	return &queryAvailability.Request{
		Date:                 date,
		RequiredCapabilities: capabilities,
		CandidateLaneIDs:     laneIDs,
		RequiredSeconds:      requiredSeconds,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *queryAvailability.Response) *AvailabilityResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			IntervalID:       slot.IntervalID,
			LaneID:           slot.LaneID,
			LaneName:         slot.LaneName,
			StartsAt:         slot.StartsAt.Format(time.RFC3339),
			EndsAt:           slot.EndsAt.Format(time.RFC3339),
			AvailableSeconds: slot.AvailableSeconds,
		}
	}

	return &AvailabilityResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		RequiredSeconds: resp.RequiredSeconds,
		Slots:           slots,
	}
}
