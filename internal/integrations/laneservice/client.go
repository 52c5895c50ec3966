package laneservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с LaneService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента LaneService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetLane получает метаданные поста по ID
func (c *Client) GetLane(ctx context.Context, laneID int64) (*Lane, error) {
	url := fmt.Sprintf("%s/internal/lanes/%d", c.baseURL, laneID)

	var lane Lane
	if err := c.getJSON(ctx, url, &lane); err != nil {
		return nil, err
	}

	return &lane, nil
}

// ListLanes получает метаданные всех постов
// Используется запросом доступности, когда кандидаты не переданы явно
func (c *Client) ListLanes(ctx context.Context) ([]*Lane, error) {
	url := fmt.Sprintf("%s/internal/lanes", c.baseURL)

	var lanes []*Lane
	if err := c.getJSON(ctx, url, &lanes); err != nil {
		return nil, err
	}

	return lanes, nil
}

// getJSON выполняет GET запрос и декодирует ответ
func (c *Client) getJSON(ctx context.Context, url string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return ErrLaneNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
