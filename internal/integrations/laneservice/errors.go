package laneservice

import "errors"

var (
	// ErrLaneNotFound возвращается, когда пост не найден
	ErrLaneNotFound = errors.New("lane not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("laneservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("laneservice client: invalid response")
)
