package reverse_booking

// Request модель запроса на отмену бронирования
type Request struct {
	BookingID int64  // ID бронирования
	UserID    int64  // ID пользователя, инициировавшего отмену
	Reason    string // Причина отмены (опционально)
}
