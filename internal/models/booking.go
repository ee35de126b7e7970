package models

// BookingStatus — статус бронирования. Клиент не вычисляет переходы между
// статусами сам, а только запрашивает их у бэкенда.
type BookingStatus string

const (
	BookingPending  BookingStatus = "PENDING"
	BookingApproved BookingStatus = "APPROVED"
	BookingRejected BookingStatus = "REJECTED"
	BookingCanceled BookingStatus = "CANCELED"
)

// IsLive сообщает, блокирует ли бронь с таким статусом пересекающиеся брони.
func (s BookingStatus) IsLive() bool {
	return s == BookingPending || s == BookingApproved
}

// Booking — бронирование ресурса. StartAt и EndAt хранятся в виде строк,
// пришедших от бэкенда, чтобы некорректные значения можно было молча отбросить.
type Booking struct {
	ID             uint64        `json:"id"`
	ResourceID     uint64        `json:"resourceId"`
	UserID         uint64        `json:"userId"`
	StartAt        string        `json:"startAt"`
	EndAt          string        `json:"endAt"`
	Status         BookingStatus `json:"status"`
	ManagerComment *string       `json:"managerComment,omitempty"`
}
