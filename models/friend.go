package models

// FriendStatus - статус направленной записи дружбы
type FriendStatus string

const (
	// FriendAwaiting - заявку отправил владелец записи, ждём ответа
	FriendAwaiting FriendStatus = "awaiting"
	// FriendPending - заявка пришла владельцу записи
	FriendPending FriendStatus = "pending"
	// FriendConfirmed - дружба подтверждена с обеих сторон
	FriendConfirmed FriendStatus = "confirmed"
)

// Valid сообщает, известен ли статус
func (s FriendStatus) Valid() bool {
	switch s {
	case FriendAwaiting, FriendPending, FriendConfirmed:
		return true
	}
	return false
}

// FriendshipEdge - одна из двух направленных записей дружбы (source -> target).
// Хранится в friends/<source>/friendlist/<target>
type FriendshipEdge struct {
	Name   string       `json:"name"`
	Status FriendStatus `json:"status"`
	DuelID string       `json:"duelId"`
}

// FriendSummary - элемент списка друзей
type FriendSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	DuelID string `json:"duelId,omitempty"`
}

// FriendshipDetails - статус дружбы и ссылка на дуэль
type FriendshipDetails struct {
	Found  bool         `json:"found"`
	Status FriendStatus `json:"status,omitempty"`
	DuelID string       `json:"duelId,omitempty"`
}
