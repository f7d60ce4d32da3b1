package models

// User - профиль игрока, заводится при регистрации и дальше не меняется
type User struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AppUserID string `json:"appUserId,omitempty"`
}

// Credential - учётная запись локального identity-провайдера
type Credential struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	AppUserID    string `json:"appUserId,omitempty"`
	PasswordHash string `json:"passwordHash"`
}
