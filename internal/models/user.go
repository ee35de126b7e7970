// Package models содержит доменные структуры клиента бронирования: пользователя,
// категории, ресурсы и бронирования в том виде, в котором их отдаёт бэкенд,
// а также структуры запросов с тегами валидации для клиентских форм.
package models

// Role роль пользователя, назначаемая бэкендом.
type Role string

const (
	// RoleUser обычный пользователь, может только бронировать.
	RoleUser Role = "USER"
	// RoleManager менеджер, размещает ресурсы и подтверждает брони.
	RoleManager Role = "MANAGER"
	// RoleAdmin администратор, дополнительно управляет категориями.
	RoleAdmin Role = "ADMIN"
)

// User кэшированная копия профиля текущего пользователя.
// Клиент никогда не меняет её по частям: профиль заменяется целиком.
type User struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// AuthResult ответ бэкенда на вход и регистрацию.
type AuthResult struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}
