// Package authz — единственное место, где по кэшированному профилю вычисляется,
// какие действия клиент предлагает пользователю.
//
// Это подсказка для интерфейса, а не граница авторизации: бэкенд обязан
// самостоятельно отклонять недопустимые действия.
package authz

import "github.com/Kirill-j/bookinghub/internal/models"

// Capabilities описывает действия, доступные текущему пользователю.
type Capabilities struct {
	Authenticated       bool `json:"authenticated"`
	CanCreateResources  bool `json:"canCreateResources"`
	CanModerateBookings bool `json:"canModerateBookings"`
	CanManageCategories bool `json:"canManageCategories"`
}

// For вычисляет возможности для пользователя. nil означает анонимного пользователя.
func For(user *models.User) Capabilities {
	if user == nil {
		return Capabilities{}
	}
	staff := IsStaff(user.Role)
	return Capabilities{
		Authenticated:       true,
		CanCreateResources:  staff,
		CanModerateBookings: staff,
		CanManageCategories: user.Role == models.RoleAdmin,
	}
}

// IsStaff сообщает, относится ли роль к менеджерам или администраторам.
func IsStaff(role models.Role) bool {
	return role == models.RoleManager || role == models.RoleAdmin
}
