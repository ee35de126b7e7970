package models

// LoginRequest данные формы входа.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest данные формы регистрации.
type RegisterRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	AccountType string `json:"accountType,omitempty"`
}

// UpdateProfileRequest изменение имени и email.
type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// ChangePasswordRequest тело запроса смены пароля для бэкенда.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// PasswordChangeForm форма смены пароля с подтверждением нового пароля.
// Подтверждение проверяется на клиенте и на бэкенд не отправляется.
type PasswordChangeForm struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// DeleteAccountPhrase фраза, которую нужно ввести для удаления аккаунта.
const DeleteAccountPhrase = "DELETE"

// DeleteAccountForm подтверждение удаления аккаунта.
type DeleteAccountForm struct {
	Confirmation string `json:"confirmation" validate:"required,eq=DELETE"`
}

// CategoryRequest создание или переименование категории.
type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateResourceRequest размещение нового ресурса.
type CreateResourceRequest struct {
	CategoryID   uint64  `json:"categoryId" validate:"required"`
	Title        string  `json:"title" validate:"required"`
	Description  *string `json:"description"`
	Location     *string `json:"location"`
	PricePerHour int     `json:"pricePerHour" validate:"gte=0"`
}

// BookingDraft форма бронирования: дата и время суток начала и конца.
type BookingDraft struct {
	ResourceID uint64 `json:"resourceId" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Start      string `json:"start" validate:"required"`
	End        string `json:"end" validate:"required"`
}

// BookingRequest тело запроса создания брони для бэкенда.
type BookingRequest struct {
	ResourceID uint64 `json:"resourceId"`
	StartAt    string `json:"startAt"`
	EndAt      string `json:"endAt"`
}

// StatusUpdateRequest решение менеджера по брони.
type StatusUpdateRequest struct {
	Status         BookingStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	ManagerComment *string       `json:"managerComment"`
}
