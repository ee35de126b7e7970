package models

import "time"

// Category плоская категория ресурсов.
type Category struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Resource бронируемый ресурс (переговорная, студия, оборудование).
// На категорию ссылается по идентификатору.
type Resource struct {
	ID           uint64     `json:"id"`
	CategoryID   uint64     `json:"categoryId"`
	OwnerUserID  uint64     `json:"ownerUserId"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Location     *string    `json:"location"`
	PricePerHour int        `json:"pricePerHour"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

// LocationOrEmpty возвращает локацию ресурса или пустую строку.
func (r Resource) LocationOrEmpty() string {
	if r.Location == nil {
		return ""
	}
	return *r.Location
}

// Created ответ бэкенда на создание сущности.
type Created struct {
	ID uint64 `json:"id"`
}
