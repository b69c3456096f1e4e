// Package models содержит доменные структуры сервиса: пользователей, подписки,
// каталог фильмов, избранное и оценки. Все идентификаторы хранятся как 16-байтовые значения.
package models

import "github.com/google/uuid"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID             uuid.UUID // Идентификатор пользователя
	Name           string    // Имя
	LastName       string    // Фамилия
	Email          string    // Электронная почта (уникальная)
	PasswordHash   string    // bcrypt-хэш пароля
	RoleID         uuid.UUID // Ссылка на роль
	SubscriptionID uuid.UUID // Ссылка на текущую подписку
}

// Role описывает роль пользователя (admin или user).
type Role struct {
	ID   uuid.UUID
	Name string
}

// Названия ролей.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Credentials пользователь вместе с названием роли, нужен для входа в систему.
type Credentials struct {
	User
	RoleName string
}
