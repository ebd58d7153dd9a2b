package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
	RoleDentist    = "dentist"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema (pertenece a un Laboratory).
type User struct {
	ID           string
	LaboratoryID string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, accountant, dentist
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole indica si el rol es uno de los admitidos.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAccountant, RoleDentist:
		return true
	}
	return false
}
