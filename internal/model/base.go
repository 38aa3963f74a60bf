package model

import (
	"time"

	"go-liquor-inventory/internal/apperr"
)

// BaseModel handles the numeric ID and standard audit trail columns.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Audit user tracking
	CreatedBy string `gorm:"type:varchar(64)" json:"created_by"`
	UpdatedBy string `gorm:"type:varchar(64)" json:"updated_by"`
}

// Activatable is implemented by reference entities that can be switched off
// without being deleted (suppliers, products, users).
type Activatable interface {
	Active() bool
}

// RequireActive fails with a validation error when entity is inactive.
func RequireActive(entity Activatable, what string) error {
	if !entity.Active() {
		return apperr.Validation("%s is inactive", what)
	}
	return nil
}
