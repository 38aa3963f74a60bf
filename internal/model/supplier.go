package model

type Supplier struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	ContactName string `gorm:"type:varchar(255)" json:"contact_name"`
	Phone       string `gorm:"type:varchar(30)" json:"phone"`
	Email       string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Address     string `gorm:"type:text" json:"address"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}

func (s *Supplier) Active() bool {
	return s.IsActive
}
