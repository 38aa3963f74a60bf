package repository

import (
	"errors"

	"go-liquor-inventory/internal/model"

	"gorm.io/gorm"
)

type PrivilegeRepository interface {
	FindAll() ([]model.Privilege, error)
	FindByCodes(codes []string) ([]model.Privilege, error)
	SeedDefaults() error
}

type privilegeRepo struct {
	db *gorm.DB
}

func NewPrivilegeRepo(db *gorm.DB) PrivilegeRepository {
	return &privilegeRepo{db}
}

func (r *privilegeRepo) FindAll() ([]model.Privilege, error) {
	var privileges []model.Privilege
	err := r.db.Order("code ASC").Find(&privileges).Error
	return privileges, translate(err, "privileges")
}

func (r *privilegeRepo) FindByCodes(codes []string) ([]model.Privilege, error) {
	var privileges []model.Privilege
	err := r.db.Where("code IN ?", codes).Find(&privileges).Error
	return privileges, translate(err, "privileges")
}

// SeedDefaults creates default privileges if they don't exist
func (r *privilegeRepo) SeedDefaults() error {
	for _, p := range model.DefaultPrivileges {
		var existing model.Privilege
		err := r.db.Where("code = ?", p.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			priv := p
			if err := r.db.Create(&priv).Error; err != nil {
				return translate(err, "privilege %s", priv.Code)
			}
		} else if err != nil {
			return translate(err, "privilege %s", p.Code)
		}
	}
	return nil
}
