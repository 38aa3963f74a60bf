package repository

import (
	"time"

	"go-liquor-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindAll() ([]model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByID(id uuid.UUID) (*model.User, error)
	Create(user *model.User) error
	Update(user *model.User) error
	ReplacePrivileges(user *model.User, privileges []model.Privilege) error
	RecordLogin(userID uuid.UUID, tokenVersion string, at time.Time) error
	UpdatePassword(userID uuid.UUID, hash, tokenVersion string) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindAll() ([]model.User, error) {
	var users []model.User
	err := r.db.Preload("Role.Privileges").Preload("Privileges").Order("full_name ASC").Find(&users).Error
	return users, translate(err, "users")
}

func (r *userRepo) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Role.Privileges").Preload("Privileges").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "user %s", email)
	}
	return &user, nil
}

func (r *userRepo) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Role.Privileges").Preload("Privileges").First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user %s", id)
	}
	return &user, nil
}

func (r *userRepo) Create(user *model.User) error {
	return translate(r.db.Create(user).Error, "user %s", user.Email)
}

// Update saves profile fields only; privileges change through ReplacePrivileges.
func (r *userRepo) Update(user *model.User) error {
	err := r.db.Model(user).
		Select("email", "full_name", "role_id", "is_active", "password", "updated_at").
		Updates(user).Error
	return translate(err, "user %s", user.ID)
}

func (r *userRepo) ReplacePrivileges(user *model.User, privileges []model.Privilege) error {
	return translate(r.db.Model(user).Association("Privileges").Replace(privileges), "user %s", user.ID)
}

// RecordLogin rotates the session token version, which invalidates older tokens.
func (r *userRepo) RecordLogin(userID uuid.UUID, tokenVersion string, at time.Time) error {
	err := r.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"token_version": tokenVersion,
		"last_login_at": at,
	}).Error
	return translate(err, "user %s", userID)
}

// UpdatePassword stores a new hash and rotates the token version.
func (r *userRepo) UpdatePassword(userID uuid.UUID, hash, tokenVersion string) error {
	err := r.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password":      hash,
		"token_version": tokenVersion,
	}).Error
	return translate(err, "user %s", userID)
}
