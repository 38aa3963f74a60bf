package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/model"
	"go-liquor-inventory/internal/repository"
	"go-liquor-inventory/pkg/logger"
)

// UserService administers the managers who own and drive import orders.
type UserService interface {
	CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error)
	UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error)
	UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.User, error)
	GetAllUsers() ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	RoleID   uint   `json:"role_id" validate:"required"`
}

type UpdateUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName string  `json:"full_name" validate:"required"`
	RoleID   uint    `json:"role_id" validate:"required"`
	IsActive *bool   `json:"is_active"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
	log           *logrus.Logger
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository, log *logrus.Logger) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
		log:           log,
	}
}

func (s *userService) emailTaken(email string, except uuid.UUID) error {
	existing, err := s.userRepo.FindByEmail(email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != except {
		return apperr.Validation("email %s already exists", email)
	}
	return nil
}

func (s *userService) CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.emailTaken(req.Email, uuid.Nil); err != nil {
		return nil, err
	}
	role, err := s.roleRepo.FindByID(req.RoleID)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:    req.Email,
		FullName: req.FullName,
		RoleID:   &role.ID,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperr.Persistence(err)
	}
	if err := s.userRepo.Create(user); err != nil {
		logger.LogError(s.log, "UserService", "CreateUser", "insert user", req.Email, err)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID.String(), "role": role.Code, "created_by": creatorID}).Info("manager created")
	return s.userRepo.FindByID(user.ID)
}

func (s *userService) UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if req.Email != user.Email {
		if err := s.emailTaken(req.Email, userID); err != nil {
			return nil, err
		}
	}
	role, err := s.roleRepo.FindByID(req.RoleID)
	if err != nil {
		return nil, err
	}

	user.Email = req.Email
	user.FullName = req.FullName
	user.RoleID = &role.ID
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, apperr.Persistence(err)
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		logger.LogError(s.log, "UserService", "UpdateUser", "update user", userID.String(), err)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID.String(), "updated_by": updaterID}).Info("manager updated")
	return s.userRepo.FindByID(userID)
}

// UpdateUserPrivileges replaces the privileges granted directly to the user.
// Role privileges are unaffected.
func (s *userService) UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	unique := make([]string, 0, len(privilegeCodes))
	seen := make(map[string]bool, len(privilegeCodes))
	for _, code := range privilegeCodes {
		if !seen[code] {
			seen[code] = true
			unique = append(unique, code)
		}
	}

	privileges, err := s.privilegeRepo.FindByCodes(unique)
	if err != nil {
		return nil, err
	}
	if len(privileges) != len(unique) {
		return nil, apperr.Validation("unknown privilege in %v", privilegeCodes)
	}

	if err := s.userRepo.ReplacePrivileges(user, privileges); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID.String(), "privileges": privilegeCodes, "updated_by": updaterID}).Info("manager privileges replaced")
	return s.userRepo.FindByID(userID)
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	response := user.ToResponse()
	return &response, nil
}
