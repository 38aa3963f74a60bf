package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/model"
	"go-liquor-inventory/internal/repository"
	"go-liquor-inventory/pkg/jwt"
	"go-liquor-inventory/pkg/logger"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("invalid email or password")
	ErrUserInactive       = apperr.Unauthorized("user account is inactive")
	ErrSessionReplaced    = apperr.Unauthorized("session expired (logged in on another device)")
)

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo repository.UserRepository
	log      *logrus.Logger
}

func NewAuthService(userRepo repository.UserRepository, log *logrus.Logger) AuthService {
	return &authService{userRepo: userRepo, log: log}
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	roleCode := ""
	if user.Role != nil {
		roleCode = user.Role.Code
	}

	// A new token version logs out every other session of this user.
	tokenVersion := uuid.New().String()
	now := time.Now()
	if err := s.userRepo.RecordLogin(user.ID, tokenVersion, now); err != nil {
		logger.LogError(s.log, "AuthService", "Login", "record login", user.Email, err)
		return nil, err
	}
	user.TokenVersion = tokenVersion
	user.LastLoginAt = &now

	privileges := user.PrivilegeCodes()
	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, roleCode, privileges, tokenVersion)
	if err != nil {
		logger.LogError(s.log, "AuthService", "Login", "sign token", user.Email, err)
		return nil, apperr.Persistence(err)
	}

	s.log.WithField("user_id", user.ID.String()).Info("user logged in")
	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: privileges,
	}, nil
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, apperr.Unauthorized(err.Error())
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("user not found")
	}
	if err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}

	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.PrivilegeCodes(),
	}, nil
}
