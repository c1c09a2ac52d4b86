package service

import (
	"errors"

	"go-pos-backend/internal/domain"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/pkg/jwt"
	"go-pos-backend/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrEmailTaken         = errors.New("email is already registered")
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin seller"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
	Register(input RegisterInput, createdBy string) (*model.User, error)
	ResetPassword(email, oldPassword, newPassword string) error
	GetProfile(userID uuid.UUID) (*model.UserResponse, error)
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.Role)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token: token,
		User:  user.ToResponse(),
	}, nil
}

func (s *authService) Register(input RegisterInput, createdBy string) (*model.User, error) {
	if errs := validator.ValidateStruct(input); len(errs) > 0 {
		return nil, &domain.ValidationError{Field: errs[0].FailedField, Tag: errs[0].Tag}
	}

	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{
		Email:    input.Email,
		FullName: input.FullName,
		Role:     input.Role,
		IsActive: true,
	}
	user.CreatedBy = createdBy
	user.UpdatedBy = createdBy
	if err := user.SetPassword(input.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) ResetPassword(email, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return ErrUserNotFound
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	return s.userRepo.UpdatePassword(user.ID, user.Password)
}

func (s *authService) GetProfile(userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}
