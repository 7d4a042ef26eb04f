package service

import (
	"errors"

	"marketplace_backend/internal/domain/user/model"
	"marketplace_backend/internal/domain/user/repository"
	"marketplace_backend/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrAuthFailed   = errors.New("invalid email or password")
	ErrUserNotFound = errors.New("user not found")
)

// UserService 用户服务接口
type UserService interface {
	Register(name, email, password string) (*model.User, error)
	Login(email, password string) (string, error)
	GetUser(id uint) (*model.User, error)
	GetUsers(page, limit int) ([]model.User, int64, error)
	UpdateProfile(id uint, name string) (*model.User, error)
}

// userService 实现
type userService struct {
	repo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// Register 注册新用户 (默认为顾客角色)
func (s *userService) Register(name, email, password string) (*model.User, error) {
	if _, err := s.repo.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     model.RoleCustomer,
		Status:   model.StatusNormal,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 登录并签发 Token
func (s *userService) Login(email, password string) (string, error) {
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrAuthFailed
		}
		return "", err
	}

	if user.Status != model.StatusNormal {
		return "", errors.New("account is disabled")
	}

	if !utils.CheckPassword(password, user.Password) {
		return "", ErrAuthFailed
	}

	return utils.GenerateToken(user.ID, user.Role)
}

// GetUser 获取单个用户
func (s *userService) GetUser(id uint) (*model.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUsers 获取用户列表（分页）
func (s *userService) GetUsers(page, limit int) ([]model.User, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.repo.GetList(offset, limit)
}

// UpdateProfile 更新用户资料
func (s *userService) UpdateProfile(id uint, name string) (*model.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	user.Name = name
	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
