package service

import (
	"context"
	"errors"

	"shop_api/internal/domain/user/model"
	"shop_api/internal/domain/user/repository"
	"shop_api/pkg/apperr"
	"shop_api/pkg/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenPair 访问 Token + 刷新 Token
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserService 用户服务接口
type UserService interface {
	Signup(ctx context.Context, fullName, email, password string) (*model.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*model.User, *TokenPair, error)
	Logout(ctx context.Context, userID string) error
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID, fullName string) (*model.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	GetUsers(page, limit int) ([]model.User, int64, error)
}

// userService 实现
type userService struct {
	repo   repository.UserRepository
	tokens TokenStore
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository, tokens TokenStore) UserService {
	return &userService{repo: repo, tokens: tokens}
}

// Signup 注册并直接登录
func (s *userService) Signup(ctx context.Context, fullName, email, password string) (*model.User, *TokenPair, error) {
	// 1. 检查邮箱是否已注册
	if _, err := s.repo.GetByEmail(email); err == nil {
		return nil, nil, apperr.Conflict("User already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	// 2. 密码哈希
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &model.User{
		FullName: fullName,
		Email:    email,
		Password: string(hashed),
		Role:     model.RoleCustomer,
	}
	if err := s.repo.Create(user); err != nil {
		// 并发注册时唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, apperr.Conflict("User already exists")
		}
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login 邮箱密码登录
func (s *userService) Login(ctx context.Context, email, password string) (*model.User, *TokenPair, error) {
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, apperr.Unauthorized("Invalid credentials")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout 登出，使刷新 Token 失效
func (s *userService) Logout(ctx context.Context, userID string) error {
	return s.tokens.Delete(ctx, userID)
}

// RefreshTokens 用刷新 Token 换取新的 Token 对 (轮换)
func (s *userService) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := utils.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// 与存储中的对比，登出或已轮换的旧 Token 不能再用
	if err := s.tokens.Verify(ctx, claims.UserID, refreshToken); err != nil {
		if errors.Is(err, ErrRefreshTokenMismatch) {
			return nil, apperr.Unauthorized("Invalid refresh token")
		}
		return nil, err
	}

	user, err := s.repo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("Invalid refresh token")
		}
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// GetProfile 获取当前用户信息
func (s *userService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile 更新用户资料
func (s *userService) UpdateProfile(ctx context.Context, userID, fullName string) (*model.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FullName = fullName
	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword 修改密码，成功后强制重新登录
func (s *userService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return apperr.Unauthorized("Invalid credentials")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.Password = string(hashed)
	if err := s.repo.Update(user); err != nil {
		return err
	}

	// 旧的刷新 Token 全部作废
	return s.tokens.Delete(ctx, userID)
}

// GetUsers 获取用户列表（分页，管理员）
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

// issueTokens 签发 Token 对并保存刷新 Token
func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Save(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
