package handler

import (
	"net/http"

	"shop_api/internal/domain/user/model"
	"shop_api/internal/domain/user/service"
	"shop_api/pkg/apperr"
	"shop_api/pkg/response"
	"shop_api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// SignupInput 注册输入
type SignupInput struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshInput 刷新 Token 输入
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UpdateProfileInput 更新资料输入
type UpdateProfileInput struct {
	FullName string `json:"fullName" binding:"required"`
}

// ChangePasswordInput 修改密码输入
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// authPayload 登录/注册响应
type authPayload struct {
	User   *model.User        `json:"user"`
	Tokens *service.TokenPair `json:"tokens"`
}

// Signup 注册
// @Summary 注册新用户
// @Tags Auth
// @Accept json
// @Produce json
// @Router /api/auth/signup [post]
func (h *UserHandler) Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, tokens, err := h.service.Signup(c.Request.Context(), input.FullName, input.Email, input.Password)
	if err != nil {
		apperr.Handle(c, err)
		return
	}

	response.Success(c, authPayload{User: user, Tokens: tokens})
}

// Login 登录
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, tokens, err := h.service.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		apperr.Handle(c, err)
		return
	}

	response.Success(c, authPayload{User: user, Tokens: tokens})
}

// Logout 登出
func (h *UserHandler) Logout(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, true)
}

// Refresh 刷新 Token
func (h *UserHandler) Refresh(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	tokens, err := h.service.RefreshTokens(c.Request.Context(), input.RefreshToken)
	if err != nil {
		apperr.Handle(c, err)
		return
	}

	response.Success(c, tokens)
}

// GetProfile 获取当前用户信息
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := c.GetString("userID")
	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateProfile 更新当前用户资料
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := c.GetString("userID")
	user, err := h.service.UpdateProfile(c.Request.Context(), userID, input.FullName)
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, user)
}

// ChangePassword 修改密码
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := c.GetString("userID")
	if err := h.service.ChangePassword(c.Request.Context(), userID, input.OldPassword, input.NewPassword); err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, true)
}

// GetUsers 获取用户列表 (管理员)
func (h *UserHandler) GetUsers(c *gin.Context) {
	var query utils.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	users, total, err := h.service.GetUsers(query.Page, query.Limit)
	if err != nil {
		apperr.Handle(c, err)
		return
	}

	response.Success(c, utils.PageResult{
		List:  users,
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
	})
}
