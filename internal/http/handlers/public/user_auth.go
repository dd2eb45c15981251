package public

import (
	"errors"
	"strings"

	"github.com/kharido-next/internal/cache"
	"github.com/kharido-next/internal/http/response"
	"github.com/kharido-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UserLoginRequest 用户登录请求
type UserLoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// 账号不存在与密码错误统一返回 login_failed，避免账号探测
var loginErrorRules = []errorRule{
	{target: service.ErrUserNotFound, code: response.CodeUnauthorized, key: "error.login_failed"},
	{target: service.ErrPasswordIncorrect, code: response.CodeUnauthorized, key: "error.login_failed"},
	{target: service.ErrUserDisabled, code: response.CodeUnauthorized, key: "error.user_disabled"},
}

// UserLogin 用户邮箱密码登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.UserAuthService.Login(strings.TrimSpace(req.Email), req.Password, req.RememberMe)
	if err != nil {
		respondMapped(c, err, loginErrorRules, response.CodeInternal, "error.login_failed")
		return
	}

	// 登录即刷新鉴权快照，失败不影响登录结果
	_ = cache.SetUserAuthState(c.Request.Context(), cache.BuildUserAuthState(result.User))

	response.Success(c, result)
}

// GetCurrentUser 获取当前登录用户
func (h *Handler) GetCurrentUser(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUser(uid)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	response.Success(c, user)
}
