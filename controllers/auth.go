package controllers

import (
	"net/http"

	"github.com/BerniceZTT/bid_tracker/models"
	"github.com/BerniceZTT/bid_tracker/utils"

	"github.com/gin-gonic/gin"
)

// AuthController 单账号登录
type AuthController struct {
	username     string
	passwordHash string
	tokens       *utils.TokenManager
}

// NewAuthController 创建登录控制器，账号和密码哈希来自配置
func NewAuthController(username, passwordHash string, tokens *utils.TokenManager) *AuthController {
	return &AuthController{username: username, passwordHash: passwordHash, tokens: tokens}
}

// Login 用户登录
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求参数: "+err.Error(), http.StatusBadRequest)
		return
	}

	utils.LogApiRequest("POST", "/api/auth/login", nil, gin.H{
		"username": req.Username,
		"password": "******",
	}, nil)

	if !utils.CheckCredentials(ac.username, ac.passwordHash, req.Username, req.Password) {
		utils.Logger.Info().Str("username", req.Username).Msg("登录失败: 用户名或密码错误")
		utils.ErrorResponse(c, "用户名或密码错误", http.StatusUnauthorized)
		return
	}

	// 生成JWT令牌
	token, err := ac.tokens.GenerateToken(req.Username)
	if err != nil {
		utils.Logger.Error().Err(err).Msg("生成token失败")
		utils.ErrorResponse(c, "生成登录令牌失败，请重试", http.StatusInternalServerError)
		return
	}

	utils.Logger.Info().Str("username", req.Username).Msg("用户登录成功")
	utils.SuccessResponse(c, models.LoginResponse{
		Token: token,
		User:  models.LoginUser{Username: req.Username},
	}, "")
}

// ValidateToken 验证Token
func (ac *AuthController) ValidateToken(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.ErrorResponse(c, err.Error(), http.StatusUnauthorized)
		return
	}
	utils.SuccessResponse(c, gin.H{"user": user}, "")
}
