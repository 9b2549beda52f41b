package models

// 各种请求和响应结构
type (
	// LoginRequest 登录请求
	LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	// LoginResponse 登录响应
	LoginResponse struct {
		Token string    `json:"token"`
		User  LoginUser `json:"user"`
	}

	// LoginUser 令牌中携带的用户信息
	LoginUser struct {
		Username string `json:"username"`
	}
)
