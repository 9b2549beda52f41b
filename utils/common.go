package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/BerniceZTT/bid_tracker/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// DateLayout 截止日期格式
const DateLayout = "2006-01-02"

// ParseDate 解析日期，支持 YYYY-MM-DD 与 RFC3339
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, NewValidationError("deadline", fmt.Sprintf("invalid date %q", value))
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d, nil
}

// SplitList 拆分逗号分隔的查询参数
func SplitList(value string) []string {
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// GetUser 获取当前登录用户
func GetUser(c *gin.Context) (*models.LoginUser, error) {
	currentUser, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("GetUser 未授权访问")
	}

	claims, ok := currentUser.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("无效的用户信息")
	}

	username, ok := claims["username"].(string)
	if !ok {
		return nil, fmt.Errorf("无效的用户名")
	}
	return &models.LoginUser{Username: username}, nil
}
