package utils

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL 令牌有效期
const TokenTTL = 30 * 24 * time.Hour

// HashPassword 生成 bcrypt 密码哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword 验证密码与 bcrypt 哈希是否匹配
func VerifyPassword(password string, hashedPassword string) bool {
	if hashedPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// CheckCredentials 校验唯一的配置账号
func CheckCredentials(expectedUsername, passwordHash, username, password string) bool {
	if expectedUsername == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(expectedUsername), []byte(username)) == 1
	passOK := VerifyPassword(password, passwordHash)
	return userOK && passOK
}

// TokenManager 负责签发和解析JWT
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager 创建令牌管理器
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = TokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken 生成JWT令牌
func (m *TokenManager) GenerateToken(username string) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"jti":      uuid.NewString(),
		"username": username,
		"exp":      now.Add(m.ttl).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		Logger.Error().Err(err).Msg("生成token失败")
		return "", err
	}

	Logger.Debug().
		Str("username", username).
		Int("length", len(tokenString)).
		Msg("Token生成成功")

	return tokenString, nil
}

// ParseToken 解析和验证JWT令牌
func (m *TokenManager) ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		if _, ok := claims["username"].(string); !ok {
			return nil, fmt.Errorf("token missing username")
		}
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
