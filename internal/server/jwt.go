package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT 相关配置
const (
	tokenIssuer = "bombhazard-server"

	// 开发环境默认密钥，生产环境应在配置或 JWT_SECRET 中设置
	devSigningKey = "bombhazard-dev-secret-change-in-production"
)

var ErrInvalidToken = errors.New("invalid session token")

// Claims 定义 JWT Claims
type Claims struct {
	PlayerID int32  `json:"player_id"`
	RoomID   string `json:"room_id,omitempty"`
	jwt.RegisteredClaims
}

// SessionIssuer 签发和校验会话 Token，用于断线重连
type SessionIssuer struct {
	key []byte
	ttl time.Duration
}

// NewSessionIssuer 创建签发器
// secret 为空时读取环境变量 JWT_SECRET，仍为空则使用开发密钥
func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		secret = devSigningKey
	}
	return &SessionIssuer{key: []byte(secret), ttl: ttl}
}

// Issue 生成会话 Token
func (i *SessionIssuer) Issue(playerID int32, roomID string) (string, error) {
	now := time.Now()
	claims := Claims{
		PlayerID: playerID,
		RoomID:   roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("player-%d", playerID),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.key)
}

// Verify 验证并解析 Token，返回 playerID 和 roomID
func (i *SessionIssuer) Verify(tokenString string) (int32, string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return 0, "", ErrInvalidToken
	}
	return claims.PlayerID, claims.RoomID, nil
}
