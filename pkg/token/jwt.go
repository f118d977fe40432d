// Package token 签发和校验登录用的 JWT。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer 是本服务签发令牌的 iss 字段。
const Issuer = "freeark"

// 令牌类型写在 claims 里，受保护接口只接受 access。
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrWrongTokenType 令牌合法但类型不符，例如拿 refresh token 访问接口。
var ErrWrongTokenType = errors.New("wrong token type")

// CustomClaims 是令牌携带的用户身份。
type CustomClaims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTManager 用 HS256 签名，access 和 refresh 各自有效期。
type JWTManager struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWTManager(secretKey string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// GenerateToken 为用户签发一对 access / refresh 令牌。
func (m *JWTManager) GenerateToken(userID uint, username, role string) (access, refresh string, err error) {
	now := m.now()
	access, err = m.sign(userID, username, role, TokenTypeAccess, now, m.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.sign(userID, username, role, TokenTypeRefresh, now, m.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (m *JWTManager) sign(userID uint, username, role, kind string, now time.Time, ttl time.Duration) (string, error) {
	claims := &CustomClaims{
		UserID:    userID,
		Username:  username,
		Role:      role,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// VerifyToken 校验签名、有效期和签发者，任一类型的令牌都可通过。
func (m *JWTManager) VerifyToken(tokenString string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return m.secretKey, nil },
		// 只允许 HS256，拒绝 alg=none 等
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyAccessToken 在 VerifyToken 基础上要求是 access 令牌。
func (m *JWTManager) VerifyAccessToken(tokenString string) (*CustomClaims, error) {
	claims, err := m.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// RemainingTTL 返回令牌距离过期还剩的时间，已过期或没有 exp 时返回 0。
// 登出时用它作为黑名单条目的过期时间。
func RemainingTTL(claims *CustomClaims, now time.Time) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	if ttl := claims.ExpiresAt.Time.Sub(now); ttl > 0 {
		return ttl
	}
	return 0
}
