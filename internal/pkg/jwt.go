package pkg

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"Lee_Forum/internal/config"
)

var (
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("token invalid")
	ErrTokenParseFailure = errors.New("token parse failure")
)

const (
	subjectAccess  = "access"
	subjectRefresh = "refresh"
)

type Claims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenManager 签发由认证服务负责，本服务只解析 access token；GeneratePair 保留给联调和测试
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenManager(cfg config.JWTConfig) *TokenManager {
	m := &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
	if m.accessTTL <= 0 {
		m.accessTTL = 30 * time.Minute
	}
	if m.refreshTTL <= 0 {
		m.refreshTTL = 24 * time.Hour
	}
	return m
}

func (m *TokenManager) GeneratePair(userID uint64) (*Pair, error) {
	now := time.Now()
	accessToken, err := sign(userID, subjectAccess, m.accessSecret, now, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := sign(userID, subjectRefresh, m.refreshSecret, now, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func sign(userID uint64, subject string, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   subject,
		},
	}).SignedString(secret)
}

// ParseAccess 解析 access
func (m *TokenManager) ParseAccess(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return m.accessSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, err
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject != subjectAccess {
		return nil, ErrTokenParseFailure
	}
	return claims, nil
}
