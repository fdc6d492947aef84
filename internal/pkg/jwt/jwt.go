package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tenant-deployer/internal/pkg/config"
	pkgErrors "tenant-deployer/pkg/errors"
)

// Claims 身份服务签发的 token，Subject 为 profile id
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier 校验 HS256 token
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(cfg config.JWTConfig) *Verifier {
	return &Verifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Generate 签发 token，仅用于本地调试与测试
func (v *Verifier) Generate(subject, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// Validate 解析并校验 token，任何失败都归为 ErrInvalidToken
func (v *Verifier) Validate(tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, pkgErrors.Wrap(pkgErrors.CodeUnauthorized, pkgErrors.ErrInvalidToken.Message,
			fmt.Errorf("jwt secret not configured"))
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeUnauthorized, pkgErrors.ErrInvalidToken.Message, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, pkgErrors.ErrInvalidToken
	}

	return claims, nil
}
