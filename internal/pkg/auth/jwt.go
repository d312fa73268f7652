package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
)

// TokenTTL is the fixed validity window of a session token
const TokenTTL = time.Hour

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey   string
	TokenIssuer string
}

// JWTService issues and verifies session tokens
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config: config,
		now:    time.Now,
	}
}

// Identity is the set of facts a token is issued for
type Identity struct {
	AccountID int64
	Role      models.Role
	StudentID *int64
	UserName  string
}

// Claims defines JWT token content
type Claims struct {
	AccountID int64       `json:"accountId"`
	Role      models.Role `json:"role"`
	StudentID *int64      `json:"studentId,omitempty"`
	UserName  string      `json:"userName"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token plus its expiry
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
	ID        string
}

// Issue produces a signed token valid for TokenTTL.
func (s *JWTService) Issue(identity Identity) (*IssuedToken, error) {
	if s.config.SecretKey == "" {
		return nil, apperrors.ErrSigningKeyUnavailable
	}

	now := s.now()
	expiresAt := now.Add(TokenTTL)
	tokenID := uuid.New().String()

	claims := &Claims{
		AccountID: identity.AccountID,
		Role:      identity.Role,
		StudentID: identity.StudentID,
		UserName:  identity.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   strconv.FormatInt(identity.AccountID, 10),
			ID:        tokenID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSigningKeyUnavailable, err)
	}

	return &IssuedToken{Token: signed, ExpiresAt: expiresAt, ID: tokenID}, nil
}

// Verify decodes and validates a token. Malformed, tampered and expired tokens
// all collapse into apperrors.ErrTokenInvalid.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" || s.config.SecretKey == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.config.TokenIssuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.config.TokenIssuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	}, parserOpts...)
	if err != nil {
		return nil, errors.Join(apperrors.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrTokenInvalid
	}
	if claims.AccountID <= 0 || !claims.Role.Valid() {
		return nil, apperrors.ErrTokenInvalid
	}
	if claims.Role == models.RoleStudent && claims.StudentID == nil {
		return nil, apperrors.ErrTokenInvalid
	}

	return claims, nil
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) string {
	authHeader = strings.TrimSpace(strings.Trim(authHeader, "\"'"))
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
