package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/config"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Token types carried in the "typ" claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenService issues and validates HS256-signed access and refresh tokens
type TokenService struct {
	config *config.AuthConfig
}

// NewTokenService creates a new token service
func NewTokenService(cfg *config.AuthConfig) *TokenService {
	return &TokenService{config: cfg}
}

type tokenClaims struct {
	Username  string          `json:"username"`
	Role      domain.UserRole `json:"role"`
	TokenType string          `json:"typ"`
	jwt.RegisteredClaims
}

// IssueTokens creates an access/refresh token pair for the user
func (s *TokenService) IssueTokens(user *domain.User) (*domain.TokenResponse, error) {
	access, err := s.issue(user, TokenTypeAccess, s.config.AccessTokenTTLDuration())
	if err != nil {
		return nil, err
	}
	refresh, err := s.issue(user, TokenTypeRefresh, s.config.RefreshTokenTTLDuration())
	if err != nil {
		return nil, err
	}

	return &domain.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.config.AccessTokenTTL,
	}, nil
}

func (s *TokenService) issue(user *domain.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		Username:  user.Username,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken validates an access token and returns the user context
func (s *TokenService) ValidateAccessToken(tokenString string) (*UserContext, error) {
	return s.validate(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns the user context
func (s *TokenService) ValidateRefreshToken(tokenString string) (*UserContext, error) {
	return s.validate(tokenString, TokenTypeRefresh)
}

func (s *TokenService) validate(tokenString, wantType string) (*UserContext, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithIssuer(s.config.Issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return &UserContext{
		UserID:   userID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
