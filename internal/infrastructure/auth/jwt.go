package auth

import (
	"errors"
	"time"

	"github.com/aurum/jewelstore/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind separates access tokens from refresh tokens. Each kind is
// signed with its own secret so one cannot stand in for the other.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// clockSkew is the leeway allowed on exp, nbf and iat
const clockSkew = 30 * time.Second

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrWrongTokenKind     = errors.New("wrong token kind")
	ErrMissingUserID      = errors.New("token has no user")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims identify a back-office user. Refresh tokens carry no role; the
// role is read from the user record each time a pair is refreshed.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Role         string    `json:"role,omitempty"`
	Kind         TokenKind `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// TokenPair is what login and refresh hand back to the client
type TokenPair struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// GenerateTokenInput names the user a pair is issued for
type GenerateTokenInput struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

// JWTService signs and verifies HS256 tokens
type JWTService struct {
	keys       map[TokenKind][]byte
	ttl        map[TokenKind]time.Duration
	issuer     string
	maxRefresh int
	now        func() time.Time
}

// NewJWTService creates the service. Without a refresh secret both kinds
// share the access secret and are told apart by their kind claim.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		keys: map[TokenKind][]byte{
			KindAccess:  []byte(cfg.Secret),
			KindRefresh: []byte(refreshSecret),
		},
		ttl: map[TokenKind]time.Duration{
			KindAccess:  cfg.AccessTokenExpiration,
			KindRefresh: cfg.RefreshTokenExpiration,
		},
		issuer:     cfg.Issuer,
		maxRefresh: cfg.MaxRefreshCount,
		now:        time.Now,
	}
}

// GenerateTokenPair issues a fresh pair at login
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	return s.issue(input, 0)
}

// RefreshTokenPair exchanges a refresh token for a new pair with the
// caller-supplied current role. Revoking the old token is the caller's job.
func (s *JWTService) RefreshTokenPair(refreshToken, role string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if s.maxRefresh > 0 && claims.RefreshCount >= s.maxRefresh {
		return nil, ErrMaxRefreshExceeded
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.issue(GenerateTokenInput{UserID: userID, Username: claims.Username, Role: role}, claims.RefreshCount+1)
}

// ValidateAccessToken verifies an access token
func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	return s.parse(token, KindAccess)
}

// ValidateRefreshToken verifies a refresh token
func (s *JWTService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.parse(token, KindRefresh)
}

// GetAccessTokenExpiration returns the access token lifetime
func (s *JWTService) GetAccessTokenExpiration() time.Duration {
	return s.ttl[KindAccess]
}

// GetRefreshTokenExpiration returns the refresh token lifetime, which is
// also how long a user-wide revocation must be remembered
func (s *JWTService) GetRefreshTokenExpiration() time.Duration {
	return s.ttl[KindRefresh]
}

func (s *JWTService) issue(input GenerateTokenInput, refreshCount int) (*TokenPair, error) {
	now := s.now()
	access, accessExp, err := s.sign(KindAccess, now, Claims{
		UserID:   input.UserID.String(),
		Username: input.Username,
		Role:     input.Role,
	}, input.UserID)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.sign(KindRefresh, now, Claims{
		UserID:       input.UserID.String(),
		Username:     input.Username,
		RefreshCount: refreshCount,
	}, input.UserID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) sign(kind TokenKind, now time.Time, claims Claims, subject uuid.UUID) (string, time.Time, error) {
	expiresAt := now.Add(s.ttl[kind])
	claims.Kind = kind
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   subject.String(),
		Audience:  jwt.ClaimStrings{s.issuer},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.keys[kind])
	return signed, expiresAt, err
}

func (s *JWTService) parse(token string, kind TokenKind) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.keys[kind], nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.Kind != kind:
		return nil, ErrWrongTokenKind
	case claims.UserID == "" || claims.UserID != claims.Subject:
		return nil, ErrMissingUserID
	}
	return claims, nil
}

// GetUserUUID parses the user ID claim
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GetIssuedAtTime returns iat, or the zero time when absent
func (c *Claims) GetIssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// GetRemainingTTL is how long the token stays valid, never negative
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}
