package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	Issuer = "skill-hire"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	TokenType string    `json:"token_type"`

	jwtlib.RegisteredClaims
}

// Service issues and checks the two token kinds. Access and refresh tokens
// are signed with different secrets, so one can never pass as the other.
type Service interface {
	GenerateAccessToken(userID uuid.UUID, email, role string) (string, error)
	GenerateRefreshToken(userID uuid.UUID, role string) (string, error)
	ValidateAccess(token string) (Claims, error)
	ValidateRefresh(token string) (Claims, error)
}

type HMACService struct {
	accessSecret  []byte
	refreshSecret []byte

	accessExpiresIn  time.Duration
	refreshExpiresIn time.Duration

	now func() time.Time
}

func NewHMACService(accessSecret, refreshSecret string, accessExpiresIn, refreshExpiresIn time.Duration) *HMACService {
	return &HMACService{
		accessSecret:     []byte(accessSecret),
		refreshSecret:    []byte(refreshSecret),
		accessExpiresIn:  accessExpiresIn,
		refreshExpiresIn: refreshExpiresIn,
		now:              time.Now,
	}
}

func (s *HMACService) GenerateAccessToken(userID uuid.UUID, email, role string) (string, error) {
	return s.sign(TokenTypeAccess, s.accessSecret, s.accessExpiresIn, userID, email, role)
}

// GenerateRefreshToken carries the role so a refresh can mint an access
// token without a database round trip.
func (s *HMACService) GenerateRefreshToken(userID uuid.UUID, role string) (string, error) {
	return s.sign(TokenTypeRefresh, s.refreshSecret, s.refreshExpiresIn, userID, "", role)
}

func (s *HMACService) ValidateAccess(token string) (Claims, error) {
	return s.parse(token, TokenTypeAccess, s.accessSecret)
}

func (s *HMACService) ValidateRefresh(token string) (Claims, error) {
	return s.parse(token, TokenTypeRefresh, s.refreshSecret)
}

func (s *HMACService) sign(tokenType string, secret []byte, ttl time.Duration, userID uuid.UUID, email, role string) (string, error) {
	if len(secret) == 0 || ttl <= 0 || userID == uuid.Nil {
		return "", ErrTokenInvalid
	}

	now := s.now().UTC()
	c := Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   userID.String(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(secret)
}

func (s *HMACService) parse(token, tokenType string, secret []byte) (Claims, error) {
	if token == "" || len(secret) == 0 {
		return Claims{}, ErrTokenInvalid
	}

	p := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(Issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.now),
	)

	var c Claims
	tok, err := p.ParseWithClaims(token, &c, func(*jwtlib.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if tok == nil || !tok.Valid || c.TokenType != tokenType || c.UserID == uuid.Nil {
		return Claims{}, ErrTokenInvalid
	}
	return c, nil
}
