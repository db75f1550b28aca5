package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrWrongTokenType = errors.New("wrong token type")
)

type Claims struct {
	Type Type `json:"type"`
	jwt.RegisteredClaims
}

type Token struct {
	Value     string
	ExpiresAt time.Time
	TTL       time.Duration
}

type Pair struct {
	Access  Token
	Refresh Token
}

// Service signs and verifies session tokens. Access and refresh tokens share
// the secret and are told apart only by the "type" claim.
type Service struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(secret []byte, algorithm string, accessTTL, refreshTTL time.Duration, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("tokens: empty secret")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("tokens: unsupported algorithm %q", algorithm)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("tokens: ttl must be positive")
	}

	s := &Service{
		secret:     secret,
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) AccessTTL() time.Duration  { return s.accessTTL }
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *Service) IssueAccess(subject string) (Token, error) {
	return s.issue(subject, TypeAccess, s.accessTTL)
}

func (s *Service) IssueRefresh(subject string) (Token, error) {
	return s.issue(subject, TypeRefresh, s.refreshTTL)
}

func (s *Service) IssuePair(subject string) (Pair, error) {
	access, err := s.IssueAccess(subject)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.IssueRefresh(subject)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

func (s *Service) issue(subject string, typ Type, ttl time.Duration) (Token, error) {
	if subject == "" {
		return Token{}, errors.New("tokens: empty subject")
	}

	now := s.now()
	exp := now.Add(ttl)
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("tokens: sign %s token: %w", typ, err)
	}

	return Token{Value: signed, ExpiresAt: claims.ExpiresAt.Time, TTL: ttl}, nil
}

// Verify returns the subject of a token of the expected type.
// A token is expired from the instant now >= exp.
func (s *Service) Verify(raw string, expected Type) (string, error) {
	claims, err := s.Parse(raw)
	if err != nil {
		return "", err
	}
	if claims.Type != expected {
		return "", fmt.Errorf("%w: got %q, want %q", ErrWrongTokenType, claims.Type, expected)
	}
	return claims.Subject, nil
}

func (s *Service) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
