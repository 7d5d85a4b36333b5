package jwtsigner

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session scopes.
const (
	ScopeApplicant = "applicant"
	ScopeAdmin     = "admin"
)

var (
	ErrEmptySecret = errors.New("empty signing secret")
	ErrWrongScope  = errors.New("token scope mismatch")
)

type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Signer issues and checks HS256 session tokens.
type Signer struct {
	secret []byte
	Issuer string

	now func() time.Time
}

func New(secret, iss string) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Signer{secret: []byte(secret), Issuer: iss, now: time.Now}, nil
}

// Sign issues a token for subject sub with the given scope and TTL.
func (s *Signer) Sign(sub, scope string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses raw and checks signature method, issuer, expiry and scope.
func (s *Signer) Verify(raw, scope string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %T", t.Method)
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	if claims.Scope != scope {
		return nil, ErrWrongScope
	}
	if claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return claims, nil
}
