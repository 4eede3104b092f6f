package tokens

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenTTL is fixed. Refresh lifetime is configurable per deployment,
// access lifetime is not.
const AccessTokenTTL = 30 * time.Minute

var ErrSignerConfig = errors.New("signer requires a secret, an issuer and an audience")

type AccessClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 access tokens. It is immutable after
// construction and safe for concurrent use.
type Signer struct {
	secret   []byte
	issuer   string
	audience string
}

func NewSigner(secret []byte, issuer, audience string) (*Signer, error) {
	if len(secret) == 0 || issuer == "" || audience == "" {
		return nil, ErrSignerConfig
	}
	return &Signer{secret: secret, issuer: issuer, audience: audience}, nil
}

func (s *Signer) Issue(userID uint, username, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Name:  username,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify fails closed: bad signature, wrong issuer or audience, expiry and
// malformed input all come back as an error with no partial claims.
func (s *Signer) Verify(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return &claims, nil
}
