package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config describes token verification settings.
type Config struct {
	Secret string        `env:"JWT_SECRET,required"`       // Secret is the HS256 signing key.
	TTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`  // TTL bounds tokens minted by Issue.
	Issuer string        `env:"JWT_ISSUER" envDefault:""`  // Issuer is an optional iss claim on minted tokens.
}

// Claims carries the authenticated user id inside the bearer token.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// Verifier validates a bearer credential and yields the user id it binds.
type Verifier interface {
	Verify(token string) (int64, error)
}

// JWTVerifier verifies and mints HS256 tokens.
type JWTVerifier struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// New creates a JWTVerifier from config.
func New(cfg Config) (*JWTVerifier, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTVerifier{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: cfg.Issuer,
	}, nil
}

// Verify parses and validates the token, returning the bound user id.
// Any failure collapses into ErrInvalidToken: the session protocol closes
// the connection without distinguishing why.
func (v *JWTVerifier) Verify(tokenString string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid || claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// Issue mints a token for the user. Token issuance is not part of the
// connection protocol; it exists for tests and operational tooling.
func (v *JWTVerifier) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}
