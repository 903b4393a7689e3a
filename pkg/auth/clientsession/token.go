package clientsession

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/osvaldoandrade/pitchflow/pkg/auth"
)

const issuer = "pitchflow"

// Tokens issues and validates HS256-signed client session tokens. The subject
// is the client id the submission registry is keyed by.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

var (
	_ auth.Validator = (*Tokens)(nil)
	_ auth.Issuer    = (*Tokens)(nil)
)

func New(secret string, ttl time.Duration, clock clockwork.Clock) (*Tokens, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("client session: secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, clock: clock}, nil
}

func (t *Tokens) TTL() time.Duration { return t.ttl }

func (t *Tokens) Issue(subject string) (string, *auth.Claims, error) {
	if strings.TrimSpace(subject) == "" {
		return "", nil, errors.New("client session: subject is required")
	}
	now := t.clock.Now().UTC().Truncate(time.Second)
	claims := &auth.Claims{Subject: subject, IssuedAt: now, ExpiresAt: now.Add(t.ttl)}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	})
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("client session: sign: %w", err)
	}
	return signed, claims, nil
}

func (t *Tokens) Validate(token string) (*auth.Claims, error) {
	var rc jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), &rc, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || strings.TrimSpace(rc.Subject) == "" {
		return nil, errors.New("invalid token")
	}

	claims := &auth.Claims{Subject: rc.Subject}
	if rc.IssuedAt != nil {
		claims.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		claims.ExpiresAt = rc.ExpiresAt.Time
	}
	return claims, nil
}
