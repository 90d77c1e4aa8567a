package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tazhibayda/mylist-service/internal/apperror"
)

const (
	DefaultAccessTTL  = 10 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	DefaultIssuer     = "mylist-service"
)

// TokenConfig carries the signing material for both halves of a session.
// Access and refresh tokens use distinct secrets so that one can never be
// presented as the other.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

func (c TokenConfig) Validate() error {
	switch {
	case c.AccessSecret == "" || c.RefreshSecret == "":
		return errors.New("security: access and refresh secrets are required")
	case c.AccessSecret == c.RefreshSecret:
		return errors.New("security: access and refresh secrets must differ")
	case c.AccessTTL <= 0 || c.RefreshTTL <= 0:
		return errors.New("security: token TTLs must be positive")
	case c.AccessTTL > c.RefreshTTL:
		return fmt.Errorf("security: access TTL %s exceeds refresh TTL %s", c.AccessTTL, c.RefreshTTL)
	}
	return nil
}

type Claims struct {
	UID   string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access           string
	Refresh          string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenManager signs and verifies HS256 session tokens. It keeps no state
// besides its configuration; validity is signature plus expiry.
type TokenManager struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TokenManager{cfg: cfg, now: time.Now}, nil
}

// WithClock replaces the time source used for issuing and verifying.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *TokenManager) AccessTTL() time.Duration  { return m.cfg.AccessTTL }
func (m *TokenManager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

// IssuePair signs an access and a refresh token from the same instant, so the
// access expiry never exceeds the refresh expiry.
func (m *TokenManager) IssuePair(uid, email string) (TokenPair, error) {
	now := m.now()
	access, accessExp, err := m.sign(m.cfg.AccessSecret, uid, email, now, m.cfg.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := m.sign(m.cfg.RefreshSecret, uid, email, now, m.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessTTL:        m.cfg.AccessTTL,
		RefreshTTL:       m.cfg.RefreshTTL,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// IssueAccess signs a lone access token. There is no counterpart for refresh
// tokens: those are only minted by IssuePair at login.
func (m *TokenManager) IssueAccess(uid, email string) (string, time.Time, error) {
	return m.sign(m.cfg.AccessSecret, uid, email, m.now(), m.cfg.AccessTTL)
}

func (m *TokenManager) VerifyAccess(token string) (*Claims, error) {
	return m.verify(m.cfg.AccessSecret, token)
}

func (m *TokenManager) VerifyRefresh(token string) (*Claims, error) {
	return m.verify(m.cfg.RefreshSecret, token)
}

func (m *TokenManager) sign(secret, uid, email string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	c := Claims{
		UID: uid, Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("security: signing token: %w", err)
	}
	return signed, exp, nil
}

func (m *TokenManager) verify(secret, token string) (*Claims, error) {
	if token == "" {
		return nil, apperror.Token(apperror.ReasonAbsent)
	}
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Token(apperror.ReasonExpired)
		}
		return nil, apperror.Token(apperror.ReasonInvalid)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.UID == "" {
		return nil, apperror.Token(apperror.ReasonInvalid)
	}
	return c, nil
}
