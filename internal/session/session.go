// Package session maps a token pair onto cookies. It never looks inside the
// tokens; it only decides how they travel.
package session

import (
	"net/http"
	"time"

	"github.com/tazhibayda/mylist-service/internal/security"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

type Propagator struct {
	Secure bool // set in production
	Path   string
	Domain string
}

func NewPropagator(production bool) *Propagator {
	return &Propagator{Secure: production, Path: "/"}
}

// Attach sets both cookies, each living exactly as long as its token.
func (p *Propagator) Attach(w http.ResponseWriter, pair security.TokenPair) {
	p.set(w, AccessCookie, pair.Access, pair.AccessTTL)
	p.set(w, RefreshCookie, pair.Refresh, pair.RefreshTTL)
}

// AttachAccess replaces only the access cookie.
func (p *Propagator) AttachAccess(w http.ResponseWriter, token string, ttl time.Duration) {
	p.set(w, AccessCookie, token, ttl)
}

// Clear expires both cookies. Clearing cookies the client never had is harmless.
func (p *Propagator) Clear(w http.ResponseWriter) {
	p.set(w, AccessCookie, "", -1)
	p.set(w, RefreshCookie, "", -1)
}

// Token reads a session cookie from r; "" when absent.
func Token(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (p *Propagator) set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     p.path(),
		Domain:   p.Domain,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	if ttl < 0 {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	} else {
		c.MaxAge = int(ttl / time.Second)
		c.Expires = time.Now().Add(ttl)
	}
	http.SetCookie(w, c)
}

func (p *Propagator) path() string {
	if p.Path == "" {
		return "/"
	}
	return p.Path
}
