package oauth

import (
	"context"
	"net/url"
	"strings"
	"testing"
)

func newTestGoogle() *GoogleOAuth {
	return NewGoogle(context.Background(), "client-id", "client-secret", "http://localhost/cb", "state-secret")
}

func TestState_RoundTrip(t *testing.T) {
	g := newTestGoogle()
	st, err := g.NewState()
	if err != nil {
		t.Fatal(err)
	}
	if !g.VerifyState(st) {
		t.Fatalf("VerifyState rejected %q", st)
	}
}

func TestState_RejectsTampering(t *testing.T) {
	g := newTestGoogle()
	st := g.MakeState("abc")
	other := NewGoogle(context.Background(), "id", "sec", "cb", "another-secret")

	for _, bad := range []string{"", "abc", "abc.", "xyz" + st[3:], st + "x", ".sig"} {
		if g.VerifyState(bad) {
			t.Errorf("VerifyState accepted %q", bad)
		}
	}
	if other.VerifyState(st) {
		t.Error("state signed with another key was accepted")
	}
}

func TestAuthURL(t *testing.T) {
	g := newTestGoogle()
	u, err := url.Parse(g.AuthURL("s1"))
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("state") != "s1" || q.Get("client_id") != "client-id" {
		t.Fatalf("unexpected query: %v", q)
	}
	if !strings.Contains(q.Get("scope"), "openid") {
		t.Fatalf("scope missing openid: %q", q.Get("scope"))
	}
}
