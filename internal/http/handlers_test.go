package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/mylist-service/internal/domain"
	api "github.com/tazhibayda/mylist-service/internal/http"
	"github.com/tazhibayda/mylist-service/internal/queue"
	"github.com/tazhibayda/mylist-service/internal/repo/memory"
	"github.com/tazhibayda/mylist-service/internal/service"
	"github.com/tazhibayda/mylist-service/internal/session"
)

func Test_Register_Profile_Toggle_Delete(t *testing.T) {
	env := newTestEnv(t)
	u := env.register("john@example.com")

	pid := env.createProfile(u, "Kids")

	toggle := `{"profileId":"` + pid + `","category":"movies","item":{"_id":"m1","title":"Alien"}}`
	w := env.do("PATCH", "/profiles/"+u.ID, toggle, u.Access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tr struct {
		Added   bool `json:"added"`
		Profile struct {
			MyList struct {
				Movies []map[string]any `json:"movies"`
			} `json:"myList"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tr))
	assert.True(t, tr.Added)
	require.Len(t, tr.Profile.MyList.Movies, 1)
	assert.Equal(t, "Alien", tr.Profile.MyList.Movies[0]["title"])

	w = env.do("PATCH", "/profiles/"+u.ID, toggle, u.Access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tr))
	assert.False(t, tr.Added)
	assert.Empty(t, tr.Profile.MyList.Movies)

	w = env.do("GET", "/profiles/"+u.ID, "", u.Access)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = env.do("GET", "/profiles/"+u.ID+"/"+pid, "", u.Access)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do("DELETE", "/profiles/"+u.ID+"/"+pid, "", u.Access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")

	w = env.do("GET", "/profiles/"+u.ID+"/"+pid, "", u.Access)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do("DELETE", "/profiles/"+u.ID+"/"+pid, "", u.Access)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Eventually(t, func() bool {
		keys := map[string]int{}
		for _, m := range env.Events.Messages() {
			keys[m.Key]++
			if m.Exchange != testExchange || m.ReqID == "" {
				return false
			}
		}
		return keys[queue.KeyUserRegistered] == 1 &&
			keys[queue.KeyProfileCreated] == 1 &&
			keys[queue.KeyListToggled] == 2 &&
			keys[queue.KeyProfileDeleted] == 1
	}, time.Second, 10*time.Millisecond)
}

func Test_Register_Validation_And_Conflict(t *testing.T) {
	env := newTestEnv(t)
	env.register("jane@example.com")

	w := env.do("POST", "/register", `{"email":"jane@example.com","password":"StrongP@ss1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", errorCode(t, w))

	w = env.do("POST", "/register", `{"email":"not-an-email","password":"StrongP@ss1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", errorCode(t, w))

	w = env.do("POST", "/register", `{"email":"short@example.com","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do("POST", "/register", `{"email":"long@example.com","password":"`+strings.Repeat("x", 80)+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "validation_error", errorCode(t, w))

	w = env.do("POST", "/register", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_Login(t *testing.T) {
	env := newTestEnv(t)
	env.register("john@example.com")

	w := env.do("POST", "/login", `{"email":"john@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authentication_failed", errorCode(t, w))

	w = env.do("POST", "/login", `{"email":"nobody@example.com","password":"StrongP@ss1"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do("POST", "/login", `{"email":"John@Example.com","password":"StrongP@ss1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Access string `json:"access"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Access)

	access := cookieNamed(w, session.AccessCookie)
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.NotNil(t, cookieNamed(w, session.RefreshCookie))
}

func Test_LoginGoogle_CreatesUserOnce(t *testing.T) {
	env := newTestEnv(t)
	body := `{"email":"g@example.com","firstName":"Gina","lastName":"Lee"}`

	w := env.do("POST", "/login/google", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var first struct {
		User struct {
			ID       string `json:"id"`
			Provider string `json:"provider"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, "google", first.User.Provider)

	w = env.do("POST", "/login/google", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), first.User.ID)

	w = env.do("POST", "/login/google", `{"firstName":"NoEmail"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// a federated account has no password to log in with
	w = env.do("POST", "/login", `{"email":"g@example.com","password":"anything-at-all"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Eventually(t, func() bool {
		n := 0
		for _, m := range env.Events.Messages() {
			if m.Key == queue.KeyUserRegistered {
				n++
			}
		}
		return n == 1
	}, time.Second, 10*time.Millisecond)
}

func Test_ProfileCapacity(t *testing.T) {
	env := newTestEnv(t)
	u := env.register("john@example.com")
	for i := 0; i < 4; i++ {
		env.createProfile(u, "p")
	}
	w := env.do("POST", "/profiles/"+u.ID, `{"name":"fifth"}`, u.Access)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "capacity_reached", errorCode(t, w))

	w = env.do("POST", "/profiles/"+u.ID, `{"name":""}`, u.Access)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_Toggle_Validation(t *testing.T) {
	env := newTestEnv(t)
	u := env.register("john@example.com")
	pid := env.createProfile(u, "Main")

	cases := map[string]struct {
		body string
		code int
	}{
		"missing profile":  {`{"category":"movies","item":{"_id":"m1"}}`, http.StatusBadRequest},
		"malformed id":     {`{"profileId":"xyz","category":"movies","item":{"_id":"m1"}}`, http.StatusBadRequest},
		"bad category":     {`{"profileId":"` + pid + `","category":"books","item":{"_id":"m1"}}`, http.StatusBadRequest},
		"item without id":  {`{"profileId":"` + pid + `","category":"games","item":{"title":"x"}}`, http.StatusBadRequest},
		"unknown profile":  {`{"profileId":"` + newObjectID() + `","category":"games","item":{"_id":"g1"}}`, http.StatusNotFound},
		"numeric item ids": {`{"profileId":"` + pid + `","category":"series","item":{"_id":42}}`, http.StatusOK},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := env.do("PATCH", "/profiles/"+u.ID, tc.body, u.Access)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
		})
	}

	w := env.do("GET", "/profiles/"+u.ID+"/not-an-id", "", u.Access)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_AccessGuard(t *testing.T) {
	env := newTestEnv(t)
	u := env.register("john@example.com")
	other := env.register("jane@example.com")

	w := env.do("GET", "/profiles/"+u.ID, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_absent", errorCode(t, w))

	w = env.do("GET", "/profiles/"+u.ID, "", &http.Cookie{Name: session.AccessCookie, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_invalid", errorCode(t, w))

	// a refresh token is not an access token
	w = env.do("GET", "/profiles/"+u.ID, "", &http.Cookie{Name: session.AccessCookie, Value: u.Refresh.Value})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	past := env.Tokens.WithClock(func() time.Time { return time.Now().Add(-time.Hour) })
	stale, _, err := past.IssueAccess(u.ID, "john@example.com")
	require.NoError(t, err)
	w = env.do("GET", "/profiles/"+u.ID, "", &http.Cookie{Name: session.AccessCookie, Value: stale})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_expired", errorCode(t, w))

	w = env.do("GET", "/profiles/"+u.ID, "", other.Access)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.doBearer("GET", "/profiles/"+u.ID, u.Access.Value)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", "/profiles/"+u.ID, "", env.adminCookie())
	assert.Equal(t, http.StatusOK, w.Code)
}

func Test_Refresh_And_Logout(t *testing.T) {
	env := newTestEnv(t)
	u := env.register("john@example.com")

	w := env.do("POST", "/refresh", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_absent", errorCode(t, w))

	w = env.do("POST", "/refresh", "", &http.Cookie{Name: session.RefreshCookie, Value: u.Access.Value})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_invalid", errorCode(t, w))

	w = env.do("POST", "/refresh", "", u.Refresh)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	access := cookieNamed(w, session.AccessCookie)
	require.NotNil(t, access)
	assert.Nil(t, cookieNamed(w, session.RefreshCookie), "refresh cookie must not be reissued")

	w = env.do("GET", "/profiles/"+u.ID, "", access)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do("POST", "/logout", "", u.Access, u.Refresh)
	require.Equal(t, http.StatusOK, w.Code)
	for _, name := range []string{session.AccessCookie, session.RefreshCookie} {
		c := cookieNamed(w, name)
		require.NotNil(t, c, name)
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
	}
}

func Test_Refresh_UserGone(t *testing.T) {
	env := newTestEnv(t)
	u := env.register("john@example.com")
	id, err := primitiveID(u.ID)
	require.NoError(t, err)
	env.Store.DeleteUser(env.Ctx, id)

	w := env.do("POST", "/refresh", "", u.Refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_user_gone", errorCode(t, w))
}

func Test_RateLimit(t *testing.T) {
	env := newTestEnv(t, withLimiter(api.NewMemoryLimiter(2, time.Minute)))
	body := `{"email":"nobody@example.com","password":"StrongP@ss1"}`

	assert.Equal(t, http.StatusUnauthorized, env.do("POST", "/login", body).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do("POST", "/login", body).Code)
	w := env.do("POST", "/login", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", errorCode(t, w))

	// logout is not limited
	assert.Equal(t, http.StatusOK, env.do("POST", "/logout", "").Code)
}

func Test_Healthz_And_Metrics(t *testing.T) {
	env := newTestEnv(t)
	w := env.do("GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = env.do("GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

// unreachableUsers fails id lookups while down is set.
type unreachableUsers struct {
	*memory.Store
	down atomic.Bool
}

func (u *unreachableUsers) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	if u.down.Load() {
		return nil, errors.New("connection refused")
	}
	return u.Store.FindUserByID(ctx, id)
}

func Test_OwnerGuard_StoreFailureIsInternal(t *testing.T) {
	users := &unreachableUsers{}
	env := newTestEnv(t, withUsers(func(s *memory.Store) service.UserStore {
		users.Store = s
		return users
	}))
	u := env.register("john@example.com")
	other := env.register("jane@example.com")

	users.down.Store(true)
	w := env.do("GET", "/profiles/"+u.ID, "", other.Access)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", errorCode(t, w))
	users.down.Store(false)

	// a caller whose account is gone is simply not the owner
	id, err := primitiveID(other.ID)
	require.NoError(t, err)
	env.Store.DeleteUser(env.Ctx, id)
	w = env.do("GET", "/profiles/"+u.ID, "", other.Access)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
