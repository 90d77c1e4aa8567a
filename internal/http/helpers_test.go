package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/mylist-service/internal/domain"
	api "github.com/tazhibayda/mylist-service/internal/http"
	"github.com/tazhibayda/mylist-service/internal/queue"
	"github.com/tazhibayda/mylist-service/internal/repo/memory"
	"github.com/tazhibayda/mylist-service/internal/security"
	"github.com/tazhibayda/mylist-service/internal/service"
	"github.com/tazhibayda/mylist-service/internal/session"
)

const testExchange = "mylist.test"

type testEnv struct {
	T       *testing.T
	Ctx     context.Context
	Store   *memory.Store
	Tokens  *security.TokenManager
	Events  *queue.Recorder
	Handler *api.Handler
	Router  *gin.Engine
}

type envConfig struct {
	limiter api.RateLimiter
	users   func(*memory.Store) service.UserStore
}

type envOption func(*envConfig)

func withLimiter(rl api.RateLimiter) envOption {
	return func(c *envConfig) { c.limiter = rl }
}

// withUsers puts wrap in front of the store for account lookups.
func withUsers(wrap func(*memory.Store) service.UserStore) envOption {
	return func(c *envConfig) { c.users = wrap }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var cfg envConfig
	for _, o := range opts {
		o(&cfg)
	}

	store := memory.NewStore()
	var users service.UserStore = store
	if cfg.users != nil {
		users = cfg.users(store)
	}
	tokens, err := security.NewTokenManager(security.TokenConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     10 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	})
	require.NoError(t, err)

	rec := &queue.Recorder{}
	auth := service.NewAuthService(users, security.NewPasswordHasher(4), tokens, nil)
	profiles := service.NewProfileService(store, domain.MaxProfiles, nil)
	lists := service.NewListToggler(store, service.DefaultToggleAttempts, nil)

	h := api.NewHandler(auth, profiles, lists, session.NewPropagator(false), rec, testExchange, nil)
	h.Health = []api.Pinger{store}

	return &testEnv{
		T:       t,
		Ctx:     context.Background(),
		Store:   store,
		Tokens:  tokens,
		Events:  rec,
		Handler: h,
		Router:  api.NewRouter(h, cfg.limiter),
	}
}

func (e *testEnv) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	e.T.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

type registered struct {
	ID      string
	Access  *http.Cookie
	Refresh *http.Cookie
}

func (e *testEnv) register(email string) registered {
	e.T.Helper()
	w := e.do("POST", "/register", `{"email":"`+email+`","password":"StrongP@ss1","firstName":"John","lastName":"Doe"}`)
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(e.T, json.Unmarshal(w.Body.Bytes(), &resp))
	r := registered{ID: resp.User.ID}
	r.Access = cookieNamed(w, session.AccessCookie)
	r.Refresh = cookieNamed(w, session.RefreshCookie)
	require.NotNil(e.T, r.Access)
	require.NotNil(e.T, r.Refresh)
	return r
}

func (e *testEnv) createProfile(r registered, name string) string {
	e.T.Helper()
	w := e.do("POST", "/profiles/"+r.ID, `{"name":"`+name+`"}`, r.Access)
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())
	var p struct {
		ID string `json:"_id"`
	}
	require.NoError(e.T, json.Unmarshal(w.Body.Bytes(), &p))
	return p.ID
}

func (e *testEnv) adminCookie() *http.Cookie {
	e.T.Helper()
	admin := &domain.User{Email: "admin@example.com", Role: domain.RoleAdmin, Provider: domain.ProviderLocal}
	require.NoError(e.T, e.Store.CreateUser(e.Ctx, admin))
	pair, err := e.Tokens.IssuePair(admin.ID.Hex(), admin.Email)
	require.NoError(e.T, err)
	return &http.Cookie{Name: session.AccessCookie, Value: pair.Access}
}

func (e *testEnv) doBearer(method, path, token string) *httptest.ResponseRecorder {
	e.T.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	e.Router.ServeHTTP(w, req)
	return w
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Error
}

func newObjectID() string { return primitive.NewObjectID().Hex() }

func primitiveID(hex string) (primitive.ObjectID, error) { return primitive.ObjectIDFromHex(hex) }
