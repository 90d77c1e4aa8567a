package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tazhibayda/mylist-service/internal/apperror"
	"github.com/tazhibayda/mylist-service/internal/domain"
	"github.com/tazhibayda/mylist-service/internal/oauth"
	"github.com/tazhibayda/mylist-service/internal/queue"
	"github.com/tazhibayda/mylist-service/internal/service"
	"github.com/tazhibayda/mylist-service/internal/session"
)

const oauthStateCookie = "oauth_state"

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Auth     *service.AuthService
	Profiles *service.ProfileService
	Lists    *service.ListToggler
	Sessions *session.Propagator
	Events   queue.Publisher
	Exchange string
	Google   *oauth.GoogleOAuth // nil when Google sign-in is not configured
	Health   []Pinger
	Log      *zap.Logger
}

func NewHandler(auth *service.AuthService, profiles *service.ProfileService, lists *service.ListToggler,
	sessions *session.Propagator, pub queue.Publisher, exchange string, logger *zap.Logger) *Handler {
	if pub == nil {
		pub = queue.NewNoop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Auth:     auth,
		Profiles: profiles,
		Lists:    lists,
		Sessions: sessions,
		Events:   pub,
		Exchange: exchange,
		Log:      logger,
	}
}

type authResp struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
	Access  string       `json:"access"`
}

type messageResp struct {
	Message string `json:"message"`
}

type loginReq struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "credentials"
// @Success 200 {object} authResp
// @Failure 400 {object} errorResp
// @Failure 401 {object} errorResp
// @Router /login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, h.Log, bindError(err))
		return
	}
	s, err := h.Auth.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		abortWithError(c, h.Log, err)
		return
	}
	h.Sessions.Attach(c.Writer, s.Tokens)
	h.publish(c, queue.KeyUserLoggedIn, queue.UserLoggedIn{UserID: s.User.ID, Method: "password"})
	c.JSON(http.StatusOK, authResp{Message: "Logged in successfully", User: s.User, Access: s.Tokens.Access})
}

type googleLoginReq struct {
	Credential string `json:"credential"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Avatar     string `json:"avatar"`
}

// LoginGoogle godoc
// @Summary Log in with a Google identity
// @Description With Google configured the body must carry a Google id_token in "credential";
// @Description otherwise the asserted profile fields are trusted as given.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body googleLoginReq true "identity"
// @Success 200 {object} authResp
// @Failure 400 {object} errorResp
// @Failure 401 {object} errorResp
// @Router /login/google [post]
func (h *Handler) LoginGoogle(c *gin.Context) {
	var in googleLoginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, h.Log, bindError(err))
		return
	}
	fp := service.FederatedProfile{Email: in.Email, FirstName: in.FirstName, LastName: in.LastName, Avatar: in.Avatar}
	if h.Google != nil {
		if in.Credential == "" {
			abortWithError(c, h.Log, apperror.ValidationFailed("credential", "credential is required"))
			return
		}
		gu, err := h.Google.VerifyIDToken(c.Request.Context(), in.Credential)
		if err != nil {
			h.Log.Info("google id_token rejected", zap.Error(err))
			abortWithError(c, h.Log, apperror.Authentication(apperror.ReasonInvalid))
			return
		}
		fp = federated(gu)
	}
	h.completeFederated(c, fp)
}

// GoogleStart godoc
// @Summary Start the Google authorization code flow
// @Tags auth
// @Success 302
// @Router /login/google/start [get]
func (h *Handler) GoogleStart(c *gin.Context) {
	state, err := h.Google.NewState()
	if err != nil {
		abortWithError(c, h.Log, err)
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/login/google",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.Sessions.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Redirect(http.StatusFound, h.Google.AuthURL(state))
}

// GoogleCallback godoc
// @Summary Complete the Google authorization code flow
// @Tags auth
// @Produce json
// @Param state query string true "state"
// @Param code query string true "authorization code"
// @Success 200 {object} authResp
// @Failure 400 {object} errorResp
// @Failure 401 {object} errorResp
// @Router /login/google/callback [get]
func (h *Handler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	cookie, _ := c.Cookie(oauthStateCookie)
	if state == "" || state != cookie || !h.Google.VerifyState(state) {
		abortWithError(c, h.Log, apperror.ValidationFailed("state", "invalid oauth state"))
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{Name: oauthStateCookie, Path: "/login/google", MaxAge: -1})

	code := c.Query("code")
	if code == "" {
		abortWithError(c, h.Log, apperror.ValidationFailed("code", "code is required"))
		return
	}
	gu, err := h.Google.ExchangeAndVerify(c.Request.Context(), code)
	if err != nil {
		h.Log.Info("google code exchange failed", zap.Error(err))
		abortWithError(c, h.Log, apperror.Authentication(apperror.ReasonInvalid))
		return
	}
	h.completeFederated(c, federated(gu))
}

func federated(gu *oauth.GoogleUser) service.FederatedProfile {
	return service.FederatedProfile{Email: gu.Email, FirstName: gu.GivenName, LastName: gu.FamilyName, Avatar: gu.Picture}
}

func (h *Handler) completeFederated(c *gin.Context, fp service.FederatedProfile) {
	s, created, err := h.Auth.LoginFederated(c.Request.Context(), fp)
	if err != nil {
		abortWithError(c, h.Log, err)
		return
	}
	h.Sessions.Attach(c.Writer, s.Tokens)
	if created {
		h.publish(c, queue.KeyUserRegistered, queue.UserRegistered{UserID: s.User.ID, Email: s.User.Email, Provider: string(s.User.Provider)})
	}
	h.publish(c, queue.KeyUserLoggedIn, queue.UserLoggedIn{UserID: s.User.ID, Method: "google"})
	c.JSON(http.StatusOK, authResp{Message: "Logged in with Google", User: s.User, Access: s.Tokens.Access})
}

type registerReq struct {
	Email     string `json:"email"     binding:"required,email"`
	Password  string `json:"password"  binding:"required,min=8,max=72"`
	FirstName string `json:"firstName" binding:"max=60"`
	LastName  string `json:"lastName"  binding:"max=60"`
	Avatar    string `json:"avatar"    binding:"omitempty,url"`
}

// Register godoc
// @Summary Register a local account
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerReq true "register"
// @Success 201 {object} authResp
// @Failure 400 {object} errorResp
// @Failure 409 {object} errorResp
// @Router /register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, h.Log, bindError(err))
		return
	}
	s, err := h.Auth.Register(c.Request.Context(), service.RegisterInput{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Avatar:    in.Avatar,
	})
	if err != nil {
		abortWithError(c, h.Log, err)
		return
	}
	h.Sessions.Attach(c.Writer, s.Tokens)
	h.publish(c, queue.KeyUserRegistered, queue.UserRegistered{UserID: s.User.ID, Email: s.User.Email, Provider: string(s.User.Provider)})
	c.JSON(http.StatusCreated, authResp{Message: "User registered successfully", User: s.User, Access: s.Tokens.Access})
}

type refreshResp struct {
	Access string `json:"access"`
}

// Refresh godoc
// @Summary Mint a new access token from the refresh cookie
// @Tags auth
// @Produce json
// @Success 200 {object} refreshResp
// @Failure 401 {object} errorResp
// @Router /refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	tok := session.Token(c.Request, session.RefreshCookie)
	access, ttl, err := h.Auth.RotateAccess(c.Request.Context(), tok)
	if err != nil {
		abortWithError(c, h.Log, err)
		return
	}
	h.Sessions.AttachAccess(c.Writer, access, ttl)
	c.JSON(http.StatusOK, refreshResp{Access: access})
}

// Logout godoc
// @Summary Clear session cookies
// @Tags auth
// @Produce json
// @Success 200 {object} messageResp
// @Router /logout [post]
func (h *Handler) Logout(c *gin.Context) {
	h.Sessions.Clear(c.Writer)
	c.JSON(http.StatusOK, messageResp{Message: "Logged out"})
}

// Healthz godoc
// @Summary Liveness and dependency check
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	for _, p := range h.Health {
		if err := p.Ping(ctx); err != nil {
			h.Log.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// publish emits an event without holding up the response. Failures are logged only.
func (h *Handler) publish(c *gin.Context, key string, event any) {
	ctx := context.WithoutCancel(c.Request.Context())
	reqID := c.GetString(requestIDKey)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		WithSpan(ctx, "events.publish", func(ctx context.Context) {
			if err := h.Events.Publish(ctx, h.Exchange, key, event, reqID); err != nil {
				h.Log.Warn("publish event failed", zap.String("key", key), zap.Error(err))
			}
		})
	}()
}
