package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/tazhibayda/mylist-service/docs"
	"github.com/tazhibayda/mylist-service/internal/metrics"
)

// NewRouter wires every route. rl may be nil to disable rate limiting.
func NewRouter(h *Handler, rl RateLimiter) *gin.Engine {
	metrics.MustRegister()

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Trace(), Metrics(), AccessLog(h.Log))

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limited := RateLimit(rl, h.Log)
	r.POST("/login", limited, h.Login)
	r.POST("/login/google", limited, h.LoginGoogle)
	if h.Google != nil {
		r.GET("/login/google/start", h.GoogleStart)
		r.GET("/login/google/callback", limited, h.GoogleCallback)
	}
	r.POST("/register", limited, h.Register)
	r.POST("/refresh", h.Refresh)
	r.POST("/logout", h.Logout)

	p := r.Group("/profiles/:userId", RequireAccess(h.Auth, h.Log), RequireOwner(h.Auth, h.Log))
	{
		p.GET("", h.ListProfiles)
		p.POST("", h.CreateProfile)
		p.PATCH("", h.ToggleListItem)
		p.GET("/:profileId", h.GetProfile)
		p.DELETE("/:profileId", h.DeleteProfile)
	}
	return r
}
