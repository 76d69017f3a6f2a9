package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"absensi/internal/auth"
	"absensi/internal/httpmiddleware"
)

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	RateLimitPerMin int
}

// NewRouter wires every endpoint onto a gin engine.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.CORS())
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.CountRequests())
	r.Use(httpmiddleware.NewTokenBucket(opts.RateLimitPerMin, opts.RateLimitPerMin).Middleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.Healthz)

	v1 := r.Group("/v1", h.Refresh)
	{
		v1.POST("/users", h.Register)
		v1.GET("/users/:id", h.GetUser)
		v1.GET("/users/:id/qr.png", h.UserQR)

		v1.POST("/session", h.Login)

		v1.GET("/reports/attendance", h.AttendanceReport)
		v1.GET("/reports/classes", h.Classes)
	}

	authed := r.Group("/v1", h.Refresh, auth.SessionAuth(h.tokens.SigningKey, h.tokens.Issuer, h.state))
	{
		authed.GET("/session", h.Session)
		authed.DELETE("/session", h.Logout)

		authed.POST("/checkins", h.CheckIn)
		authed.GET("/me/attendance", h.MyAttendance)

		authed.POST("/agendas", h.AddAgenda)
		authed.GET("/me/agendas", h.MyAgendas)
	}

	return r
}
