package handlers

import (
	"net/http"

	"github.com/devzoku/devzoku-api/internal/middleware"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// RouterConfig holds everything the router mounts. Sessions and Realtime
// are optional.
type RouterConfig struct {
	Teams         *TeamHandler
	Hackathons    *HackathonHandler
	Notifications *NotificationHandler
	Auth          *middleware.Authenticator
	Sessions      gin.HandlerFunc
	Database      Pinger
	Realtime      http.Handler
	Logger        *zap.Logger
}

// NewRouter builds the gin engine with every route of the API
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogger(cfg.Logger))
	}
	if cfg.Sessions != nil {
		r.Use(cfg.Sessions)
	}
	r.NoRoute(notFoundRoute)

	r.GET("/health", Health(cfg.Database))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Realtime != nil {
		r.GET("/socket.io/*any", gin.WrapH(cfg.Realtime))
		r.POST("/socket.io/*any", gin.WrapH(cfg.Realtime))
	}

	auth := cfg.Auth
	developerOnly := []gin.HandlerFunc{auth.RequireAuth(), middleware.RequireRole(models.RoleDeveloper)}
	organizerOnly := []gin.HandlerFunc{auth.RequireAuth(), middleware.RequireRole(models.RoleOrganizer)}

	// Team routes (developers)
	team := r.Group("/team", developerOnly...)
	{
		team.POST("/create-team", cfg.Teams.CreateTeam)
		team.GET("/check-teamName-unique", cfg.Teams.CheckTeamName)
		team.GET("/joined-teams", cfg.Teams.JoinedTeams)
		team.GET("/view-all-teams", cfg.Teams.ViewTeams)
		team.GET("/view-all-teams/:id", cfg.Teams.ViewTeams)
		team.POST("/send-invitation", cfg.Teams.SendInvitation)
		team.POST("/fetch-invites-and-accept/:teamId", cfg.Teams.FetchInvitesOrAccept)
		team.POST("/reject-invite/:teamId", cfg.Teams.RejectInvite)
		team.DELETE("/leave-team", cfg.Teams.LeaveTeam)
	}

	// Hackathon routes
	hackathon := r.Group("/hackathon")
	{
		hackathon.GET("/view-all-hackathons", cfg.Hackathons.ViewAllHackathons)
		hackathon.GET("/view-all-hackathons-auth", auth.RequireAuth(), cfg.Hackathons.ViewAllHackathons)
		hackathon.GET("/hackathon/:id", cfg.Hackathons.ViewHackathon)
		hackathon.GET("/hackathon-auth/:id", auth.RequireAuth(), cfg.Hackathons.ViewHackathon)

		hackathon.POST("/apply-to-hackathon", append(developerOnly, cfg.Hackathons.ApplyToHackathon)...)
		hackathon.POST("/create-hackathon", append(organizerOnly, cfg.Hackathons.CreateHackathon)...)
		hackathon.POST("/mark-winners", append(organizerOnly, cfg.Hackathons.MarkWinners)...)
	}

	// Notification routes (developers)
	notifications := r.Group("/notifications", developerOnly...)
	{
		notifications.GET("", cfg.Notifications.ListNotifications)
		notifications.DELETE("/:id", cfg.Notifications.DeleteNotification)
	}

	return r
}

// WithCORS wraps the router for browser clients on the allowed origins
func WithCORS(h http.Handler, allowedOrigins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(h)
}
