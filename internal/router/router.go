package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/rajbhoyar729/LokDarpan/internal/handler"
	"github.com/rajbhoyar729/LokDarpan/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Channel *handler.ChannelHandler
	Video   *handler.VideoHandler
	Comment *handler.CommentHandler
	Stats   *handler.StatsHandler
	Health  *handler.HealthHandler
	Metrics *handler.Metrics
}

// Options carries the request-independent settings of the router.
type Options struct {
	APIPrefix   string
	CORSOrigins string
	Tokens      middleware.TokenVerifier
	Logger      zerolog.Logger
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, opts Options) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(requestid.New())
	app.Use(middleware.NewRequestLogger(opts.Logger))
	if h.Metrics != nil {
		app.Use(h.Metrics.Middleware())
	}
	app.Use(middleware.NewCORS(opts.CORSOrigins))

	if h.Metrics != nil {
		app.Get("/metrics", h.Metrics.Handler())
	}

	requireAuth := middleware.RequireAuth(opts.Tokens)
	optionalAuth := middleware.OptionalAuth(opts.Tokens)

	authLimit := middleware.NewAuthRateLimiter().Handler()
	readLimit := middleware.NewReadRateLimiter().Handler()
	writeLimit := middleware.NewWriteRateLimiter().Handler()
	uploadLimit := middleware.NewUploadRateLimiter().Handler()
	statsLimit := middleware.NewStatsRateLimiter().Handler()

	api := app.Group(opts.APIPrefix)

	// Health routes
	api.Get("/health", h.Health.Ready)
	api.Get("/health/live", h.Health.Live)
	api.Get("/health/ready", h.Health.Ready)

	// Auth routes
	api.Post("/auth/signup", authLimit, h.Auth.Signup)
	api.Post("/auth/login", authLimit, h.Auth.Login)

	// User routes
	api.Get("/user/me", requireAuth, h.Auth.Me)
	api.Get("/user/subscriptions", requireAuth, h.User.Subscriptions)
	api.Put("/user/:channelId/subscribe", requireAuth, writeLimit, h.User.Subscribe)
	api.Put("/user/:channelId/unsubscribe", requireAuth, writeLimit, h.User.Unsubscribe)

	// Channel routes
	api.Post("/channel", requireAuth, uploadLimit, h.Channel.Create)
	api.Get("/channel/me", requireAuth, h.Channel.Mine)
	api.Get("/channel/:channelId", readLimit, h.Channel.Get)
	api.Get("/channel/:channelId/videos", readLimit, h.Channel.Videos)

	// Video feeds, static paths before :videoId
	api.Get("/video", readLimit, h.Video.List)
	api.Get("/video/trending", readLimit, h.Video.Trending)
	api.Get("/video/shorts", readLimit, h.Video.Shorts)
	api.Get("/video/search", readLimit, h.Video.Search)
	api.Get("/video/subscriptions", requireAuth, readLimit, h.Video.SubscriptionFeed)
	api.Get("/video/liked", requireAuth, readLimit, h.Video.Liked)

	// Video uploads
	api.Post("/video/upload", requireAuth, uploadLimit, h.Video.Upload)
	api.Post("/video/initiate-upload", requireAuth, uploadLimit, h.Video.InitiateUpload)
	api.Post("/video/:videoId/complete-upload", requireAuth, writeLimit, h.Video.CompleteUpload)

	// Single video
	api.Get("/video/:videoId", optionalAuth, readLimit, h.Video.Get)
	api.Post("/video/:videoId/view", optionalAuth, readLimit, h.Video.View)
	api.Put("/video/:videoId", requireAuth, writeLimit, h.Video.Update)
	api.Delete("/video/:videoId", requireAuth, writeLimit, h.Video.Delete)
	api.Put("/video/:videoId/like", requireAuth, writeLimit, h.Video.Like)
	api.Put("/video/:videoId/dislike", requireAuth, writeLimit, h.Video.Dislike)

	// Comment routes
	api.Get("/comment/:videoId/comments", readLimit, h.Comment.List)
	api.Post("/comment/:videoId/comments", requireAuth, writeLimit, h.Comment.Create)
	api.Put("/comment/:commentId", requireAuth, writeLimit, h.Comment.Update)
	api.Delete("/comment/:commentId", requireAuth, writeLimit, h.Comment.Delete)

	// Stats routes
	api.Get("/stats", statsLimit, h.Stats.GetStats)
}
