package router

import (
	"net/http"

	"realones/config"
	"realones/internal/handler"
	"realones/internal/middleware"
	"realones/internal/repository"
	"realones/internal/service"
	"realones/internal/ws"
	"realones/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the optional integrations built in main. Cloud and Push are nil when
// not configured.
type Deps struct {
	Cloud cloudinary.Client
	Push  service.Pusher
	Graph service.FacebookGraph
	Hub   *ws.Hub
	Log   *zap.Logger
}

func Setup(cfg *config.Config, db *gorm.DB, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	hub := deps.Hub
	if hub == nil {
		hub = ws.NewHub()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.RateLimit.Requests > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window, log))
	}

	// Repositories
	creditRepo := repository.NewCreditRepository(db)
	statusRepo := repository.NewPioneerStatusRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	streakRepo := repository.NewStreakRepository(db)
	tokenRepo := repository.NewPushTokenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	postRepo := repository.NewPostRepository(db)

	// Services
	backend := service.NewBackend(cfg.Backend.Timeout)
	notifSvc := service.NewNotificationService(notificationRepo, tokenRepo, deps.Push, backend, log)
	pioneerSvc := service.NewPioneerService(creditRepo, statusRepo, hub, notifSvc, backend, log)
	streakSvc := service.NewStreakService(streakRepo, backend)
	circleSvc := service.NewCircleService(friendRepo, streakSvc, deps.Graph, hub, backend, log)
	sessionSvc := service.NewSessionService(pioneerSvc)
	inviteSvc := service.NewInviteService(pioneerSvc, circleSvc, profileRepo, notifSvc, backend, log)
	profileSvc := service.NewProfileService(profileRepo, deps.Cloud, pioneerSvc, cfg.Cloudinary.Folder, backend, log)
	messagingSvc := service.NewMessagingService(conversationRepo, friendRepo, profileRepo, hub, backend, log)
	feedSvc := service.NewFeedService(postRepo, friendRepo, profileRepo, hub, backend, log)

	// Handlers
	pioneerHandler := handler.NewPioneerHandler(pioneerSvc, sessionSvc, inviteSvc, log)
	circleHandler := handler.NewCircleHandler(circleSvc, log)
	meHandler := handler.NewMeHandler(profileSvc, streakSvc, notifSvc, log)
	notificationHandler := handler.NewNotificationHandler(notifSvc, log)
	messagingHandler := handler.NewMessagingHandler(messagingSvc, log)
	feedHandler := handler.NewFeedHandler(feedSvc, log)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	api.Use(authMw)
	{
		api.POST("/invites/:inviter_id/accept", pioneerHandler.AcceptInvite)

		me := api.Group("/me")
		{
			me.GET("/session", pioneerHandler.Session)
			me.GET("/pioneer", pioneerHandler.Get)
			me.GET("/pioneer/credits/check", pioneerHandler.CheckCredit)
			me.POST("/pioneer/credits", pioneerHandler.EarnCredit)

			me.GET("/friends", circleHandler.List)
			me.POST("/friends", circleHandler.Add)
			me.POST("/friends/bulk-archive", circleHandler.BulkArchive)
			me.POST("/friends/bulk-activate", circleHandler.BulkActivate)
			me.POST("/friends/import/contacts", circleHandler.ImportContacts)
			me.POST("/friends/import/facebook", circleHandler.ImportFacebook)
			me.POST("/friends/import/facebook-graph", circleHandler.ImportFacebookGraph)
			me.POST("/friends/:id/archive", circleHandler.Archive)
			me.POST("/friends/:id/activate", circleHandler.Activate)
			me.PATCH("/friends/:id/tier", circleHandler.SetTier)
			me.DELETE("/friends/:id", circleHandler.Remove)
			me.GET("/circle/upgrade-quote", circleHandler.UpgradeQuote)

			me.GET("/profile", meHandler.GetProfile)
			me.PATCH("/profile", meHandler.UpdateProfile)
			me.POST("/profile/avatar", meHandler.UploadAvatar)
			me.DELETE("/profile/avatar", meHandler.RemoveAvatar)
			me.GET("/streak", meHandler.GetStreak)
			me.POST("/push-token", meHandler.RegisterPushToken)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)

			me.GET("/conversations", messagingHandler.List)
			me.POST("/conversations", messagingHandler.Create)
			me.GET("/conversations/:id/messages", messagingHandler.Messages)
			me.POST("/conversations/:id/messages", messagingHandler.Send)
			me.POST("/conversations/:id/read", messagingHandler.MarkRead)

			me.GET("/feed", feedHandler.Feed)
			me.POST("/posts", feedHandler.Create)
			me.DELETE("/posts/:id", feedHandler.Delete)
			me.PUT("/posts/:id/reaction", feedHandler.React)
			me.DELETE("/posts/:id/reaction", feedHandler.Unreact)
		}
	}

	r.GET("/ws/changes", ws.UpgradeChanges(&cfg.JWT, hub, messagingHandler.Frames, log))

	return r
}
