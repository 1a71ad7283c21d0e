package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openfun/ashley-sub000/internal/interfaces/http/middleware"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	engine    *gin.Engine
	container *Container
	logger    logger.Interface
}

func NewRouter(container *Container, log logger.Interface) *Router {
	return &Router{
		engine:    gin.New(),
		container: container,
		logger:    log,
	}
}

// SetupRoutes registers all routes. Launch endpoints stay outside the
// session group: they are the entry points that create the session.
//
// Everything under /api is a JSON API consumed by the frontend, which
// owns the user-facing pages (/forum/forum/{slug}-{id}/, /topic pages
// under it, /profile/username) and maps them onto these endpoints. The
// launch handler redirects to those frontend paths, not to /api.
func (r *Router) SetupRoutes() {
	r.engine.Use(
		middleware.Recovery(),
		middleware.Logger(r.logger),
		middleware.CSRF(),
	)

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	lti := r.engine.Group("/lti")
	{
		lti.POST("/forum/:uuid", r.container.LaunchHandler.HandleForumLaunch)
	}

	api := r.engine.Group("/api")
	api.Use(r.container.SessionMiddleware.RequireSession())
	{
		api.GET("/forums", r.container.ForumHandler.ListForums)
		api.GET("/forums/:id", r.container.ConversationHandler.ViewForum)
		api.POST("/forums/:id/rename", r.container.ForumHandler.RenameForum)
		api.POST("/forums/:id/archive", r.container.ForumHandler.ArchiveForum)
		api.POST("/forums/:id/lock-course", r.container.ForumHandler.LockCourse)
		api.POST("/forums/:id/unlock-course", r.container.ForumHandler.UnlockCourse)

		api.POST("/forums/:id/topics", r.container.ConversationHandler.CreateTopic)
		api.GET("/topics/:id", r.container.ConversationHandler.ViewTopic)
		api.POST("/topics/:id/posts", r.container.ConversationHandler.Reply)
		api.POST("/topics/:id/lock", r.container.ConversationHandler.LockTopic)
		api.PATCH("/posts/:id", r.container.ConversationHandler.UpdatePost)

		api.GET("/forums/:id/moderators", r.container.ModeratorHandler.ListModerators)
		api.POST("/forums/:id/moderators", r.container.ModeratorHandler.PromoteModerator)
		api.DELETE("/forums/:id/moderators/:userID", r.container.ModeratorHandler.RevokeModerator)

		api.POST("/profile/username", r.container.ProfileHandler.SetPublicUsername)
	}
}

// GetEngine returns the underlying gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
