package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appForum "github.com/openfun/ashley-sub000/internal/application/forum"
	"github.com/openfun/ashley-sub000/internal/interfaces/http/middleware"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
	"github.com/openfun/ashley-sub000/internal/shared/utils"
)

// ConversationHandler serves topic and post operations inside a forum.
type ConversationHandler struct {
	conversations  *appForum.ConversationService
	languageCookie string
	logger         logger.Interface
}

func NewConversationHandler(conversations *appForum.ConversationService, languageCookie string, log logger.Interface) *ConversationHandler {
	return &ConversationHandler{
		conversations:  conversations,
		languageCookie: languageCookie,
		logger:         log,
	}
}

type CreateTopicRequest struct {
	Subject string `json:"subject" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type PostContentRequest struct {
	Content string `json:"content" binding:"required"`
}

// ViewForum handles GET /api/forums/:id
func (h *ConversationHandler) ViewForum(c *gin.Context) {
	principal, forumID, ok := h.requireParam(c, "id")
	if !ok {
		return
	}

	page, err := h.conversations.ViewForum(c.Request.Context(), appForum.ViewForumQuery{
		ForumID:     forumID,
		UserID:      principal.UserID,
		IsSuperuser: principal.IsSuperuser,
		ContextID:   principal.LTIContextID,
		Locale:      h.locale(c),
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", ToForumPageResponse(page))
}

// CreateTopic handles POST /api/forums/:id/topics
func (h *ConversationHandler) CreateTopic(c *gin.Context) {
	principal, forumID, ok := h.requireParam(c, "id")
	if !ok {
		return
	}

	var req CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid create topic request body", "error", err)
		utils.HandleAppError(c, errors.NewValidationError("subject and content are required"))
		return
	}

	topic, err := h.conversations.CreateTopic(c.Request.Context(), appForum.CreateTopicCommand{
		ForumID:   forumID,
		UserID:    principal.UserID,
		ContextID: principal.LTIContextID,
		Subject:   req.Subject,
		Content:   req.Content,
		Locale:    h.locale(c),
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "topic created", ToTopicResponse(topic))
}

// ViewTopic handles GET /api/topics/:id
func (h *ConversationHandler) ViewTopic(c *gin.Context) {
	principal, topicID, ok := h.requireParam(c, "id")
	if !ok {
		return
	}

	page, err := h.conversations.ViewTopic(c.Request.Context(), appForum.ViewTopicQuery{
		TopicID:     topicID,
		UserID:      principal.UserID,
		IsSuperuser: principal.IsSuperuser,
		ContextID:   principal.LTIContextID,
		Locale:      h.locale(c),
		Page:        pageNumber(c),
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", ToTopicPageResponse(page))
}

// Reply handles POST /api/topics/:id/posts
func (h *ConversationHandler) Reply(c *gin.Context) {
	principal, topicID, ok := h.requireParam(c, "id")
	if !ok {
		return
	}

	var req PostContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid reply request body", "error", err)
		utils.HandleAppError(c, errors.NewValidationError("content is required"))
		return
	}

	post, err := h.conversations.Reply(c.Request.Context(), appForum.ReplyCommand{
		TopicID:   topicID,
		UserID:    principal.UserID,
		ContextID: principal.LTIContextID,
		Content:   req.Content,
		Locale:    h.locale(c),
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "reply posted", ToPostResponse(post))
}

// UpdatePost handles PATCH /api/posts/:id
func (h *ConversationHandler) UpdatePost(c *gin.Context) {
	principal, postID, ok := h.requireParam(c, "id")
	if !ok {
		return
	}

	var req PostContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid update post request body", "error", err)
		utils.HandleAppError(c, errors.NewValidationError("content is required"))
		return
	}

	post, err := h.conversations.UpdatePost(c.Request.Context(), appForum.UpdatePostCommand{
		PostID:    postID,
		UserID:    principal.UserID,
		ContextID: principal.LTIContextID,
		Content:   req.Content,
		Locale:    h.locale(c),
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "post updated", ToPostResponse(post))
}

// LockTopic handles POST /api/topics/:id/lock
func (h *ConversationHandler) LockTopic(c *gin.Context) {
	principal, topicID, ok := h.requireParam(c, "id")
	if !ok {
		return
	}

	err := h.conversations.LockTopic(c.Request.Context(), appForum.LockTopicCommand{
		TopicID:   topicID,
		UserID:    principal.UserID,
		ContextID: principal.LTIContextID,
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "topic locked", nil)
}

func (h *ConversationHandler) requireParam(c *gin.Context, name string) (middleware.Principal, uint, bool) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "missing session")
		return middleware.Principal{}, 0, false
	}

	id, err := ParseUintParam(c, name)
	if err != nil {
		utils.HandleAppError(c, err)
		return middleware.Principal{}, 0, false
	}

	return principal, id, true
}

func (h *ConversationHandler) locale(c *gin.Context) string {
	return utils.GetTokenFromCookie(c, h.languageCookie)
}

// pageNumber reads the ?page= query the frontend paginates with.
func pageNumber(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
