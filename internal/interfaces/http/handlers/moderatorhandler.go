package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appForum "github.com/openfun/ashley-sub000/internal/application/forum"
	"github.com/openfun/ashley-sub000/internal/interfaces/http/middleware"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
	"github.com/openfun/ashley-sub000/internal/shared/utils"
)

// ModeratorHandler manages the moderator group of the session context.
type ModeratorHandler struct {
	moderators *appForum.ModeratorService
	logger     logger.Interface
}

func NewModeratorHandler(moderators *appForum.ModeratorService, log logger.Interface) *ModeratorHandler {
	return &ModeratorHandler{
		moderators: moderators,
		logger:     log,
	}
}

type PromoteModeratorRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// ListModerators handles GET /api/forums/:id/moderators
func (h *ModeratorHandler) ListModerators(c *gin.Context) {
	principal, forumID, ok := h.require(c)
	if !ok {
		return
	}

	userIDs, err := h.moderators.List(c.Request.Context(), appForum.ManageModeratorCommand{
		ForumID:   forumID,
		UserID:    principal.UserID,
		ContextID: principal.LTIContextID,
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"user_ids": userIDs})
}

// PromoteModerator handles POST /api/forums/:id/moderators
func (h *ModeratorHandler) PromoteModerator(c *gin.Context) {
	principal, forumID, ok := h.require(c)
	if !ok {
		return
	}

	var req PromoteModeratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid promote moderator request body", "error", err)
		utils.HandleAppError(c, errors.NewValidationError("user_id is required"))
		return
	}

	err := h.moderators.Promote(c.Request.Context(), appForum.ManageModeratorCommand{
		ForumID:      forumID,
		UserID:       principal.UserID,
		ContextID:    principal.LTIContextID,
		TargetUserID: req.UserID,
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "moderator promoted", nil)
}

// RevokeModerator handles DELETE /api/forums/:id/moderators/:userID
func (h *ModeratorHandler) RevokeModerator(c *gin.Context) {
	principal, forumID, ok := h.require(c)
	if !ok {
		return
	}

	targetID, err := ParseUintParam(c, "userID")
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	err = h.moderators.Revoke(c.Request.Context(), appForum.ManageModeratorCommand{
		ForumID:      forumID,
		UserID:       principal.UserID,
		ContextID:    principal.LTIContextID,
		TargetUserID: targetID,
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "moderator revoked", nil)
}

func (h *ModeratorHandler) require(c *gin.Context) (middleware.Principal, uint, bool) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "missing session")
		return middleware.Principal{}, 0, false
	}

	forumID, err := ParseUintParam(c, "id")
	if err != nil {
		utils.HandleAppError(c, err)
		return middleware.Principal{}, 0, false
	}

	return principal, forumID, true
}
