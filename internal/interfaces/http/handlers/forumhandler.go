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

// ForumHandler serves forum listing and the course-admin operations.
type ForumHandler struct {
	listUC    *appForum.ListReadableForumsUseCase
	renameUC  *appForum.RenameForumUseCase
	archiveUC *appForum.ArchiveForumUseCase
	lockUC    *appForum.LockCourseUseCase
	unlockUC  *appForum.UnlockCourseUseCase
	logger    logger.Interface
}

func NewForumHandler(
	listUC *appForum.ListReadableForumsUseCase,
	renameUC *appForum.RenameForumUseCase,
	archiveUC *appForum.ArchiveForumUseCase,
	lockUC *appForum.LockCourseUseCase,
	unlockUC *appForum.UnlockCourseUseCase,
	log logger.Interface,
) *ForumHandler {
	return &ForumHandler{
		listUC:    listUC,
		renameUC:  renameUC,
		archiveUC: archiveUC,
		lockUC:    lockUC,
		unlockUC:  unlockUC,
		logger:    log,
	}
}

type RenameForumRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListForums handles GET /api/forums
func (h *ForumHandler) ListForums(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "missing session")
		return
	}

	forums, err := h.listUC.Execute(c.Request.Context(), appForum.ListReadableForumsQuery{
		UserID:      principal.UserID,
		IsSuperuser: principal.IsSuperuser,
		ContextID:   principal.LTIContextID,
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	responses := make([]ForumResponse, 0, len(forums))
	for _, f := range forums {
		responses = append(responses, ToForumResponse(f))
	}
	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// RenameForum handles POST /api/forums/:id/rename
func (h *ForumHandler) RenameForum(c *gin.Context) {
	principal, forumID, ok := h.requireForum(c)
	if !ok {
		return
	}

	var req RenameForumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid rename request body", "error", err)
		utils.HandleAppError(c, errors.NewValidationError("name is required"))
		return
	}

	f, err := h.renameUC.Execute(c.Request.Context(), appForum.RenameForumCommand{
		ForumID:   forumID,
		UserID:    principal.UserID,
		ContextID: principal.LTIContextID,
		Name:      req.Name,
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "forum renamed", ToForumResponse(f))
}

// ArchiveForum handles POST /api/forums/:id/archive
func (h *ForumHandler) ArchiveForum(c *gin.Context) {
	principal, forumID, ok := h.requireForum(c)
	if !ok {
		return
	}

	err := h.archiveUC.Execute(c.Request.Context(), appForum.ArchiveForumCommand{
		ForumID:   forumID,
		UserID:    principal.UserID,
		ContextID: principal.LTIContextID,
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "forum archived", nil)
}

// LockCourse handles POST /api/forums/:id/lock-course
func (h *ForumHandler) LockCourse(c *gin.Context) {
	principal, forumID, ok := h.requireForum(c)
	if !ok {
		return
	}

	err := h.lockUC.Execute(c.Request.Context(), appForum.LockCourseCommand{
		ForumID:   forumID,
		UserID:    principal.UserID,
		ContextID: principal.LTIContextID,
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "course locked", nil)
}

// UnlockCourse handles POST /api/forums/:id/unlock-course
func (h *ForumHandler) UnlockCourse(c *gin.Context) {
	principal, forumID, ok := h.requireForum(c)
	if !ok {
		return
	}

	err := h.unlockUC.Execute(c.Request.Context(), appForum.UnlockCourseCommand{
		ForumID:   forumID,
		UserID:    principal.UserID,
		ContextID: principal.LTIContextID,
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "course unlocked", nil)
}

func (h *ForumHandler) requireForum(c *gin.Context) (middleware.Principal, uint, bool) {
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

// ParseUintParam parses a numeric path parameter.
func ParseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || value == 0 {
		return 0, errors.NewValidationError("invalid " + name)
	}
	return uint(value), nil
}
