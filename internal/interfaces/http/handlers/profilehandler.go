package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appUser "github.com/openfun/ashley-sub000/internal/application/user"
	"github.com/openfun/ashley-sub000/internal/interfaces/http/middleware"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
	"github.com/openfun/ashley-sub000/internal/shared/utils"
)

// ProfileHandler serves the one-time public username registration.
type ProfileHandler struct {
	setUsernameUC *appUser.SetPublicUsernameUseCase
	logger        logger.Interface
}

func NewProfileHandler(setUsernameUC *appUser.SetPublicUsernameUseCase, log logger.Interface) *ProfileHandler {
	return &ProfileHandler{
		setUsernameUC: setUsernameUC,
		logger:        log,
	}
}

type SetPublicUsernameRequest struct {
	PublicUsername string `json:"public_username" binding:"required"`
}

type ProfileResponse struct {
	UserID         uint   `json:"user_id"`
	PublicUsername string `json:"public_username"`
}

// SetPublicUsername handles POST /api/profile/username
func (h *ProfileHandler) SetPublicUsername(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "missing session")
		return
	}

	var req SetPublicUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid set username request body", "error", err)
		utils.HandleAppError(c, errors.NewValidationError("public_username is required"))
		return
	}

	u, err := h.setUsernameUC.Execute(c.Request.Context(), appUser.SetPublicUsernameCommand{
		UserID:   principal.UserID,
		Username: req.PublicUsername,
	})
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "public username registered", ProfileResponse{
		UserID:         u.ID(),
		PublicUsername: u.PublicUsername(),
	})
}
