package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openfun/ashley-sub000/internal/application/launch"
	"github.com/openfun/ashley-sub000/internal/shared/config"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
	"github.com/openfun/ashley-sub000/internal/shared/utils"
)

// LaunchHandler handles LTI basic launch requests from consumer platforms.
type LaunchHandler struct {
	launchUC *launch.ProcessLaunchUseCase
	baseURL  string
	session  config.SessionConfig
	logger   logger.Interface
}

func NewLaunchHandler(
	launchUC *launch.ProcessLaunchUseCase,
	baseURL string,
	session config.SessionConfig,
	log logger.Interface,
) *LaunchHandler {
	return &LaunchHandler{
		launchUC: launchUC,
		baseURL:  strings.TrimRight(baseURL, "/"),
		session:  session,
		logger:   log,
	}
}

// HandleForumLaunch handles POST /lti/forum/:uuid.
//
// The signature covers the exact URL the consumer posted to, so the
// launch URL is rebuilt from the configured base URL rather than from
// proxy-rewritten request headers.
func (h *LaunchHandler) HandleForumLaunch(c *gin.Context) {
	forumLTIID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		h.logger.Warnw("launch rejected: malformed forum uuid", "uuid", c.Param("uuid"))
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid LTI launch request")
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		h.logger.Warnw("launch rejected: unparseable form body", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid LTI launch request")
		return
	}

	cmd := launch.ProcessLaunchCommand{
		Method:     c.Request.Method,
		URL:        h.baseURL + c.Request.URL.Path,
		Params:     c.Request.PostForm,
		ForumLTIID: forumLTIID,
	}

	result, err := h.launchUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	maxAge := h.session.ExpMinutes * 60
	utils.SetSessionCookie(c, h.session.Cookie, result.SessionToken, maxAge)
	if _, err := utils.SetCSRFCookie(c, h.session.Cookie, maxAge); err != nil {
		h.logger.Errorw("failed to issue CSRF token", "error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "internal error")
		return
	}
	if result.Locale != "" {
		c.SetSameSite(http.SameSiteNoneMode)
		c.SetCookie(h.session.LanguageCookie, result.Locale, maxAge, h.session.Cookie.Path, h.session.Cookie.Domain, h.session.Cookie.Secure, false)
	}

	c.Redirect(http.StatusFound, result.RedirectURL)
}
