package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openfun/ashley-sub000/internal/domain/user"
	"github.com/openfun/ashley-sub000/internal/infrastructure/auth"
	"github.com/openfun/ashley-sub000/internal/shared/constants"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
	"github.com/openfun/ashley-sub000/internal/shared/utils"
)

// Principal is the authenticated identity a launch session resolves to.
// Every permission check downstream is scoped to LTIContextID: the only
// way to act on another course's forums is to launch into that course.
type Principal struct {
	UserID       uint
	IsSuperuser  bool
	LTIContextID uint
	ConsumerSlug string
}

type SessionMiddleware struct {
	sessions *auth.SessionService
	userRepo user.Repository
	logger   logger.Interface
}

func NewSessionMiddleware(sessions *auth.SessionService, userRepo user.Repository, log logger.Interface) *SessionMiddleware {
	return &SessionMiddleware{
		sessions: sessions,
		userRepo: userRepo,
		logger:   log,
	}
}

// RequireSession authenticates the request from the session cookie. The
// user record is loaded on every request so a deactivation takes effect
// immediately, not at token expiry.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := utils.GetTokenFromCookie(c, utils.SessionCookie)
		if token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing session")
			c.Abort()
			return
		}

		claims, err := m.sessions.Verify(token)
		if err != nil {
			m.logger.Warnw("failed to verify session token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired session")
			c.Abort()
			return
		}

		u, err := m.userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			m.logger.Errorw("failed to load session user", "error", err, "user_id", claims.UserID)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired session")
			c.Abort()
			return
		}
		if u == nil || !u.IsActive() {
			utils.ErrorResponse(c, http.StatusForbidden, "permission denied")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Set(constants.ContextKeyPermissionHandle, Principal{
			UserID:       claims.UserID,
			IsSuperuser:  u.IsSuperuser(),
			LTIContextID: claims.LTIContextID,
			ConsumerSlug: claims.ConsumerSlug,
		})

		c.Next()
	}
}

// CurrentPrincipal returns the principal set by RequireSession.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPermissionHandle)
	if !exists {
		return Principal{}, false
	}
	principal, ok := value.(Principal)
	return principal, ok
}
