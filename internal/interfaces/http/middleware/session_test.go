package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openfun/ashley-sub000/internal/domain/user"
	"github.com/openfun/ashley-sub000/internal/infrastructure/auth"
	"github.com/openfun/ashley-sub000/internal/infrastructure/persistence/models"
	"github.com/openfun/ashley-sub000/internal/infrastructure/repository"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
	"github.com/openfun/ashley-sub000/internal/shared/utils"
)

type sessionTestEnv struct {
	engine   *gin.Engine
	sessions *auth.SessionService
	users    user.Repository
}

func setupSessionTest(t *testing.T) *sessionTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserModel{}))

	userRepo := repository.NewUserRepository(db)
	sessions := auth.NewSessionService("test-secret", 60)
	mw := NewSessionMiddleware(sessions, userRepo, logger.NewLogger())

	engine := gin.New()
	engine.GET("/protected", mw.RequireSession(), func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": principal.UserID, "context_id": principal.LTIContextID})
	})

	return &sessionTestEnv{engine: engine, sessions: sessions, users: userRepo}
}

func (env *sessionTestEnv) createUser(t *testing.T) *user.User {
	t.Helper()
	u, err := user.NewUser("moodle", "student-1", "student@example.com", "Alice")
	require.NoError(t, err)
	require.NoError(t, env.users.Create(context.Background(), u))
	return u
}

func (env *sessionTestEnv) request(t *testing.T, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: utils.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func TestRequireSession(t *testing.T) {
	t.Run("valid session reaches the handler", func(t *testing.T) {
		env := setupSessionTest(t)
		u := env.createUser(t)

		token, err := env.sessions.Generate(u.ID(), 3, "moodle")
		require.NoError(t, err)

		w := env.request(t, token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"context_id":3`)
	})

	t.Run("missing cookie is unauthorized", func(t *testing.T) {
		env := setupSessionTest(t)
		w := env.request(t, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		env := setupSessionTest(t)
		w := env.request(t, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another secret is unauthorized", func(t *testing.T) {
		env := setupSessionTest(t)
		u := env.createUser(t)

		foreign := auth.NewSessionService("other-secret", 60)
		token, err := foreign.Generate(u.ID(), 3, "moodle")
		require.NoError(t, err)

		w := env.request(t, token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated user is forbidden immediately", func(t *testing.T) {
		env := setupSessionTest(t)
		u := env.createUser(t)

		token, err := env.sessions.Generate(u.ID(), 3, "moodle")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, env.request(t, token).Code)

		u.Deactivate()
		require.NoError(t, env.users.Update(context.Background(), u))

		w := env.request(t, token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("token for a deleted user is forbidden", func(t *testing.T) {
		env := setupSessionTest(t)

		token, err := env.sessions.Generate(9999, 3, "moodle")
		require.NoError(t, err)

		w := env.request(t, token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
