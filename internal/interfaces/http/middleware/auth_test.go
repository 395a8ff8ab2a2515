package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/buildflow/backend/internal/domain/requisition"
	"github.com/buildflow/backend/internal/infrastructure/auth"
	"github.com/buildflow/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := auth.NewJWTService(config.JWTConfig{
		Secret:          "test-secret-key-with-32-characters!",
		Issuer:          "buildflow-test",
		TokenExpiration: time.Hour,
	})

	r := gin.New()
	r.Use(ActorAuth(svc))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/whoami", func(c *gin.Context) {
		role, ok := GetActorRole(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"name": GetActorName(c), "role": string(role)})
	})
	return r, svc
}

func TestActorAuth_ValidToken(t *testing.T) {
	r, svc := newAuthTestRouter(t)

	token, _, err := svc.GenerateToken("M. Herrera", "treasury")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "treasury")
	assert.Contains(t, w.Body.String(), "M. Herrera")
}

func TestActorAuth_MissingHeader(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActorAuth_UnknownRole(t *testing.T) {
	r, svc := newAuthTestRouter(t)

	token, _, err := svc.GenerateToken("M. Herrera", "janitor")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActorAuth_SkipsHealth(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestActorAuth_ParsedRoleIsValid(t *testing.T) {
	// every workflow role must pass the middleware role check
	for _, role := range []requisition.Role{
		requisition.RoleResident, requisition.RoleProcurement, requisition.RoleTreasury,
		requisition.RoleCEO, requisition.RolePayment, requisition.RoleStorekeeper,
	} {
		r, svc := newAuthTestRouter(t)
		token, _, err := svc.GenerateToken("actor", string(role))
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "role %s", role)
	}
}
